package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"storefront/internal/domain"
	"storefront/internal/outbox"
)

const pqUniqueViolation = "23505"

// EventOrderPlaced is the outbox event type written with every order.
const EventOrderPlaced = "order.placed"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o *domain.Order) error {
	contentJSON, err := json.Marshal(o.OrderContent)
	if err != nil {
		return fmt.Errorf("marshal order content: %w", err)
	}
	personJSON, err := json.Marshal(o.PersonContent)
	if err != nil {
		return fmt.Errorf("marshal person content: %w", err)
	}
	addressJSON, err := json.Marshal(o.AddressContent)
	if err != nil {
		return fmt.Errorf("marshal address content: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DatabaseError("failed to open transaction").WithCause(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, phonenumber, total_cost, order_content,
		                     person_content, address_content, time_placed, move_to,
		                     payment_conditions, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.UserID, o.Phonenumber, o.TotalCost, contentJSON,
		personJSON, addressJSON, o.TimePlaced, o.MoveTo,
		o.PaymentConditions, o.Status)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.AlreadyExists(fmt.Sprintf("order %s already exists", o.ID))
		}
		return domain.DatabaseError("failed to insert order").WithCause(err)
	}

	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_outbox (id, event_type, payload) VALUES ($1, $2, $3)`,
		uuid.New(), EventOrderPlaced, payload)
	if err != nil {
		return domain.DatabaseError("failed to insert outbox event").WithCause(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.DatabaseError("failed to commit order").WithCause(err)
	}
	return nil
}

const summaryColumns = `id, user_id, phonenumber, total_cost, time_placed,
	time_delivered, move_to, payment_conditions, status`

func (r *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + summaryColumns + ` FROM orders
	          WHERE ($1::bigint IS NULL OR user_id = $1)
	            AND ($2::text IS NULL OR status = $2)
	          ORDER BY time_placed DESC
	          LIMIT $3 OFFSET $4`

	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}

	rows, err := r.db.QueryContext(ctx, query, f.UserID, status, limit, offset)
	if err != nil {
		return nil, domain.DatabaseError("failed to list orders").WithCause(err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("failed to list orders").WithCause(err)
	}
	return orders, nil
}

func (r *PostgresRepository) GetOne(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(fmt.Sprintf("order %s not found", id))
	}
	return o, err
}

func (r *PostgresRepository) GetOneComplex(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	var contentJSON, personJSON, addressJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, phonenumber, total_cost, order_content, person_content,
		        address_content, time_placed, time_delivered, move_to,
		        payment_conditions, status
		 FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.Phonenumber, &o.TotalCost, &contentJSON, &personJSON,
		&addressJSON, &o.TimePlaced, &o.TimeDelivered, &o.MoveTo,
		&o.PaymentConditions, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(fmt.Sprintf("order %s not found", id))
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load order").WithCause(err)
	}

	if err := json.Unmarshal(contentJSON, &o.OrderContent); err != nil {
		return nil, domain.DatabaseError("corrupt order content").WithCause(err)
	}
	if err := json.Unmarshal(personJSON, &o.PersonContent); err != nil {
		return nil, domain.DatabaseError("corrupt person content").WithCause(err)
	}
	if err := json.Unmarshal(addressJSON, &o.AddressContent); err != nil {
		return nil, domain.DatabaseError("corrupt address content").WithCause(err)
	}
	return &o, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ValidationFailed(fmt.Sprintf("unknown order status %q", status))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.DatabaseError("failed to open transaction").WithCause(err)
	}
	defer tx.Rollback()

	var current domain.OrderStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(fmt.Sprintf("order %s not found", id))
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load order").WithCause(err)
	}
	if current.IsTerminal() {
		return nil, domain.ValidationFailed(
			fmt.Sprintf("order %s is already %s", id, current))
	}

	var delivered *time.Time
	if status == domain.OrderStatusDelivered {
		now := time.Now().UTC()
		delivered = &now
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, time_delivered = $3 WHERE id = $1`,
		id, status, delivered)
	if err != nil {
		return nil, domain.DatabaseError("failed to update order").WithCause(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.DatabaseError("failed to commit order update").WithCause(err)
	}
	return r.GetOne(ctx, id)
}

// UnprocessedEvents and MarkEventProcessed make the repository the outbox
// poller's source.
func (r *PostgresRepository) UnprocessedEvents(ctx context.Context, limit int) ([]outbox.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, payload, created_at
		 FROM order_outbox WHERE processed_at IS NULL
		 ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, domain.DatabaseError("failed to fetch outbox events").WithCause(err)
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var e outbox.Event
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, domain.DatabaseError("failed to scan outbox event").WithCause(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("failed to fetch outbox events").WithCause(err)
	}
	return events, nil
}

func (r *PostgresRepository) MarkEventProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE order_outbox SET processed_at = now() WHERE id = $1`, id)
	if err != nil {
		return domain.DatabaseError("failed to mark outbox event").WithCause(err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Phonenumber, &o.TotalCost, &o.TimePlaced,
		&o.TimeDelivered, &o.MoveTo, &o.PaymentConditions, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to scan order").WithCause(err)
	}
	return &o, nil
}
