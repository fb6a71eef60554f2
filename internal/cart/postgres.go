package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"storefront/internal/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// PostgresStore keeps the cart in the carts / cart_items tables. The cart's
// primary key is the user id; cart_items carries a unique
// (cart_id, product_id) constraint.
type PostgresStore struct {
	db     *sql.DB
	userID int64
}

func NewPostgresStore(db *sql.DB, userID int64) *PostgresStore {
	return &PostgresStore{db: db, userID: userID}
}

func (s *PostgresStore) Key() string {
	return fmt.Sprintf("user:%d", s.userID)
}

func (s *PostgresStore) Get(ctx context.Context) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: &s.userID}

	err := s.db.QueryRowContext(ctx,
		`SELECT created FROM carts WHERE user_id = $1`, s.userID,
	).Scan(&cart.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("cart not found")
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load cart").WithCause(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id, cart_id, price, quantity
		 FROM cart_items WHERE cart_id = $1 ORDER BY product_id`, s.userID)
	if err != nil {
		return nil, domain.DatabaseError("failed to load cart items").WithCause(err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		var cartID int64
		if err := rows.Scan(&item.ProductID, &cartID, &item.Price, &item.Quantity); err != nil {
			return nil, domain.DatabaseError("failed to scan cart item").WithCause(err)
		}
		item.CartID = &cartID
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("failed to load cart items").WithCause(err)
	}
	return cart, nil
}

// GetComplex joins the live product short info onto every line item.
func (s *PostgresStore) GetComplex(ctx context.Context) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: &s.userID}

	err := s.db.QueryRowContext(ctx,
		`SELECT created FROM carts WHERE user_id = $1`, s.userID,
	).Scan(&cart.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("cart not found")
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load cart").WithCause(err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ci.product_id, ci.cart_id, ci.price, ci.quantity,
		        p.name, round(p.start_price - p.start_price * p.discount / 100.0, 2), p.available
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1 ORDER BY ci.product_id`, s.userID)
	if err != nil {
		return nil, domain.DatabaseError("failed to load cart items").WithCause(err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		var cartID int64
		short := &domain.ProductShort{}
		if err := rows.Scan(&item.ProductID, &cartID, &item.Price, &item.Quantity,
			&short.Name, &short.Price, &short.Available); err != nil {
			return nil, domain.DatabaseError("failed to scan cart item").WithCause(err)
		}
		item.CartID = &cartID
		short.ID = item.ProductID
		item.Product = short
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("failed to load cart items").WithCause(err)
	}
	return cart, nil
}

func (s *PostgresStore) Create(ctx context.Context) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: &s.userID}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO carts (user_id) VALUES ($1) RETURNING created`, s.userID,
	).Scan(&cart.Created)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return nil, domain.AlreadyExists("cart already exists")
			case pqForeignKeyViolation:
				return nil, domain.NotFound(fmt.Sprintf("user with id %d not found", s.userID))
			}
		}
		return nil, domain.DatabaseError("failed to create cart").WithCause(err)
	}
	return cart, nil
}

func (s *PostgresStore) InsertItem(ctx context.Context, item domain.CartItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, price, quantity)
		 VALUES ($1, $2, $3, $4)`,
		s.userID, item.ProductID, item.Price, item.Quantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return domain.AlreadyExists(fmt.Sprintf("product %d is already in the cart", item.ProductID))
			case pqForeignKeyViolation:
				return domain.NotFound("cart or product not found")
			}
		}
		return domain.DatabaseError("failed to insert cart item").WithCause(err)
	}
	return nil
}

func (s *PostgresStore) UpdateItemQuantity(ctx context.Context, productID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2`,
		s.userID, productID, quantity)
	if err != nil {
		return domain.DatabaseError("failed to update cart item").WithCause(err)
	}
	return requireMatch(res, fmt.Sprintf("product %d not found in cart", productID))
}

func (s *PostgresStore) DeleteItem(ctx context.Context, productID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		s.userID, productID)
	if err != nil {
		return domain.DatabaseError("failed to delete cart item").WithCause(err)
	}
	return requireMatch(res, fmt.Sprintf("product %d not found in cart", productID))
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM carts WHERE user_id = $1)`, s.userID,
	).Scan(&exists)
	if err != nil {
		return domain.DatabaseError("failed to load cart").WithCause(err)
	}
	if !exists {
		return domain.NotFound("cart not found")
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, s.userID)
	if err != nil {
		return domain.DatabaseError("failed to clear cart").WithCause(err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, s.userID)
	if err != nil {
		return domain.DatabaseError("failed to delete cart").WithCause(err)
	}
	return requireMatch(res, "cart not found")
}

func requireMatch(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DatabaseError("failed to read result").WithCause(err)
	}
	if n == 0 {
		return domain.NotFound(notFoundMsg)
	}
	return nil
}
