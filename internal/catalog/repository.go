// Package catalog supplies product snapshots to the cart and checkout, and
// the existence probes the validation inspectors run. The catalog CRUD
// surface itself (brands, rubrics, product management) lives elsewhere.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"storefront/internal/domain"
)

// Products is what the cart and checkout need from the catalog.
type Products interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	DecrementStock(ctx context.Context, id int64, amount int) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the product with its selling price computed from start_price
// and discount.
func (r *Repository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, name, start_price, discount,
	                 round(start_price - start_price * discount / 100.0, 2) AS price,
	                 available, quantity
	          FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.StartPrice,
		&p.Discount,
		&p.Price,
		&p.Available,
		&p.Quantity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load product").WithCause(err)
	}
	return &p, nil
}

// DecrementStock subtracts a sold amount from the product's quantity. The
// update is conditional on enough stock remaining.
func (r *Repository) DecrementStock(ctx context.Context, id int64, amount int) error {
	query := `UPDATE products SET quantity = quantity - $2
	          WHERE id = $1 AND quantity >= $2`

	res, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return domain.DatabaseError("failed to decrement stock").WithCause(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.DatabaseError("failed to decrement stock").WithCause(err)
	}
	if n == 0 {
		return domain.InsufficientStock(fmt.Sprintf("not enough stock for product %d", id))
	}
	return nil
}

func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *Repository) BrandExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM brands WHERE id = $1)`, id)
}

// RubricsExist returns the subset of ids with no matching rubric row.
func (r *Repository) RubricsExist(ctx context.Context, ids []int64) ([]int64, error) {
	query := `SELECT id FROM rubrics WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, domain.DatabaseError("failed to check rubrics").WithCause(err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, domain.DatabaseError("failed to check rubrics").WithCause(err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DatabaseError("failed to check rubrics").WithCause(err)
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *Repository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, domain.DatabaseError("existence check failed").WithCause(err)
	}
	return ok, nil
}
