// Package order persists placed orders. Orders are append-only: the content
// columns are frozen JSON snapshots and only status and delivery time ever
// change, through the superuser edit path.
package order

import (
	"context"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// Filter narrows order listings.
type Filter struct {
	UserID *int64
	Status *domain.OrderStatus
}

type Repository interface {
	// Create inserts the order and its outbox event in one transaction.
	Create(ctx context.Context, o *domain.Order) error
	// List returns order summaries, newest first, without content columns.
	List(ctx context.Context, f Filter, limit, offset int) ([]*domain.Order, error)
	// GetOne returns the order summary without content columns.
	GetOne(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// GetOneComplex returns the order with all snapshot content.
	GetOneComplex(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// UpdateStatus moves an order to delivered or cancelled.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}
