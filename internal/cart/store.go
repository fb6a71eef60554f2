// Package cart owns the per-identity item collection with two interchangeable
// backends: a relational store keyed by user id and an ephemeral store
// embedded in the identity's session blob.
package cart

import (
	"context"
	"database/sql"

	"storefront/internal/domain"
	"storefront/internal/identity"
	"storefront/internal/session"
)

// Store is one identity's cart backend, bound to that identity at resolution
// time. Callers never re-branch on the backend per operation.
type Store interface {
	// Key is the identity serialization key.
	Key() string
	Get(ctx context.Context) (*domain.Cart, error)
	// GetComplex returns the cart with product short info on every item.
	GetComplex(ctx context.Context) (*domain.Cart, error)
	// Create makes an empty cart; AlreadyExists if the identity owns one.
	Create(ctx context.Context) (*domain.Cart, error)
	// InsertItem adds a new line; AlreadyExists on a duplicate product.
	InsertItem(ctx context.Context, item domain.CartItem) error
	// UpdateItemQuantity sets the stored quantity; NotFound if absent.
	UpdateItemQuantity(ctx context.Context, productID int64, quantity int) error
	// DeleteItem removes one line; NotFound if absent.
	DeleteItem(ctx context.Context, productID int64) error
	// Clear removes every line; NotFound without a cart.
	Clear(ctx context.Context) error
	// Delete removes the cart itself.
	Delete(ctx context.Context) error
}

// Stores selects the backend for an identity exactly once.
type Stores struct {
	DB       *sql.DB
	Sessions *session.Store
	CartKey  string
}

func (s Stores) StoreFor(ident identity.Identity) Store {
	if u, ok := ident.User(); ok {
		return &PostgresStore{db: s.DB, userID: u.ID}
	}
	sess, ok := ident.Session()
	if !ok {
		panic("cart: store requested for an unresolved identity")
	}
	return &SessionStore{sessions: s.Sessions, sessionID: sess.ID, key: s.CartKey}
}
