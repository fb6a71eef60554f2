// Package profile owns the address and person records, one active instance
// per identity, with the same relational/session backend duality as the cart.
package profile

import (
	"context"
	"database/sql"

	"storefront/internal/domain"
	"storefront/internal/identity"
	"storefront/internal/session"
)

// AddressStore is one identity's address backend.
type AddressStore interface {
	Key() string
	Get(ctx context.Context) (*domain.Address, error)
	Create(ctx context.Context, a *domain.Address) error
	Update(ctx context.Context, a *domain.Address) error
	Delete(ctx context.Context) error
}

// PersonStore is one identity's person backend.
type PersonStore interface {
	Key() string
	Get(ctx context.Context) (*domain.Person, error)
	Create(ctx context.Context, p *domain.Person) error
	Update(ctx context.Context, p *domain.Person) error
	Delete(ctx context.Context) error
}

// Stores selects the backend for an identity exactly once.
type Stores struct {
	DB         *sql.DB
	Sessions   *session.Store
	AddressKey string
	PersonKey  string
}

func (s Stores) AddressStoreFor(ident identity.Identity) AddressStore {
	if u, ok := ident.User(); ok {
		return &PostgresAddressStore{db: s.DB, userID: u.ID}
	}
	sess, ok := ident.Session()
	if !ok {
		panic("profile: store requested for an unresolved identity")
	}
	return &SessionAddressStore{sessions: s.Sessions, sessionID: sess.ID, key: s.AddressKey}
}

func (s Stores) PersonStoreFor(ident identity.Identity) PersonStore {
	if u, ok := ident.User(); ok {
		return &PostgresPersonStore{db: s.DB, userID: u.ID}
	}
	sess, ok := ident.Session()
	if !ok {
		panic("profile: store requested for an unresolved identity")
	}
	return &SessionPersonStore{sessions: s.Sessions, sessionID: sess.ID, key: s.PersonKey}
}
