// Package usertools keeps the wishlist, comparison and recently-viewed
// product lists, one row per authenticated user. Anonymous sessions do not
// get user tools.
package usertools

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/lib/pq"

	"storefront/internal/domain"
	"storefront/internal/identity"
	"storefront/internal/inspect"
	"storefront/internal/keyedmutex"
)

const recentlyViewedCap = 20

type List string

const (
	ListWishlist       List = "wishlist"
	ListComparison     List = "comparison"
	ListRecentlyViewed List = "recently_viewed"
)

func (l List) Valid() bool {
	switch l {
	case ListWishlist, ListComparison, ListRecentlyViewed:
		return true
	}
	return false
}

type Tools struct {
	UserID         int64   `json:"user_id"`
	Wishlist       []int64 `json:"wishlist"`
	Comparison     []int64 `json:"comparison"`
	RecentlyViewed []int64 `json:"recently_viewed"`
}

type Service struct {
	log       *slog.Logger
	db        *sql.DB
	inspector *inspect.Inspector
	locks     *keyedmutex.KeyedMutex
}

func NewService(log *slog.Logger, db *sql.DB, inspector *inspect.Inspector, locks *keyedmutex.KeyedMutex) *Service {
	return &Service{log: log, db: db, inspector: inspector, locks: locks}
}

// GetOrCreate returns the user's tools row, initializing empty lists on
// first access.
func (s *Service) GetOrCreate(ctx context.Context, ident identity.Identity) (*Tools, error) {
	u, ok := ident.User()
	if !ok {
		return nil, domain.Forbidden("user tools require authentication")
	}

	t, err := s.get(ctx, u.ID)
	if err == nil {
		return t, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_tools (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		u.ID)
	if err != nil {
		return nil, domain.DatabaseError("failed to create user tools").WithCause(err)
	}
	return s.get(ctx, u.ID)
}

// Add puts a product into one of the lists. Recently-viewed keeps the most
// recent first, deduplicated and capped.
func (s *Service) Add(ctx context.Context, ident identity.Identity, list List, productID int64) (*Tools, error) {
	if !list.Valid() {
		return nil, domain.ValidationFailed("unknown user tools list")
	}
	if _, err := inspect.Run(ctx, s.inspector.ProductExists(productID)); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(ident.Key())
	defer unlock()

	t, err := s.GetOrCreate(ctx, ident)
	if err != nil {
		return nil, err
	}

	switch list {
	case ListWishlist:
		t.Wishlist = appendUnique(t.Wishlist, productID)
	case ListComparison:
		t.Comparison = appendUnique(t.Comparison, productID)
	case ListRecentlyViewed:
		t.RecentlyViewed = pushFront(t.RecentlyViewed, productID, recentlyViewedCap)
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Remove deletes a product from one of the lists.
func (s *Service) Remove(ctx context.Context, ident identity.Identity, list List, productID int64) (*Tools, error) {
	if !list.Valid() {
		return nil, domain.ValidationFailed("unknown user tools list")
	}

	unlock := s.locks.Lock(ident.Key())
	defer unlock()

	t, err := s.GetOrCreate(ctx, ident)
	if err != nil {
		return nil, err
	}

	switch list {
	case ListWishlist:
		t.Wishlist = remove(t.Wishlist, productID)
	case ListComparison:
		t.Comparison = remove(t.Comparison, productID)
	case ListRecentlyViewed:
		t.RecentlyViewed = remove(t.RecentlyViewed, productID)
	}
	if err := s.save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) get(ctx context.Context, userID int64) (*Tools, error) {
	t := &Tools{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT wishlist, comparison, recently_viewed FROM user_tools WHERE user_id = $1`,
		userID,
	).Scan(pq.Array(&t.Wishlist), pq.Array(&t.Comparison), pq.Array(&t.RecentlyViewed))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user tools not found")
	}
	if err != nil {
		return nil, domain.DatabaseError("failed to load user tools").WithCause(err)
	}
	return t, nil
}

func (s *Service) save(ctx context.Context, t *Tools) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE user_tools SET wishlist = $2, comparison = $3, recently_viewed = $4
		 WHERE user_id = $1`,
		t.UserID, pq.Array(t.Wishlist), pq.Array(t.Comparison), pq.Array(t.RecentlyViewed))
	if err != nil {
		return domain.DatabaseError("failed to save user tools").WithCause(err)
	}
	return nil
}

func appendUnique(list []int64, id int64) []int64 {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}

func pushFront(list []int64, id int64, limit int) []int64 {
	out := make([]int64, 0, len(list)+1)
	out = append(out, id)
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func remove(list []int64, id int64) []int64 {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
