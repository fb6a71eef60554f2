package cart

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/session"
)

// SessionStore keeps the whole cart as one JSON value under the reserved
// cart key of the identity's session blob. Every mutation reads the cart,
// applies the change and writes the value back.
type SessionStore struct {
	sessions  *session.Store
	sessionID string
	key       string
}

func NewSessionStore(sessions *session.Store, sessionID, key string) *SessionStore {
	return &SessionStore{sessions: sessions, sessionID: sessionID, key: key}
}

func (s *SessionStore) Key() string {
	return fmt.Sprintf("session:%s", s.sessionID)
}

func (s *SessionStore) Get(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.sessions.GetKey(ctx, s.sessionID, s.key, &cart); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NotFound("cart not found")
		}
		return nil, err
	}
	return &cart, nil
}

// GetComplex is Get: session items already embed their product snapshot.
func (s *SessionStore) GetComplex(ctx context.Context) (*domain.Cart, error) {
	return s.Get(ctx)
}

func (s *SessionStore) Create(ctx context.Context) (*domain.Cart, error) {
	sess, err := s.sessions.Get(ctx, s.sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := sess.Data[s.key]; ok {
		return nil, domain.AlreadyExists("cart already exists")
	}

	cart := &domain.Cart{Created: time.Now().UTC()}
	if err := s.sessions.SetKey(ctx, s.sessionID, s.key, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *SessionStore) InsertItem(ctx context.Context, item domain.CartItem) error {
	cart, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if cart.Item(item.ProductID) != nil {
		return domain.AlreadyExists(fmt.Sprintf("product %d is already in the cart", item.ProductID))
	}
	item.CartID = nil // session items have no relational parent
	cart.Items = append(cart.Items, item)
	return s.sessions.SetKey(ctx, s.sessionID, s.key, cart)
}

func (s *SessionStore) UpdateItemQuantity(ctx context.Context, productID int64, quantity int) error {
	cart, err := s.Get(ctx)
	if err != nil {
		return err
	}
	item := cart.Item(productID)
	if item == nil {
		return domain.NotFound(fmt.Sprintf("product %d not found in cart", productID))
	}
	item.Quantity = quantity
	return s.sessions.SetKey(ctx, s.sessionID, s.key, cart)
}

func (s *SessionStore) DeleteItem(ctx context.Context, productID int64) error {
	cart, err := s.Get(ctx)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.sessions.SetKey(ctx, s.sessionID, s.key, cart)
		}
	}
	return domain.NotFound(fmt.Sprintf("product %d not found in cart", productID))
}

func (s *SessionStore) Clear(ctx context.Context) error {
	cart, err := s.Get(ctx)
	if err != nil {
		return err
	}
	cart.Items = nil
	return s.sessions.SetKey(ctx, s.sessionID, s.key, cart)
}

func (s *SessionStore) Delete(ctx context.Context) error {
	return s.sessions.DeleteKey(ctx, s.sessionID, s.key)
}
