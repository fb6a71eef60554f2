package profile

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/session"
)

// SessionAddressStore keeps the address as one JSON value under the reserved
// address key of the session blob. Mutations write the whole object back.
type SessionAddressStore struct {
	sessions  *session.Store
	sessionID string
	key       string
}

func NewSessionAddressStore(sessions *session.Store, sessionID, key string) *SessionAddressStore {
	return &SessionAddressStore{sessions: sessions, sessionID: sessionID, key: key}
}

func (s *SessionAddressStore) Key() string {
	return fmt.Sprintf("session:%s", s.sessionID)
}

func (s *SessionAddressStore) Get(ctx context.Context) (*domain.Address, error) {
	var a domain.Address
	if err := s.sessions.GetKey(ctx, s.sessionID, s.key, &a); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NotFound("address not found")
		}
		return nil, err
	}
	return &a, nil
}

func (s *SessionAddressStore) Create(ctx context.Context, a *domain.Address) error {
	sess, err := s.sessions.Get(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if _, ok := sess.Data[s.key]; ok {
		return domain.AlreadyExists("address already exists")
	}
	a.UserID = nil
	return s.sessions.SetKey(ctx, s.sessionID, s.key, a)
}

func (s *SessionAddressStore) Update(ctx context.Context, a *domain.Address) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	a.UserID = nil
	return s.sessions.SetKey(ctx, s.sessionID, s.key, a)
}

func (s *SessionAddressStore) Delete(ctx context.Context) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	return s.sessions.DeleteKey(ctx, s.sessionID, s.key)
}

// SessionPersonStore keeps the person record under the reserved person key.
type SessionPersonStore struct {
	sessions  *session.Store
	sessionID string
	key       string
}

func NewSessionPersonStore(sessions *session.Store, sessionID, key string) *SessionPersonStore {
	return &SessionPersonStore{sessions: sessions, sessionID: sessionID, key: key}
}

func (s *SessionPersonStore) Key() string {
	return fmt.Sprintf("session:%s", s.sessionID)
}

func (s *SessionPersonStore) Get(ctx context.Context) (*domain.Person, error) {
	var p domain.Person
	if err := s.sessions.GetKey(ctx, s.sessionID, s.key, &p); err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NotFound("person not found")
		}
		return nil, err
	}
	return &p, nil
}

func (s *SessionPersonStore) Create(ctx context.Context, p *domain.Person) error {
	sess, err := s.sessions.Get(ctx, s.sessionID)
	if err != nil {
		return err
	}
	if _, ok := sess.Data[s.key]; ok {
		return domain.AlreadyExists("person already exists")
	}
	p.UserID = nil
	return s.sessions.SetKey(ctx, s.sessionID, s.key, p)
}

func (s *SessionPersonStore) Update(ctx context.Context, p *domain.Person) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	p.UserID = nil
	return s.sessions.SetKey(ctx, s.sessionID, s.key, p)
}

func (s *SessionPersonStore) Delete(ctx context.Context) error {
	if _, err := s.Get(ctx); err != nil {
		return err
	}
	return s.sessions.DeleteKey(ctx, s.sessionID, s.key)
}
