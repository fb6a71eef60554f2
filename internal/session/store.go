package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

// Reserved keys inside a session's data map. The aggregates embedded in a
// session live under exactly these names.
const (
	DefaultCartKey    = "SESSION_CART"
	DefaultAddressKey = "SESSION_ADDRESS"
	DefaultPersonKey  = "SESSION_PERSON"
)

// Keys holds the configured reserved data keys.
type Keys struct {
	Cart    string
	Address string
	Person  string
}

func DefaultKeys() Keys {
	return Keys{
		Cart:    DefaultCartKey,
		Address: DefaultAddressKey,
		Person:  DefaultPersonKey,
	}
}

// Data is one session blob. Data holds opaque per-key payloads; the cart,
// address and person aggregates each own one reserved key in it.
type Data struct {
	ID        string                     `json:"id"`
	UserID    *int64                     `json:"user_id,omitempty"`
	UserEmail string                     `json:"user_email,omitempty"`
	Data      map[string]json.RawMessage `json:"data"`
}

// Store keeps session blobs in redis as JSON, one key per session.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func storeKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create writes a new session blob. It fails with AlreadyExists if the
// session id is already taken.
func (s *Store) Create(ctx context.Context, d *Data) error {
	if d.Data == nil {
		d.Data = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, storeKey(d.ID), raw, s.ttl).Result()
	if err != nil {
		return domain.DatabaseError("session store failure").WithCause(err)
	}
	if !ok {
		return domain.AlreadyExists(fmt.Sprintf("session %s already exists", d.ID))
	}
	return nil
}

// Get reads a session blob, NotFound when the session is absent or expired.
func (s *Store) Get(ctx context.Context, id string) (*Data, error) {
	raw, err := s.client.Get(ctx, storeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NotFound(fmt.Sprintf("session %s not found", id))
	}
	if err != nil {
		return nil, domain.DatabaseError("session store failure").WithCause(err)
	}

	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, domain.DatabaseError("corrupt session blob").WithCause(err)
	}
	if d.Data == nil {
		d.Data = map[string]json.RawMessage{}
	}
	return &d, nil
}

// Update merges patch into the session's data map and writes the blob back.
// Existing keys not named in patch are left untouched.
func (s *Store) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*Data, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		d.Data[k] = v
	}
	if err := s.write(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// SetKey marshals v under one reserved data key.
func (s *Store) SetKey(ctx context.Context, id, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session value: %w", err)
	}
	_, err = s.Update(ctx, id, map[string]json.RawMessage{key: raw})
	return err
}

// GetKey unmarshals the payload under key into out; NotFound when the key is
// absent from the session.
func (s *Store) GetKey(ctx context.Context, id, key string, out any) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	raw, ok := d.Data[key]
	if !ok {
		return domain.NotFound(fmt.Sprintf("%s not found in session", key))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.DatabaseError("corrupt session value").WithCause(err)
	}
	return nil
}

// DeleteKey removes one reserved data key from the session.
func (s *Store) DeleteKey(ctx context.Context, id, key string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	delete(d.Data, key)
	return s.write(ctx, d)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, storeKey(id)).Err(); err != nil {
		return domain.DatabaseError("session store failure").WithCause(err)
	}
	return nil
}

// List scans all live sessions. Superuser console only, not a hot path.
func (s *Store) List(ctx context.Context) ([]*Data, error) {
	var out []*Data
	iter := s.client.Scan(ctx, 0, storeKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, domain.DatabaseError("session store failure").WithCause(err)
		}
		var d Data
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, domain.DatabaseError("corrupt session blob").WithCause(err)
		}
		out = append(out, &d)
	}
	if err := iter.Err(); err != nil {
		return nil, domain.DatabaseError("session store failure").WithCause(err)
	}
	return out, nil
}

// write saves the blob back preserving the remaining TTL.
func (s *Store) write(ctx context.Context, d *Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, storeKey(d.ID), raw, redis.KeepTTL).Err(); err != nil {
		return domain.DatabaseError("session store failure").WithCause(err)
	}
	return nil
}
