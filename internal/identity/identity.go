// Package identity resolves who a request acts as: an authenticated user or
// an anonymous session. Every per-actor aggregate keys off the resolved
// identity, and the backend choice (relational vs session) is made here once.
package identity

import (
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/session"
)

// User is the authenticated principal supplied by the auth collaborator.
type User struct {
	ID        int64
	Email     string
	Superuser bool
}

// Identity holds exactly one of a user or a session.
type Identity struct {
	user *User
	sess *session.Data
}

func FromUser(u *User) Identity {
	return Identity{user: u}
}

func FromSession(d *session.Data) Identity {
	return Identity{sess: d}
}

// Resolve picks the active identity: a verified user wins, then a readable
// session; with neither the request is forbidden.
func Resolve(u *User, sess *session.Data) (Identity, error) {
	if u != nil {
		return FromUser(u), nil
	}
	if sess != nil {
		return FromSession(sess), nil
	}
	return Identity{}, domain.Forbidden("No authentication or session provided")
}

func (id Identity) User() (*User, bool) {
	return id.user, id.user != nil
}

func (id Identity) Session() (*session.Data, bool) {
	return id.sess, id.sess != nil
}

// UserID returns the user id, nil for anonymous sessions.
func (id Identity) UserID() *int64 {
	if id.user == nil {
		return nil
	}
	uid := id.user.ID
	return &uid
}

// Key is the per-identity serialization key used to order read-modify-write
// sequences on both backends.
func (id Identity) Key() string {
	if id.user != nil {
		return fmt.Sprintf("user:%d", id.user.ID)
	}
	if id.sess != nil {
		return fmt.Sprintf("session:%s", id.sess.ID)
	}
	return ""
}

func (id Identity) Superuser() bool {
	return id.user != nil && id.user.Superuser
}
