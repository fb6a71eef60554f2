package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/identity"
	"storefront/internal/session"
)

type ctxKey int

const identityCtxKey ctxKey = iota

// TokenVerifier is the auth collaborator: it turns a bearer token into a
// verified user, or reports that it cannot.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.User, error)
}

// SessionHeader names the anonymous session id header.
const SessionHeader = "X-Session-ID"

// IdentityMiddleware resolves the request identity: a verified bearer token
// wins, then a readable session. Requests with neither still pass through;
// handlers that need an identity reject them with 403.
func IdentityMiddleware(log *slog.Logger, verifier TokenVerifier, sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *identity.User
			var sess *session.Data

			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				u, err := verifier.Verify(r.Context(), strings.TrimPrefix(auth, "Bearer "))
				if err == nil {
					user = u
				} else {
					log.DebugContext(r.Context(), "token rejected", "err", err)
				}
			}
			if user == nil {
				if sid := r.Header.Get(SessionHeader); sid != "" {
					d, err := sessions.Get(r.Context(), sid)
					if err == nil {
						sess = d
					} else {
						log.DebugContext(r.Context(), "session unreadable", "session_id", sid, "err", err)
					}
				}
			}

			ident, err := identity.Resolve(user, sess)
			if err != nil {
				// anonymous without session: handlers decide
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), identityCtxKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFrom returns the resolved identity, or a Forbidden error response
// written for the caller.
func identityFrom(w http.ResponseWriter, r *http.Request, message string) (identity.Identity, bool) {
	if ident, ok := r.Context().Value(identityCtxKey).(identity.Identity); ok {
		return ident, true
	}
	respondError(w, http.StatusForbidden, message, "No authentication or session provided")
	return identity.Identity{}, false
}

// RateLimitMiddleware consults the injected policy per caller fingerprint.
func RateLimitMiddleware(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(SessionHeader)
			if key == "" {
				key = r.RemoteAddr
			}
			if !limiter.Allow(key) {
				respondError(w, http.StatusTooManyRequests, "rate limit", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
