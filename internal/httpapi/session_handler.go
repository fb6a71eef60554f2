package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"storefront/internal/session"
)

// SessionHandler issues anonymous sessions and exposes the superuser listing.
type SessionHandler struct {
	sessions *session.Store
}

func NewSessionHandler(sessions *session.Store) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	d := &session.Data{ID: uuid.NewString()}
	if err := h.sessions.Create(r.Context(), d); err != nil {
		handleError(w, "create session", err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"session_id": d.ID})
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(SessionHeader)
	if sid == "" {
		respondError(w, http.StatusBadRequest, "delete session", "missing session id")
		return
	}
	if err := h.sessions.Delete(r.Context(), sid); err != nil {
		handleError(w, "delete session", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListSessions is for the superuser console.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "list sessions")
	if !ok {
		return
	}
	if !ident.Superuser() {
		respondError(w, http.StatusForbidden, "list sessions", "superuser required")
		return
	}
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		handleError(w, "list sessions", err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}
