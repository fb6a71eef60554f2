package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"storefront/internal/domain"
)

// ErrorResponse carries a stable handler identity in Message and the specific
// cause in Detail.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message, detail string) {
	respondJSON(w, status, ErrorResponse{Message: message, Detail: detail})
}

// handleError maps a domain error onto the HTTP response. message names the
// failing handler; detail is the domain cause.
func handleError(w http.ResponseWriter, message string, err error) {
	if de, ok := domain.AsError(err); ok {
		respondError(w, de.Status, message, de.Message)
		return
	}
	respondError(w, http.StatusInternalServerError, message, "internal server error")
}
