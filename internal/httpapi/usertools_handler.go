package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/usertools"
)

type UserToolsHandler struct {
	tools *usertools.Service
}

func NewUserToolsHandler(tools *usertools.Service) *UserToolsHandler {
	return &UserToolsHandler{tools: tools}
}

func (h *UserToolsHandler) GetTools(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "get user tools")
	if !ok {
		return
	}
	t, err := h.tools.GetOrCreate(r.Context(), ident)
	if err != nil {
		handleError(w, "get user tools", err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *UserToolsHandler) AddToList(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "update user tools")
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r, "update user tools")
	if !ok {
		return
	}
	list := usertools.List(chi.URLParam(r, "list"))

	t, err := h.tools.Add(r.Context(), ident, list, productID)
	if err != nil {
		handleError(w, "update user tools", err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *UserToolsHandler) RemoveFromList(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "update user tools")
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r, "update user tools")
	if !ok {
		return
	}
	list := usertools.List(chi.URLParam(r, "list"))

	t, err := h.tools.Remove(r.Context(), ident, list, productID)
	if err != nil {
		handleError(w, "update user tools", err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}
