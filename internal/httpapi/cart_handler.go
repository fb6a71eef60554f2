package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cart"
)

type CartHandler struct {
	carts  *cart.Service
	stores cart.Stores
}

func NewCartHandler(carts *cart.Service, stores cart.Stores) *CartHandler {
	return &CartHandler{carts: carts, stores: stores}
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type changeQuantityRequest struct {
	Delta    *int `json:"delta"`
	Absolute *int `json:"absolute"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "get cart")
	if !ok {
		return
	}
	c, err := h.carts.GetOrCreate(r.Context(), h.stores.StoreFor(ident))
	if err != nil {
		handleError(w, "get cart", err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) GetCartComplex(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "get cart")
	if !ok {
		return
	}
	c, err := h.carts.GetComplex(r.Context(), h.stores.StoreFor(ident))
	if err != nil {
		handleError(w, "get cart", err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "add cart item")
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "add cart item", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "add cart item", "product_id must be positive")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.carts.GetOrCreateItem(r.Context(), h.stores.StoreFor(ident), req.ProductID, req.Quantity)
	if err != nil {
		handleError(w, "add cart item", err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "change quantity")
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r, "change quantity")
	if !ok {
		return
	}

	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "change quantity", "invalid JSON body")
		return
	}

	item, err := h.carts.ChangeQuantity(r.Context(), h.stores.StoreFor(ident), productID,
		cart.QuantityChange{Delta: req.Delta, Absolute: req.Absolute})
	if err != nil {
		handleError(w, "change quantity", err)
		return
	}
	if item == nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *CartHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "get cart item")
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r, "get cart item")
	if !ok {
		return
	}
	item, err := h.carts.GetOneItem(r.Context(), h.stores.StoreFor(ident), productID)
	if err != nil {
		handleError(w, "get cart item", err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "remove cart item")
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r, "remove cart item")
	if !ok {
		return
	}
	if err := h.carts.DeleteItem(r.Context(), h.stores.StoreFor(ident), productID); err != nil {
		handleError(w, "remove cart item", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "clear cart")
	if !ok {
		return
	}
	if err := h.carts.Clear(r.Context(), h.stores.StoreFor(ident)); err != nil {
		handleError(w, "clear cart", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func productIDParam(w http.ResponseWriter, r *http.Request, message string) (int64, bool) {
	raw := chi.URLParam(r, "product_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, message, "product_id must be a positive integer")
		return 0, false
	}
	return id, true
}
