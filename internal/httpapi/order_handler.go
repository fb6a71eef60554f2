package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/order"
	"storefront/internal/profile"
)

type OrderHandler struct {
	checkouts     *checkout.Service
	cartStores    cart.Stores
	profileStores profile.Stores
}

func NewOrderHandler(checkouts *checkout.Service, cartStores cart.Stores, profileStores profile.Stores) *OrderHandler {
	return &OrderHandler{
		checkouts:     checkouts,
		cartStores:    cartStores,
		profileStores: profileStores,
	}
}

type createOrderRequest struct {
	MoveTo            domain.MoveTo            `json:"move_to"`
	PaymentConditions domain.PaymentConditions `json:"payment_conditions"`
	Phonenumber       string                   `json:"phonenumber"`
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "create order")
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "create order", "invalid JSON body")
		return
	}

	o, err := h.checkouts.CreateOrder(r.Context(), ident.UserID(), checkout.Sources{
		Cart:    h.cartStores.StoreFor(ident),
		Person:  h.profileStores.PersonStoreFor(ident),
		Address: h.profileStores.AddressStoreFor(ident),
	}, checkout.CreateOrderInput{
		MoveTo:            req.MoveTo,
		PaymentConditions: req.PaymentConditions,
		Phonenumber:       req.Phonenumber,
	})
	if err != nil {
		handleError(w, "create order", err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// ListOrders returns the caller's orders; superusers may filter any user.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "list orders")
	if !ok {
		return
	}

	f := order.Filter{UserID: ident.UserID()}
	if ident.Superuser() {
		f.UserID = nil
		if raw := r.URL.Query().Get("user_id"); raw != "" {
			uid, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "list orders", "user_id must be an integer")
				return
			}
			f.UserID = &uid
		}
	} else if f.UserID == nil {
		respondError(w, http.StatusForbidden, "list orders", "listing orders requires authentication")
		return
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OrderStatus(raw)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "list orders", "unknown status filter")
			return
		}
		f.Status = &status
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.checkouts.List(r.Context(), f, limit, offset)
	if err != nil {
		handleError(w, "list orders", err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.getOrder(w, r, false)
}

func (h *OrderHandler) GetOrderComplex(w http.ResponseWriter, r *http.Request) {
	h.getOrder(w, r, true)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, complex bool) {
	ident, ok := identityFrom(w, r, "get order")
	if !ok {
		return
	}
	id, ok := orderIDParam(w, r, "get order")
	if !ok {
		return
	}

	var o *domain.Order
	var err error
	if complex {
		o, err = h.checkouts.GetOneComplex(r.Context(), id)
	} else {
		o, err = h.checkouts.GetOne(r.Context(), id)
	}
	if err != nil {
		handleError(w, "get order", err)
		return
	}

	if !ident.Superuser() {
		uid := ident.UserID()
		if uid == nil || o.UserID == nil || *o.UserID != *uid {
			respondError(w, http.StatusForbidden, "get order", "not your order")
			return
		}
	}
	respondJSON(w, http.StatusOK, o)
}

// UpdateStatus is the superuser path to the delivered / cancelled states.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFrom(w, r, "update order status")
	if !ok {
		return
	}
	if !ident.Superuser() {
		respondError(w, http.StatusForbidden, "update order status", "superuser required")
		return
	}
	id, ok := orderIDParam(w, r, "update order status")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "update order status", "invalid JSON body")
		return
	}

	o, err := h.checkouts.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		handleError(w, "update order status", err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func orderIDParam(w http.ResponseWriter, r *http.Request, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, message, "order_id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
