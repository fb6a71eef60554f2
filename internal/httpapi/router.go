// Package httpapi is the transport layer: chi routing, identity resolution
// and the mapping of domain errors onto HTTP responses.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storefront/internal/session"
)

type RouterDeps struct {
	Log      *slog.Logger
	Verifier TokenVerifier
	Sessions *session.Store
	Limiter  Limiter

	Cart      *CartHandler
	Profile   *ProfileHandler
	Order     *OrderHandler
	Session   *SessionHandler
	UserTools *UserToolsHandler

	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(RateLimitMiddleware(deps.Limiter))
	r.Use(IdentityMiddleware(deps.Log, deps.Verifier, deps.Sessions))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", deps.Session.CreateSession)
			r.Delete("/", deps.Session.DeleteSession)
			r.Get("/", deps.Session.ListSessions)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", deps.Cart.GetCart)
			r.Get("/complex", deps.Cart.GetCartComplex)
			r.Delete("/", deps.Cart.ClearCart)
			r.Post("/items", deps.Cart.AddItem)
			r.Get("/items/{product_id}", deps.Cart.GetItem)
			r.Put("/items/{product_id}", deps.Cart.ChangeQuantity)
			r.Delete("/items/{product_id}", deps.Cart.RemoveItem)
		})

		r.Route("/address", func(r chi.Router) {
			r.Get("/", deps.Profile.GetAddress)
			r.Post("/", deps.Profile.CreateAddress)
			r.Put("/", deps.Profile.EditAddress)
			r.Patch("/", deps.Profile.EditAddressPartial)
			r.Delete("/", deps.Profile.DeleteAddress)
		})

		r.Route("/person", func(r chi.Router) {
			r.Get("/", deps.Profile.GetPerson)
			r.Post("/", deps.Profile.CreatePerson)
			r.Put("/", deps.Profile.EditPerson)
			r.Patch("/", deps.Profile.EditPersonPartial)
			r.Delete("/", deps.Profile.DeletePerson)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", deps.Order.CreateOrder)
			r.Get("/", deps.Order.ListOrders)
			r.Get("/{order_id}", deps.Order.GetOrder)
			r.Get("/{order_id}/complex", deps.Order.GetOrderComplex)
			r.Patch("/{order_id}/status", deps.Order.UpdateStatus)
		})

		r.Route("/tools", func(r chi.Router) {
			r.Get("/", deps.UserTools.GetTools)
			r.Post("/{list}/{product_id}", deps.UserTools.AddToList)
			r.Delete("/{list}/{product_id}", deps.UserTools.RemoveFromList)
		})
	})

	return r
}
