// Package checkout turns the live cart, person and address of an identity
// into an immutable order snapshot.
package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/order"
	"storefront/internal/profile"
)

// Hook runs after an order row is committed. Failures are logged and never
// undo the order.
type Hook func(ctx context.Context, o *domain.Order) error

type CreateOrderInput struct {
	MoveTo            domain.MoveTo
	PaymentConditions domain.PaymentConditions
	Phonenumber       string
}

// Sources are the per-identity stores the caller resolved for this request.
type Sources struct {
	Cart    cart.Store
	Person  profile.PersonStore
	Address profile.AddressStore
}

type Service struct {
	log      *slog.Logger
	carts    *cart.Service
	profiles *profile.Service
	orders   order.Repository
	hooks    []Hook
}

func NewService(log *slog.Logger, carts *cart.Service, profiles *profile.Service, orders order.Repository, hooks ...Hook) *Service {
	return &Service{
		log:      log,
		carts:    carts,
		profiles: profiles,
		orders:   orders,
		hooks:    hooks,
	}
}

// CreateOrder places an order from the identity's live cart, person and
// address. Resolution failures propagate in that order; the first one wins.
// The cart is left untouched: clearing it is the caller's explicit move.
func (s *Service) CreateOrder(ctx context.Context, userID *int64, src Sources, in CreateOrderInput) (*domain.Order, error) {
	if !in.MoveTo.Valid() {
		return nil, domain.ValidationFailed("unknown move_to value")
	}
	if !in.PaymentConditions.Valid() {
		return nil, domain.ValidationFailed("unknown payment_conditions value")
	}

	c, cartErr := s.carts.Get(ctx, src.Cart)
	p, personErr := s.profiles.GetPerson(ctx, src.Person)
	a, addressErr := s.profiles.GetAddress(ctx, src.Address)
	if cartErr != nil {
		return nil, cartErr
	}
	if personErr != nil {
		return nil, personErr
	}
	if addressErr != nil {
		return nil, addressErr
	}

	if len(c.Items) == 0 {
		return nil, domain.Forbidden("Cart is empty. Impossible to create order")
	}

	lines := make([]domain.OrderLine, 0, len(c.Items))
	total := decimal.Zero
	for _, item := range c.Items {
		lines = append(lines, domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	phonenumber := in.Phonenumber
	if phonenumber == "" {
		phonenumber = a.Phonenumber
	}

	o := &domain.Order{
		ID:                uuid.New(),
		UserID:            userID,
		Phonenumber:       phonenumber,
		TotalCost:         total.Round(2),
		OrderContent:      lines,
		PersonContent:     p.Snapshot(),
		AddressContent:    a.Snapshot(),
		TimePlaced:        time.Now().UTC(),
		MoveTo:            in.MoveTo,
		PaymentConditions: in.PaymentConditions,
		Status:            domain.OrderStatusOrdered,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, domain.DatabaseError("failed to place order").WithCause(err)
	}
	s.log.InfoContext(ctx, "order placed",
		"order_id", o.ID, "total_cost", o.TotalCost, "lines", len(o.OrderContent))

	for _, hook := range s.hooks {
		if err := hook(ctx, o); err != nil {
			s.log.ErrorContext(ctx, "post-checkout hook failed", "order_id", o.ID, "err", err)
		}
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, f order.Filter, limit, offset int) ([]*domain.Order, error) {
	return s.orders.List(ctx, f, limit, offset)
}

func (s *Service) GetOne(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.GetOne(ctx, id)
}

func (s *Service) GetOneComplex(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.GetOneComplex(ctx, id)
}

// UpdateStatus is the superuser edit path to the delivered and cancelled
// terminal states.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	return s.orders.UpdateStatus(ctx, id, status)
}
