package cart

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"storefront/internal/domain"
	"storefront/internal/inspect"
	"storefront/internal/keyedmutex"
)

// ChangeQuantity accepts exactly one of Delta or Absolute.
type QuantityChange struct {
	Delta    *int
	Absolute *int
}

// Service implements the cart operations over whichever Store the identity
// resolver bound. Mutations are serialized per identity.
type Service struct {
	log       *slog.Logger
	inspector *inspect.Inspector
	locks     *keyedmutex.KeyedMutex
	sfg       singleflight.Group
}

func NewService(log *slog.Logger, inspector *inspect.Inspector, locks *keyedmutex.KeyedMutex) *Service {
	return &Service{
		log:       log,
		inspector: inspector,
		locks:     locks,
	}
}

// Get reads the shallow cart projection. Concurrent reads for the same
// identity collapse into one store round-trip; every caller gets its own
// copy of the shared result.
func (s *Service) Get(ctx context.Context, st Store) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(st.Key(), func() (interface{}, error) {
		return st.Get(ctx)
	})
	if err != nil {
		return nil, err
	}
	cart := *v.(*domain.Cart)
	return &cart, nil
}

// GetComplex reads the cart with product info joined onto every item.
func (s *Service) GetComplex(ctx context.Context, st Store) (*domain.Cart, error) {
	return st.GetComplex(ctx)
}

// GetOrCreate returns the identity's cart, creating an empty one on first
// access. Calling it twice yields the same cart.
func (s *Service) GetOrCreate(ctx context.Context, st Store) (*domain.Cart, error) {
	unlock := s.locks.Lock(st.Key())
	defer unlock()
	return s.getOrCreate(ctx, st)
}

func (s *Service) getOrCreate(ctx context.Context, st Store) (*domain.Cart, error) {
	cart, err := st.Get(ctx)
	if err == nil {
		return cart, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	cart, err = st.Create(ctx)
	if domain.IsKind(err, domain.KindAlreadyExists) {
		// lost a create race with another request for the same identity
		return st.Get(ctx)
	}
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "cart created", "identity", st.Key())
	return cart, nil
}

// GetOrCreateItem returns the line for productID, adding it with the given
// quantity and the product's current price when absent.
func (s *Service) GetOrCreateItem(ctx context.Context, st Store, productID int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, domain.ValidationFailed("quantity must be at least 1")
	}

	unlock := s.locks.Lock(st.Key())
	defer unlock()

	cart, err := s.getOrCreate(ctx, st)
	if err != nil {
		return nil, err
	}
	if item := cart.Item(productID); item != nil {
		return item, nil
	}

	found, err := inspect.Run(ctx, s.inspector.ProductExists(productID))
	if err != nil {
		return nil, err
	}
	product := found.Product("product")
	if !product.Available || product.Quantity < quantity {
		return nil, domain.InsufficientStock(
			fmt.Sprintf("product %d is not available in the requested quantity", productID))
	}

	item := domain.CartItem{
		ProductID: productID,
		Price:     product.Price,
		Quantity:  quantity,
		Product:   product.Short(),
	}
	if cart.UserID != nil {
		item.CartID = cart.UserID
		item.Product = nil // persisted items re-join product data on read
	}

	if err := st.InsertItem(ctx, item); err != nil {
		if domain.IsKind(err, domain.KindAlreadyExists) {
			cart, gerr := st.Get(ctx)
			if gerr != nil {
				return nil, gerr
			}
			if existing := cart.Item(productID); existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	s.log.InfoContext(ctx, "cart item added",
		"identity", st.Key(), "product_id", productID, "quantity", quantity)
	return &item, nil
}

// GetOneItem reads one line from the cart.
func (s *Service) GetOneItem(ctx context.Context, st Store, productID int64) (*domain.CartItem, error) {
	cart, err := st.Get(ctx)
	if err != nil {
		return nil, err
	}
	item := cart.Item(productID)
	if item == nil {
		return nil, domain.NotFound(fmt.Sprintf("product %d not found in cart", productID))
	}
	return item, nil
}

// ChangeQuantity applies a relative or absolute quantity change. The new
// quantity is clamped to the product's live stock; a result of zero or less
// deletes the line instead. The returned item is nil when the line was
// deleted.
func (s *Service) ChangeQuantity(ctx context.Context, st Store, productID int64, change QuantityChange) (*domain.CartItem, error) {
	if (change.Delta == nil) == (change.Absolute == nil) {
		return nil, domain.ValidationFailed("exactly one of delta or absolute is required")
	}

	unlock := s.locks.Lock(st.Key())
	defer unlock()

	cart, err := st.Get(ctx)
	if err != nil {
		return nil, err
	}
	item := cart.Item(productID)
	if item == nil {
		return nil, domain.NotFound(fmt.Sprintf("product %d not found in cart", productID))
	}

	quantity := 0
	if change.Delta != nil {
		quantity = item.Quantity + *change.Delta
	} else {
		quantity = *change.Absolute
	}

	if quantity <= 0 {
		if err := st.DeleteItem(ctx, productID); err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "cart item removed on zero quantity",
			"identity", st.Key(), "product_id", productID)
		return nil, nil
	}

	found, err := inspect.Run(ctx, s.inspector.ProductExists(productID))
	if err != nil {
		return nil, err
	}
	if stock := found.Product("product").Quantity; quantity > stock {
		quantity = stock
	}
	if quantity <= 0 {
		if err := st.DeleteItem(ctx, productID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := st.UpdateItemQuantity(ctx, productID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// DeleteItem removes one line from the cart.
func (s *Service) DeleteItem(ctx context.Context, st Store, productID int64) error {
	unlock := s.locks.Lock(st.Key())
	defer unlock()
	return st.DeleteItem(ctx, productID)
}

// Clear removes every line, keeping the cart itself.
func (s *Service) Clear(ctx context.Context, st Store) error {
	unlock := s.locks.Lock(st.Key())
	defer unlock()
	return st.Clear(ctx)
}

// Delete removes the cart entirely.
func (s *Service) Delete(ctx context.Context, st Store) error {
	unlock := s.locks.Lock(st.Key())
	defer unlock()
	return st.Delete(ctx)
}
