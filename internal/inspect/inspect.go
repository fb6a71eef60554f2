// Package inspect runs declared existence checks in order, stopping at the
// first failure. Successful checks hand their fetched entity back through
// Found so the caller never fetches twice.
package inspect

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// Check verifies one precondition and, on success, contributes a named value.
type Check func(ctx context.Context) (key string, val any, err error)

// Found accumulates the values successful checks produced.
type Found map[string]any

// Product returns the product a ProductExists check fetched.
func (f Found) Product(key string) *domain.Product {
	p, _ := f[key].(*domain.Product)
	return p
}

// Run drains the checks in FIFO order; the first failing check wins.
func Run(ctx context.Context, checks ...Check) (Found, error) {
	found := make(Found, len(checks))
	for _, check := range checks {
		key, val, err := check(ctx)
		if err != nil {
			return nil, err
		}
		if key != "" {
			found[key] = val
		}
	}
	return found, nil
}

// Catalog is the probe surface the inspectors need.
type Catalog interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	BrandExists(ctx context.Context, id int64) (bool, error)
	RubricsExist(ctx context.Context, ids []int64) ([]int64, error)
}

// Inspector builds checks over the catalog probes. Shared by the cart, order,
// post, vote and sale-info creation paths.
type Inspector struct {
	catalog Catalog
}

func NewInspector(c Catalog) *Inspector {
	return &Inspector{catalog: c}
}

// ProductExists fetches the product so callers can reuse it under "product".
func (i *Inspector) ProductExists(id int64) Check {
	return func(ctx context.Context) (string, any, error) {
		p, err := i.catalog.Get(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return "product", p, nil
	}
}

func (i *Inspector) UserExists(id int64) Check {
	return func(ctx context.Context) (string, any, error) {
		ok, err := i.catalog.UserExists(ctx, id)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, domain.NotFound(fmt.Sprintf("user with id %d not found", id))
		}
		return "", nil, nil
	}
}

func (i *Inspector) BrandExists(id int64) Check {
	return func(ctx context.Context) (string, any, error) {
		ok, err := i.catalog.BrandExists(ctx, id)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, domain.NotFound(fmt.Sprintf("brand with id %d not found", id))
		}
		return "", nil, nil
	}
}

func (i *Inspector) RubricsExist(ids []int64) Check {
	return func(ctx context.Context) (string, any, error) {
		missing, err := i.catalog.RubricsExist(ctx, ids)
		if err != nil {
			return "", nil, err
		}
		if len(missing) > 0 {
			return "", nil, domain.NotFound(fmt.Sprintf("rubrics with ids %v not found", missing))
		}
		return "", nil, nil
	}
}
