package inspect

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type stubCatalog struct {
	products map[int64]*domain.Product
	users    map[int64]bool
	brands   map[int64]bool
	rubrics  map[int64]bool
}

func (s *stubCatalog) Get(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.NotFound("product not found")
	}
	return p, nil
}

func (s *stubCatalog) UserExists(_ context.Context, id int64) (bool, error) {
	return s.users[id], nil
}

func (s *stubCatalog) BrandExists(_ context.Context, id int64) (bool, error) {
	return s.brands[id], nil
}

func (s *stubCatalog) RubricsExist(_ context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if !s.rubrics[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func TestRun_CollectsFoundValues(t *testing.T) {
	catalog := &stubCatalog{
		products: map[int64]*domain.Product{
			1: {ID: 1, Name: "mug", Price: decimal.RequireFromString("9.99")},
		},
		users: map[int64]bool{5: true},
	}
	i := NewInspector(catalog)

	found, err := Run(context.Background(), i.ProductExists(1), i.UserExists(5))
	require.NoError(t, err)

	p := found.Product("product")
	require.NotNil(t, p)
	assert.Equal(t, "mug", p.Name)
}

func TestRun_FirstFailureWins(t *testing.T) {
	catalog := &stubCatalog{users: map[int64]bool{}}
	i := NewInspector(catalog)

	calls := 0
	counting := Check(func(context.Context) (string, any, error) {
		calls++
		return "", nil, nil
	})

	_, err := Run(context.Background(), i.UserExists(1), counting)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.Equal(t, 0, calls, "checks after a failure must not run")
}

func TestRun_NoChecks(t *testing.T) {
	found, err := Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBrandExists(t *testing.T) {
	i := NewInspector(&stubCatalog{brands: map[int64]bool{3: true}})

	_, err := Run(context.Background(), i.BrandExists(3))
	assert.NoError(t, err)

	_, err = Run(context.Background(), i.BrandExists(4))
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestRubricsExist_ReportsMissing(t *testing.T) {
	i := NewInspector(&stubCatalog{rubrics: map[int64]bool{1: true, 2: true}})

	_, err := Run(context.Background(), i.RubricsExist([]int64{1, 2}))
	assert.NoError(t, err)

	_, err = Run(context.Background(), i.RubricsExist([]int64{1, 9}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "9")
}

func TestFound_ProductMissingKey(t *testing.T) {
	assert.Nil(t, Found{}.Product("product"))
}
