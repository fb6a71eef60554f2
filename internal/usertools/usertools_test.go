package usertools

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/domain"
	"storefront/internal/identity"
	"storefront/internal/keyedmutex"
)

func TestList_Valid(t *testing.T) {
	assert.True(t, ListWishlist.Valid())
	assert.True(t, ListComparison.Valid())
	assert.True(t, ListRecentlyViewed.Valid())
	assert.False(t, List("shopping").Valid())
}

func TestGetOrCreate_SessionForbidden(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil, keyedmutex.New())

	_, err := svc.GetOrCreate(context.Background(), identity.Identity{})
	assert.True(t, domain.IsKind(err, domain.KindForbidden))
}

func TestAppendUnique(t *testing.T) {
	assert.Equal(t, []int64{1, 2}, appendUnique([]int64{1}, 2))
	assert.Equal(t, []int64{1, 2}, appendUnique([]int64{1, 2}, 2))
	assert.Equal(t, []int64{5}, appendUnique(nil, 5))
}

func TestPushFront(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, pushFront([]int64{1, 2}, 3, 20))

	// revisiting moves the product to the front instead of duplicating
	assert.Equal(t, []int64{2, 1, 3}, pushFront([]int64{1, 2, 3}, 2, 20))
}

func TestPushFront_Cap(t *testing.T) {
	list := []int64{}
	for i := int64(1); i <= 25; i++ {
		list = pushFront(list, i, recentlyViewedCap)
	}
	assert.Len(t, list, recentlyViewedCap)
	assert.Equal(t, int64(25), list[0])
	assert.Equal(t, int64(6), list[recentlyViewedCap-1])
}

func TestRemove(t *testing.T) {
	assert.Equal(t, []int64{1, 3}, remove([]int64{1, 2, 3}, 2))
	assert.Equal(t, []int64{1, 2}, remove([]int64{1, 2}, 9))
	assert.Empty(t, remove([]int64{7}, 7))
}
