package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestCreate_Duplicate(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Data{ID: "s1"}))

	err := store.Create(ctx, &Data{ID: "s1"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAlreadyExists))
}

func TestGet_Missing(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestGet_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	uid := int64(7)
	in := &Data{
		ID:        "s1",
		UserID:    &uid,
		UserEmail: "user@example.com",
		Data:      map[string]json.RawMessage{"greeting": json.RawMessage(`"hi"`)},
	}
	require.NoError(t, store.Create(ctx, in))

	out, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	require.NotNil(t, out.UserID)
	assert.Equal(t, int64(7), *out.UserID)
	assert.Equal(t, "user@example.com", out.UserEmail)
	assert.JSONEq(t, `"hi"`, string(out.Data["greeting"]))
}

func TestUpdate_MergesPatch(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Data{
		ID:   "s1",
		Data: map[string]json.RawMessage{"keep": json.RawMessage(`1`)},
	}))

	out, err := store.Update(ctx, "s1", map[string]json.RawMessage{
		"new": json.RawMessage(`2`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(out.Data["keep"]))
	assert.JSONEq(t, `2`, string(out.Data["new"]))

	// merge persists
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, again.Data, 2)
}

func TestUpdate_MissingSession(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Update(context.Background(), "nope", map[string]json.RawMessage{
		"k": json.RawMessage(`1`),
	})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestSetKey_GetKey(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Data{ID: "s1"}))
	require.NoError(t, store.SetKey(ctx, "s1", DefaultCartKey, map[string]int{"a": 1}))

	var out map[string]int
	require.NoError(t, store.GetKey(ctx, "s1", DefaultCartKey, &out))
	assert.Equal(t, 1, out["a"])

	err := store.GetKey(ctx, "s1", DefaultPersonKey, &out)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDeleteKey(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Data{ID: "s1"}))
	require.NoError(t, store.SetKey(ctx, "s1", DefaultCartKey, "v"))
	require.NoError(t, store.DeleteKey(ctx, "s1", DefaultCartKey))

	var out string
	err := store.GetKey(ctx, "s1", DefaultCartKey, &out)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDelete_ThenGone(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Data{ID: "s1"}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestList(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Data{ID: "a"}))
	require.NoError(t, store.Create(ctx, &Data{ID: "b"}))

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreate_ExpiresWithTTL(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Data{ID: "s1"}))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "s1")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
