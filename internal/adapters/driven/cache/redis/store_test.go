package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewStore(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestStore_SetGet(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("payload"), time.Minute))

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)
}

func TestStore_Get_Miss(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestStore_Get_Expired(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("payload"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestStore_Delete(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("payload"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k1"))

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "absent"))
}

func TestStore_Clear_OnlyOwnPrefix(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "k2", []byte("b"), time.Minute))
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	_, err = store.Get(ctx, "k2")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	kept, err := mr.Get("other:key")
	require.NoError(t, err)
	assert.Equal(t, "keep", kept)
}

func TestNewStore_RequiresAddr(t *testing.T) {
	_, err := NewStore(context.Background(), Config{})
	assert.Error(t, err)
}
