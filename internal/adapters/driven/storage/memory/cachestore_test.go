package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

func TestCacheStore_SetGet(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value"), time.Minute))
	value, err := store.Get(ctx, "key")

	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)
}

func TestCacheStore_Miss(t *testing.T) {
	store := NewCacheStore()

	_, err := store.Get(context.Background(), "absent")

	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCacheStore_Expiry(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value"), -time.Second))
	_, err := store.Get(ctx, "key")

	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestCacheStore_Overwrite(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("old"), time.Minute))
	require.NoError(t, store.Set(ctx, "key", []byte("new"), time.Minute))

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), value)
}

func TestCacheStore_ValueCopied(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, store.Set(ctx, "key", buf, time.Minute))
	buf[0] = 'X'

	value, err := store.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), value)
}

func TestCacheStore_DeleteAndClear(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, store.Delete(ctx, "a"))
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}
