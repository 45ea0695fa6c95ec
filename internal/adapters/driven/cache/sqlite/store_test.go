package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SetGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("payload"), time.Minute))

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)
}

func TestStore_Set_Overwrites(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("old"), time.Minute))
	require.NoError(t, store.Set(ctx, "k1", []byte("new"), time.Minute))

	val, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), val)
}

func TestStore_Get_Miss(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestStore_Get_Expired(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	// Already-expired TTL simulates the clock passing the deadline.
	require.NoError(t, store.Set(ctx, "k1", []byte("payload"), -time.Second))

	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestStore_DeleteAndClear(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "k2", []byte("b"), time.Minute))

	require.NoError(t, store.Delete(ctx, "k1"))
	_, err := store.Get(ctx, "k1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Get(ctx, "k2")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	assert.NoError(t, store.Delete(ctx, "absent"))
}

func TestStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k1", []byte("survives"), time.Hour))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	val, err := reopened.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("survives"), val)
}
