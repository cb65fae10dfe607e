package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("claims a new key", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "checkout:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("refuses a held key", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "checkout:b", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Reserve(ctx, "checkout:b", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("claims an expired key again", func(t *testing.T) {
		ok, err := store.Reserve(ctx, "checkout:c", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, err = store.Reserve(ctx, "checkout:c", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_CompleteAndResult(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, found, err := store.Result(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := store.Reserve(ctx, "checkout:d", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	result, found, err := store.Result(ctx, "checkout:d")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, result, "in-flight reservation has no result")

	require.NoError(t, store.Complete(ctx, "checkout:d", "order-1", time.Hour))

	result, found, err = store.Result(ctx, "checkout:d")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "order-1", result)

	ok, err = store.Reserve(ctx, "checkout:d", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "completed key stays claimed")
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, err := store.Reserve(ctx, "checkout:e", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "checkout:e"))

	_, found, err := store.Result(ctx, "checkout:e")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := store.Reserve(ctx, "checkout:e", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "released key can be claimed again")

	assert.NoError(t, store.Release(ctx, "never-reserved"))
}

func TestInMemoryIdempotencyStore_ConcurrentReserve(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Reserve(ctx, "checkout:race", time.Hour)
			if err == nil && ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claimed, "exactly one caller wins the key")
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, _ = store.Reserve(ctx, "short", 5*time.Millisecond)
	_, _ = store.Reserve(ctx, "long", time.Hour)
	assert.Equal(t, 2, store.Size())

	time.Sleep(10 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
