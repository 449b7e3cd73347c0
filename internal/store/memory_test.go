package store

import (
	"context"
	"sync"
	"testing"

	"consent-expiry/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGet_Set(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(metrics.NewRegistry())

	t.Run("set and get existing key", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "key1", "hello"))

		val, ok, err := store.Get(ctx, "key1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "hello", val)
	})

	t.Run("get non-existing key", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "key1", "again"))

		val, _, _ := store.Get(ctx, "key1")
		assert.Equal(t, "again", val)
		assert.False(t, store.Entries()["key1"].UpdatedAt.IsZero())
	})
}

func TestMemoryRemove(t *testing.T) {
	ctx := context.Background()
	reg := metrics.NewRegistry()
	store := NewMemory(reg)

	require.NoError(t, store.Set(ctx, "key1", "1"))
	assert.Equal(t, int64(1), reg.Get(metrics.PrefsKeys))

	require.NoError(t, store.Remove(ctx, "key1"))
	require.NoError(t, store.Remove(ctx, "key1"), "removing a missing key is a no-op")

	_, ok, err := store.Get(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), reg.Get(metrics.PrefsKeys))
}

func TestMemoryConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(metrics.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "key", "value")
		}()
	}
	wg.Wait()

	_, ok, _ := store.Get(ctx, "key")
	assert.True(t, ok)
}

func TestMemoryList_IsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(metrics.NewRegistry())

	require.NoError(t, store.Set(ctx, "a", "1"))
	require.NoError(t, store.Set(ctx, "b", "2"))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, list)

	list["a"] = "mutated"
	val, _, _ := store.Get(ctx, "a")
	assert.Equal(t, "1", val)
}

func TestMemoryBackend_NamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	reg := metrics.NewRegistry()
	backend := NewMemoryBackend(reg)

	require.NoError(t, backend.Namespace("device-a").Set(ctx, "k", "a"))
	require.NoError(t, backend.Namespace("device-b").Set(ctx, "k", "b"))

	val, ok, err := backend.Namespace("device-a").Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", val)

	_, ok, err = backend.Namespace("").Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "empty namespace maps to the default namespace")

	assert.Equal(t, int64(2), reg.Get(metrics.PrefsSetsTotal))
	assert.Equal(t, int64(2), reg.Get(metrics.PrefsGetsTotal))
	assert.Equal(t, int64(1), reg.Get(metrics.PrefsMissesTotal))
	assert.NoError(t, backend.Close())
}
