package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(10, time.Minute)
	defer mc.Stop()

	_, ok := mc.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Minute))
	v, ok := mc.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	assert.True(t, mc.Has(ctx, "a"))

	require.NoError(t, mc.Delete(ctx, "a"))
	assert.False(t, mc.Has(ctx, "a"))

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Deletes)
	assert.Equal(t, int64(0), stats.Entries)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(10, time.Minute)
	defer mc.Stop()

	require.NoError(t, mc.Set(ctx, "short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	assert.False(t, mc.Has(ctx, "short"))
	_, ok := mc.Get(ctx, "short")
	assert.False(t, ok)
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(2, time.Minute)
	defer mc.Stop()

	require.NoError(t, mc.Set(ctx, "first", []byte("1"), time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "second", []byte("2"), time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "third", []byte("3"), time.Minute))

	assert.False(t, mc.Has(ctx, "first"))
	assert.True(t, mc.Has(ctx, "second"))
	assert.True(t, mc.Has(ctx, "third"))

	// Replacing an existing key does not evict
	require.NoError(t, mc.Set(ctx, "third", []byte("33"), time.Minute))
	assert.True(t, mc.Has(ctx, "second"))

	stats := mc.Stats()
	assert.Equal(t, int64(2), stats.Entries)
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, int64(2), stats.MaxEntries)
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(0, time.Minute)
	defer mc.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, mc.Set(ctx, fmt.Sprint(i), []byte("v"), 0))
	}
	require.NoError(t, mc.Clear(ctx))
	assert.Equal(t, int64(0), mc.Stats().Entries)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(50, 5*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", i, j%20)
				_ = mc.Set(ctx, key, []byte("v"), time.Second)
				mc.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, mc.Stats().Entries, int64(50))
	mc.Stop()
	mc.Stop()
}
