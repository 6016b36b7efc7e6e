package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTTL applies when Set is called without a TTL
const DefaultTTL = 10 * time.Minute

// MemoryCache is an in-memory cache bounded by entry count. When full, the
// oldest entry is evicted.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]*cacheItem
	maxEntries int
	stats      CacheStats
	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

type cacheItem struct {
	value    []byte
	expiry   time.Time
	storedAt time.Time
}

// NewMemoryCache creates a cache holding at most maxEntries values (0 means unbounded)
// and sweeping expired entries every cleanupInterval
func NewMemoryCache(maxEntries int, cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	mc := &MemoryCache{
		items:      make(map[string]*cacheItem),
		maxEntries: maxEntries,
		stopCh:     make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.cleanupExpired(cleanupInterval)

	return mc
}

// Get retrieves a value from the cache
func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&mc.stats.Misses, 1)
		return nil, false
	}

	if time.Now().After(item.expiry) {
		_ = mc.Delete(ctx, key)
		atomic.AddInt64(&mc.stats.Misses, 1)
		return nil, false
	}

	atomic.AddInt64(&mc.stats.Hits, 1)
	return item.value, true
}

// Set stores a value in the cache with a TTL
func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	item := &cacheItem{
		value:    value,
		expiry:   now.Add(ttl),
		storedAt: now,
	}

	mc.mu.Lock()
	if _, exists := mc.items[key]; !exists {
		mc.makeRoomLocked(now)
	}
	mc.items[key] = item
	mc.mu.Unlock()

	atomic.AddInt64(&mc.stats.Sets, 1)
	return nil
}

// Delete removes a value from the cache
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	if _, exists := mc.items[key]; exists {
		delete(mc.items, key)
		atomic.AddInt64(&mc.stats.Deletes, 1)
	}
	mc.mu.Unlock()
	return nil
}

// Clear removes all values from the cache
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	mc.items = make(map[string]*cacheItem)
	mc.mu.Unlock()
	return nil
}

// Has checks if a key exists in the cache
func (mc *MemoryCache) Has(ctx context.Context, key string) bool {
	mc.mu.RLock()
	item, exists := mc.items[key]
	mc.mu.RUnlock()

	return exists && time.Now().Before(item.expiry)
}

// Stats returns cache statistics
func (mc *MemoryCache) Stats() CacheStats {
	mc.mu.RLock()
	entries := int64(len(mc.items))
	mc.mu.RUnlock()

	return CacheStats{
		Hits:       atomic.LoadInt64(&mc.stats.Hits),
		Misses:     atomic.LoadInt64(&mc.stats.Misses),
		Sets:       atomic.LoadInt64(&mc.stats.Sets),
		Deletes:    atomic.LoadInt64(&mc.stats.Deletes),
		Evictions:  atomic.LoadInt64(&mc.stats.Evictions),
		Entries:    entries,
		MaxEntries: int64(mc.maxEntries),
	}
}

// Stop gracefully shuts down the cache. It is safe to call more than once.
func (mc *MemoryCache) Stop() {
	mc.stopOnce.Do(func() { close(mc.stopCh) })
	mc.wg.Wait()
}

// cleanupExpired removes expired items periodically
func (mc *MemoryCache) cleanupExpired(interval time.Duration) {
	defer mc.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			mc.removeExpiredLocked(time.Now())
			mc.mu.Unlock()
		case <-mc.stopCh:
			return
		}
	}
}

// removeExpiredLocked removes all expired items; mc.mu must be held
func (mc *MemoryCache) removeExpiredLocked(now time.Time) {
	for key, item := range mc.items {
		if now.After(item.expiry) {
			delete(mc.items, key)
			atomic.AddInt64(&mc.stats.Evictions, 1)
		}
	}
}

// makeRoomLocked frees one slot for a new key, dropping expired items first and
// then the oldest; mc.mu must be held
func (mc *MemoryCache) makeRoomLocked(now time.Time) {
	if mc.maxEntries <= 0 || len(mc.items) < mc.maxEntries {
		return
	}

	mc.removeExpiredLocked(now)

	for len(mc.items) >= mc.maxEntries {
		var oldestKey string
		var oldest time.Time
		found := false
		for key, item := range mc.items {
			if !found || item.storedAt.Before(oldest) {
				oldestKey, oldest, found = key, item.storedAt, true
			}
		}
		delete(mc.items, oldestKey)
		atomic.AddInt64(&mc.stats.Evictions, 1)
	}
}
