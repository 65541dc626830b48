// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package memory

import (
	"context"
	"sync"
	"time"

	"code.hybscloud.com/eff"
)

// Cache is an in-memory TTL cache implementing eff.CacheStore.
// Entries expire lazily: an expired entry is dropped on the Get that
// observes it and reported as eff.MissExpired, so callers can tell
// eviction from expiry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get implements eff.CacheStore.
func (c *Cache) Get(_ context.Context, key string) ([]byte, time.Duration, eff.MissReason, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[key]
	if !ok {
		return nil, 0, eff.MissAbsent, nil
	}
	remaining := time.Until(ent.expiresAt)
	if remaining <= 0 {
		delete(c.entries, key)
		return nil, 0, eff.MissExpired, nil
	}
	return ent.value, remaining, "", nil
}

// Put implements eff.CacheStore.
func (c *Cache) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Len reports the number of entries, counting expired but not yet
// collected ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
