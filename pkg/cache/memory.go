package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/btree"
)

// MemoryCache keeps entries in memory. When full, the entry that expires
// soonest is evicted first.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	expiry   *btree.BTreeG[expiryKey]
	maxItems int
	now      func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// expiryKey orders entries by expiry, then key. Entries that never expire
// sort last.
type expiryKey struct {
	at  int64
	key string
}

func expiryLess(a, b expiryKey) bool {
	if a.at != b.at {
		return a.at < b.at
	}
	return a.key < b.key
}

// NewMemoryCache creates a cache holding at most maxItems entries. A
// non-positive maxItems means no limit.
func NewMemoryCache(maxItems int) *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		expiry:   btree.NewBTreeG[expiryKey](expiryLess),
		maxItems: maxItems,
		now:      time.Now,
	}
}

func (c *MemoryCache) keyOf(key string, e memoryEntry) expiryKey {
	if e.expires.IsZero() {
		return expiryKey{at: 1<<63 - 1, key: key}
	}
	return expiryKey{at: e.expires.UnixNano(), key: key}
}

// Get returns a copy of the data under key. Expired entries are dropped.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.remove(key, e)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[key]; ok {
		c.remove(key, old)
	}
	c.evictExpired()

	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	for c.maxItems > 0 && len(c.entries) >= c.maxItems {
		first, ok := c.expiry.Min()
		if !ok {
			break
		}
		c.remove(first.key, c.entries[first.key])
	}
	c.entries[key] = e
	c.expiry.Set(c.keyOf(key, e))
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.remove(key, e)
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not
// yet dropped.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	c.expiry.Clear()
	return nil
}

func (c *MemoryCache) remove(key string, e memoryEntry) {
	delete(c.entries, key)
	c.expiry.Delete(c.keyOf(key, e))
}

func (c *MemoryCache) evictExpired() {
	now := c.now().UnixNano()
	for {
		first, ok := c.expiry.Min()
		if !ok || first.at > now {
			return
		}
		c.remove(first.key, c.entries[first.key])
	}
}

var _ Cache = (*MemoryCache)(nil)
