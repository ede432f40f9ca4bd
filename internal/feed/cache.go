package feed

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached listing page stays fresh.
const DefaultCacheTTL = 20 * time.Second

type cacheEntry struct {
	page     Page
	storedAt time.Time
}

// PageCache holds snapshots of the site-wide listing, keyed by page number,
// for a bounded time window. Staleness is accepted by design: a post created
// while a page is cached does not appear until the TTL elapses or the cache
// is cleared explicitly. Entries are replaced wholesale, never mutated, so a
// concurrent reader either sees the previous complete snapshot or the new
// one.
type PageCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[int]cacheEntry
	now     func() time.Time
}

func NewPageCache(ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PageCache{
		ttl:     ttl,
		entries: make(map[int]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached snapshot for a page number. An expired entry is
// treated as absent.
func (c *PageCache) Get(page int) (Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[page]
	if !ok || c.expired(entry) {
		return Page{}, false
	}
	return entry.page, true
}

// Populate stores a freshly computed snapshot, restarting its TTL.
func (c *PageCache) Populate(page int, p Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[page] = cacheEntry{page: p, storedAt: c.now()}
}

// Clear drops every cached snapshot; the next request recomputes from the
// store.
func (c *PageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]cacheEntry)
}

// IsExpired reports whether a page number has no fresh snapshot.
func (c *PageCache) IsExpired(page int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[page]
	return !ok || c.expired(entry)
}

func (c *PageCache) expired(entry cacheEntry) bool {
	return c.now().Sub(entry.storedAt) >= c.ttl
}
