package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/backend/internal/models"
)

func TestPageCacheLifecycle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewPageCache(20 * time.Second)
	c.now = func() time.Time { return now }

	// Absent entry.
	_, ok := c.Get(1)
	require.False(t, ok)
	require.True(t, c.IsExpired(1))

	snapshot := Page{Items: []models.Post{{ID: 1, Text: "cached"}}, Number: 1, Total: 1, Pages: 1}
	c.Populate(1, snapshot)

	// Populated, fresh.
	got, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, snapshot, got)
	require.False(t, c.IsExpired(1))

	// Still fresh just before the TTL boundary.
	now = now.Add(20*time.Second - time.Nanosecond)
	_, ok = c.Get(1)
	require.True(t, ok)

	// TTL elapsed: stale is treated as absent.
	now = now.Add(time.Nanosecond)
	_, ok = c.Get(1)
	require.False(t, ok)
	require.True(t, c.IsExpired(1))

	// Repopulating restarts the window.
	c.Populate(1, snapshot)
	_, ok = c.Get(1)
	require.True(t, ok)
}

func TestPageCacheClear(t *testing.T) {
	c := NewPageCache(time.Hour)
	c.Populate(1, Page{Number: 1})
	c.Populate(2, Page{Number: 2})

	c.Clear()

	_, ok := c.Get(1)
	require.False(t, ok)
	_, ok = c.Get(2)
	require.False(t, ok)
}

func TestPageCacheDefaultTTL(t *testing.T) {
	c := NewPageCache(0)
	require.Equal(t, DefaultCacheTTL, c.ttl)
}

func TestPageCacheKeyedByPageNumber(t *testing.T) {
	c := NewPageCache(time.Hour)
	c.Populate(1, Page{Number: 1, Total: 11})
	c.Populate(2, Page{Number: 2, Total: 11})

	got, ok := c.Get(2)
	require.True(t, ok)
	require.Equal(t, 2, got.Number)
}

func TestPageCacheConcurrentAccess(t *testing.T) {
	c := NewPageCache(time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if page, ok := c.Get(1); ok {
					// A reader sees a whole snapshot or nothing.
					assert.Len(t, page.Items, 3)
				}
				if n%2 == 0 {
					c.Populate(1, Page{Items: []models.Post{{ID: 1}, {ID: 2}, {ID: 3}}, Number: 1, Total: 3, Pages: 1})
				}
				if j%50 == 0 {
					c.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
}

// TestListingCacheStaleness covers the observed bounded-staleness contract:
// a post created while the listing is cached stays invisible until an
// explicit clear (or expiry) forces a recompute.
func TestListingCacheStaleness(t *testing.T) {
	s := newTestStore(t)
	c := NewPageCache(time.Hour)
	author := createUser(t, s, "leo")
	createPost(t, s, author, nil, "first", base)

	serve := func() Page {
		if snapshot, ok := c.Get(1); ok {
			return snapshot
		}
		p, err := s.AllPosts(1)
		require.NoError(t, err)
		c.Populate(1, p)
		return p
	}

	require.Len(t, serve().Items, 1)

	createPost(t, s, author, nil, "second", base.Add(time.Minute))

	// Before the TTL elapses the cached snapshot wins.
	require.Len(t, serve().Items, 1)

	// An explicit clear makes the next request recompute immediately.
	c.Clear()
	require.Len(t, serve().Items, 2)
}
