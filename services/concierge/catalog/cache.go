// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

// =============================================================================
// QueryCache — TTL-Bounded Catalog Query Memoization
// =============================================================================
//
// Catalog scans are cheap but not free, and the same filter set recurs
// constantly across concurrent sessions (catalog data is not session
// specific). This cache memoizes store fetches for a short window.
//
// Design choices:
//
//	1. TTL-only invalidation: catalog records change rarely and a stale
//	   window of one minute is acceptable for recommendations. There is no
//	   explicit invalidation API — an entry older than the TTL is discarded
//	   on read, never served.
//
//	2. Canonical filter keys: the key is built from the sorted non-empty
//	   filter fields, so {city:"X"} and {city:"X", hotel_type:""} collide
//	   deterministically regardless of map iteration order.
//
//	3. singleflight load dedup: a miss under concurrency collapses into a
//	   single loader call per key. Under a race a small bounded number of
//	   redundant loads is tolerated; a partial entry is never visible.
//
//	4. Loader failures are never cached: an error propagates to the caller
//	   and leaves no placeholder behind, so the next call retries the loader.

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is the maximum age at which a cached record list may still
// be served. Mirrors the 60-second window the catalog has always used.
const DefaultCacheTTL = 60 * time.Second

// cacheEntry is one memoized record list plus its capture timestamp.
type cacheEntry[T any] struct {
	records    []T
	capturedAt time.Time
}

// QueryCache memoizes catalog fetches keyed by (collection, filter set).
//
// # Thread Safety
//
// Safe for concurrent use. The map is guarded by a RWMutex; concurrent
// loads for the same key are collapsed by a singleflight group.
type QueryCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	group   singleflight.Group
	ttl     time.Duration
	now     func() time.Time // injectable for tests
}

// NewQueryCache creates a QueryCache with the given TTL. Pass 0 to use
// DefaultCacheTTL.
func NewQueryCache[T any](ttl time.Duration) *QueryCache[T] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &QueryCache[T]{
		entries: make(map[string]cacheEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetOrLoad returns the cached record list for the canonicalized filter set,
// invoking loader on a miss or a stale entry.
//
// # Description
//
// On a hit within the TTL the cached list is returned without invoking the
// loader. On a miss the loader runs synchronously (deduplicated across
// concurrent callers via singleflight), its result is stored with a fresh
// timestamp, and returned. A loader error propagates to every waiting caller
// and populates nothing.
//
// The returned slice is shared between callers and must be treated as
// read-only.
//
// # Inputs
//
//   - collection: Collection identifier ("clinics", "hotels").
//   - filters: Filter fields; empty values are ignored for keying.
//   - loader: Fetch function invoked on miss. Must not be nil.
//
// # Outputs
//
//   - []T: The cached or freshly loaded records. May be empty, never partial.
//   - error: The loader's error, unmodified. Nil on a cache hit.
func (c *QueryCache[T]) GetOrLoad(collection string, filters map[string]string, loader func() ([]T, error)) ([]T, error) {
	key := CacheKey(collection, filters)

	if records, ok := c.lookup(key); ok {
		recordCacheHit(collection)
		return records, nil
	}
	recordCacheMiss(collection)

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have populated the
		// entry between our lookup and the group admission.
		if records, ok := c.lookup(key); ok {
			return records, nil
		}
		records, err := loader()
		if err != nil {
			return nil, err
		}
		c.store(key, records)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// lookup returns the entry for key if it exists and is younger than the TTL.
// A stale entry is deleted read-before-use so it can never be served.
func (c *QueryCache[T]) lookup(key string) ([]T, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.capturedAt) >= c.ttl {
		c.mu.Lock()
		// Another goroutine may have refreshed the entry; only drop it if it
		// is still the stale one we saw.
		if current, stillThere := c.entries[key]; stillThere && current.capturedAt.Equal(entry.capturedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.records, true
}

// store writes a fresh entry for key.
func (c *QueryCache[T]) store(key string, records []T) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[T]{records: records, capturedAt: c.now()}
	c.mu.Unlock()
}

// Len returns the number of live entries (including not-yet-expired ones).
func (c *QueryCache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CacheKey builds the canonical, order-independent cache key for a filter
// set. Empty filter values are dropped, the remaining fields are sorted by
// name, so equivalent filter sets always collide.
func CacheKey(collection string, filters map[string]string) string {
	names := make([]string, 0, len(filters))
	for name, value := range filters {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(collection)
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%s", name, filters[name])
	}
	return b.String()
}
