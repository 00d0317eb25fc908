// Package querycache contains the default [domain.Cache] implementation: a
// unit-of-work scoped table mapping query fingerprints to buffered result
// sequences, with cross-invalidation on writes.
package querycache

import (
	"context"
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
	"github.com/vinicius-lino-figueiredo/docmap/pkg/ctxsync"
)

// entry buffers the results of one fingerprint. An entry with fullyLoaded
// unset is partial: a later fetch replays the buffer and extends it from the
// loader.
type entry struct {
	collection  string
	buffer      []map[string]any
	fullyLoaded bool
}

// QueryCache implements [domain.Cache]. Access to the table is serialized
// with a context-aware mutex; the loader, the only suspension point, runs
// outside the lock.
type QueryCache struct {
	mu      *ctxsync.Mutex
	entries map[domain.Fingerprint]*entry
}

// NewQueryCache returns a new implementation of [domain.Cache].
func NewQueryCache() *QueryCache {
	return &QueryCache{
		mu:      ctxsync.NewMutex(),
		entries: map[domain.Fingerprint]*entry{},
	}
}

// Fetch implements [domain.Cache]. The returned sequence replays buffered
// documents first and extends the buffer from the loader on demand, marking
// the entry fully loaded at stream exhaustion. Invalidation during a load
// makes the in-flight load discard its buffer on completion instead of
// re-inserting it.
func (c *QueryCache) Fetch(ctx context.Context, fp domain.Fingerprint, loader domain.Loader) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		var (
			e        *entry
			snapshot []map[string]any
			full     bool
		)
		err := c.mu.WithLock(ctx, func() error {
			e = c.entries[fp]
			if e == nil {
				e = &entry{collection: fp.Collection}
				c.entries[fp] = e
			}
			snapshot = slices.Clone(e.buffer)
			full = e.fullyLoaded
			return nil
		})
		if err != nil {
			yield(nil, err)
			return
		}

		for _, doc := range snapshot {
			if !yield(doc, nil) {
				return
			}
		}
		if full {
			return
		}

		local := snapshot
		seen := 0
		for doc, err := range loader(ctx) {
			if err != nil {
				// no partial or corrupt buffer survives a failed
				// load: the entry goes back to absent
				c.drop(fp, e)
				yield(nil, err)
				return
			}
			seen++
			if seen <= len(snapshot) {
				// the loader restarts from scratch; skip what
				// the buffer already replayed
				continue
			}
			local = append(local, doc)
			c.store(fp, e, local, false)
			if !yield(doc, nil) {
				return
			}
		}
		c.store(fp, e, local, true)
	}
}

// store writes load progress back, unless the entry was invalidated while
// the load was in flight.
func (c *QueryCache) store(fp domain.Fingerprint, e *entry, buffer []map[string]any, full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[fp] != e {
		return
	}
	e.buffer = buffer
	if full {
		e.fullyLoaded = true
	}
}

// drop removes a failed entry, leaving the fingerprint absent.
func (c *QueryCache) drop(fp domain.Fingerprint, e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[fp] == e && !e.fullyLoaded {
		delete(c.entries, fp)
	}
}

// Count implements [domain.Cache]. Only a fully loaded entry can answer a
// count without a round trip.
func (c *QueryCache) Count(ctx context.Context, fp domain.Fingerprint) (int, bool) {
	var (
		size int
		ok   bool
	)
	err := c.mu.WithLock(ctx, func() error {
		if e := c.entries[fp]; e != nil && e.fullyLoaded {
			size = len(e.buffer)
			ok = true
		}
		return nil
	})
	if err != nil {
		return 0, false
	}
	return size, ok
}

// Invalidate implements [domain.Cache]. It removes every entry whose
// fingerprint references the collection; entries for other collections keep
// hitting.
func (c *QueryCache) Invalidate(ctx context.Context, collection string) error {
	return c.mu.WithLock(ctx, func() error {
		for fp, e := range c.entries {
			if e.collection == collection {
				delete(c.entries, fp)
			}
		}
		return nil
	})
}

// ClearAll implements [domain.Cache]. Unconditional: called on every
// unit-of-work exit path, including failure exits.
func (c *QueryCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len implements [domain.Cache].
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
