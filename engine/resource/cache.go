package resource

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a key. It is called at most once per key for every
// successful load; failed loads are retried by the next caller.
type LoadFunc[T any] func(ctx context.Context, key string) (T, error)

// cache is the implementation of the Cache interface.
type cache[T any] struct {
	mu      sync.RWMutex
	kind    string
	entries map[string]T
	group   singleflight.Group
	load    LoadFunc[T]
	loads   atomic.Int64
}

// Cache is a process-wide, load-once resource cache with no eviction.
//
// Entries are created lazily on first reference. Concurrent first references to the same key share one
// underlying load. Failures are reported to every waiting caller as a ResourceLoadError and are never
// stored, so the cache only ever holds fully decoded values.
type Cache[T any] interface {
	// Get returns the cached value for key, loading it on first reference.
	//
	// Parameters:
	//   - ctx: context for the wait; its deadline also bounds a load it starts
	//   - key: the resource identifier
	//
	// Returns:
	//   - T: the cached value
	//   - error: a *ResourceLoadError if the load failed
	Get(ctx context.Context, key string) (T, error)

	// Peek returns the cached value without triggering a load.
	//
	// Parameters:
	//   - key: the resource identifier
	//
	// Returns:
	//   - T: the cached value, or the zero value
	//   - bool: true if the value is cached
	Peek(key string) (T, bool)

	// Put stores a value directly, replacing nothing if the key already exists.
	//
	// Parameters:
	//   - key: the resource identifier
	//   - value: the value to store
	//
	// Returns:
	//   - bool: true if the value was stored
	Put(key string, value T) bool

	// Loads returns the number of underlying loads that have been started.
	//
	// Returns:
	//   - int64: the load counter
	Loads() int64

	// Keys returns the identifiers of every cached entry.
	//
	// Returns:
	//   - []string: cached keys in no particular order
	Keys() []string
}

var _ Cache[int] = &cache[int]{}

// NewCache creates a Cache that uses load to populate entries of the given kind.
//
// Parameters:
//   - kind: the resource category used in errors and logs
//   - load: the function that produces a value for a key
//
// Returns:
//   - Cache[T]: the new cache
func NewCache[T any](kind string, load LoadFunc[T]) Cache[T] {
	return &cache[T]{
		kind:    kind,
		entries: make(map[string]T),
		load:    load,
	}
}

func (c *cache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	if v, ok := c.Peek(key); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, NewLoadError(c.kind, key, err)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// A caller that lost the race with a finished load must not load again.
		if v, ok := c.Peek(key); ok {
			return v, nil
		}
		loadCtx, cancel := detach(ctx)
		defer cancel()

		c.loads.Add(1)
		log.Printf("[Resource] loading %s %q", c.kind, key)
		v, err := c.load(loadCtx, key)
		if err != nil {
			return nil, NewLoadError(c.kind, key, err)
		}
		c.mu.Lock()
		c.entries[key] = v
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, NewLoadError(c.kind, key, ctx.Err())
	}
}

// detach returns a context for a shared load. Cancelling the caller that started the load only stops
// that caller's wait; the load keeps the caller's deadline and finishes for the other waiters.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(base, deadline)
	}
	return context.WithCancel(base)
}

func (c *cache[T]) Peek(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *cache[T]) Put(key string, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = value
	return true
}

func (c *cache[T]) Loads() int64 {
	return c.loads.Load()
}

func (c *cache[T]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
