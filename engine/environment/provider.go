package environment

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-jewel/engine/resource"
)

// provider is the implementation of the Provider interface.
type provider struct {
	mu sync.Mutex

	cache    resource.Cache[*Map]
	fetcher  Fetcher
	maxWidth int
	timeout  time.Duration

	pending  map[string]bool
	failures map[string]error
	preload  map[string]*Map
}

// Provider loads and caches environment maps by source identifier.
//
// Each URL is fetched and decoded at most once; every later reference returns the same *Map.
// Load failures surface as *resource.ResourceLoadError and leave the cache untouched.
type Provider interface {
	// Load returns the map for url, fetching it on first reference. It blocks until the map is
	// decoded or the load fails.
	//
	// Parameters:
	//   - ctx: context for the fetch
	//   - url: the source identifier
	//
	// Returns:
	//   - *Map: the cached map
	//   - error: a *resource.ResourceLoadError if the source is unreachable or malformed
	Load(ctx context.Context, url string) (*Map, error)

	// Request is the non-blocking form used by the render tick. If the map is cached it is returned
	// with true. Otherwise a background load is started (once) and Request returns false until it
	// resolves. A failed background load is not retried by Request; call Load to retry.
	//
	// Parameters:
	//   - url: the source identifier
	//
	// Returns:
	//   - *Map: the map, or nil while loading
	//   - bool: true once the map is ready
	Request(url string) (*Map, bool)

	// Err returns the error of the last failed background load for url, or nil.
	//
	// Parameters:
	//   - url: the source identifier
	//
	// Returns:
	//   - error: the load error, or nil
	Err(url string) error

	// Loads returns how many underlying fetches have been started.
	//
	// Returns:
	//   - int64: the fetch counter
	Loads() int64
}

var _ Provider = &provider{}

// NewProvider creates a Provider with the default fetcher unless one is supplied.
//
// Parameters:
//   - options: variadic list of ProviderBuilderOption functions to configure the provider
//
// Returns:
//   - Provider: the new provider
func NewProvider(options ...ProviderBuilderOption) Provider {
	p := &provider{
		maxWidth: 2048,
		timeout:  5 * time.Minute,
		pending:  make(map[string]bool),
		failures: make(map[string]error),
		preload:  make(map[string]*Map),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.fetcher == nil {
		p.fetcher = NewFetcher(nil)
	}
	p.cache = resource.NewCache("environment", p.fetchAndDecode)
	for url, m := range p.preload {
		p.cache.Put(url, m)
	}
	return p
}

func (p *provider) Load(ctx context.Context, url string) (*Map, error) {
	m, err := p.cache.Get(ctx, url)
	p.mu.Lock()
	if err != nil {
		p.failures[url] = err
	} else {
		delete(p.failures, url)
	}
	p.mu.Unlock()
	return m, err
}

func (p *provider) Request(url string) (*Map, bool) {
	if m, ok := p.cache.Peek(url); ok {
		return m, true
	}

	p.mu.Lock()
	if p.pending[url] || p.failures[url] != nil {
		p.mu.Unlock()
		return nil, false
	}
	p.pending[url] = true
	p.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		start := time.Now()
		m, err := p.Load(ctx, url)

		p.mu.Lock()
		delete(p.pending, url)
		p.mu.Unlock()

		if err != nil {
			log.Printf("[Environment] background load failed: %v", err)
			return
		}
		log.Printf("[Environment] loaded %s (%dx%d, %d mips) in %s", url, m.Width(), m.Height(), m.Levels(), time.Since(start).Round(time.Millisecond))
	}()
	return nil, false
}

func (p *provider) Err(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failures[url]
}

func (p *provider) Loads() int64 {
	return p.cache.Loads()
}

func (p *provider) fetchAndDecode(ctx context.Context, url string) (*Map, error) {
	data, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	m, err := Decode(url, data, p.maxWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	return m, nil
}
