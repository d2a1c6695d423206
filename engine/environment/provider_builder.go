package environment

import "time"

// ProviderBuilderOption is a functional option for configuring a Provider via NewProvider.
type ProviderBuilderOption func(*provider)

// WithFetcher replaces the default fetcher.
//
// Parameters:
//   - f: the fetcher to use
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithFetcher(f Fetcher) ProviderBuilderOption {
	return func(p *provider) {
		p.fetcher = f
	}
}

// WithMaxWidth caps the base level width of decoded maps. Zero keeps the source size.
//
// Parameters:
//   - width: the widest base level to keep
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithMaxWidth(width int) ProviderBuilderOption {
	return func(p *provider) {
		p.maxWidth = width
	}
}

// WithLoadTimeout bounds background loads started by Request.
//
// Parameters:
//   - timeout: the per-load timeout
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithLoadTimeout(timeout time.Duration) ProviderBuilderOption {
	return func(p *provider) {
		p.timeout = timeout
	}
}

// WithMap pre-populates the cache with an already decoded map.
//
// Parameters:
//   - url: the source identifier to register the map under
//   - m: the map
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithMap(url string, m *Map) ProviderBuilderOption {
	return func(p *provider) {
		p.preload[url] = m
	}
}
