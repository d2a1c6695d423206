package loader

import "github.com/Carmen-Shannon/oxy-jewel/engine/model"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithNameMap is an option builder that sets the node/mesh names of the ring parts. Empty fields
// keep the defaults of DefaultNameMap.
//
// Parameters:
//   - names: the name mapping
//
// Returns:
//   - LoaderBuilderOption: a function that applies the name map option to a loader
func WithNameMap(names NameMap) LoaderBuilderOption {
	return func(l *loader) {
		l.names = names
	}
}

// WithAsset is an option builder that pre-populates the cache with an asset.
//
// Parameters:
//   - key: the cache key for the asset
//   - asset: the asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(key string, asset *model.GeometryAsset) LoaderBuilderOption {
	return func(l *loader) {
		l.preload[key] = asset
	}
}
