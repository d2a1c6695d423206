package postprocess

import "github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"

// ChainBuilderOption is a functional option for configuring a Chain via NewChain.
type ChainBuilderOption func(*chain)

// WithRasterizer is an option builder that sets the row-band scheduler the effects run on.
//
// Parameters:
//   - r: the rasterizer
//
// Returns:
//   - ChainBuilderOption: a function that applies the rasterizer option to a chain
func WithRasterizer(r raster.Rasterizer) ChainBuilderOption {
	return func(c *chain) {
		c.raster = r
	}
}
