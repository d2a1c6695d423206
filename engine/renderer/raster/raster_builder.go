package raster

// RasterizerBuilderOption is a functional option for configuring a Rasterizer via NewRasterizer.
type RasterizerBuilderOption func(*rasterizerImpl)

// WithBandHeight is an option builder that sets the number of rows per worker task.
//
// Parameters:
//   - rows: the band height
//
// Returns:
//   - RasterizerBuilderOption: a function that applies the band height option to a rasterizer
func WithBandHeight(rows int) RasterizerBuilderOption {
	return func(r *rasterizerImpl) {
		r.bandHeight = rows
	}
}
