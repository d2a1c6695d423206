package light

import (
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
)

// AccumulatorBuilderOption is a functional option for configuring an Accumulator via NewAccumulator.
type AccumulatorBuilderOption func(*accumulator)

// WithFrames is an option builder that sets the number of frames to converge after.
//
// Parameters:
//   - frames: the target frame count
//
// Returns:
//   - AccumulatorBuilderOption: a function that applies the frames option to an accumulator
func WithFrames(frames int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.target = frames
	}
}

// WithComposite is an option builder that sets how the buffer is composited.
//
// Parameters:
//   - opacity: the alpha multiplier
//   - alphaTest: the lit visibility at which the shadow vanishes
//   - colorBlend: the tint multiplier
//
// Returns:
//   - AccumulatorBuilderOption: a function that applies the composite option to an accumulator
func WithComposite(opacity, alphaTest, colorBlend float32) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.opacity = opacity
		a.alphaTest = alphaTest
		a.colorBlend = colorBlend
	}
}

// WithPlane is an option builder that sets the ground plane size and buffer resolution.
//
// Parameters:
//   - scale: the side length of the plane
//   - resolution: texels per side
//
// Returns:
//   - AccumulatorBuilderOption: a function that applies the plane option to an accumulator
func WithPlane(scale float32, resolution int) AccumulatorBuilderOption {
	return func(a *accumulator) {
		if scale > 0 {
			a.scale = scale
		}
		a.resolution = resolution
	}
}

// WithRandomizedLight is an option builder that sets the light cluster.
func WithRandomizedLight(l RandomizedLight) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.light = l
	}
}

// WithTint is an option builder that sets the initial shadow color.
func WithTint(tint common.Color) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.tint = tint
	}
}

// WithSeed is an option builder that seeds the light jitter.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - AccumulatorBuilderOption: a function that applies the seed option to an accumulator
func WithSeed(seed uint64) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.seed = seed
	}
}

// WithRasterizer is an option builder that sets the rasterizer used for depth passes.
func WithRasterizer(r raster.Rasterizer) AccumulatorBuilderOption {
	return func(a *accumulator) {
		a.raster = r
	}
}
