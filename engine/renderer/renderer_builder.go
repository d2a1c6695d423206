package renderer

import (
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/light"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
)

// RendererBuilderOption is a functional option for configuring a Renderer via NewRenderer.
type RendererBuilderOption func(*rendererImpl)

// WithRasterizer is an option builder that sets the rasterizer every pass runs on.
//
// Parameters:
//   - r: the rasterizer
//
// Returns:
//   - RendererBuilderOption: a function that applies the rasterizer option to a renderer
func WithRasterizer(r raster.Rasterizer) RendererBuilderOption {
	return func(rr *rendererImpl) {
		rr.raster = r
	}
}

// WithLight is an option builder that sets the key light used for specular highlights.
//
// Parameters:
//   - l: the spot light
//
// Returns:
//   - RendererBuilderOption: a function that applies the light option to a renderer
func WithLight(l light.Light) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.light = l
	}
}

// WithEnvIntensity is an option builder that scales every environment lookup.
//
// Parameters:
//   - intensity: the scale
//
// Returns:
//   - RendererBuilderOption: a function that applies the intensity option to a renderer
func WithEnvIntensity(intensity float32) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.envIntensity = intensity
	}
}

// WithMaterialToneMapper is an option builder that sets the inline tone mapper applied to materials
// marked ToneMapped. Leave it unset when the post-processing chain tone maps the whole frame.
//
// Parameters:
//   - t: the tone mapper
//
// Returns:
//   - RendererBuilderOption: a function that applies the tone mapper option to a renderer
func WithMaterialToneMapper(t ToneMapper) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.toneMapper = t
	}
}

// WithPlaceholder is an option builder that sets the clear color used before the environment arrives.
func WithPlaceholder(c common.Color) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.placeholder = c
	}
}
