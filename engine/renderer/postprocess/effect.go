package postprocess

import (
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
)

// Kind identifies an effect. Kinds are declared in the only order a Chain accepts them.
type Kind int

const (
	// KindAmbientOcclusion darkens creases using the frame's geometry buffers.
	KindAmbientOcclusion Kind = iota

	// KindBloom adds a blurred copy of the over-threshold radiance.
	KindBloom

	// KindToneMapping maps HDR radiance into display range.
	KindToneMapping
)

func (k Kind) String() string {
	switch k {
	case KindAmbientOcclusion:
		return "ambient-occlusion"
	case KindBloom:
		return "bloom"
	case KindToneMapping:
		return "tone-mapping"
	}
	return "unknown"
}

// Effect is one full-screen pass over a frame.
type Effect interface {
	// Kind returns the effect kind.
	//
	// Returns:
	//   - Kind: the kind
	Kind() Kind

	// Apply runs the effect in place.
	//
	// Parameters:
	//   - f: the frame to modify
	//   - rows: the row-band scheduler
	Apply(f *renderer.Frame, rows raster.Rasterizer)
}
