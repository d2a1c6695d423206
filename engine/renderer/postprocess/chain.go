package postprocess

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
)

// ErrChainOrder is returned when effects are not in canonical order: ambient occlusion, bloom, then
// tone mapping, each at most once.
var ErrChainOrder = errors.New("post-processing effects out of order")

// chain is the implementation of the Chain interface.
type chain struct {
	effects []Effect
	raster  raster.Rasterizer
}

// Chain is the ordered list of effects run over every frame.
type Chain interface {
	// Apply runs every effect in order, in place.
	//
	// Parameters:
	//   - f: the frame
	Apply(f *renderer.Frame)

	// Kinds returns the effect kinds in run order.
	//
	// Returns:
	//   - []Kind: the kinds
	Kinds() []Kind
}

var _ Chain = &chain{}

// NewChain creates a Chain.
//
// Parameters:
//   - effects: the effects, in canonical order
//   - options: variadic list of ChainBuilderOption functions to configure the chain
//
// Returns:
//   - Chain: the chain
//   - error: ErrChainOrder if the effects are out of order or repeated
func NewChain(effects []Effect, options ...ChainBuilderOption) (Chain, error) {
	for i := 1; i < len(effects); i++ {
		if effects[i].Kind() <= effects[i-1].Kind() {
			return nil, fmt.Errorf("%w: %s after %s", ErrChainOrder, effects[i].Kind(), effects[i-1].Kind())
		}
	}
	c := &chain{effects: append([]Effect(nil), effects...)}
	for _, opt := range options {
		opt(c)
	}
	if c.raster == nil {
		c.raster = raster.NewRasterizer(nil)
	}
	return c, nil
}

// FromConfig builds a view's chain from its post-processing section.
//
// Parameters:
//   - post: the post-processing configuration
//   - options: variadic list of ChainBuilderOption functions to configure the chain
//
// Returns:
//   - Chain: the chain
//   - error: error if the tone mapping mode is unknown
func FromConfig(post config.PostConfig, options ...ChainBuilderOption) (Chain, error) {
	var effects []Effect
	if post.AO.Enabled {
		effects = append(effects, NewAmbientOcclusion(AmbientOcclusionParams{
			Radius:          post.AO.Radius,
			Intensity:       post.AO.Intensity,
			FalloffDistance: post.AO.Falloff,
		}))
	}
	if post.Bloom.Enabled {
		effects = append(effects, NewBloom(BloomParams{
			LuminanceThreshold: post.Bloom.Threshold,
			Smoothing:          post.Bloom.Smoothing,
			Intensity:          post.Bloom.Intensity,
			Levels:             post.Bloom.Levels,
			MipmapBlur:         post.Bloom.MipmapBlur,
		}))
	}
	if post.ToneMapping.Enabled {
		tm, err := NewToneMapping(post.ToneMapping.Mode)
		if err != nil {
			return nil, err
		}
		effects = append(effects, tm)
	}
	return NewChain(effects, options...)
}

func (c *chain) Apply(f *renderer.Frame) {
	for _, e := range c.effects {
		e.Apply(f, c.raster)
	}
}

func (c *chain) Kinds() []Kind {
	kinds := make([]Kind, len(c.effects))
	for i, e := range c.effects {
		kinds[i] = e.Kind()
	}
	return kinds
}
