package configurator

import (
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
)

// FromConfig builds a Binding from the ring section of a view configuration.
//
// Parameters:
//   - cfg: the validated configuration
//   - options: extra options applied after the configuration-derived ones
//
// Returns:
//   - Binding: the new binding
//   - error: error if the configuration cannot be parsed or violates its own constraints
func FromConfig(cfg *config.Config, options ...BindingBuilderOption) (Binding, error) {
	band, gem, tint, err := cfg.RingColors()
	if err != nil {
		return nil, err
	}
	bandPalette, err := cfg.BandPalette()
	if err != nil {
		return nil, err
	}
	gemPalette, err := cfg.GemPalette()
	if err != nil {
		return nil, err
	}

	opts := []BindingBuilderOption{
		WithConfiguration(RingConfiguration{BandColor: band, GemColor: gem, Scale: cfg.Ring.Scale}),
		WithBandPalette(bandPalette...),
		WithGemPalette(gemPalette...),
		WithFixedScale(cfg.Ring.FixedScale),
		WithShadowTintCoupling(cfg.Ring.CoupleShadowTint),
	}
	if !cfg.Ring.CoupleShadowTint || cfg.Ring.ShadowTint != "" {
		opts = append(opts, WithShadowTint(tint))
	}
	return NewBinding(append(opts, options...)...)
}
