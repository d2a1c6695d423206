package configurator

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
)

// BindingBuilderOption is a functional option for configuring a Binding via NewBinding.
type BindingBuilderOption func(*binding)

// WithConfiguration sets the initial ring configuration.
//
// Parameters:
//   - config: the starting configuration
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithConfiguration(config RingConfiguration) BindingBuilderOption {
	return func(b *binding) {
		b.config = config
	}
}

// WithBandPalette restricts band colors to a fixed palette.
//
// Parameters:
//   - palette: the accepted band colors
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithBandPalette(palette ...common.Color) BindingBuilderOption {
	return func(b *binding) {
		b.bandPalette = slices.Clone(palette)
	}
}

// WithGemPalette restricts gem colors to a fixed palette.
//
// Parameters:
//   - palette: the accepted gem colors
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithGemPalette(palette ...common.Color) BindingBuilderOption {
	return func(b *binding) {
		b.gemPalette = slices.Clone(palette)
	}
}

// WithFixedScale locks the scale at its initial value.
//
// Parameters:
//   - fixed: true to reject scale changes
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithFixedScale(fixed bool) BindingBuilderOption {
	return func(b *binding) {
		b.fixedScale = fixed
	}
}

// WithShadowTintCoupling controls whether gem color changes re-tint the shadow. Enabled by default.
//
// Parameters:
//   - couple: false to leave the shadow tint under SetShadowTint control only
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithShadowTintCoupling(couple bool) BindingBuilderOption {
	return func(b *binding) {
		b.coupleShadow = couple
	}
}

// WithShadowTint sets the initial shadow tint instead of deriving it from the gem color.
//
// Parameters:
//   - tint: the initial tint
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithShadowTint(tint common.Color) BindingBuilderOption {
	return func(b *binding) {
		b.shadowTint = tint
		b.tintExplicit = true
	}
}

// WithShadowTarget connects the shadow accumulator the binding drives.
//
// Parameters:
//   - target: the shadow target
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithShadowTarget(target ShadowTarget) BindingBuilderOption {
	return func(b *binding) {
		b.shadow = target
	}
}

// WithSolidMetal overrides the solid-metal material, typically with the asset's default metal.
//
// Parameters:
//   - d: the solid-metal descriptor
//
// Returns:
//   - BindingBuilderOption: option function to apply
func WithSolidMetal(d material.Descriptor) BindingBuilderOption {
	return func(b *binding) {
		b.solidMetal = d
	}
}
