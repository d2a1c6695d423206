package material

import "github.com/Carmen-Shannon/oxy-jewel/common"

// DescriptorBuilderOption is a function that configures a Descriptor during construction.
// Options that take bounded parameters clamp them to their declared range.
type DescriptorBuilderOption func(*Descriptor)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the name option to a descriptor
func WithName(name string) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.Name = name
	}
}

// WithKind is an option builder that selects the shading model.
//
// Parameters:
//   - kind: the shading model
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the kind option to a descriptor
func WithKind(kind Kind) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.Kind = kind
	}
}

// WithColor is an option builder that sets the linear base color.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the color option to a descriptor
func WithColor(color common.Color) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.Color = color
	}
}

// WithRoughness is an option builder that sets the roughness factor, clamped to [0, 1].
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the roughness option to a descriptor
func WithRoughness(roughness float32) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.Roughness = common.Clamp01(roughness)
	}
}

// WithMetalness is an option builder that sets the metalness factor, clamped to [0, 1].
//
// Parameters:
//   - metalness: the metalness factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the metalness option to a descriptor
func WithMetalness(metalness float32) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.Metalness = common.Clamp01(metalness)
	}
}

// WithRefractionStrength is an option builder that sets the index of refraction.
// Values below 1 are raised to 1.
//
// Parameters:
//   - ior: the index of refraction
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the refraction option to a descriptor
func WithRefractionStrength(ior float32) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.RefractionStrength = max(ior, 1)
	}
}

// WithAberrationStrength is an option builder that sets the per-channel dispersion.
//
// Parameters:
//   - strength: the relative spread of the index of refraction between channels
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the aberration option to a descriptor
func WithAberrationStrength(strength float32) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.AberrationStrength = max(strength, 0)
	}
}

// WithOpacity is an option builder that sets the blend opacity, clamped to [0, 1].
//
// Parameters:
//   - opacity: the opacity
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the opacity option to a descriptor
func WithOpacity(opacity float32) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.Opacity = common.Clamp01(opacity)
	}
}

// WithEnvMapIntensity is an option builder that scales environment contributions.
//
// Parameters:
//   - intensity: the environment multiplier
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the intensity option to a descriptor
func WithEnvMapIntensity(intensity float32) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.EnvMapIntensity = max(intensity, 0)
	}
}

// WithToneMapped is an option builder that toggles inline tone mapping for the material.
//
// Parameters:
//   - toneMapped: false keeps raw radiance for downstream passes
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the tone mapping option to a descriptor
func WithToneMapped(toneMapped bool) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.ToneMapped = toneMapped
	}
}

// WithDoubleSided is an option builder that enables back face shading.
//
// Parameters:
//   - doubleSided: true to shade back faces
//
// Returns:
//   - DescriptorBuilderOption: a function that applies the side option to a descriptor
func WithDoubleSided(doubleSided bool) DescriptorBuilderOption {
	return func(d *Descriptor) {
		d.DoubleSided = doubleSided
	}
}
