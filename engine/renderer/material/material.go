package material

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/common"
)

// Kind selects the shading model a Descriptor is rendered with.
type Kind int

const (
	// KindMetal is a metal/rough surface lit by environment reflection and the key light.
	KindMetal Kind = iota

	// KindRefraction is a transparent surface that samples the environment along refracted
	// directions with per-channel dispersion.
	KindRefraction
)

func (k Kind) String() string {
	switch k {
	case KindMetal:
		return "metal"
	case KindRefraction:
		return "refraction"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var errDescriptorRange = errors.New("material parameter out of range")

// Descriptor is the complete set of surface parameters for one draw. It is a plain value:
// every derivation returns a fresh copy and the renderer never mutates what it is handed.
type Descriptor struct {
	// Name identifies the material in logs and asset tables.
	Name string

	// Kind selects the shading model.
	Kind Kind

	// Color is the linear base color (albedo for metals, transmission tint for refraction).
	Color common.Color

	// Roughness in [0, 1]; 0 is a perfect mirror.
	Roughness float32

	// Metalness in [0, 1].
	Metalness float32

	// RefractionStrength is the index of refraction used by KindRefraction.
	RefractionStrength float32

	// AberrationStrength spreads the index of refraction per color channel.
	AberrationStrength float32

	// Opacity in [0, 1] used when blending over what is already in the frame.
	Opacity float32

	// EnvMapIntensity scales environment contributions.
	EnvMapIntensity float32

	// ToneMapped marks whether shading output is passed through the inline tone mapper.
	// Refraction materials leave it off so their highlights reach the bloom pass unclipped.
	ToneMapped bool

	// DoubleSided shades back faces with a flipped normal instead of culling them.
	DoubleSided bool
}

// NewDescriptor creates a Descriptor configured with the provided options.
// Defaults describe an opaque, fully rough, white dielectric.
//
// Parameters:
//   - options: variadic list of DescriptorBuilderOption functions to configure the descriptor
//
// Returns:
//   - Descriptor: the configured descriptor value
func NewDescriptor(options ...DescriptorBuilderOption) Descriptor {
	d := Descriptor{
		Kind:               KindMetal,
		Color:              common.White,
		Roughness:          1,
		Metalness:          0,
		RefractionStrength: 1,
		Opacity:            1,
		EnvMapIntensity:    1,
		ToneMapped:         true,
	}
	for _, opt := range options {
		opt(&d)
	}
	return d
}

// Validate reports whether every bounded parameter is inside its declared range.
//
// Returns:
//   - error: error naming the first parameter out of range, or nil
func (d Descriptor) Validate() error {
	check := func(name string, v float32) error {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: %s %s = %v", errDescriptorRange, d.Name, name, v)
		}
		return nil
	}
	if err := check("roughness", d.Roughness); err != nil {
		return err
	}
	if err := check("metalness", d.Metalness); err != nil {
		return err
	}
	if err := check("opacity", d.Opacity); err != nil {
		return err
	}
	if d.Kind == KindRefraction && !(d.RefractionStrength >= 1) {
		return fmt.Errorf("%w: %s refraction strength = %v", errDescriptorRange, d.Name, d.RefractionStrength)
	}
	if d.EnvMapIntensity < 0 {
		return fmt.Errorf("%w: %s env map intensity = %v", errDescriptorRange, d.Name, d.EnvMapIntensity)
	}
	return nil
}
