package configurator

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/chewxy/math32"
)

// ErrConfigurationOutOfRange is returned when a selection falls outside what the binding accepts.
// The previous configuration stays in effect.
var ErrConfigurationOutOfRange = errors.New("configuration out of range")

// RingConfiguration is the user-facing state of the ring.
type RingConfiguration struct {
	BandColor common.Color
	GemColor  common.Color
	Scale     float32
}

// ShadowTarget is the part of the shadow accumulator the binding drives.
type ShadowTarget interface {
	// SetTint sets the shadow tint, resetting accumulation if it changed.
	SetTint(tint common.Color)

	// Invalidate resets accumulation because the lit geometry moved.
	Invalidate()
}

// Snapshot is an immutable copy of everything a render tick needs from the binding.
type Snapshot struct {
	Configuration RingConfiguration
	Band          material.Descriptor
	SolidMetal    material.Descriptor
	Gem           material.Descriptor
	ShadowTint    common.Color

	// Revision increases by one for every accepted change.
	Revision uint64
}

// binding is the implementation of the Binding interface.
type binding struct {
	mu sync.Mutex

	config     RingConfiguration
	band       material.Descriptor
	solidMetal material.Descriptor
	gem        material.Descriptor
	shadowTint common.Color
	revision   uint64

	tintExplicit bool

	bandPalette  []common.Color
	gemPalette   []common.Color
	fixedScale   bool
	coupleShadow bool

	shadow ShadowTarget
}

// Binding maps the user-visible ring parameters to material descriptors and to the shadow
// accumulator's tint, invalidating dependent state when parameters change.
//
// Every setter is synchronous: by the time it returns, the affected descriptor has been
// recomputed and the shadow target has been told. Setting a value equal to the current one
// is a no-op and does not reset the shadow.
type Binding interface {
	// Configuration returns the current ring configuration.
	//
	// Returns:
	//   - RingConfiguration: the current configuration
	Configuration() RingConfiguration

	// SetBandColor selects the band color and re-derives the band material.
	//
	// Parameters:
	//   - c: the new band color
	//
	// Returns:
	//   - error: ErrConfigurationOutOfRange if c is not in the band palette
	SetBandColor(c common.Color) error

	// SetGemColor selects the gem color and re-derives the gem material. With shadow tint
	// coupling enabled it also re-tints the shadow, which resets accumulation.
	//
	// Parameters:
	//   - c: the new gem color
	//
	// Returns:
	//   - error: ErrConfigurationOutOfRange if c is not in the gem palette
	SetGemColor(c common.Color) error

	// SetScale sets the ring scale and invalidates the accumulated shadow.
	//
	// Parameters:
	//   - s: the new scale, which must be finite and > 0
	//
	// Returns:
	//   - error: ErrConfigurationOutOfRange for a non-positive scale or a locked scale
	SetScale(s float32) error

	// SetShadowTint sets the shadow tint directly. With coupling enabled the tint follows the
	// gem color again on the next gem change.
	//
	// Parameters:
	//   - c: the new shadow tint
	SetShadowTint(c common.Color)

	// ShadowTint returns the current shadow tint.
	//
	// Returns:
	//   - common.Color: the tint
	ShadowTint() common.Color

	// BandPalette returns the accepted band colors, or nil when unconstrained.
	//
	// Returns:
	//   - []common.Color: a copy of the palette
	BandPalette() []common.Color

	// Snapshot returns an immutable copy of the configuration and derived descriptors.
	//
	// Returns:
	//   - Snapshot: the snapshot
	Snapshot() Snapshot

	// AttachShadow connects the shadow target after construction and pushes the current tint.
	//
	// Parameters:
	//   - target: the shadow accumulator to drive
	AttachShadow(target ShadowTarget)
}

var _ Binding = &binding{}

// NewBinding creates a Binding. Without options it starts from a white band, white gem and scale 1,
// accepts any color and couples the shadow tint to the gem color.
//
// Parameters:
//   - options: variadic list of BindingBuilderOption functions to configure the binding
//
// Returns:
//   - Binding: the new binding
//   - error: ErrConfigurationOutOfRange if the initial configuration violates the options
func NewBinding(options ...BindingBuilderOption) (Binding, error) {
	b := &binding{
		config: RingConfiguration{
			BandColor: common.White,
			GemColor:  common.White,
			Scale:     1,
		},
		coupleShadow: true,
	}
	for _, opt := range options {
		opt(b)
	}

	if err := checkScale(b.config.Scale); err != nil {
		return nil, err
	}
	if err := checkPalette("band", b.bandPalette, b.config.BandColor); err != nil {
		return nil, err
	}
	if err := checkPalette("gem", b.gemPalette, b.config.GemColor); err != nil {
		return nil, err
	}
	if !b.tintExplicit {
		b.shadowTint = b.config.GemColor
	}

	b.band = material.Band(b.config.BandColor)
	b.gem = material.Gem(b.config.GemColor)
	if b.solidMetal.Name == "" {
		b.solidMetal = material.SolidMetal()
	}
	if b.shadow != nil {
		b.shadow.SetTint(b.shadowTint)
	}
	return b, nil
}

func (b *binding) Configuration() RingConfiguration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.config
}

func (b *binding) SetBandColor(c common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkPalette("band", b.bandPalette, c); err != nil {
		return err
	}
	if c == b.config.BandColor {
		return nil
	}
	b.config.BandColor = c
	b.band = material.Band(c)
	b.revision++
	return nil
}

func (b *binding) SetGemColor(c common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkPalette("gem", b.gemPalette, c); err != nil {
		return err
	}
	if c == b.config.GemColor {
		return nil
	}
	b.config.GemColor = c
	b.gem = material.Gem(c)
	if b.coupleShadow {
		b.setTintLocked(c)
	}
	b.revision++
	return nil
}

func (b *binding) SetScale(s float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkScale(s); err != nil {
		return err
	}
	if s == b.config.Scale {
		return nil
	}
	if b.fixedScale {
		return fmt.Errorf("%w: scale is fixed at %v", ErrConfigurationOutOfRange, b.config.Scale)
	}
	b.config.Scale = s
	if b.shadow != nil {
		b.shadow.Invalidate()
	}
	b.revision++
	return nil
}

func (b *binding) SetShadowTint(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c == b.shadowTint {
		return
	}
	b.setTintLocked(c)
	b.revision++
}

func (b *binding) ShadowTint() common.Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shadowTint
}

func (b *binding) BandPalette() []common.Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.bandPalette)
}

func (b *binding) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Configuration: b.config,
		Band:          b.band,
		SolidMetal:    b.solidMetal,
		Gem:           b.gem,
		ShadowTint:    b.shadowTint,
		Revision:      b.revision,
	}
}

func (b *binding) AttachShadow(target ShadowTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shadow = target
	if target != nil {
		target.SetTint(b.shadowTint)
	}
}

// setTintLocked records the tint and forwards it. The caller holds b.mu.
func (b *binding) setTintLocked(c common.Color) {
	b.shadowTint = c
	if b.shadow != nil {
		b.shadow.SetTint(c)
	}
}

func checkScale(s float32) error {
	if !(s > 0) || math32.IsInf(s, 1) {
		return fmt.Errorf("%w: scale %v must be finite and > 0", ErrConfigurationOutOfRange, s)
	}
	return nil
}

func checkPalette(name string, palette []common.Color, c common.Color) error {
	if len(palette) == 0 || slices.Contains(palette, c) {
		return nil
	}
	return fmt.Errorf("%w: %s color %s is not in the palette", ErrConfigurationOutOfRange, name, c.Hex())
}
