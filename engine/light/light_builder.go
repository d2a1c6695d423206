package light

import (
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(p mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithTarget is an option builder that sets the point the cone is aimed at.
//
// Parameters:
//   - t: the target point
//
// Returns:
//   - LightBuilderOption: a function that applies the target option to a lightImpl
func WithTarget(t mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = t
	}
}

// WithColor is an option builder that sets the linear RGB color of the light.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(c common.Color) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity is an option builder that sets the intensity multiplier.
//
// Parameters:
//   - intensity: the intensity
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithAngle is an option builder that sets the cone half-angle in radians.
//
// Parameters:
//   - angle: the half-angle, clamped to (0, pi/2]
//
// Returns:
//   - LightBuilderOption: a function that applies the angle option to a lightImpl
func WithAngle(angle float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.angle = angle
	}
}

// WithPenumbra is an option builder that sets the fading fraction of the cone.
//
// Parameters:
//   - penumbra: the fraction, clamped to [0, 1]
//
// Returns:
//   - LightBuilderOption: a function that applies the penumbra option to a lightImpl
func WithPenumbra(penumbra float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.penumbra = penumbra
	}
}

// WithDecay is an option builder that sets the distance falloff exponent. Zero disables falloff.
//
// Parameters:
//   - decay: the exponent
//
// Returns:
//   - LightBuilderOption: a function that applies the decay option to a lightImpl
func WithDecay(decay float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.decay = decay
	}
}

// WithDistance is an option builder that sets the range cutoff. Zero means unlimited.
func WithDistance(distance float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.distance = distance
	}
}
