package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu        sync.RWMutex
	position  mgl32.Vec3
	target    mgl32.Vec3
	color     common.Color
	intensity float32
	angle     float32
	penumbra  float32
	decay     float32
	distance  float32
}

// Light is a spot light aimed at a target point.
//
// The cone follows the usual real-time convention: full intensity inside angle*(1-penumbra), smoothly
// fading to zero at angle. Distance falloff is 1/d^decay, cut off at distance when distance > 0.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the point the cone axis passes through.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// Direction returns the normalized cone axis, from the light toward the target.
	//
	// Returns:
	//   - mgl32.Vec3: the axis
	Direction() mgl32.Vec3

	// Color returns the linear RGB color of the light.
	//
	// Returns:
	//   - common.Color: the color
	Color() common.Color

	// Intensity returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Angle returns the cone half-angle in radians.
	//
	// Returns:
	//   - float32: the angle
	Angle() float32

	// Penumbra returns the fraction of the cone that fades out, in [0, 1].
	//
	// Returns:
	//   - float32: the penumbra
	Penumbra() float32

	// SetPosition moves the light.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Illuminate evaluates the light at a surface point.
	//
	// Parameters:
	//   - p: the world-space surface point
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction from p toward the light
	//   - common.Color: the incoming radiance, zero outside the cone
	Illuminate(p mgl32.Vec3) (mgl32.Vec3, common.Color)
}

var _ Light = &lightImpl{}

// NewLight creates a new spot light. Without options it sits at (10, 10, 10) aiming at the origin with a
// 0.15 radian cone, full penumbra, no decay and intensity pi.
//
// Parameters:
//   - options: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the new light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		position:  mgl32.Vec3{10, 10, 10},
		color:     common.White,
		intensity: math32.Pi,
		angle:     0.15,
		penumbra:  1,
	}
	for _, opt := range options {
		opt(l)
	}
	l.penumbra = common.Clamp01(l.penumbra)
	l.angle = common.Clamp(l.angle, 1e-4, math32.Pi/2)
	return l
}

func (l *lightImpl) Position() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.position
}

func (l *lightImpl) Target() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.target
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return common.SafeNormalize(l.target.Sub(l.position))
}

func (l *lightImpl) Color() common.Color {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Angle() float32 {
	return l.angle
}

func (l *lightImpl) Penumbra() float32 {
	return l.penumbra
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = p
}

func (l *lightImpl) Illuminate(p mgl32.Vec3) (mgl32.Vec3, common.Color) {
	l.mu.RLock()
	pos, target := l.position, l.target
	l.mu.RUnlock()

	toLight := pos.Sub(p)
	d := toLight.Len()
	if d == 0 {
		return mgl32.Vec3{0, 1, 0}, common.Color{}
	}
	toLight = toLight.Mul(1 / d)

	axis := common.SafeNormalize(target.Sub(pos))
	cosTheta := axis.Dot(toLight.Mul(-1))
	cone := common.SmoothStep(math32.Cos(l.angle), math32.Cos(l.angle*(1-l.penumbra)), cosTheta)
	if cone == 0 {
		return toLight, common.Color{}
	}
	return toLight, l.color.Scale(l.intensity * cone * l.attenuation(d))
}

func (l *lightImpl) attenuation(d float32) float32 {
	a := float32(1)
	if l.decay > 0 {
		a = 1 / max(math32.Pow(d, l.decay), 0.01)
	}
	if l.distance > 0 {
		r := d / l.distance
		r2 := r * r
		f := common.Clamp01(1 - r2*r2)
		a *= f * f
	}
	return a
}
