package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaxPolar keeps the camera above the shadow plane.
const DefaultMaxPolar = math32.Pi / 2.25

// polarEpsilon keeps the eye off the up axis, where the view matrix is undefined.
const polarEpsilon = 1e-3

// Orbit moves a camera on a sphere around its target. Polar is measured from +Y.
// Orbit is not safe for concurrent use.
type Orbit struct {
	target   mgl32.Vec3
	radius   float32
	azimuth  float32
	polar    float32
	maxPolar float32
	minDist  float32
	maxDist  float32

	home [3]float32
}

// NewOrbit derives the spherical position of cam around its target.
//
// Parameters:
//   - cam: the camera to orbit
//
// Returns:
//   - *Orbit: the controller, clamped to [0, DefaultMaxPolar]
func NewOrbit(cam Camera) *Orbit {
	o := &Orbit{
		target:   cam.Target(),
		maxPolar: DefaultMaxPolar,
	}
	offset := cam.Position().Sub(o.target)
	o.radius = offset.Len()
	if o.radius > 0 {
		o.polar = math32.Acos(mgl32.Clamp(offset.Y()/o.radius, -1, 1))
		o.azimuth = math32.Atan2(offset.X(), offset.Z())
	}
	o.minDist = o.radius * 0.25
	o.maxDist = o.radius * 4
	o.clamp()
	o.home = [3]float32{o.radius, o.azimuth, o.polar}
	return o
}

// Rotate turns the orbit by the given angles in radians.
func (o *Orbit) Rotate(dAzimuth, dPolar float32) {
	o.azimuth += dAzimuth
	o.polar += dPolar
	o.clamp()
}

// Zoom scales the distance to the target. Factors below 1 move closer.
func (o *Orbit) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	o.radius *= factor
	o.clamp()
}

// Reset returns to the position the orbit was created from.
func (o *Orbit) Reset() {
	o.radius, o.azimuth, o.polar = o.home[0], o.home[1], o.home[2]
}

// Polar returns the current polar angle.
func (o *Orbit) Polar() float32 {
	return o.polar
}

// Distance returns the current distance to the target.
func (o *Orbit) Distance() float32 {
	return o.radius
}

// Position returns the eye position for the current angles.
func (o *Orbit) Position() mgl32.Vec3 {
	sp, cp := math32.Sincos(o.polar)
	sa, ca := math32.Sincos(o.azimuth)
	return o.target.Add(mgl32.Vec3{sp * sa, cp, sp * ca}.Mul(o.radius))
}

// Apply moves cam to the orbit position.
func (o *Orbit) Apply(cam Camera) {
	cam.SetTarget(o.target)
	cam.SetPosition(o.Position())
}

func (o *Orbit) clamp() {
	o.polar = mgl32.Clamp(o.polar, polarEpsilon, o.maxPolar)
	if o.radius > 0 {
		o.radius = mgl32.Clamp(o.radius, o.minDist, o.maxDist)
	}
}
