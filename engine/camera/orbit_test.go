package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestOrbitStartsAtCameraPosition(t *testing.T) {
	eye := mgl32.Vec3{-5, 5, 14}
	c := NewCamera(WithPosition(eye))
	o := NewOrbit(c)

	assert.True(t, o.Position().ApproxEqualThreshold(eye, 1e-4), "%v", o.Position())
	assert.InDelta(t, eye.Len(), o.Distance(), 1e-4)
}

func TestOrbitClampsPolar(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{-5, 5, 14}))
	o := NewOrbit(c)

	o.Rotate(0, 10)
	assert.InDelta(t, DefaultMaxPolar, o.Polar(), 1e-6)
	assert.Greater(t, o.Position().Y(), float32(0), "eye stays above the plane")

	o.Rotate(0, -10)
	assert.InDelta(t, polarEpsilon, o.Polar(), 1e-6)
}

func TestOrbitZoomAndReset(t *testing.T) {
	c := NewCamera(WithPosition(mgl32.Vec3{0, 0, 10}))
	o := NewOrbit(c)
	home := o.Position()

	o.Zoom(0.5)
	assert.InDelta(t, 5, o.Distance(), 1e-4)
	o.Zoom(0.01)
	assert.InDelta(t, 2.5, o.Distance(), 1e-4)
	o.Zoom(-1)
	assert.InDelta(t, 2.5, o.Distance(), 1e-4)

	o.Rotate(1, 0.2)
	o.Apply(c)
	assert.Equal(t, o.Position(), c.Position())

	o.Reset()
	for i, v := range o.Position() {
		assert.InDelta(t, home[i], v, 1e-4)
	}
}
