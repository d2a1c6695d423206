package light

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewLight_Defaults(t *testing.T) {
	l := NewLight()
	assert.Equal(t, mgl32.Vec3{10, 10, 10}, l.Position())
	assert.InDelta(t, math32.Pi, l.Intensity(), 1e-6)
	assert.InDelta(t, 0.15, l.Angle(), 1e-6)
	assert.InDelta(t, 1, l.Penumbra(), 1e-6)
	assert.InDelta(t, 1, l.Direction().Len(), 1e-5)
}

func TestIlluminate_Cone(t *testing.T) {
	l := NewLight(WithPosition(mgl32.Vec3{0, 10, 0}), WithAngle(0.3), WithPenumbra(0.5))

	toLight, onAxis := l.Illuminate(mgl32.Vec3{})
	assert.True(t, toLight.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5))
	assert.InDelta(t, math32.Pi, onAxis[0], 1e-4, "full intensity inside the inner cone")

	_, outside := l.Illuminate(mgl32.Vec3{10, 0, 0})
	assert.Equal(t, common.Color{}, outside)

	// Halfway between the inner and outer cone edges.
	edge := 10 * math32.Tan(0.225)
	_, penumbra := l.Illuminate(mgl32.Vec3{edge, 0, 0})
	assert.Greater(t, penumbra[0], float32(0))
	assert.Less(t, penumbra[0], onAxis[0])
}

func TestIlluminate_Decay(t *testing.T) {
	near := NewLight(WithPosition(mgl32.Vec3{0, 2, 0}), WithDecay(2))
	far := NewLight(WithPosition(mgl32.Vec3{0, 4, 0}), WithDecay(2))
	_, a := near.Illuminate(mgl32.Vec3{})
	_, b := far.Illuminate(mgl32.Vec3{})
	assert.InDelta(t, a[1]/4, b[1], 1e-5)
}

func TestJitter(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	t.Run("box jitter stays within radius", func(t *testing.T) {
		r := RandomizedLight{Position: mgl32.Vec3{10, 5, -5}, Radius: 5, Ambient: 0}
		for range 200 {
			p := r.Jitter(rng)
			for i := range 3 {
				assert.LessOrEqual(t, math32.Abs(p[i]-r.Position[i]), float32(2.5))
			}
		}
	})

	t.Run("ambient samples lie on the upper sphere", func(t *testing.T) {
		r := RandomizedLight{Position: mgl32.Vec3{10, 5, -5}, Radius: 5, Ambient: 1}
		length := r.Position.Len()
		for range 200 {
			p := r.Jitter(rng)
			assert.InDelta(t, length, p.Len(), 1e-3)
			assert.GreaterOrEqual(t, p[1], float32(0))
		}
	})
}
