package light

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RandomizedLight describes the cluster of shadow-casting lights sampled each accumulation step.
// Every sample is a directional light aimed at the origin of the shadow plane.
type RandomizedLight struct {
	Position mgl32.Vec3
	Radius   float32
	Amount   int
	Ambient  float32
	Bias     float32
	MapSize  int
}

// DefaultRandomizedLight returns the reference light cluster at (10, 5, -5).
func DefaultRandomizedLight() RandomizedLight {
	return RandomizedLight{
		Position: mgl32.Vec3{10, 5, -5},
		Radius:   DefaultLightRadius,
		Amount:   DefaultLightAmount,
		Ambient:  DefaultLightAmbient,
		Bias:     DefaultShadowBias,
		MapSize:  DefaultShadowMapSize,
	}
}

func (r RandomizedLight) withDefaults() RandomizedLight {
	d := DefaultRandomizedLight()
	if r.Amount <= 0 {
		r.Amount = d.Amount
	}
	if r.MapSize <= 0 {
		r.MapSize = d.MapSize
	}
	if r.Bias <= 0 {
		r.Bias = d.Bias
	}
	r.Ambient = min(max(r.Ambient, 0), 1)
	r.Radius = max(r.Radius, 0)
	return r
}

// Jitter picks one sample position.
//
// With probability 1-Ambient the sample is Position moved by up to Radius/2 along each axis. Otherwise it
// is a uniformly random direction on the sphere of radius |Position|, folded into the upper hemisphere.
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - mgl32.Vec3: the sample position
func (r RandomizedLight) Jitter(rng *rand.Rand) mgl32.Vec3 {
	if rng.Float32() > r.Ambient {
		return mgl32.Vec3{
			r.Position[0] + r.Radius*(0.5-rng.Float32()),
			r.Position[1] + r.Radius*(0.5-rng.Float32()),
			r.Position[2] + r.Radius*(0.5-rng.Float32()),
		}
	}

	length := r.Position.Len()
	lambda := math32.Acos(2*rng.Float32()-1) - math32.Pi/2
	phi := 2 * math32.Pi * rng.Float32()
	return mgl32.Vec3{
		math32.Cos(lambda) * math32.Cos(phi) * length,
		math32.Abs(math32.Cos(lambda) * math32.Sin(phi) * length),
		math32.Sin(lambda) * length,
	}
}
