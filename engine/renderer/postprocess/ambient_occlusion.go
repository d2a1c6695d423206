package postprocess

import (
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/chewxy/math32"
)

const (
	aoSamples = 12
	aoBias    = 0.05
)

// AmbientOcclusionParams configures the screen-space ambient occlusion pass. Radius and
// FalloffDistance are in world units.
type AmbientOcclusionParams struct {
	Radius          float32
	Intensity       float32
	FalloffDistance float32
}

// DefaultAmbientOcclusion returns the reference parameters.
func DefaultAmbientOcclusion() AmbientOcclusionParams {
	return AmbientOcclusionParams{Radius: 0.15, Intensity: 4, FalloffDistance: 2}
}

type ambientOcclusion struct {
	params AmbientOcclusionParams
}

var _ Effect = &ambientOcclusion{}

// NewAmbientOcclusion creates the ambient occlusion effect.
//
// Parameters:
//   - params: the pass parameters
//
// Returns:
//   - Effect: the effect
func NewAmbientOcclusion(params AmbientOcclusionParams) Effect {
	return &ambientOcclusion{params: params}
}

func (a *ambientOcclusion) Kind() Kind {
	return KindAmbientOcclusion
}

// Apply samples a spiral of neighbours within Radius around every geometry pixel and attenuates its
// color by how much of the hemisphere above the surface they cover. Only the pixel's own color is
// written, so bands never read what another band writes.
func (a *ambientOcclusion) Apply(f *renderer.Frame, rows raster.Rasterizer) {
	focal := f.Projection[5] * float32(f.Height) / 2
	if focal <= 0 || a.params.Radius <= 0 || a.params.Intensity <= 0 {
		return
	}
	falloff := max(a.params.FalloffDistance, 1e-4)

	rows.Rows(f.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < f.Width; x++ {
				i := f.Index(x, y)
				if !f.Geometry[i] {
					continue
				}
				p, n := f.Position[i], f.Normal[i]
				if p[2] >= 0 {
					continue
				}
				pixelRadius := a.params.Radius * focal / -p[2]
				rot := noise(x, y) * 2 * math32.Pi

				var occlusion float32
				for k := range aoSamples {
					t := (float32(k) + 0.5) / aoSamples
					angle := rot + float32(k)*2.39996323
					sx := x + int(math32.Round(math32.Cos(angle)*pixelRadius*t))
					sy := y + int(math32.Round(math32.Sin(angle)*pixelRadius*t))
					if (sx == x && sy == y) || sx < 0 || sy < 0 || sx >= f.Width || sy >= f.Height {
						continue
					}
					j := f.Index(sx, sy)
					if !f.Geometry[j] {
						continue
					}
					v := f.Position[j].Sub(p)
					d := v.Len()
					if d < 1e-6 || d > a.params.Radius {
						continue
					}
					occlusion += max(0, n.Dot(v.Mul(1/d))-aoBias) * max(0, 1-d/falloff)
				}

				ao := common.Clamp01(1 - a.params.Intensity*occlusion/aoSamples)
				f.Color[i] = f.Color[i].Scale(ao)
			}
		}
	})
}

// noise is interleaved gradient noise in [0, 1).
func noise(x, y int) float32 {
	v := 52.9829189 * fract(0.06711056*float32(x)+0.00583715*float32(y))
	return fract(v)
}

func fract(v float32) float32 {
	return v - math32.Floor(v)
}
