package environment

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var errEmptyMap = errors.New("environment map has no pixels")

type level struct {
	width, height int
	pixels        []common.Color
}

// Map is an immutable equirectangular radiance map in linear HDR with a prefiltered mip chain.
// A Map is shared read-only by the background pass and every material that samples it.
type Map struct {
	url    string
	levels []level
}

// NewMap builds a Map from row-major linear pixels and prefilters its mip chain.
//
// Parameters:
//   - url: the source identifier the map was loaded from
//   - width, height: the base level dimensions
//   - pixels: width*height linear colors, top row first
//
// Returns:
//   - *Map: the new map
//   - error: error if the dimensions do not match the pixel count
func NewMap(url string, width, height int, pixels []common.Color) (*Map, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d pixels", errEmptyMap, width, height, len(pixels))
	}
	m := &Map{url: url}
	base := level{width: width, height: height, pixels: append([]common.Color(nil), pixels...)}
	m.levels = append(m.levels, base)
	for cur := base; cur.width > 1 || cur.height > 1; {
		cur = downsample(cur)
		m.levels = append(m.levels, cur)
	}
	return m, nil
}

// Uniform returns a small map of a single radiance value. It stands in for a real map while one
// is loading and in tests.
func Uniform(url string, c common.Color) *Map {
	px := make([]common.Color, 8*4)
	for i := range px {
		px[i] = c
	}
	m, _ := NewMap(url, 8, 4, px)
	return m
}

// URL returns the source identifier.
func (m *Map) URL() string { return m.url }

// Width returns the base level width.
func (m *Map) Width() int { return m.levels[0].width }

// Height returns the base level height.
func (m *Map) Height() int { return m.levels[0].height }

// Levels returns the number of mip levels, including the base.
func (m *Map) Levels() int { return len(m.levels) }

// MaxLOD is the index of the coarsest mip level.
func (m *Map) MaxLOD() float32 { return float32(len(m.levels) - 1) }

// Texel returns one texel of a mip level. Coordinates wrap horizontally and clamp vertically.
func (m *Map) Texel(lod, x, y int) common.Color {
	l := &m.levels[min(max(lod, 0), len(m.levels)-1)]
	return l.at(x, y)
}

// Sample returns the trilinearly filtered radiance in direction dir at level of detail lod.
// dir need not be normalized.
//
// Parameters:
//   - dir: the world-space lookup direction
//   - lod: the fractional mip level, clamped to the chain
//
// Returns:
//   - common.Color: the filtered radiance
func (m *Map) Sample(dir mgl32.Vec3, lod float32) common.Color {
	d := common.SafeNormalize(dir)
	if d == (mgl32.Vec3{}) {
		d = mgl32.Vec3{0, 1, 0}
	}
	u, v := common.DirectionToEquirect(d)

	lod = common.Clamp(lod, 0, m.MaxLOD())
	l0 := int(lod)
	if l0 >= len(m.levels)-1 {
		return m.levels[len(m.levels)-1].bilinear(u, v)
	}
	t := lod - float32(l0)
	a := m.levels[l0].bilinear(u, v)
	if t == 0 {
		return a
	}
	return a.Lerp(m.levels[l0+1].bilinear(u, v), t)
}

// RoughnessLOD maps a surface roughness to the mip level used for its reflections.
func (m *Map) RoughnessLOD(roughness float32) float32 {
	return common.Clamp01(roughness) * m.MaxLOD() * 0.75
}

// BackgroundLOD maps a background blur amount to a mip level. Each unit of blur is two levels.
func (m *Map) BackgroundLOD(blur float32) float32 {
	return common.Clamp(blur*2, 0, m.MaxLOD())
}

// Average returns the mean radiance of the whole map.
func (m *Map) Average() common.Color {
	return m.levels[len(m.levels)-1].pixels[0]
}

func (l *level) at(x, y int) common.Color {
	x %= l.width
	if x < 0 {
		x += l.width
	}
	y = min(max(y, 0), l.height-1)
	return l.pixels[y*l.width+x]
}

func (l *level) bilinear(u, v float32) common.Color {
	fx := u*float32(l.width) - 0.5
	fy := v*float32(l.height) - 0.5
	x0 := int(math32.Floor(fx))
	y0 := int(math32.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	top := l.at(x0, y0).Lerp(l.at(x0+1, y0), tx)
	bottom := l.at(x0, y0+1).Lerp(l.at(x0+1, y0+1), tx)
	return top.Lerp(bottom, ty)
}

// downsample halves each dimension that is larger than one with a box filter.
func downsample(src level) level {
	w := max(src.width/2, 1)
	h := max(src.height/2, 1)
	sx := src.width / w
	sy := src.height / h
	out := level{width: w, height: h, pixels: make([]common.Color, w*h)}
	inv := 1 / float32(sx*sy)
	for y := range h {
		for x := range w {
			var acc common.Color
			for dy := range sy {
				for dx := range sx {
					acc = acc.Add(src.pixels[(y*sy+dy)*src.width+x*sx+dx])
				}
			}
			out.pixels[y*w+x] = acc.Scale(inv)
		}
	}
	return out
}
