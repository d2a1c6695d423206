package postprocess

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
)

// BloomParams configures the bloom pass. Intensity is 0.25 in the configurator view and 0.85 in the
// showroom view.
type BloomParams struct {
	LuminanceThreshold float32
	Smoothing          float32
	Intensity          float32
	Levels             int
	MipmapBlur         bool
}

// DefaultBloom returns the reference parameters with the configurator intensity.
func DefaultBloom() BloomParams {
	return BloomParams{LuminanceThreshold: 3.5, Smoothing: 0.025, Intensity: 0.25, Levels: 9, MipmapBlur: true}
}

// bloomRadius blends each upsampled level with the level below it.
const bloomRadius = 0.85

type mipLevel struct {
	w, h int
	pix  []common.Color
}

func (m *mipLevel) at(x, y int) common.Color {
	x = min(max(x, 0), m.w-1)
	y = min(max(y, 0), m.h-1)
	return m.pix[y*m.w+x]
}

// bilinear samples at normalized coordinates.
func (m *mipLevel) bilinear(u, v float32) common.Color {
	fx := u*float32(m.w) - 0.5
	fy := v*float32(m.h) - 0.5
	x0, y0 := floor(fx), floor(fy)
	tx, ty := fx-float32(x0), fy-float32(y0)
	top := m.at(x0, y0).Lerp(m.at(x0+1, y0), tx)
	bottom := m.at(x0, y0+1).Lerp(m.at(x0+1, y0+1), tx)
	return top.Lerp(bottom, ty)
}

func floor(v float32) int {
	i := int(v)
	if float32(i) > v {
		i--
	}
	return i
}

type bloom struct {
	params BloomParams

	mu     sync.Mutex
	down   []mipLevel
	up     []mipLevel
	bright mipLevel
}

var _ Effect = &bloom{}

// NewBloom creates the bloom effect.
//
// Parameters:
//   - params: the pass parameters
//
// Returns:
//   - Effect: the effect
func NewBloom(params BloomParams) Effect {
	params.Levels = max(params.Levels, 1)
	if !params.MipmapBlur {
		params.Levels = 1
	}
	return &bloom{params: params}
}

func (b *bloom) Kind() Kind {
	return KindBloom
}

func (b *bloom) Apply(f *renderer.Frame, rows raster.Rasterizer) {
	if b.params.Intensity <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allocate(f.Width, f.Height)

	th, sm := b.params.LuminanceThreshold, max(b.params.Smoothing, 1e-6)
	rows.Rows(f.Height, func(y0, y1 int) {
		for i := y0 * f.Width; i < y1*f.Width; i++ {
			c := f.Color[i]
			b.bright.pix[i] = c.Scale(common.SmoothStep(th, th+sm, c.Luminance()))
		}
	})

	src := &b.bright
	for l := range b.down {
		downsample(&b.down[l], src, rows)
		src = &b.down[l]
	}

	// Walk back up the chain, each level adding the blurred level below it.
	last := len(b.down) - 1
	copy(b.up[last].pix, b.down[last].pix)
	for l := last - 1; l >= 0; l-- {
		dst, lower, base := &b.up[l], &b.up[l+1], &b.down[l]
		rows.Rows(dst.h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				v := (float32(y) + 0.5) / float32(dst.h)
				for x := 0; x < dst.w; x++ {
					u := (float32(x) + 0.5) / float32(dst.w)
					dst.pix[y*dst.w+x] = base.pix[y*dst.w+x].Lerp(lower.bilinear(u, v), bloomRadius)
				}
			}
		})
	}

	top := &b.up[0]
	intensity := b.params.Intensity
	rows.Rows(f.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(f.Height)
			for x := 0; x < f.Width; x++ {
				u := (float32(x) + 0.5) / float32(f.Width)
				i := f.Index(x, y)
				f.Color[i] = f.Color[i].Add(top.bilinear(u, v).Scale(intensity))
			}
		}
	})
}

// allocate sizes the mip chain for a frame, halving until a level would be empty.
func (b *bloom) allocate(w, h int) {
	if b.bright.w == w && b.bright.h == h {
		return
	}
	b.bright = mipLevel{w: w, h: h, pix: make([]common.Color, w*h)}
	b.down, b.up = b.down[:0], b.up[:0]
	lw, lh := w, h
	for range b.params.Levels {
		if lw < 2 && lh < 2 {
			break
		}
		lw, lh = max(lw/2, 1), max(lh/2, 1)
		b.down = append(b.down, mipLevel{w: lw, h: lh, pix: make([]common.Color, lw*lh)})
		b.up = append(b.up, mipLevel{w: lw, h: lh, pix: make([]common.Color, lw*lh)})
	}
	if len(b.down) == 0 {
		b.down = append(b.down, mipLevel{w: w, h: h, pix: make([]common.Color, w*h)})
		b.up = append(b.up, mipLevel{w: w, h: h, pix: make([]common.Color, w*h)})
	}
}

// downsample is a 13-tap filter: a 4x4 box around the target texel center with a weighted cross.
func downsample(dst, src *mipLevel, rows raster.Rasterizer) {
	rows.Rows(dst.h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) / float32(dst.h)
			for x := 0; x < dst.w; x++ {
				u := (float32(x) + 0.5) / float32(dst.w)
				du, dv := 1/float32(src.w), 1/float32(src.h)

				center := src.bilinear(u, v).Scale(0.125)
				inner := src.bilinear(u-du, v-dv).Add(src.bilinear(u+du, v-dv)).
					Add(src.bilinear(u-du, v+dv)).Add(src.bilinear(u+du, v+dv)).Scale(0.125)
				outer := src.bilinear(u-2*du, v-2*dv).Add(src.bilinear(u+2*du, v-2*dv)).
					Add(src.bilinear(u-2*du, v+2*dv)).Add(src.bilinear(u+2*du, v+2*dv)).Scale(0.03125)
				cross := src.bilinear(u, v-2*dv).Add(src.bilinear(u, v+2*dv)).
					Add(src.bilinear(u-2*du, v)).Add(src.bilinear(u+2*du, v)).Scale(0.0625)

				dst.pix[y*dst.w+x] = center.Add(inner).Add(outer).Add(cross)
			}
		}
	})
}
