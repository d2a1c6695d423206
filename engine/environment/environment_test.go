package environment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeRGBE writes a Radiance file. With rle set, scanlines use the adaptive run-length layout
// with every channel stored as one literal run followed by nothing, or a single run when constant.
func encodeRGBE(t *testing.T, w, h int, px []common.Color, rle bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\nEXPOSURE=1.0\n\n-Y %d +X %d\n", h, w)
	for y := range h {
		row := make([][4]byte, w)
		for x := range w {
			row[x] = colorToRGBE(px[y*w+x])
		}
		if !rle {
			for _, p := range row {
				buf.Write(p[:])
			}
			continue
		}
		buf.Write([]byte{2, 2, byte(w >> 8), byte(w)})
		for ch := range 4 {
			constant := true
			for x := 1; x < w; x++ {
				if row[x][ch] != row[0][ch] {
					constant = false
				}
			}
			if constant && w <= 127 {
				buf.Write([]byte{byte(128 + w), row[0][ch]})
				continue
			}
			for x := 0; x < w; x += 128 {
				n := min(128, w-x)
				buf.WriteByte(byte(n))
				for i := range n {
					buf.WriteByte(row[x+i][ch])
				}
			}
		}
	}
	return buf.Bytes()
}

func colorToRGBE(c common.Color) [4]byte {
	v := max(c[0], c[1], c[2])
	if v < 1e-32 {
		return [4]byte{}
	}
	frac, exp := math.Frexp(float64(v))
	scale := frac * 256 / float64(v)
	return [4]byte{byte(float64(c[0]) * scale), byte(float64(c[1]) * scale), byte(float64(c[2]) * scale), byte(exp + 128)}
}

func testPixels(w, h int) []common.Color {
	px := make([]common.Color, w*h)
	for i := range px {
		px[i] = common.Color{float32(i%w) + 1, 4, 0.5}
	}
	return px
}

func TestDecodeRGBE(t *testing.T) {
	for _, rle := range []bool{false, true} {
		t.Run(fmt.Sprintf("rle=%v", rle), func(t *testing.T) {
			w, h := 16, 4
			src := testPixels(w, h)
			m, err := Decode("mem://test.hdr", encodeRGBE(t, w, h, src, rle), 0)
			require.NoError(t, err)

			assert.Equal(t, w, m.Width())
			assert.Equal(t, h, m.Height())
			assert.Equal(t, 5, m.Levels())
			for y := range h {
				for x := range w {
					got := m.Texel(0, x, y)
					want := src[y*w+x]
					for c := range 3 {
						assert.InEpsilon(t, want[c], got[c], 0.02)
					}
				}
			}
		})
	}
}

func TestDecodeRGBEKeepsHighDynamicRange(t *testing.T) {
	px := make([]common.Color, 8*2)
	for i := range px {
		px[i] = common.Color{40, 20, 10}
	}
	m, err := Decode("mem://bright.hdr", encodeRGBE(t, 8, 2, px, true), 0)
	require.NoError(t, err)
	assert.InEpsilon(t, 40, m.Sample(mgl32.Vec3{0, 0, -1}, 0)[0], 0.01)
}

func TestDecodeRGBERejectsBadHeader(t *testing.T) {
	_, err := Decode("mem://bad.hdr", []byte("#?RADIANCE\nFORMAT=32-bit_rle_xyze\n\n-Y 1 +X 1\n"), 0)
	assert.ErrorIs(t, err, errUnsupportedRGBEFormat)

	_, err = Decode("mem://bad.hdr", []byte("#?RADIANCE\n\n-Y 2 +X 8\n\x02\x02\x00\x09"), 0)
	assert.Error(t, err)
}

func TestDecodeRGBERejectsOversizedHeader(t *testing.T) {
	for _, res := range []string{"-Y 2147483647 +X 2147483647", "-Y 32768 +X 8", "-Y 32767 +X 32767"} {
		_, err := Decode("mem://huge.hdr", []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n"+res+"\n"), 0)
		assert.ErrorIs(t, err, errInvalidRGBEHeader, res)
	}
}

func TestDecodePNGLinearizes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := range 4 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 255, G: 188, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	m, err := Decode("mem://ldr.png", buf.Bytes(), 0)
	require.NoError(t, err)
	got := m.Texel(0, 3, 2)
	assert.InDelta(t, 1, got[0], 1e-4)
	assert.InDelta(t, common.SRGBToLinear(188.0/255), got[1], 1e-3)
	assert.InDelta(t, 0, got[2], 1e-4)
}

func TestDecodeLimitsWidth(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	m, err := Decode("mem://wide.png", buf.Bytes(), 16)
	require.NoError(t, err)
	assert.Equal(t, 16, m.Width())
	assert.Equal(t, 8, m.Height())

	hdr, err := Decode("mem://wide.hdr", encodeRGBE(t, 64, 32, testPixels(64, 32), true), 16)
	require.NoError(t, err)
	assert.Equal(t, 16, hdr.Width())
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode("mem://notes.txt", []byte("hello, not an image"), 0)
	assert.ErrorIs(t, err, errUnsupportedFormat)
}

func TestUniformSampleAndMips(t *testing.T) {
	c := common.Color{2, 3, 4}
	m := Uniform("uniform", c)

	for _, dir := range []mgl32.Vec3{{0, 1, 0}, {1, 0, 0}, {0, -1, 0}, {0.3, 0.2, -0.9}, {}} {
		for _, lod := range []float32{0, 1.5, 99} {
			assert.True(t, c.ApproxEqual(m.Sample(dir, lod)), "dir %v lod %v", dir, lod)
		}
	}
	assert.Equal(t, 4, m.Levels())
	assert.True(t, c.ApproxEqual(m.Average()))
}

func TestSampleFollowsDirection(t *testing.T) {
	// Bright upper half, dark lower half.
	w, h := 16, 8
	px := make([]common.Color, w*h)
	for y := range h {
		for x := range w {
			if y < h/2 {
				px[y*w+x] = common.Color{10, 10, 10}
			}
		}
	}
	m, err := NewMap("split", w, h, px)
	require.NoError(t, err)

	up := m.Sample(mgl32.Vec3{0, 1, 0}, 0)
	down := m.Sample(mgl32.Vec3{0, -1, 0}, 0)
	assert.Greater(t, up[0], float32(9))
	assert.Less(t, down[0], float32(1))
	assert.InDelta(t, 5, m.Average()[0], 1e-3)
}

func TestEquirectRoundTrip(t *testing.T) {
	for _, d := range []mgl32.Vec3{{0, 0, -1}, {1, 0, 0}, {0.5, 0.5, 0.2}, {-0.3, -0.8, 0.4}} {
		d = d.Normalize()
		u, v := common.DirectionToEquirect(d)
		back := common.EquirectToDirection(u, v)
		for i := range 3 {
			assert.InDelta(t, d[i], back[i], 1e-4, "%v != %v", d, back)
		}
	}
}

func TestNewMapRejectsMismatch(t *testing.T) {
	_, err := NewMap("x", 4, 4, make([]common.Color, 3))
	assert.ErrorIs(t, err, errEmptyMap)
}

type countingFetcher struct {
	calls atomic.Int32
	data  map[string][]byte
	delay time.Duration
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	d, ok := f.data[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return d, nil
}

func newCountingFetcher(t *testing.T) *countingFetcher {
	return &countingFetcher{data: map[string][]byte{
		"https://example.test/studio.hdr": encodeRGBE(t, 16, 8, testPixels(16, 8), true),
	}}
}

func TestProviderLoadIsIdempotent(t *testing.T) {
	f := newCountingFetcher(t)
	p := NewProvider(WithFetcher(f))

	a, err := p.Load(context.Background(), "https://example.test/studio.hdr")
	require.NoError(t, err)
	b, err := p.Load(context.Background(), "https://example.test/studio.hdr")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.EqualValues(t, 1, f.calls.Load())
	assert.EqualValues(t, 1, p.Loads())
}

func TestProviderUnreachableURL(t *testing.T) {
	f := newCountingFetcher(t)
	p := NewProvider(WithFetcher(f))
	good, err := p.Load(context.Background(), "https://example.test/studio.hdr")
	require.NoError(t, err)

	_, err = p.Load(context.Background(), "https://example.test/missing.hdr")
	var le *resource.ResourceLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "environment", le.Kind)
	assert.Equal(t, "https://example.test/missing.hdr", le.URL)
	assert.Equal(t, err, p.Err("https://example.test/missing.hdr"))

	again, err := p.Load(context.Background(), "https://example.test/studio.hdr")
	require.NoError(t, err)
	assert.Same(t, good, again)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestProviderMalformedSource(t *testing.T) {
	f := &countingFetcher{data: map[string][]byte{"bad": []byte("#?RADIANCE\ngarbage")}}
	p := NewProvider(WithFetcher(f))

	_, err := p.Load(context.Background(), "bad")
	var le *resource.ResourceLoadError
	assert.ErrorAs(t, err, &le)
}

func TestProviderOversizedSourceIsLoadError(t *testing.T) {
	f := &countingFetcher{data: map[string][]byte{
		"huge": []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 2147483647 +X 2147483647\n"),
	}}
	p := NewProvider(WithFetcher(f))

	_, err := p.Load(context.Background(), "huge")
	var le *resource.ResourceLoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "huge", le.URL)
}

func TestProviderRequestLoadsInBackground(t *testing.T) {
	f := newCountingFetcher(t)
	f.delay = 20 * time.Millisecond
	p := NewProvider(WithFetcher(f))
	url := "https://example.test/studio.hdr"

	m, ok := p.Request(url)
	assert.Nil(t, m)
	assert.False(t, ok)

	require.Eventually(t, func() bool {
		_, ok := p.Request(url)
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestProviderRequestRecordsFailure(t *testing.T) {
	f := newCountingFetcher(t)
	p := NewProvider(WithFetcher(f))
	url := "https://example.test/missing.hdr"

	_, ok := p.Request(url)
	assert.False(t, ok)
	require.Eventually(t, func() bool { return p.Err(url) != nil }, 2*time.Second, 5*time.Millisecond)

	_, ok = p.Request(url)
	assert.False(t, ok)
	assert.EqualValues(t, 1, f.calls.Load())
}

func TestProviderPreloadedMap(t *testing.T) {
	m := Uniform("placeholder", common.White)
	p := NewProvider(WithMap("placeholder", m), WithFetcher(newCountingFetcher(t)))

	got, ok := p.Request("placeholder")
	assert.True(t, ok)
	assert.Same(t, m, got)
	assert.Zero(t, p.Loads())
}
