package environment

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errUnsupportedFormat = errors.New("unsupported environment image format")

// Decode turns encoded image bytes into a Map. Radiance .hdr files keep their full dynamic range;
// 8-bit formats (PNG, JPEG, WebP, BMP, TIFF) are converted from sRGB to linear radiance.
// Maps wider than maxWidth are reduced before the mip chain is built; maxWidth <= 0 keeps the source size.
//
// Parameters:
//   - url: the source identifier
//   - data: the encoded image
//   - maxWidth: the widest base level to keep
//
// Returns:
//   - *Map: the decoded map
//   - error: error if the data is not a supported image
func Decode(url string, data []byte, maxWidth int) (*Map, error) {
	if isRadiance(data) {
		w, h, px, err := decodeRGBE(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		m, err := NewMap(url, w, h, px)
		if err != nil {
			return nil, err
		}
		return m.limitWidth(maxWidth), nil
	}

	if !filetype.IsImage(data) {
		return nil, errUnsupportedFormat
	}
	kind, _ := filetype.Match(data)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errUnsupportedFormat, kind.Extension, err)
	}

	b := img.Bounds()
	if maxWidth > 0 && b.Dx() > maxWidth {
		h := max(b.Dy()*maxWidth/b.Dx(), 1)
		img = transform.Resize(img, maxWidth, h, transform.Linear)
		b = img.Bounds()
	}

	w, h := b.Dx(), b.Dy()
	px := make([]common.Color, w*h)
	for y := range h {
		for x := range w {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			px[y*w+x] = common.Color{
				common.SRGBToLinear(float32(r) / 0xffff),
				common.SRGBToLinear(float32(g) / 0xffff),
				common.SRGBToLinear(float32(bl) / 0xffff),
			}
		}
	}
	return NewMap(url, w, h, px)
}

// limitWidth drops leading mip levels until the base is at most maxWidth wide.
func (m *Map) limitWidth(maxWidth int) *Map {
	if maxWidth <= 0 {
		return m
	}
	i := 0
	for i < len(m.levels)-1 && m.levels[i].width > maxWidth {
		i++
	}
	if i == 0 {
		return m
	}
	return &Map{url: m.url, levels: m.levels[i:]}
}
