// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

var errInvalidHexColor = errors.New("invalid hex color")

// Color is a linear RGB color. Components are unbounded above so the same type carries
// HDR radiance through the shading and post-processing passes.
type Color [3]float32

// Black and White are the two colors every pass needs a name for.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// ParseHex parses a CSS style hex color (#rgb or #rrggbb, the leading '#' is optional) and
// returns it converted from sRGB into linear space.
//
// Parameters:
//   - s: the hex string to parse
//
// Returns:
//   - Color: the linear color
//   - error: error if the string is not a valid hex color
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", errInvalidHexColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", errInvalidHexColor, s)
	}
	return FromSRGB8(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// MustParseHex is ParseHex for package-level literals. It panics on malformed input.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromSRGB8 converts an 8-bit sRGB triple to a linear Color.
func FromSRGB8(r, g, b uint8) Color {
	return Color{SRGBToLinear(float32(r) / 255), SRGBToLinear(float32(g) / 255), SRGBToLinear(float32(b) / 255)}
}

// Hex formats the color as a lowercase #rrggbb sRGB string. Components are clipped to [0, 1].
func (c Color) Hex() string {
	r, g, b := c.SRGB8()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// SRGB8 encodes the color to clipped 8-bit sRGB.
func (c Color) SRGB8() (r, g, b uint8) {
	return quantize(LinearToSRGB(c[0])), quantize(LinearToSRGB(c[1])), quantize(LinearToSRGB(c[2]))
}

func (c Color) Add(o Color) Color {
	return Color{c[0] + o[0], c[1] + o[1], c[2] + o[2]}
}

func (c Color) Mul(o Color) Color {
	return Color{c[0] * o[0], c[1] * o[1], c[2] * o[2]}
}

func (c Color) Scale(s float32) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s}
}

// Lerp blends from c towards o by t.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{c[0] + (o[0]-c[0])*t, c[1] + (o[1]-c[1])*t, c[2] + (o[2]-c[2])*t}
}

// Luminance returns the Rec. 709 relative luminance.
func (c Color) Luminance() float32 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

// ApproxEqual reports whether every component differs by less than 1e-4.
func (c Color) ApproxEqual(o Color) bool {
	for i := range c {
		if math32.Abs(c[i]-o[i]) > 1e-4 {
			return false
		}
	}
	return true
}

// SRGBToLinear applies the sRGB electro-optical transfer function to a single channel.
func SRGBToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSRGB applies the inverse sRGB transfer function to a single channel. Input is clipped to [0, 1].
func LinearToSRGB(v float32) float32 {
	v = Clamp01(v)
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}

func quantize(v float32) uint8 {
	return uint8(Clamp01(v)*255 + 0.5)
}
