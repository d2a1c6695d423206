package renderer

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
)

// Encode converts a frame to 8-bit sRGB. Radiance outside [0, 1] is clipped.
//
// Parameters:
//   - f: the frame
//
// Returns:
//   - *image.RGBA: the encoded image
func Encode(f *Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < f.Width; x++ {
			r, g, b := f.Color[y*f.Width+x].SRGB8()
			row[x*4+0] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = 0xff
		}
	}
	return img
}

// EncodeScaled encodes a frame rendered at a device pixel ratio above one and resamples it to the
// logical output size.
//
// Parameters:
//   - f: the frame
//   - width, height: the output size in pixels
//
// Returns:
//   - *image.RGBA: the encoded image at width x height
func EncodeScaled(f *Frame, width, height int) *image.RGBA {
	img := Encode(f)
	if width <= 0 || height <= 0 || (width == f.Width && height == f.Height) {
		return img
	}
	return transform.Resize(img, width, height, transform.Lanczos)
}
