package renderer

import (
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the render target of one tick: linear HDR color plus the geometry buffers the
// screen-space passes read. All slices are row-major with Width*Height entries.
type Frame struct {
	Width  int
	Height int

	// Color is linear radiance. Values above 1 are kept for bloom.
	Color []common.Color

	// Depth is the [0, 1] depth of the nearest opaque surface, 1 where only background was drawn.
	Depth []float32

	// Position and Normal are view-space, valid where Geometry is set.
	Position []mgl32.Vec3
	Normal   []mgl32.Vec3

	// Geometry marks pixels covered by an opaque surface.
	Geometry []bool

	// Projection is the camera projection the frame was rendered with.
	Projection mgl32.Mat4
}

// NewFrame allocates a cleared frame.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - *Frame: the frame
func NewFrame(width, height int) *Frame {
	n := width * height
	f := &Frame{
		Width:    width,
		Height:   height,
		Color:    make([]common.Color, n),
		Depth:    make([]float32, n),
		Position: make([]mgl32.Vec3, n),
		Normal:   make([]mgl32.Vec3, n),
		Geometry: make([]bool, n),
	}
	f.Clear(common.Black)
	return f
}

// Clear fills the color buffer and resets the geometry buffers.
func (f *Frame) Clear(c common.Color) {
	for i := range f.Color {
		f.Color[i] = c
		f.Depth[i] = 1
	}
	clear(f.Position)
	clear(f.Normal)
	clear(f.Geometry)
}

// Index returns the slice index of pixel (x, y).
func (f *Frame) Index(x, y int) int {
	return y*f.Width + x
}

// At returns the color at (x, y) with coordinates clamped to the frame.
func (f *Frame) At(x, y int) common.Color {
	x = min(max(x, 0), f.Width-1)
	y = min(max(y, 0), f.Height-1)
	return f.Color[y*f.Width+x]
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Width:    f.Width,
		Height:   f.Height,
		Color:    append([]common.Color(nil), f.Color...),
		Depth:    append([]float32(nil), f.Depth...),
		Position: append([]mgl32.Vec3(nil), f.Position...),
		Normal:   append([]mgl32.Vec3(nil), f.Normal...),
		Geometry: append([]bool(nil), f.Geometry...),

		Projection: f.Projection,
	}
	return c
}
