package raster

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultBandHeight is the number of rows each worker task scans.
const DefaultBandHeight = 16

// minW rejects triangles touching or crossing the eye plane. Nothing in a ring scene reaches the near plane,
// so triangles are culled there instead of clipped.
const minW = 1e-5

// Triangle is a screen-space triangle produced by Setup.
type Triangle struct {
	// X and Y are pixel coordinates with +Y down.
	X, Y [3]float32

	// Z is the depth of each corner mapped to [0, 1].
	Z [3]float32

	// InvW is 1/w of each corner, used for perspective-correct interpolation.
	InvW [3]float32

	// FrontFacing is true when the corners are counter-clockwise in normalized device coordinates.
	FrontFacing bool

	area                   float32
	order                  [3]int
	minX, maxX, minY, maxY int
}

// Fragment is one covered pixel of a triangle.
type Fragment struct {
	X, Y int

	// Depth is the interpolated [0, 1] depth.
	Depth float32

	// Bary are perspective-correct barycentric weights of the triangle's corners.
	Bary [3]float32
}

// Setup converts clip-space corners to a screen-space triangle for a width x height target.
//
// Parameters:
//   - clip: the corners in clip space
//   - width, height: the target size in pixels
//
// Returns:
//   - Triangle: the prepared triangle
//   - bool: false if the triangle is degenerate, behind the eye or entirely off screen
func Setup(clip [3]mgl32.Vec4, width, height int) (Triangle, bool) {
	var t Triangle
	for i, c := range clip {
		if c[3] < minW {
			return t, false
		}
		inv := 1 / c[3]
		t.InvW[i] = inv
		t.X[i] = (c[0]*inv*0.5 + 0.5) * float32(width)
		t.Y[i] = (0.5 - c[1]*inv*0.5) * float32(height)
		t.Z[i] = c[2]*inv*0.5 + 0.5
	}

	// Screen Y is flipped, so a counter-clockwise NDC triangle has negative area here.
	area := edge(t.X[0], t.Y[0], t.X[1], t.Y[1], t.X[2], t.Y[2])
	if area == 0 || math32.IsNaN(area) {
		return t, false
	}
	t.FrontFacing = area < 0
	t.order = [3]int{0, 1, 2}
	if area < 0 {
		t.order = [3]int{0, 2, 1}
		area = -area
	}
	t.area = area

	minX := min(t.X[0], t.X[1], t.X[2])
	maxX := max(t.X[0], t.X[1], t.X[2])
	minY := min(t.Y[0], t.Y[1], t.Y[2])
	maxY := max(t.Y[0], t.Y[1], t.Y[2])
	t.minX = max(int(math32.Floor(minX)), 0)
	t.maxX = min(int(math32.Ceil(maxX)), width-1)
	t.minY = max(int(math32.Floor(minY)), 0)
	t.maxY = min(int(math32.Ceil(maxY)), height-1)
	if t.minX > t.maxX || t.minY > t.maxY {
		return t, false
	}
	return t, true
}

// edge is twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// owns decides which of two triangles sharing edge a->b covers pixels exactly on it. The rule is
// antisymmetric in a and b, so neighbours never both draw a shared edge.
func owns(ax, ay, bx, by float32) bool {
	return ay < by || (ay == by && ax > bx)
}

// scanRows emits fragments of t for rows y0 (inclusive) to y1 (exclusive).
func (t *Triangle) scanRows(y0, y1 int, emit func(Fragment)) {
	y0 = max(y0, t.minY)
	y1 = min(y1, t.maxY+1)
	if y0 >= y1 {
		return
	}
	a, b, c := t.order[0], t.order[1], t.order[2]
	ax, ay, bx, by, cx, cy := t.X[a], t.Y[a], t.X[b], t.Y[b], t.X[c], t.Y[c]
	ownA, ownB, ownC := owns(bx, by, cx, cy), owns(cx, cy, ax, ay), owns(ax, ay, bx, by)
	inv := 1 / t.area

	for y := y0; y < y1; y++ {
		py := float32(y) + 0.5
		for x := t.minX; x <= t.maxX; x++ {
			px := float32(x) + 0.5
			wa := edge(bx, by, cx, cy, px, py)
			wb := edge(cx, cy, ax, ay, px, py)
			wc := edge(ax, ay, bx, by, px, py)
			if wa < 0 || wb < 0 || wc < 0 ||
				(wa == 0 && !ownA) || (wb == 0 && !ownB) || (wc == 0 && !ownC) {
				continue
			}

			var s [3]float32
			s[a], s[b], s[c] = wa*inv, wb*inv, wc*inv

			f := Fragment{X: x, Y: y, Depth: s[0]*t.Z[0] + s[1]*t.Z[1] + s[2]*t.Z[2]}
			p0, p1, p2 := s[0]*t.InvW[0], s[1]*t.InvW[1], s[2]*t.InvW[2]
			norm := 1 / (p0 + p1 + p2)
			f.Bary = [3]float32{p0 * norm, p1 * norm, p2 * norm}
			emit(f)
		}
	}
}

// rasterizerImpl is the implementation of the Rasterizer interface.
type rasterizerImpl struct {
	pool       worker.DynamicWorkerPool
	bandHeight int
	taskID     atomic.Int64
}

// Rasterizer scan-converts triangles and runs per-row work split into horizontal bands.
// Bands run concurrently on a worker pool; every band owns its rows, so callbacks may write per-pixel
// state for the pixel they are given without locking. Within a band triangles are visited in order,
// so results are deterministic.
type Rasterizer interface {
	// Draw emits every covered pixel of every triangle.
	//
	// Parameters:
	//   - width, height: the target size in pixels
	//   - tris: the triangles, in draw order
	//   - frag: called once per covered pixel with the triangle index and the fragment
	Draw(width, height int, tris []Triangle, frag func(tri int, f Fragment))

	// Rows calls fn for consecutive row ranges covering [0, height) and returns after all calls finish.
	//
	// Parameters:
	//   - height: the number of rows
	//   - fn: called with each half-open row range
	Rows(height int, fn func(y0, y1 int))

	// Workers returns the pool size, or 1 when running serially.
	//
	// Returns:
	//   - int: the worker count
	Workers() int
}

var _ Rasterizer = &rasterizerImpl{}

// NewRasterizer creates a Rasterizer. A nil pool runs every band on the calling goroutine.
//
// Parameters:
//   - pool: the worker pool, or nil
//   - options: variadic list of RasterizerBuilderOption functions
//
// Returns:
//   - Rasterizer: the new rasterizer
func NewRasterizer(pool worker.DynamicWorkerPool, options ...RasterizerBuilderOption) Rasterizer {
	r := &rasterizerImpl{pool: pool, bandHeight: DefaultBandHeight}
	for _, opt := range options {
		opt(r)
	}
	if r.bandHeight < 1 {
		r.bandHeight = 1
	}
	return r
}

func (r *rasterizerImpl) Workers() int {
	if r.pool == nil {
		return 1
	}
	return r.pool.GetMaxWorkers()
}

func (r *rasterizerImpl) Rows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}
	if r.pool == nil || height <= r.bandHeight {
		for y := 0; y < height; y += r.bandHeight {
			fn(y, min(y+r.bandHeight, height))
		}
		return
	}

	var wg sync.WaitGroup
	for y := 0; y < height; y += r.bandHeight {
		y0, y1 := y, min(y+r.bandHeight, height)
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: int(r.taskID.Add(1)),
			Do: func() (any, error) {
				defer wg.Done()
				fn(y0, y1)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (r *rasterizerImpl) Draw(width, height int, tris []Triangle, frag func(tri int, f Fragment)) {
	if len(tris) == 0 || width <= 0 || height <= 0 {
		return
	}
	r.Rows(height, func(y0, y1 int) {
		for i := range tris {
			t := &tris[i]
			if t.maxY < y0 || t.minY >= y1 {
				continue
			}
			t.scanRows(y0, y1, func(f Fragment) { frag(i, f) })
		}
	})
}
