package raster

import (
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad(z float32) [][3]mgl32.Vec4 {
	bl := mgl32.Vec4{-1, -1, z, 1}
	br := mgl32.Vec4{1, -1, z, 1}
	tr := mgl32.Vec4{1, 1, z, 1}
	tl := mgl32.Vec4{-1, 1, z, 1}
	return [][3]mgl32.Vec4{{bl, br, tr}, {bl, tr, tl}}
}

func setupAll(t *testing.T, clips [][3]mgl32.Vec4, w, h int) []Triangle {
	t.Helper()
	tris := make([]Triangle, 0, len(clips))
	for _, c := range clips {
		tri, ok := Setup(c, w, h)
		require.True(t, ok)
		tris = append(tris, tri)
	}
	return tris
}

func TestSetup_Rejects(t *testing.T) {
	_, ok := Setup([3]mgl32.Vec4{{0, 0, 0, 1}, {1, 0, 0, 1}, {2, 0, 0, 1}}, 8, 8)
	assert.False(t, ok, "degenerate")

	_, ok = Setup([3]mgl32.Vec4{{0, 0, 0, -1}, {1, 0, 0, 1}, {0, 1, 0, 1}}, 8, 8)
	assert.False(t, ok, "behind the eye")

	_, ok = Setup([3]mgl32.Vec4{{3, 3, 0, 1}, {4, 3, 0, 1}, {3, 4, 0, 1}}, 8, 8)
	assert.False(t, ok, "off screen")
}

func TestSetup_Winding(t *testing.T) {
	ccw, ok := Setup([3]mgl32.Vec4{{-1, -1, 0, 1}, {1, -1, 0, 1}, {0, 1, 0, 1}}, 8, 8)
	require.True(t, ok)
	assert.True(t, ccw.FrontFacing)

	cw, ok := Setup([3]mgl32.Vec4{{-1, -1, 0, 1}, {0, 1, 0, 1}, {1, -1, 0, 1}}, 8, 8)
	require.True(t, ok)
	assert.False(t, cw.FrontFacing)
}

func TestDraw_SharedEdgeCoveredOnce(t *testing.T) {
	const w, h = 17, 13
	tris := setupAll(t, quad(0), w, h)

	hits := make([]int, w*h)
	NewRasterizer(nil).Draw(w, h, tris, func(_ int, f Fragment) {
		hits[f.Y*w+f.X]++
	})
	for i, n := range hits {
		require.Equal(t, 1, n, "pixel %d,%d", i%w, i/w)
	}
}

func TestDraw_DepthAndBarycentrics(t *testing.T) {
	const w, h = 16, 16
	tris := setupAll(t, [][3]mgl32.Vec4{{
		{-1, -1, -1, 1},
		{1, -1, 1, 1},
		{-1, 1, 1, 1},
	}}, w, h)

	count := 0
	NewRasterizer(nil).Draw(w, h, tris, func(_ int, f Fragment) {
		count++
		assert.InDelta(t, 1, f.Bary[0]+f.Bary[1]+f.Bary[2], 1e-5)
		assert.GreaterOrEqual(t, f.Depth, float32(0))
		assert.LessOrEqual(t, f.Depth, float32(1))
		// With w = 1 everywhere, depth is the weighted corner depth.
		want := f.Bary[0]*0 + f.Bary[1]*1 + f.Bary[2]*1
		assert.InDelta(t, want, f.Depth, 1e-5)
	})
	assert.InDelta(t, w*h/2, count, float64(w))
}

func TestDraw_PerspectiveCorrect(t *testing.T) {
	// The right corner is four times farther away; screen-space halfway is not attribute halfway.
	const w, h = 64, 64
	tris := setupAll(t, [][3]mgl32.Vec4{{
		{-1, -1, 0, 1},
		{4, -4, 0, 4},
		{-1, 1, 0, 1},
	}}, w, h)

	var mid Fragment
	found := false
	NewRasterizer(nil).Draw(w, h, tris, func(_ int, f Fragment) {
		if f.X == w/2 && f.Y == h/2 {
			mid, found = f, true
		}
	})
	require.True(t, found)
	assert.Less(t, mid.Bary[1], float32(0.5))
}

func TestRows_CoversAllRows(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 64, time.Second)
	pool.Start()
	defer pool.Stop()

	r := NewRasterizer(pool, WithBandHeight(3))
	assert.Equal(t, 4, r.Workers())

	var mu sync.Mutex
	seen := make(map[int]int)
	r.Rows(50, func(y0, y1 int) {
		mu.Lock()
		defer mu.Unlock()
		for y := y0; y < y1; y++ {
			seen[y]++
		}
	})
	require.Len(t, seen, 50)
	for y, n := range seen {
		assert.Equal(t, 1, n, "row %d", y)
	}
}

func TestDraw_ParallelMatchesSerial(t *testing.T) {
	const w, h = 48, 40
	clips := append(quad(0.5), [3]mgl32.Vec4{{-0.5, -0.5, -0.2, 1}, {0.9, -0.3, 0.1, 1}, {0, 0.8, 0, 1}})
	tris := setupAll(t, clips, w, h)

	render := func(r Rasterizer) []int {
		owner := make([]int, w*h)
		depth := make([]float32, w*h)
		for i := range depth {
			depth[i] = 1
		}
		r.Draw(w, h, tris, func(tri int, f Fragment) {
			i := f.Y*w + f.X
			if f.Depth < depth[i] {
				depth[i] = f.Depth
				owner[i] = tri + 1
			}
		})
		return owner
	}

	pool := worker.NewDynamicWorkerPool(3, 32, time.Second)
	pool.Start()
	defer pool.Stop()

	serial := render(NewRasterizer(nil))
	parallel := render(NewRasterizer(pool, WithBandHeight(5)))
	assert.Equal(t, serial, parallel)
	assert.Contains(t, serial, 3)
}
