package light

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square is a 2x2 horizontal occluder at height 1.
func square() [][3]mgl32.Vec3 {
	a := mgl32.Vec3{-1, 1, -1}
	b := mgl32.Vec3{1, 1, -1}
	c := mgl32.Vec3{1, 1, 1}
	d := mgl32.Vec3{-1, 1, 1}
	return [][3]mgl32.Vec3{{a, b, c}, {a, c, d}}
}

func overhead() RandomizedLight {
	return RandomizedLight{Position: mgl32.Vec3{0, 10, 0}, Amount: 2, MapSize: 64}
}

func newTestAccumulator(options ...AccumulatorBuilderOption) Accumulator {
	base := []AccumulatorBuilderOption{
		WithPlane(10, 20),
		WithRandomizedLight(RandomizedLight{Position: mgl32.Vec3{10, 5, -5}, Radius: 5, Amount: 2, Ambient: 0.5, MapSize: 32}),
		WithSeed(7),
	}
	return NewAccumulator(append(base, options...)...)
}

func TestAccumulator_StartsIdle(t *testing.T) {
	a := newTestAccumulator()
	assert.Equal(t, StateIdle, a.State())
	assert.Equal(t, 0, a.FrameCount())
	assert.Equal(t, DefaultFrames, a.Target())
	for _, v := range a.Buffer() {
		require.Zero(t, v)
	}
}

func TestAccumulator_ShadowUnderOccluder(t *testing.T) {
	a := NewAccumulator(WithPlane(10, 20), WithRandomizedLight(overhead()))
	require.True(t, a.Step(square()))

	buf := a.Buffer()
	assert.InDelta(t, 0, buf[10*20+10], 1e-6, "under the square")
	assert.InDelta(t, 1, buf[0], 1e-6, "plane corner")

	snap := a.Snapshot()
	lit, ok := snap.At(0.25, 0.25)
	require.True(t, ok)
	assert.InDelta(t, 0, lit, 1e-6)
	_, ok = snap.At(6, 0)
	assert.False(t, ok)
}

func TestAccumulator_ConvergesAtTarget(t *testing.T) {
	a := newTestAccumulator(WithFrames(12))
	occ := square()

	prev := 0
	for range 12 {
		require.True(t, a.Step(occ))
		assert.Equal(t, prev+1, a.FrameCount())
		prev = a.FrameCount()
	}
	assert.Equal(t, StateConverged, a.State())
	assert.Equal(t, 12, a.FrameCount())

	frozen := a.Buffer()
	snap := a.Snapshot()
	for range 5 {
		assert.False(t, a.Step(occ))
	}
	assert.Equal(t, 12, a.FrameCount())
	assert.Equal(t, frozen, a.Buffer())
	assert.Same(t, snap, a.Snapshot())
}

func TestAccumulator_Resets(t *testing.T) {
	tests := []struct {
		name   string
		change func(a Accumulator)
		reset  bool
	}{
		{"changed tint", func(a Accumulator) { a.SetTint(common.MustParseHex("#f67d7d")) }, true},
		{"same tint", func(a Accumulator) { a.SetTint(a.Tint()) }, false},
		{"invalidate", func(a Accumulator) { a.Invalidate() }, true},
		{"moved light", func(a Accumulator) {
			l := a.Light()
			l.Position = l.Position.Add(mgl32.Vec3{1, 0, 0})
			a.SetLight(l)
		}, true},
		{"wider light", func(a Accumulator) {
			l := a.Light()
			l.Radius++
			a.SetLight(l)
		}, true},
		{"same light", func(a Accumulator) { a.SetLight(a.Light()) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAccumulator(WithFrames(3))
			for range 3 {
				a.Step(square())
			}
			require.Equal(t, StateConverged, a.State())

			tt.change(a)
			if tt.reset {
				assert.Equal(t, StateAccumulating, a.State())
				assert.Equal(t, 0, a.FrameCount())
				assert.Zero(t, a.Snapshot().FrameCount)
			} else {
				assert.Equal(t, StateConverged, a.State())
				assert.Equal(t, 3, a.FrameCount())
			}
		})
	}
}

func TestAccumulator_ChangesBeforeFirstStepStayIdle(t *testing.T) {
	a := newTestAccumulator(WithFrames(3))
	a.SetTint(common.MustParseHex("#ffffff"))
	a.Invalidate()
	l := a.Light()
	l.Radius++
	a.SetLight(l)

	assert.Equal(t, StateIdle, a.State())
	assert.Equal(t, 0, a.FrameCount())
	assert.Equal(t, common.MustParseHex("#ffffff"), a.Tint())

	require.True(t, a.Step(square()))
	assert.Equal(t, StateAccumulating, a.State())
	assert.Equal(t, 1, a.FrameCount())
}

func TestAccumulator_Deterministic(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 64, time.Second)
	defer pool.Stop()

	serial := newTestAccumulator(WithFrames(4))
	parallel := newTestAccumulator(WithFrames(4), WithRasterizer(raster.NewRasterizer(pool, raster.WithBandHeight(4))))
	for range 4 {
		serial.Step(square())
		parallel.Step(square())
	}
	assert.Equal(t, serial.Buffer(), parallel.Buffer())

	// A reset replays the same light sequence.
	first := serial.Buffer()
	serial.Invalidate()
	for range 4 {
		serial.Step(square())
	}
	assert.Equal(t, first, serial.Buffer())
}

func TestShadowSnapshot_Shade(t *testing.T) {
	tint := common.MustParseHex("#336699")
	s := &ShadowSnapshot{Opacity: 1.05, AlphaTest: 0.75, ColorBlend: 2, Tint: tint}

	_, alpha := s.Shade(0)
	assert.Zero(t, alpha, "no shadow before the first frame")

	s.FrameCount = 1
	c, alpha := s.Shade(0)
	assert.Equal(t, common.Color{}, c)
	assert.InDelta(t, 1, alpha, 1e-6)

	c, alpha = s.Shade(0.1)
	assert.InDelta(t, (1-0.4)*1.05, alpha, 1e-5)
	assert.InDelta(t, tint[0]*0.2, c[0], 1e-6)

	_, alpha = s.Shade(0.5)
	assert.Zero(t, alpha)
}
