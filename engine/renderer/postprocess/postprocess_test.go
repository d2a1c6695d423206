package postprocess

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const size = 32

// ridgedFrame is covered by geometry whose odd columns stand slightly proud of the even ones, so the
// even columns are occluded. The center pixel is very bright.
func ridgedFrame() *renderer.Frame {
	f := renderer.NewFrame(size, size)
	f.Projection = mgl32.Perspective(mgl32.DegToRad(20), 1, 0.1, 100)
	for y := range size {
		for x := range size {
			i := f.Index(x, y)
			z := float32(-5)
			if x%2 == 1 {
				z = -4.9
			}
			f.Position[i] = mgl32.Vec3{0.01 * float32(x-size/2), 0.01 * float32(size/2-y), z}
			f.Normal[i] = mgl32.Vec3{0, 0, 1}
			f.Geometry[i] = true
			f.Color[i] = common.Color{0.1, 0.1, 0.1}
		}
	}
	f.Color[f.Index(size/2, size/2)] = common.Color{100, 100, 100}
	return f
}

func effects(t *testing.T) (ao, bloom, tm Effect) {
	t.Helper()
	tm, err := NewToneMapping("aces")
	require.NoError(t, err)
	return NewAmbientOcclusion(DefaultAmbientOcclusion()), NewBloom(DefaultBloom()), tm
}

func TestNewChain_Order(t *testing.T) {
	ao, bloom, tm := effects(t)

	c, err := NewChain([]Effect{ao, bloom, tm})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindAmbientOcclusion, KindBloom, KindToneMapping}, c.Kinds())

	_, err = NewChain([]Effect{ao, tm})
	assert.NoError(t, err, "skipping an effect keeps the order")

	for _, bad := range [][]Effect{{bloom, ao, tm}, {ao, tm, bloom}, {ao, ao}} {
		_, err := NewChain(bad)
		assert.True(t, errors.Is(err, ErrChainOrder))
	}
}

func TestEffectOrderChangesImage(t *testing.T) {
	ao, bloom, tm := effects(t)
	rows := raster.NewRasterizer(nil)

	canonical := ridgedFrame()
	for _, e := range []Effect{ao, bloom, tm} {
		e.Apply(canonical, rows)
	}
	swapped := ridgedFrame()
	for _, e := range []Effect{bloom, ao, tm} {
		e.Apply(swapped, rows)
	}
	assert.NotEqual(t, canonical.Color, swapped.Color)
}

func TestAmbientOcclusion(t *testing.T) {
	f := ridgedFrame()
	NewAmbientOcclusion(DefaultAmbientOcclusion()).Apply(f, raster.NewRasterizer(nil))

	even := f.Color[f.Index(10, 10)]
	odd := f.Color[f.Index(11, 10)]
	assert.Less(t, even[0], float32(0.1), "recessed column is darkened")
	assert.InDelta(t, 0.1, odd[0], 1e-6, "raised column is open")

	flat := renderer.NewFrame(size, size)
	flat.Clear(common.Color{0.3, 0.3, 0.3})
	flat.Projection = f.Projection
	NewAmbientOcclusion(DefaultAmbientOcclusion()).Apply(flat, raster.NewRasterizer(nil))
	assert.Equal(t, common.Color{0.3, 0.3, 0.3}, flat.Color[0], "background is untouched")
}

func TestBloom(t *testing.T) {
	rows := raster.NewRasterizer(nil)

	dim := renderer.NewFrame(size, size)
	dim.Clear(common.Color{1, 1, 1})
	NewBloom(DefaultBloom()).Apply(dim, rows)
	assert.Equal(t, common.Color{1, 1, 1}, dim.Color[dim.Index(5, 5)], "nothing above the threshold")

	bright := renderer.NewFrame(size, size)
	bright.Color[bright.Index(size/2, size/2)] = common.Color{50, 50, 50}
	NewBloom(DefaultBloom()).Apply(bright, rows)
	near := bright.Color[bright.Index(size/2+2, size/2)]
	assert.Greater(t, near[0], float32(0), "light spreads to neighbours")
	assert.Greater(t, bright.Color[bright.Index(size/2, size/2)][0], float32(50))
}

func TestToneMapping(t *testing.T) {
	f := renderer.NewFrame(4, 4)
	f.Clear(common.Color{20, 0.5, 0})
	tm, err := NewToneMapping("reinhard")
	require.NoError(t, err)
	tm.Apply(f, raster.NewRasterizer(nil))
	assert.InDelta(t, 20.0/21, f.Color[0][0], 1e-5)
	assert.InDelta(t, 0.5/1.5, f.Color[0][1], 1e-5)

	_, err = NewToneMapping("filmic")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	configurator, err := config.Default(config.ViewConfigurator)
	require.NoError(t, err)
	c, err := FromConfig(configurator.Post)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindAmbientOcclusion, KindBloom}, c.Kinds())

	showroom, err := config.Default(config.ViewShowroom)
	require.NoError(t, err)
	c, err = FromConfig(showroom.Post)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindAmbientOcclusion, KindBloom, KindToneMapping}, c.Kinds())
}

func TestChain_ParallelMatchesSerial(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 64, time.Second)
	defer pool.Stop()

	showroom, err := config.Default(config.ViewShowroom)
	require.NoError(t, err)
	serial, err := FromConfig(showroom.Post)
	require.NoError(t, err)
	parallel, err := FromConfig(showroom.Post, WithRasterizer(raster.NewRasterizer(pool, raster.WithBandHeight(5))))
	require.NoError(t, err)

	a, b := ridgedFrame(), ridgedFrame()
	serial.Apply(a)
	parallel.Apply(b)
	assert.Equal(t, a.Color, b.Color)
}
