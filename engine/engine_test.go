package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/Carmen-Shannon/oxy-jewel/engine/configurator"
	"github.com/Carmen-Shannon/oxy-jewel/engine/environment"
	"github.com/Carmen-Shannon/oxy-jewel/engine/light"
	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/Carmen-Shannon/oxy-jewel/engine/resource"
	"github.com/Carmen-Shannon/oxy-jewel/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvURL = "https://example.test/studio.hdr"

func testConfig(t *testing.T, view config.View) *config.Config {
	t.Helper()
	cfg, err := config.Default(view)
	require.NoError(t, err)
	cfg.Width, cfg.Height, cfg.DPR = 24, 16, 1
	cfg.Shadow.Resolution = 16
	cfg.Shadow.Light.MapSize = 32
	cfg.Shadow.Light.Amount = 2
	cfg.Environment.URL = testEnvURL
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, provider environment.Provider, options ...EngineBuilderOption) Engine {
	t.Helper()
	if provider == nil {
		provider = environment.NewProvider(environment.WithMap(testEnvURL, environment.Uniform(testEnvURL, common.Color{0.5, 0.5, 0.5})))
	}
	b, err := configurator.FromConfig(cfg)
	require.NoError(t, err)
	s, err := scene.FromConfig(cfg, model.ReferenceRing(), raster.NewRasterizer(nil), provider)
	require.NoError(t, err)
	b.AttachShadow(s.Accumulator())
	return NewEngine(b, s, options...)
}

func TestRunUntilConverged(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.ViewConfigurator), nil)

	f, err := e.RunUntilConverged(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, light.StateConverged, e.Scene().Accumulator().State())
	assert.Equal(t, uint64(100), e.Scene().Ticks())
	assert.Same(t, f, e.Scene().LastFrame())
}

func TestRunUntilConvergedStopsAtTickLimit(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.ViewConfigurator), nil)

	_, err := e.RunUntilConverged(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), e.Scene().Ticks())
	assert.Equal(t, light.StateAccumulating, e.Scene().Accumulator().State())
}

func TestRunUntilConvergedReportsEnvironmentFailure(t *testing.T) {
	fetcher := environment.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return nil, errors.New("connection refused")
	})
	e := newTestEngine(t, testConfig(t, config.ViewConfigurator), environment.NewProvider(environment.WithFetcher(fetcher)))

	_, err := e.RunUntilConverged(context.Background(), 10)
	var loadErr *resource.ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, uint64(0), e.Scene().Ticks())
}

func TestRunUntilConvergedHonoursContext(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.ViewConfigurator), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.RunUntilConverged(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventsApplyBetweenTicks(t *testing.T) {
	cfg := testConfig(t, config.ViewConfigurator)
	e := newTestEngine(t, cfg, nil)
	palette := e.Binding().BandPalette()
	require.Len(t, palette, 3)

	e.Submit(BandColor(palette[1]))
	assert.Equal(t, palette[0], e.Binding().Configuration().BandColor, "queued, not applied")

	_, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, palette[1], e.Binding().Configuration().BandColor)
}

func TestRejectedEventsKeepConfiguration(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.ViewConfigurator), nil)
	before := e.Binding().Configuration()

	e.Submit(BandColor(common.MustParseHex("#123456")))
	e.Submit(Scale(0.5))
	e.Submit(ScaleBy(2))
	_, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, before, e.Binding().Configuration())
}

func TestSelectionResetsShadowButOrbitDoesNot(t *testing.T) {
	cfg := testConfig(t, config.ViewShowroom)
	e := newTestEngine(t, cfg, nil)
	acc := e.Scene().Accumulator()

	for range 4 {
		_, err := e.Step()
		require.NoError(t, err)
	}
	require.Equal(t, 4, acc.FrameCount())

	eye := e.Scene().Camera().Position()
	e.Submit(Orbit(0.3, -0.1))
	e.Submit(Zoom(0.8))
	_, err := e.Step()
	require.NoError(t, err)
	assert.NotEqual(t, eye, e.Scene().Camera().Position())
	assert.Equal(t, 5, acc.FrameCount())

	e.Submit(ResetView())
	e.Submit(ScaleBy(2))
	_, err = e.Step()
	require.NoError(t, err)
	assert.True(t, e.Scene().Camera().Position().ApproxEqualThreshold(eye, 1e-4))
	assert.InDelta(t, 0.2, e.Binding().Configuration().Scale, 1e-6)
	assert.Equal(t, 1, acc.FrameCount())
}

func TestResizeEvent(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.ViewShowroom), nil)

	e.Submit(Resize(0, 10))
	e.Submit(Resize(10, 8))
	f, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, 10, f.Width)
	assert.Equal(t, 8, f.Height)
}

func TestKeysMapToEvents(t *testing.T) {
	cfg := testConfig(t, config.ViewShowroom)
	out := filepath.Join(t.TempDir(), "shot.png")
	rose := common.MustParseHex("#f67d7d")
	impl := newTestEngine(t, cfg, nil, WithGemCycle(common.MustParseHex("#ffffff"), rose), WithSnapshotPath(out)).(*engine)
	palette := impl.Binding().BandPalette()

	impl.handleKey(common.Key3)
	impl.handleKey(common.KeyG)
	impl.handleKey(common.KeyRightBracket)
	_, err := impl.Step()
	require.NoError(t, err)

	got := impl.Binding().Configuration()
	assert.Equal(t, palette[2], got.BandColor)
	assert.Equal(t, rose, got.GemColor)
	assert.InDelta(t, 0.11, got.Scale, 1e-6)

	impl.handleKey(common.KeyS)
	_, err = impl.Step()
	require.NoError(t, err)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	impl.handleKey(common.KeyP)
	assert.True(t, impl.profilingEnabled.Load())
	impl.handleKey(common.KeyP)
	assert.False(t, impl.profilingEnabled.Load())
}

func TestRunWithoutWindow(t *testing.T) {
	e := newTestEngine(t, testConfig(t, config.ViewShowroom), nil)
	assert.ErrorIs(t, e.Run(), errNoWindow)
}

func TestConfigEvents(t *testing.T) {
	prev := testConfig(t, config.ViewShowroom)
	next := testConfig(t, config.ViewShowroom)
	next.Ring.BandColor = "#f67d7d"
	next.Ring.ShadowTint = "#ff0000"
	next.Ring.Scale = 0.3

	events, err := ConfigEvents(prev, next)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, BandColor(common.MustParseHex("#f67d7d")), events[0])
	assert.Equal(t, ShadowTint(common.MustParseHex("#ff0000")), events[1])
	assert.Equal(t, Scale(0.3), events[2])

	events, err = ConfigEvents(prev, prev)
	require.NoError(t, err)
	assert.Empty(t, events)

	next.Ring.GemColor = "nope"
	_, err = ConfigEvents(prev, next)
	assert.Error(t, err)
}

func TestFromConfigUsesReferenceRing(t *testing.T) {
	cfg := testConfig(t, config.ViewShowroom)
	provider := environment.NewProvider(environment.WithMap(testEnvURL, environment.Uniform(testEnvURL, common.Color{0.5, 0.5, 0.5})))

	e, err := FromConfig(context.Background(), cfg, nil, provider)
	require.NoError(t, err)
	assert.Equal(t, model.ReferenceGemCount, e.Scene().Asset().InstanceCount())

	_, err = e.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, e.Scene().Accumulator().FrameCount())
}

func TestFromConfigMissingModel(t *testing.T) {
	cfg := testConfig(t, config.ViewShowroom)
	cfg.Model.Path = filepath.Join(t.TempDir(), "missing.glb")

	_, err := FromConfig(context.Background(), cfg, nil, nil)
	var loadErr *resource.ResourceLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "geometry", loadErr.Kind)
}

func TestIdleOnlyWhenConvergedAndQuiet(t *testing.T) {
	impl := newTestEngine(t, testConfig(t, config.ViewConfigurator), nil).(*engine)
	assert.False(t, impl.idle(), "nothing rendered yet")

	_, err := impl.RunUntilConverged(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, impl.idle())

	impl.Submit(ResetView())
	assert.False(t, impl.idle())
	_, err = impl.Step()
	require.NoError(t, err)
	assert.True(t, impl.idle())
}
