package scene

import (
	"github.com/Carmen-Shannon/oxy-jewel/engine/camera"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/Carmen-Shannon/oxy-jewel/engine/environment"
	"github.com/Carmen-Shannon/oxy-jewel/engine/light"
	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/postprocess"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/go-gl/mathgl/mgl32"
)

// FromConfig wires a RingScene for one view: camera, key light, renderer, post chain, shadow
// accumulator and layout all come from cfg. Every pass shares rast.
//
// Parameters:
//   - cfg: the validated configuration
//   - asset: the ring geometry
//   - rast: the rasterizer shared by the renderer, the accumulator and the post chain
//   - provider: the environment provider, or nil for a new one capped at cfg.Environment.MaxWidth
//   - options: extra options applied after the configuration-derived ones
//
// Returns:
//   - RingScene: the new scene
//   - error: error if the post chain cannot be built or the asset is incomplete
func FromConfig(cfg *config.Config, asset *model.GeometryAsset, rast raster.Rasterizer, provider environment.Provider, options ...RingSceneBuilderOption) (RingScene, error) {
	if provider == nil {
		provider = environment.NewProvider(environment.WithMaxWidth(cfg.Environment.MaxWidth))
	}

	cam := camera.NewCamera(
		camera.WithPosition(mgl32.Vec3(cfg.Camera.Position)),
		camera.WithTarget(mgl32.Vec3(cfg.Camera.Target)),
		camera.WithFov(cfg.Camera.Fov),
		camera.WithClip(cfg.Camera.Near, cfg.Camera.Far),
	)

	key := light.NewLight(
		light.WithPosition(mgl32.Vec3(cfg.Light.Position)),
		light.WithAngle(cfg.Light.Angle),
		light.WithPenumbra(cfg.Light.Penumbra),
		light.WithIntensity(cfg.Light.Intensity),
		light.WithDecay(0),
	)

	rendererOpts := []renderer.RendererBuilderOption{
		renderer.WithRasterizer(rast),
		renderer.WithLight(key),
		renderer.WithEnvIntensity(cfg.Environment.Intensity),
	}
	// Without a tone mapping pass, tone-mapped materials map themselves.
	if !cfg.Post.ToneMapping.Enabled {
		rendererOpts = append(rendererOpts, renderer.WithMaterialToneMapper(renderer.ACESFilmic))
	}

	chain, err := postprocess.FromConfig(cfg.Post, postprocess.WithRasterizer(rast))
	if err != nil {
		return nil, err
	}

	sl := cfg.Shadow.Light
	shadow := light.NewAccumulator(
		light.WithFrames(cfg.Shadow.Frames),
		light.WithComposite(cfg.Shadow.Opacity, cfg.Shadow.AlphaTest, cfg.Shadow.ColorBlend),
		light.WithPlane(cfg.Shadow.Scale, cfg.Shadow.Resolution),
		light.WithRandomizedLight(light.RandomizedLight{
			Position: mgl32.Vec3(sl.Position),
			Radius:   sl.Radius,
			Amount:   sl.Amount,
			Ambient:  sl.Ambient,
			Bias:     sl.Bias,
			MapSize:  sl.MapSize,
		}),
		light.WithSeed(cfg.Shadow.Seed),
		light.WithRasterizer(rast),
	)

	w, h := cfg.RenderSize()
	opts := []RingSceneBuilderOption{
		WithSize(w, h),
		WithCamera(cam),
		WithRenderer(renderer.NewRenderer(rendererOpts...)),
		WithChain(chain),
		WithAccumulator(shadow),
		WithEnvironment(provider, cfg.Environment.URL, cfg.Environment.Blur),
		WithLayout(Layout{
			GroupPosition:  mgl32.Vec3(cfg.Layout.GroupPosition),
			CenterPosition: mgl32.Vec3(cfg.Layout.CenterPosition),
			CenterRotation: mgl32.Vec3(cfg.Layout.CenterRotation),
		}),
	}
	return NewRingScene(asset, append(opts, options...)...)
}
