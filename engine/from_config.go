package engine

import (
	"context"
	"log"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/Carmen-Shannon/oxy-jewel/engine/configurator"
	"github.com/Carmen-Shannon/oxy-jewel/engine/environment"
	"github.com/Carmen-Shannon/oxy-jewel/engine/loader"
	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/Carmen-Shannon/oxy-jewel/engine/scene"
)

// LoadAsset imports the configured model, or returns the procedural reference ring when no
// model path is set.
//
// Parameters:
//   - ctx: context for the file import
//   - cfg: the validated configuration
//
// Returns:
//   - *model.GeometryAsset: the ring geometry
//   - error: a *resource.ResourceLoadError if the model cannot be imported
func LoadAsset(ctx context.Context, cfg *config.Config) (*model.GeometryAsset, error) {
	if cfg.Model.Path == "" {
		return model.ReferenceRing(), nil
	}
	names := cfg.Model.Names
	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithNameMap(loader.NameMap{
		Band:         names.Band,
		SolidMetal:   names.SolidMetal,
		Gem:          names.Gem,
		DefaultMetal: names.DefaultMetal,
	}))
	asset, err := l.Load(ctx, cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	log.Printf("[Engine] loaded %s: %d triangles, %d gem instances", asset.Name, asset.TriangleCount(), asset.InstanceCount())
	return asset, nil
}

// FromConfig wires a ring view from a configuration: geometry, binding, scene and a rasterizer
// on pool. A nil pool renders on the calling goroutine.
//
// Parameters:
//   - ctx: context for the model import
//   - cfg: the validated configuration
//   - pool: the worker pool shared by rasterization and post passes, or nil
//   - provider: the environment provider, or nil for a default one
//   - options: engine options
//
// Returns:
//   - Engine: the engine, ready to step or run
//   - error: error if the model cannot be imported or the configuration is inconsistent
func FromConfig(ctx context.Context, cfg *config.Config, pool worker.DynamicWorkerPool, provider environment.Provider, options ...EngineBuilderOption) (Engine, error) {
	asset, err := LoadAsset(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b, err := configurator.FromConfig(cfg, configurator.WithSolidMetal(asset.DefaultMetal))
	if err != nil {
		return nil, err
	}
	s, err := scene.FromConfig(cfg, asset, raster.NewRasterizer(pool), provider)
	if err != nil {
		return nil, err
	}
	b.AttachShadow(s.Accumulator())

	opts := append([]EngineBuilderOption{WithDPR(cfg.DPR)}, options...)
	return NewEngine(b, s, opts...), nil
}
