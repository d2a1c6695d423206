// Command ringview shows a ring view in a window.
//
// Keys: 1/2/3 select the band color, G cycles the gem color, [ and ] scale the ring, R resets the
// camera, S saves the current frame, P toggles profiling, Esc quits. Drag with the left button to
// orbit and scroll to zoom. Edits to the configuration file are applied while running.
package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/Carmen-Shannon/oxy-jewel/engine/presenter"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/window"
)

func init() {
	// GLFW and the surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "configuration file (.toml, .yaml); empty uses the view preset")
	view := flag.String("view", string(config.ViewConfigurator), "view preset when no configuration file is given")
	profile := flag.Bool("profile", false, "log per-frame statistics")
	fallback := flag.Bool("fallback-adapter", false, "force the software WebGPU adapter")
	snapshot := flag.String("snapshot", "ring.png", "path the S key writes to")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Configuration ───────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath, config.View(*view))
	if err != nil {
		log.Fatalf("[Engine] %v", err)
	}

	// ── Window + Presenter ──────────────────────────────────────────────
	win := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Width, cfg.Height),
	)
	defer win.Close()

	pres, err := presenter.NewPresenter(win.SurfaceDescriptor(),
		presenter.WithVSync(cfg.Window.VSync),
		presenter.WithFallbackAdapter(*fallback),
		presenter.WithClearColor(renderer.DefaultPlaceholder),
	)
	if err != nil {
		log.Fatalf("[Engine] %v", err)
	}
	defer pres.Release()

	// ── Workers ─────────────────────────────────────────────────────────
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := worker.NewDynamicWorkerPool(workers, 256, time.Second)
	defer pool.Stop()

	// ── Engine ──────────────────────────────────────────────────────────
	eng, err := engine.FromConfig(ctx, cfg, pool, nil,
		engine.WithWindow(win, pres),
		engine.WithProfiling(*profile),
		engine.WithSnapshotPath(*snapshot),
		engine.WithGemCycle(gemCycle(cfg)...),
	)
	if err != nil {
		log.Fatalf("[Engine] %v", err)
	}

	if *configPath != "" {
		go watch(ctx, *configPath, cfg, eng)
	}

	if err := eng.Run(); err != nil {
		log.Fatalf("[Engine] %v", err)
	}
}

// watch turns configuration edits into selection events.
func watch(ctx context.Context, path string, applied *config.Config, eng engine.Engine) {
	err := config.Watch(ctx, path, func(next *config.Config) {
		if next.View != applied.View {
			log.Printf("[Watch] view changed to %s, restart to apply", next.View)
		}
		events, err := engine.ConfigEvents(applied, next)
		if err != nil {
			log.Printf("[Watch] %v", err)
			return
		}
		for _, ev := range events {
			eng.Submit(ev)
		}
		applied = next
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("[Watch] stopped: %v", err)
	}
}

// gemCycle is the gem palette when there is one, otherwise the band finishes.
func gemCycle(cfg *config.Config) []common.Color {
	for _, palette := range []func() ([]common.Color, error){cfg.GemPalette, cfg.BandPalette} {
		if colors, err := palette(); err == nil && len(colors) > 0 {
			return colors
		}
	}
	return []common.Color{common.MustParseHex("#ffffff")}
}

func loadConfig(path string, view config.View) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Default(view)
}
