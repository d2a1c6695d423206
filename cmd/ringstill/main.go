// Command ringstill renders a ring view headlessly until the contact shadow converges and writes
// the frame as a PNG.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-jewel/engine"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/anthonynsimon/bild/imgio"
)

func main() {
	configPath := flag.String("config", "", "configuration file (.toml, .yaml); empty uses the view preset")
	view := flag.String("view", string(config.ViewConfigurator), "view preset when no configuration file is given")
	out := flag.String("out", "", "output PNG path (overrides output.path)")
	ticks := flag.Int("ticks", 0, "tick limit (overrides output.max_ticks)")
	profile := flag.Bool("profile", false, "log per-tick statistics")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// ── Configuration ───────────────────────────────────────────────────
	cfg, err := loadConfig(*configPath, config.View(*view))
	if err != nil {
		log.Fatalf("[Engine] %v", err)
	}
	if *out != "" {
		cfg.Output.Path = *out
	}
	if *ticks > 0 {
		cfg.Output.MaxTicks = *ticks
	}

	// ── Workers ─────────────────────────────────────────────────────────
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := worker.NewDynamicWorkerPool(workers, 256, time.Second)
	defer pool.Stop()

	// ── Engine ──────────────────────────────────────────────────────────
	eng, err := engine.FromConfig(ctx, cfg, pool, nil, engine.WithProfiling(*profile))
	if err != nil {
		log.Fatalf("[Engine] %v", err)
	}

	start := time.Now()
	frame, err := eng.RunUntilConverged(ctx, cfg.Output.MaxTicks)
	if err != nil {
		log.Fatalf("[Engine] render failed: %v", err)
	}
	log.Printf("[Engine] %d ticks in %s, shadow %s", eng.Scene().Ticks(), time.Since(start).Round(time.Millisecond), eng.Scene().Accumulator().State())

	// ── Output ──────────────────────────────────────────────────────────
	// Supersampled renders are filtered back down to the logical size.
	img := renderer.EncodeScaled(frame, cfg.Width, cfg.Height)
	if err := imgio.Save(cfg.Output.Path, img, imgio.PNGEncoder()); err != nil {
		log.Fatalf("[Engine] failed to write %s: %v", cfg.Output.Path, err)
	}
	log.Printf("[Engine] wrote %s (%dx%d)", cfg.Output.Path, img.Rect.Dx(), img.Rect.Dy())
}

func loadConfig(path string, view config.View) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Default(view)
}
