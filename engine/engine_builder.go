package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/presenter"
	"github.com/Carmen-Shannon/oxy-jewel/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the render loop rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window Run presents to and reads input from.
//
// Parameters:
//   - w: an open Window
//   - p: a presenter created on the window's surface
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window, p presenter.Presenter) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
		e.presenter = p
	}
}

// WithDPR sets the ratio between window pixels and render pixels used on resize.
//
// Parameters:
//   - dpr: the device pixel ratio, ignored if <= 0
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDPR(dpr float32) EngineBuilderOption {
	return func(e *engine) {
		if dpr > 0 {
			e.dpr = dpr
		}
	}
}

// WithGemCycle sets the gem colors the G key steps through.
//
// Parameters:
//   - colors: the colors, in order
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGemCycle(colors ...common.Color) EngineBuilderOption {
	return func(e *engine) {
		e.gemCycle = colors
	}
}

// WithSnapshotPath sets where the S key writes the current frame.
//
// Parameters:
//   - path: the PNG path
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSnapshotPath(path string) EngineBuilderOption {
	return func(e *engine) {
		e.snapshotPath = path
	}
}
