package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/camera"
	"github.com/Carmen-Shannon/oxy-jewel/engine/configurator"
	"github.com/Carmen-Shannon/oxy-jewel/engine/light"
	"github.com/Carmen-Shannon/oxy-jewel/engine/presenter"
	"github.com/Carmen-Shannon/oxy-jewel/engine/profiler"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/scene"
	"github.com/Carmen-Shannon/oxy-jewel/engine/window"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/chewxy/math32"
)

var (
	errNoWindow = errors.New("engine has no window or presenter")
	errNoFrame  = errors.New("no frame has been rendered yet")
)

const (
	// orbitSpeed is radians of rotation per pixel dragged.
	orbitSpeed = 0.005
	// zoomStep is the distance factor per scroll notch.
	zoomStep = 0.9
	// scaleStep is the scale factor of the bracket keys.
	scaleStep = 1.1
)

// engine implements the Engine interface.
type engine struct {
	binding configurator.Binding
	scene   scene.RingScene
	orbit   *camera.Orbit
	dpr     float32

	mu     sync.Mutex
	events []Event

	window    window.Window
	presenter presenter.Presenter
	frames    chan *image.RGBA

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	tickRate        time.Duration
	tickRateChannel chan time.Duration

	gemCycle     []common.Color
	gemIndex     int
	snapshotPath string

	quitChannel chan struct{}
	quitOnce    sync.Once
	wg          sync.WaitGroup
	lastErr     string
}

// Engine drives a RingScene. It owns the event queue: selections, camera moves and resizes are
// queued from any goroutine with Submit and applied strictly between ticks, so a change never
// interleaves with a running tick.
//
// Step and RunUntilConverged render headlessly. Run opens the render loop on a window.
type Engine interface {
	// Binding returns the configuration binding the engine applies selections to.
	//
	// Returns:
	//   - configurator.Binding: the binding
	Binding() configurator.Binding

	// Scene returns the scene the engine ticks.
	//
	// Returns:
	//   - scene.RingScene: the scene
	Scene() scene.RingScene

	// Submit queues an event for the next tick. Safe for concurrent use.
	//
	// Parameters:
	//   - ev: the event to queue
	Submit(ev Event)

	// Step applies queued events and runs one tick.
	//
	// Returns:
	//   - *renderer.Frame: the composited frame
	//   - error: the tick error; rejected events are logged, not returned
	Step() (*renderer.Frame, error)

	// RunUntilConverged waits for the environment map, then ticks until the shadow has converged
	// or maxTicks ticks have run.
	//
	// Parameters:
	//   - ctx: cancels the environment wait and stops between ticks
	//   - maxTicks: the tick limit, or 0 for no limit
	//
	// Returns:
	//   - *renderer.Frame: the last frame
	//   - error: error if the environment fails to load, a tick fails or ctx is done
	RunUntilConverged(ctx context.Context, maxTicks int) (*renderer.Frame, error)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the render loop rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// Run opens the render loop on the window and blocks until the window closes. It must be
	// called from the thread that created the window.
	//
	// Returns:
	//   - error: error if the engine has no window or presenter
	Run() error

	// Quit stops the render loop. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an Engine ticking s with selections applied to b.
//
// Parameters:
//   - b: the configuration binding
//   - s: the scene, with its accumulator already attached to b
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(b configurator.Binding, s scene.RingScene, options ...EngineBuilderOption) Engine {
	e := &engine{
		binding:         b,
		scene:           s,
		orbit:           camera.NewOrbit(s.Camera()),
		dpr:             1,
		frames:          make(chan *image.RGBA, 1),
		profiler:        profiler.NewProfiler(),
		tickRate:        time.Second / 60,
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		gemCycle: []common.Color{
			common.MustParseHex("#ffffff"),
			common.MustParseHex("#f67d7d"),
			common.MustParseHex("#C6A645"),
		},
		snapshotPath: "ring.png",
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Binding() configurator.Binding {
	return e.binding
}

func (e *engine) Scene() scene.RingScene {
	return e.scene
}

func (e *engine) Submit(ev Event) {
	e.mu.Lock()
	e.events = append(e.events, ev)
	e.mu.Unlock()
}

func (e *engine) Step() (*renderer.Frame, error) {
	e.applyEvents()
	f, err := e.scene.Tick(e.binding.Snapshot())
	if err != nil {
		return nil, err
	}
	if e.profilingEnabled.Load() {
		e.profiler.Tick(e.frameStats())
	}
	return f, nil
}

func (e *engine) RunUntilConverged(ctx context.Context, maxTicks int) (*renderer.Frame, error) {
	if provider, url := e.scene.Environment(); url != "" {
		if _, err := provider.Load(ctx, url); err != nil {
			return nil, err
		}
	}

	acc := e.scene.Accumulator()
	var last *renderer.Frame
	for i := 0; maxTicks <= 0 || i < maxTicks; i++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		f, err := e.Step()
		if err != nil {
			return last, err
		}
		last = f
		if acc.State() == light.StateConverged {
			log.Printf("[Engine] shadow converged after %d ticks", i+1)
			break
		}
	}
	return last, nil
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	rate := time.Duration(float64(time.Second) / fps)

	// Replace a pending update rather than block.
	select {
	case e.tickRateChannel <- rate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- rate
	}
}

func (e *engine) Run() error {
	if e.window == nil || e.presenter == nil {
		return errNoWindow
	}
	e.presenter.Configure(e.window.Width(), e.window.Height())
	e.Submit(Resize(e.renderSize(e.window.Width(), e.window.Height())))

	e.window.SetResizeCallback(func(width, height int) {
		e.presenter.Configure(width, height)
		e.Submit(Resize(e.renderSize(width, height)))
	})
	e.window.SetKeyDownCallback(e.handleKey)
	e.window.SetDragCallback(func(dx, dy float32) {
		e.Submit(Orbit(-dx*orbitSpeed, -dy*orbitSpeed))
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.Submit(Zoom(math32.Pow(zoomStep, delta)))
	})
	e.window.SetUpdateCallback(e.present)

	e.wg.Add(1)
	go e.handleRender()

	e.window.ProcessMessages()
	e.Quit()
	e.wg.Wait()
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleRender runs the tick loop in its own goroutine and hands encoded frames to the window
// thread. Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.Quit()
		}
	}()

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-e.quitChannel:
			return
		case rate := <-e.tickRateChannel:
			e.tickRate = rate
			ticker.Reset(rate)
		case <-ticker.C:
			if e.idle() {
				continue
			}
			f, err := e.Step()
			if err != nil {
				e.logOnce(err)
				continue
			}
			e.lastErr = ""
			e.publish(renderer.Encode(f))
		}
	}
}

// idle reports whether the next tick would reproduce the last frame: the shadow has converged
// and nothing is queued. The post chain is deterministic, so skipping it leaves the presented image unchanged.
func (e *engine) idle() bool {
	e.mu.Lock()
	pending := len(e.events) > 0
	e.mu.Unlock()
	return !pending && e.scene.LastFrame() != nil && e.scene.Accumulator().State() == light.StateConverged
}

// publish replaces any frame the window thread has not presented yet.
func (e *engine) publish(img *image.RGBA) {
	select {
	case <-e.frames:
	default:
	}
	e.frames <- img
}

// present runs on the window thread each message loop iteration.
func (e *engine) present() {
	select {
	case <-e.quitChannel:
		_ = e.window.Close()
		return
	default:
	}
	select {
	case img := <-e.frames:
		if err := e.presenter.Present(img); err != nil {
			log.Printf("[Engine] present failed: %v", err)
		}
	default:
	}
}

func (e *engine) logOnce(err error) {
	if msg := err.Error(); msg != e.lastErr {
		e.lastErr = msg
		log.Printf("[Engine] tick failed: %v", err)
	}
}

// handleKey maps viewer keys onto events. It runs on the window thread.
func (e *engine) handleKey(key uint32) {
	if slot := common.PaletteSlot(key); slot >= 0 {
		if palette := e.binding.BandPalette(); slot < len(palette) {
			e.Submit(BandColor(palette[slot]))
		}
		return
	}
	switch key {
	case common.KeyG:
		if len(e.gemCycle) > 0 {
			e.gemIndex = (e.gemIndex + 1) % len(e.gemCycle)
			e.Submit(GemColor(e.gemCycle[e.gemIndex]))
		}
	case common.KeyLeftBracket:
		e.Submit(ScaleBy(1 / scaleStep))
	case common.KeyRightBracket:
		e.Submit(ScaleBy(scaleStep))
	case common.KeyR:
		e.Submit(ResetView())
	case common.KeyS:
		e.Submit(SaveFrame(e.snapshotPath))
	case common.KeyP:
		if e.profilingEnabled.Load() {
			e.DisableProfiler()
		} else {
			e.EnableProfiler()
		}
	}
}

// applyEvents drains the queue in submission order. Called only between ticks.
func (e *engine) applyEvents() {
	e.mu.Lock()
	events := e.events
	e.events = nil
	e.mu.Unlock()

	for _, ev := range events {
		if err := e.apply(ev); err != nil {
			log.Printf("[Engine] rejected %s: %v", ev.Kind, err)
		}
	}
}

func (e *engine) apply(ev Event) error {
	switch ev.Kind {
	case EventBandColor:
		return e.binding.SetBandColor(ev.Color)
	case EventGemColor:
		return e.binding.SetGemColor(ev.Color)
	case EventScale:
		return e.binding.SetScale(ev.Value)
	case EventScaleBy:
		return e.binding.SetScale(e.binding.Configuration().Scale * ev.Value)
	case EventShadowTint:
		e.binding.SetShadowTint(ev.Color)
	case EventOrbit:
		e.orbit.Rotate(ev.DX, ev.DY)
		e.orbit.Apply(e.scene.Camera())
	case EventZoom:
		e.orbit.Zoom(ev.Value)
		e.orbit.Apply(e.scene.Camera())
	case EventResetView:
		e.orbit.Reset()
		e.orbit.Apply(e.scene.Camera())
	case EventResize:
		if ev.Width <= 0 || ev.Height <= 0 {
			return fmt.Errorf("size %dx%d", ev.Width, ev.Height)
		}
		e.scene.Resize(ev.Width, ev.Height)
	case EventSaveFrame:
		f := e.scene.LastFrame()
		if f == nil {
			return errNoFrame
		}
		if err := imgio.Save(ev.Path, renderer.Encode(f), imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("failed to save %s: %w", ev.Path, err)
		}
		log.Printf("[Engine] saved frame to %s", ev.Path)
	default:
		return fmt.Errorf("unknown event %s", ev.Kind)
	}
	return nil
}

func (e *engine) renderSize(width, height int) (int, int) {
	return int(float32(width)*e.dpr + 0.5), int(float32(height)*e.dpr + 0.5)
}

func (e *engine) frameStats() profiler.FrameStats {
	stats := e.scene.Renderer().Stats()
	acc := e.scene.Accumulator()
	return profiler.FrameStats{
		DrawCalls:    stats.DrawCalls,
		Instances:    stats.Instances,
		Triangles:    stats.Triangles,
		ShadowState:  acc.State(),
		ShadowFrames: acc.FrameCount(),
	}
}
