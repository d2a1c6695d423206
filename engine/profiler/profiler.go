package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"
)

// FrameStats is the per-tick work the profiler reports alongside timing and memory.
type FrameStats struct {
	DrawCalls    int
	Instances    int
	Triangles    int
	ShadowState  fmt.Stringer
	ShadowFrames int
}

// Profiler tracks tick rate, memory and frame statistics and logs them once per interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	lastFPS float64
	logf    func(format string, args ...any)
}

// NewProfiler creates a new Profiler logging once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		logf:           log.Printf,
	}
}

// SetInterval changes how often stats are logged.
//
// Parameters:
//   - d: the logging interval
func (p *Profiler) SetInterval(d time.Duration) {
	p.updateInterval = d
}

// FPS returns the tick rate measured over the last completed interval.
func (p *Profiler) FPS() float64 {
	return p.lastFPS
}

// Tick should be called once per rendered frame. When the interval has elapsed it logs the tick
// rate, heap, allocation rate, GC pauses and the given frame stats.
//
// Parameters:
//   - stats: the work done by the frame just rendered
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats FrameStats) bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	seconds := elapsed.Seconds()
	if seconds <= 0 {
		seconds = 1e-9
	}
	p.lastFPS = float64(p.frameCount) / seconds

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / seconds

	// PauseNs is a circular buffer of the last 256 pauses.
	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	start := p.lastGCCount
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	for i := start; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	shadow := "-"
	if stats.ShadowState != nil {
		shadow = fmt.Sprintf("%s %d", stats.ShadowState, stats.ShadowFrames)
	}
	p.logf("[Profiler] FPS: %.2f | Draws: %d (%d instances, %d tris) | Shadow: %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs) | Sys: %.2f MB",
		p.lastFPS, stats.DrawCalls, stats.Instances, stats.Triangles, shadow, allocMB, allocRateMB, gcCount, maxPauseUs, sysMB)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
