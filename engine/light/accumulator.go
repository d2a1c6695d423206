package light

import (
	"log"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// State is the accumulation phase of an Accumulator.
type State int

const (
	// StateIdle is the state before the first step: nothing has been accumulated.
	StateIdle State = iota

	// StateAccumulating means every Step folds in one more frame.
	StateAccumulating

	// StateConverged means the target frame count was reached and the buffer is frozen.
	StateConverged
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateConverged:
		return "converged"
	}
	return "unknown"
}

// pcgStream is the fixed second word of the PCG seed.
const pcgStream = 0x9e3779b97f4a7c15

// accumulator is the implementation of the Accumulator interface.
type accumulator struct {
	mu sync.Mutex

	light      RandomizedLight
	target     int
	opacity    float32
	alphaTest  float32
	colorBlend float32
	scale      float32
	resolution int
	seed       uint64
	tint       common.Color
	raster     raster.Rasterizer

	state      State
	frameCount int
	samples    []float32
	rng        *rand.Rand
	snapshot   *ShadowSnapshot

	// scratch, reused across steps
	depth []float32
	step  []float32
	tris  []raster.Triangle
}

// Accumulator builds a soft contact shadow on a ground plane by averaging many jittered shadow maps over
// successive frames.
//
// The plane is square, centered on the origin of its own frame and facing +Y. Occluders are passed to Step
// in that frame. The buffer holds lit visibility per texel: 1 for fully lit, 0 for fully shadowed.
type Accumulator interface {
	// State returns the accumulation phase.
	//
	// Returns:
	//   - State: idle, accumulating or converged
	State() State

	// FrameCount returns how many frames have been folded in since the last reset.
	//
	// Returns:
	//   - int: the frame count, never above Target
	FrameCount() int

	// Target returns the frame count at which accumulation stops.
	//
	// Returns:
	//   - int: the target
	Target() int

	// Tint returns the shadow color.
	//
	// Returns:
	//   - common.Color: the tint
	Tint() common.Color

	// SetTint changes the shadow color. A different tint resets accumulation.
	//
	// Parameters:
	//   - tint: the new tint
	SetTint(tint common.Color)

	// Invalidate resets accumulation because the occluders moved.
	Invalidate()

	// Light returns the randomized light configuration.
	//
	// Returns:
	//   - RandomizedLight: the light cluster
	Light() RandomizedLight

	// SetLight replaces the randomized light. A changed position or radius resets accumulation.
	//
	// Parameters:
	//   - l: the new light cluster
	SetLight(l RandomizedLight)

	// Step folds one more frame into the buffer unless converged.
	//
	// Parameters:
	//   - occluders: triangles that cast shadows, in the plane's frame
	//
	// Returns:
	//   - bool: true if a frame was accumulated
	Step(occluders [][3]mgl32.Vec3) bool

	// Buffer returns a copy of the lit visibility buffer, row-major with rows along +Z.
	//
	// Returns:
	//   - []float32: resolution*resolution visibility samples
	Buffer() []float32

	// Snapshot returns an immutable view of the current buffer for compositing. The same snapshot is
	// returned until the buffer changes.
	//
	// Returns:
	//   - *ShadowSnapshot: the snapshot
	Snapshot() *ShadowSnapshot
}

var _ Accumulator = &accumulator{}

// NewAccumulator creates an idle Accumulator.
//
// Parameters:
//   - options: variadic list of AccumulatorBuilderOption functions to configure the accumulator
//
// Returns:
//   - Accumulator: the new accumulator
func NewAccumulator(options ...AccumulatorBuilderOption) Accumulator {
	a := &accumulator{
		light:      DefaultRandomizedLight(),
		target:     DefaultFrames,
		opacity:    DefaultOpacity,
		alphaTest:  DefaultAlphaTest,
		colorBlend: DefaultColorBlend,
		scale:      DefaultPlaneScale,
		resolution: DefaultResolution,
		tint:       common.Black,
	}
	for _, opt := range options {
		opt(a)
	}
	if a.raster == nil {
		a.raster = raster.NewRasterizer(nil)
	}
	a.target = max(a.target, 1)
	a.resolution = max(a.resolution, 1)
	a.alphaTest = max(a.alphaTest, 1e-3)
	a.light = a.light.withDefaults()

	a.samples = make([]float32, a.resolution*a.resolution)
	a.step = make([]float32, len(a.samples))
	a.resetLocked(StateIdle)
	return a
}

func (a *accumulator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *accumulator) FrameCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameCount
}

func (a *accumulator) Target() int {
	return a.target
}

func (a *accumulator) Tint() common.Color {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tint
}

func (a *accumulator) SetTint(tint common.Color) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if tint == a.tint {
		return
	}
	a.tint = tint
	a.restartLocked()
}

func (a *accumulator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restartLocked()
}

func (a *accumulator) Light() RandomizedLight {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.light
}

func (a *accumulator) SetLight(l RandomizedLight) {
	l = l.withDefaults()
	a.mu.Lock()
	defer a.mu.Unlock()
	changed := l.Position != a.light.Position || l.Radius != a.light.Radius
	a.light = l
	if changed {
		a.restartLocked()
	}
}

func (a *accumulator) Step(occluders [][3]mgl32.Vec3) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateConverged {
		return false
	}
	a.state = StateAccumulating

	clear(a.step)
	for range a.light.Amount {
		a.samplePass(a.light.Jitter(a.rng), occluders)
	}

	inv := 1 / float32(a.light.Amount)
	weight := 1 / float32(a.frameCount+1)
	for i, s := range a.step {
		a.samples[i] += (s*inv - a.samples[i]) * weight
	}
	a.frameCount++
	a.snapshot = nil

	if a.frameCount >= a.target {
		a.frameCount = a.target
		a.state = StateConverged
		log.Printf("[Shadow] converged after %d frames", a.frameCount)
	}
	return true
}

func (a *accumulator) Buffer() []float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float32, len(a.samples))
	copy(out, a.samples)
	return out
}

func (a *accumulator) Snapshot() *ShadowSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshot != nil {
		return a.snapshot
	}
	s := &ShadowSnapshot{
		Resolution: a.resolution,
		Scale:      a.scale,
		Opacity:    a.opacity,
		AlphaTest:  a.alphaTest,
		ColorBlend: a.colorBlend,
		Tint:       a.tint,
		FrameCount: a.frameCount,
		State:      a.state,
		lit:        make([]float32, len(a.samples)),
	}
	copy(s.lit, a.samples)
	a.snapshot = s
	return s
}

// resetLocked clears the buffer and restarts the random sequence so every accumulation run of the same
// pose produces the same result.
func (a *accumulator) resetLocked(state State) {
	clear(a.samples)
	a.frameCount = 0
	a.state = state
	a.snapshot = nil
	a.rng = rand.New(rand.NewPCG(a.seed, pcgStream))
}

// restartLocked discards progress after a change. An accumulator that was never stepped stays idle.
func (a *accumulator) restartLocked() {
	if a.state == StateIdle {
		a.resetLocked(StateIdle)
		return
	}
	a.resetLocked(StateAccumulating)
}

// samplePass renders one light sample's depth map and adds its visibility to a.step.
func (a *accumulator) samplePass(pos mgl32.Vec3, occluders [][3]mgl32.Vec3) {
	size := a.light.MapSize
	if len(a.depth) != size*size {
		a.depth = make([]float32, size*size)
	}
	for i := range a.depth {
		a.depth[i] = math.MaxFloat32
	}

	up := mgl32.Vec3{0, 1, 0}
	if dir := common.SafeNormalize(pos); math32.Abs(dir[1]) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(pos, mgl32.Vec3{}, up)
	h := DefaultShadowHalfExtent
	viewProj := mgl32.Ortho(-h, h, -h, h, DefaultShadowNear, DefaultShadowFar).Mul4(view)

	a.tris = a.tris[:0]
	for _, tri := range occluders {
		var clip [3]mgl32.Vec4
		for i, p := range tri {
			clip[i] = viewProj.Mul4x1(p.Vec4(1))
		}
		if t, ok := raster.Setup(clip, size, size); ok {
			a.tris = append(a.tris, t)
		}
	}
	depth := a.depth
	a.raster.Draw(size, size, a.tris, func(_ int, f raster.Fragment) {
		i := f.Y*size + f.X
		if f.Depth < depth[i] {
			depth[i] = f.Depth
		}
	})

	res := a.resolution
	texel := a.scale / float32(res)
	half := a.scale / 2
	bias := a.light.Bias
	a.raster.Rows(res, func(z0, z1 int) {
		for zi := z0; zi < z1; zi++ {
			z := -half + (float32(zi)+0.5)*texel
			for xi := 0; xi < res; xi++ {
				x := -half + (float32(xi)+0.5)*texel
				clip := viewProj.Mul4x1(mgl32.Vec4{x, 0, z, 1})
				nx, ny, nz := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
				if nx < -1 || nx >= 1 || ny <= -1 || ny > 1 {
					a.step[zi*res+xi]++
					continue
				}
				px := int((nx*0.5 + 0.5) * float32(size))
				py := int((0.5 - ny*0.5) * float32(size))
				d := nz*0.5 + 0.5
				if d-bias <= depth[py*size+px] {
					a.step[zi*res+xi]++
				}
			}
		}
	})
}

// ShadowSnapshot is a frozen copy of the accumulation buffer together with the parameters needed to
// composite it.
type ShadowSnapshot struct {
	Resolution int
	Scale      float32
	Opacity    float32
	AlphaTest  float32
	ColorBlend float32
	Tint       common.Color
	FrameCount int
	State      State

	lit []float32
}

// At samples lit visibility with bilinear filtering at a point of the plane.
//
// Parameters:
//   - x, z: coordinates in the plane's frame
//
// Returns:
//   - float32: the lit visibility
//   - bool: false when the point is off the plane
func (s *ShadowSnapshot) At(x, z float32) (float32, bool) {
	half := s.Scale / 2
	if x < -half || x > half || z < -half || z > half {
		return 1, false
	}
	res := s.Resolution
	fx := (x+half)/s.Scale*float32(res) - 0.5
	fz := (z+half)/s.Scale*float32(res) - 0.5
	x0 := int(math32.Floor(fx))
	z0 := int(math32.Floor(fz))
	tx := fx - float32(x0)
	tz := fz - float32(z0)

	at := func(xi, zi int) float32 {
		xi = min(max(xi, 0), res-1)
		zi = min(max(zi, 0), res-1)
		return s.lit[zi*res+xi]
	}
	top := at(x0, z0)*(1-tx) + at(x0+1, z0)*tx
	bottom := at(x0, z0+1)*(1-tx) + at(x0+1, z0+1)*tx
	return top*(1-tz) + bottom*tz, true
}

// Shade maps lit visibility to the composited shadow color and alpha. Nothing is drawn before the first
// accumulated frame.
//
// Parameters:
//   - lit: the lit visibility
//
// Returns:
//   - common.Color: the shadow color
//   - float32: the shadow alpha in [0, 1]
func (s *ShadowSnapshot) Shade(lit float32) (common.Color, float32) {
	if s.FrameCount == 0 {
		return s.Tint, 0
	}
	alpha := max(0, 1-3*lit/s.AlphaTest) * s.Opacity
	return s.Tint.Scale(lit * s.ColorBlend), common.Clamp01(alpha)
}
