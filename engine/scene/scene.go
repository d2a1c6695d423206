package scene

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/camera"
	"github.com/Carmen-Shannon/oxy-jewel/engine/configurator"
	"github.com/Carmen-Shannon/oxy-jewel/engine/environment"
	"github.com/Carmen-Shannon/oxy-jewel/engine/light"
	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/postprocess"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var errInvalidSnapshot = errors.New("invalid ring snapshot")

// Node names of the ring layout.
const (
	NodeGroup   = "group"
	NodeCenter  = "center"
	NodeRing    = "ring"
	NodeShadows = "shadows"
)

// Layout is the transform stack the ring is placed under. The center node lifts the ring so the
// bottom of its bounds sits on the center position, centered in x and z.
type Layout struct {
	GroupPosition  mgl32.Vec3
	CenterPosition mgl32.Vec3
	CenterRotation mgl32.Vec3
}

// ringScene is the implementation of the RingScene interface.
type ringScene struct {
	mu sync.Mutex

	asset    *model.GeometryAsset
	graph    Graph
	camera   camera.Camera
	renderer renderer.Renderer
	chain    postprocess.Chain
	shadow   light.Accumulator
	provider environment.Provider

	envURL  string
	envBlur float32
	layout  Layout
	width   int
	height  int

	group, center, ring, shadows NodeID

	// frames alternate so the frame returned by one tick stays intact through the next.
	frames [2]*renderer.Frame
	next   int
	last   *renderer.Frame
	ticks  uint64

	scale     float32
	occluders [][3]mgl32.Vec3
	pose      mgl32.Mat4
	posed     bool
}

// RingScene composes the ring, its accumulated contact shadow and the environment into one frame
// per tick.
//
// A tick runs in a fixed order: environment readiness, one shadow accumulation step, background,
// shadow composite, the band and solid metal, the instanced gems, then the post-processing chain.
// While the environment map is loading a tick returns a placeholder frame and the shadow does not
// accumulate.
type RingScene interface {
	// Tick renders one frame for the given configuration snapshot. The returned frame stays valid
	// until the second following Tick.
	//
	// Parameters:
	//   - snap: the configuration to render
	//
	// Returns:
	//   - *renderer.Frame: the composed frame
	//   - error: error if the snapshot is invalid or the environment failed to load, in which case
	//     no buffer was touched
	Tick(snap configurator.Snapshot) (*renderer.Frame, error)

	// LastFrame returns the frame of the last successful tick, or nil.
	//
	// Returns:
	//   - *renderer.Frame: the frame
	LastFrame() *renderer.Frame

	// Ticks returns the number of successful ticks.
	//
	// Returns:
	//   - uint64: the tick counter
	Ticks() uint64

	// Resize changes the frame size and the camera aspect ratio. It takes effect on the next tick.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// Size returns the frame size.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)

	// Graph returns the scene's transform graph.
	Graph() Graph

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Accumulator returns the shadow accumulator. Attach it to the configurator binding so color
	// and scale changes reset accumulation.
	Accumulator() light.Accumulator

	// Environment returns the provider and the URL the scene renders with.
	//
	// Returns:
	//   - environment.Provider: the provider
	//   - string: the environment URL
	Environment() (environment.Provider, string)

	// Asset returns the ring geometry.
	Asset() *model.GeometryAsset
}

var _ RingScene = &ringScene{}

// NewRingScene creates a RingScene for asset. Without options it renders 1280x720 with the default
// camera, renderer, post chain, accumulator and provider, and no environment URL.
//
// Parameters:
//   - asset: the ring geometry
//   - options: variadic list of RingSceneBuilderOption functions to configure the scene
//
// Returns:
//   - RingScene: the new scene
//   - error: error if the asset is incomplete
func NewRingScene(asset *model.GeometryAsset, options ...RingSceneBuilderOption) (RingScene, error) {
	if asset == nil {
		return nil, fmt.Errorf("%w: nil asset", errInvalidSnapshot)
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	s := &ringScene{
		asset:  asset,
		width:  1280,
		height: 720,
		scale:  1,
	}
	for _, opt := range options {
		opt(s)
	}
	s.width, s.height = max(s.width, 1), max(s.height, 1)

	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	s.camera.SetAspect(float32(s.width) / float32(s.height))
	if s.renderer == nil {
		s.renderer = renderer.NewRenderer()
	}
	if s.chain == nil {
		chain, err := postprocess.NewChain(nil)
		if err != nil {
			return nil, err
		}
		s.chain = chain
	}
	if s.shadow == nil {
		s.shadow = light.NewAccumulator()
	}
	if s.provider == nil {
		s.provider = environment.NewProvider()
	}

	if err := s.buildGraph(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildGraph lays out group → center → ring, with the shadow plane as a sibling of the center at
// the group origin.
func (s *ringScene) buildGraph() error {
	s.graph = NewGraph()
	var err error
	if s.group, err = s.graph.Add(s.graph.Root(), NodeGroup, mgl32.Translate3D(s.layout.GroupPosition.Elem())); err != nil {
		return err
	}
	rot := s.layout.CenterRotation
	center := mgl32.Translate3D(s.layout.CenterPosition.Elem()).Mul4(common.EulerXYZ(rot[0], rot[1], rot[2]))
	if s.center, err = s.graph.Add(s.group, NodeCenter, center); err != nil {
		return err
	}
	if s.ring, err = s.graph.Add(s.center, NodeRing, s.ringLocal(s.scale)); err != nil {
		return err
	}
	if s.shadows, err = s.graph.Add(s.group, NodeShadows, mgl32.Ident4()); err != nil {
		return err
	}
	return nil
}

// ringLocal scales the asset and moves its bounds so the bottom center is at the origin.
func (s *ringScene) ringLocal(scale float32) mgl32.Mat4 {
	lo, hi := s.asset.Bounds()
	offset := mgl32.Vec3{-(lo[0] + hi[0]) / 2, -lo[1], -(lo[2] + hi[2]) / 2}
	return mgl32.Scale3D(scale, scale, scale).Mul4(mgl32.Translate3D(offset.Elem()))
}

func (s *ringScene) Tick(snap configurator.Snapshot) (*renderer.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	if err := s.provider.Err(s.envURL); err != nil {
		return nil, err
	}

	if snap.Configuration.Scale != s.scale {
		if err := s.graph.SetLocal(s.ring, s.ringLocal(snap.Configuration.Scale)); err != nil {
			return nil, err
		}
		s.scale = snap.Configuration.Scale
	}
	s.shadow.SetTint(snap.ShadowTint)

	frame := s.acquireFrame()
	s.renderer.Begin(frame, s.camera)

	env, ready := s.environment()
	if !ready {
		s.renderer.Background(nil, 0)
		s.chain.Apply(frame)
		s.finish(frame)
		return frame, nil
	}

	ringWorld := s.graph.World(s.ring)
	planeWorld := s.graph.World(s.shadows)
	s.accumulate(planeWorld.Inv().Mul4(ringWorld))

	s.renderer.Background(env, s.envBlur)
	s.renderer.CompositeShadow(s.shadow.Snapshot(), planeWorld)

	s.renderer.DrawMesh(s.asset.Band, ringWorld, snap.Band, env)
	if s.asset.SolidMetal != nil {
		s.renderer.DrawMesh(s.asset.SolidMetal, ringWorld, snap.SolidMetal, env)
	}
	s.renderer.DrawInstanced(s.asset.Gem, s.asset.GemInstances, ringWorld, snap.Gem, env)

	s.chain.Apply(frame)
	s.finish(frame)
	return frame, nil
}

// environment returns the map to render with. An empty URL renders without one.
func (s *ringScene) environment() (*environment.Map, bool) {
	if s.envURL == "" {
		return nil, true
	}
	return s.provider.Request(s.envURL)
}

// accumulate advances the shadow with the ring posed in the shadow plane's frame. A pose change
// discards the accumulated shadow.
func (s *ringScene) accumulate(pose mgl32.Mat4) {
	if s.posed && pose != s.pose {
		log.Printf("[Scene] ring pose changed, resetting shadow")
		s.shadow.Invalidate()
	}
	if !s.posed || pose != s.pose {
		s.pose, s.posed = pose, true
		s.occluders = nil
	}
	if s.shadow.State() == light.StateConverged {
		return
	}
	if s.occluders == nil {
		s.occluders = s.asset.Occluders(pose)
	}
	s.shadow.Step(s.occluders)
}

func (s *ringScene) acquireFrame() *renderer.Frame {
	f := s.frames[s.next]
	if f == nil || f.Width != s.width || f.Height != s.height {
		f = renderer.NewFrame(s.width, s.height)
		s.frames[s.next] = f
	}
	s.next = 1 - s.next
	return f
}

func (s *ringScene) finish(frame *renderer.Frame) {
	s.last = frame
	s.ticks++
}

func (s *ringScene) LastFrame() *renderer.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *ringScene) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *ringScene) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = max(width, 1), max(height, 1)
	s.camera.SetAspect(float32(s.width) / float32(s.height))
}

func (s *ringScene) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *ringScene) Graph() Graph {
	return s.graph
}

func (s *ringScene) Camera() camera.Camera {
	return s.camera
}

func (s *ringScene) Renderer() renderer.Renderer {
	return s.renderer
}

func (s *ringScene) Accumulator() light.Accumulator {
	return s.shadow
}

func (s *ringScene) Environment() (environment.Provider, string) {
	return s.provider, s.envURL
}

func (s *ringScene) Asset() *model.GeometryAsset {
	return s.asset
}

func validateSnapshot(snap configurator.Snapshot) error {
	scale := snap.Configuration.Scale
	if !(scale > 0) || math32.IsInf(scale, 0) {
		return fmt.Errorf("%w: scale %v", errInvalidSnapshot, scale)
	}
	for _, d := range []struct {
		part string
		desc material.Descriptor
	}{
		{"band", snap.Band},
		{"solid metal", snap.SolidMetal},
		{"gem", snap.Gem},
	} {
		if err := d.desc.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", errInvalidSnapshot, d.part, err)
		}
	}
	return nil
}
