package renderer

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/camera"
	"github.com/Carmen-Shannon/oxy-jewel/engine/environment"
	"github.com/Carmen-Shannon/oxy-jewel/engine/light"
	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/raster"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultPlaceholder is the color frames are cleared to while the environment is loading.
var DefaultPlaceholder = common.Color{0.2, 0.2, 0.2}

// Stats counts the work submitted since the last Begin.
type Stats struct {
	DrawCalls int
	Instances int
	Triangles int
}

// corners holds the world-space attributes of one set-up triangle.
type corners struct {
	p [3]mgl32.Vec3
	n [3]mgl32.Vec3
}

// gemHit is the nearest transparent fragment of a pixel.
type gemHit struct {
	tri   int
	depth float32
	bary  [3]float32
}

// rendererImpl is the implementation of the Renderer interface.
type rendererImpl struct {
	mu sync.Mutex

	raster       raster.Rasterizer
	light        light.Light
	envIntensity float32
	toneMapper   ToneMapper
	placeholder  common.Color

	frame       *Frame
	eye         mgl32.Vec3
	view        mgl32.Mat4
	viewNormal  mgl32.Mat3
	viewProj    mgl32.Mat4
	invViewProj mgl32.Mat4
	stats       Stats

	tris    []raster.Triangle
	corners []corners
	wpos    []mgl32.Vec3
	wnrm    []mgl32.Vec3
	clip    []mgl32.Vec4
	hits    []gemHit
}

// Renderer shades the ring into a Frame on the CPU.
//
// A frame is produced by Begin followed by the passes in draw order: Background, CompositeShadow,
// DrawMesh for each opaque part, then DrawInstanced for the gems. Opaque draws are depth tested and
// fill the geometry buffers; the instanced draw resolves the nearest gem surface per pixel and blends it
// once over what is already there.
type Renderer interface {
	// Begin starts a frame. The frame is cleared to the placeholder color.
	//
	// Parameters:
	//   - frame: the render target
	//   - cam: the camera; its aspect should match the frame
	Begin(frame *Frame, cam camera.Camera)

	// Background fills every pixel with the environment seen through the camera. A nil map fills with the
	// placeholder color.
	//
	// Parameters:
	//   - env: the environment map, or nil
	//   - blur: the background blur, in units of two mip levels
	Background(env *environment.Map, blur float32)

	// CompositeShadow blends an accumulated shadow onto the pixels where the ground plane is visible.
	//
	// Parameters:
	//   - snap: the shadow snapshot
	//   - plane: the plane's world transform; the plane is y = 0 in its own frame
	CompositeShadow(snap *light.ShadowSnapshot, plane mgl32.Mat4)

	// DrawMesh draws an opaque mesh with the metal shading model.
	//
	// Parameters:
	//   - mesh: the mesh
	//   - world: the mesh's world transform
	//   - desc: the material
	//   - env: the environment used for reflections, or nil
	DrawMesh(mesh *model.Mesh, world mgl32.Mat4, desc material.Descriptor, env *environment.Map)

	// DrawInstanced draws every instance of a mesh as one batched, alpha-blended refraction draw.
	//
	// Parameters:
	//   - mesh: the base mesh
	//   - instances: per-instance transforms, applied before world
	//   - world: the transform shared by all instances
	//   - desc: the one material used for every instance
	//   - env: the environment sampled along refracted and reflected directions, or nil
	DrawInstanced(mesh *model.Mesh, instances []mgl32.Mat4, world mgl32.Mat4, desc material.Descriptor, env *environment.Map)

	// Stats returns the counters for the current frame.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// Frame returns the current render target.
	//
	// Returns:
	//   - *Frame: the frame passed to Begin
	Frame() *Frame
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a Renderer.
//
// Parameters:
//   - options: variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &rendererImpl{
		envIntensity: 1,
		placeholder:  DefaultPlaceholder,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.raster == nil {
		r.raster = raster.NewRasterizer(nil)
	}
	return r
}

func (r *rendererImpl) Begin(frame *Frame, cam camera.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frame = frame
	r.eye = cam.Position()
	r.view = cam.ViewMatrix()
	r.viewNormal = r.view.Mat3()
	r.viewProj = cam.ViewProjectionMatrix()
	r.invViewProj = r.viewProj.Inv()
	r.stats = Stats{}
	frame.Clear(r.placeholder)
	frame.Projection = cam.ProjectionMatrix()
}

func (r *rendererImpl) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *rendererImpl) Frame() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

func (r *rendererImpl) Background(env *environment.Map, blur float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.frame
	if f == nil {
		return
	}
	var lod float32
	if env != nil {
		lod = env.BackgroundLOD(blur)
	}
	r.raster.Rows(f.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < f.Width; x++ {
				i := f.Index(x, y)
				if env == nil {
					f.Color[i] = r.placeholder
					continue
				}
				_, dir := r.ray(x, y)
				f.Color[i] = env.Sample(dir, lod).Scale(r.envIntensity)
			}
		}
	})
}

func (r *rendererImpl) CompositeShadow(snap *light.ShadowSnapshot, plane mgl32.Mat4) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.frame
	if f == nil || snap == nil || snap.FrameCount == 0 {
		return
	}
	inv := plane.Inv()
	r.raster.Rows(f.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < f.Width; x++ {
				origin, dir := r.ray(x, y)
				o := common.TransformPoint(inv, origin)
				d := common.TransformDirection(inv, dir)
				if math.Abs(float64(d[1])) < 1e-6 {
					continue
				}
				t := -o[1] / d[1]
				if t <= 0 {
					continue
				}
				hit := o.Add(d.Mul(t))
				lit, ok := snap.At(hit[0], hit[2])
				if !ok {
					continue
				}

				i := f.Index(x, y)
				clip := r.viewProj.Mul4x1(common.TransformPoint(plane, hit).Vec4(1))
				if depth := clip[2]/clip[3]*0.5 + 0.5; depth >= f.Depth[i] {
					continue
				}
				c, alpha := snap.Shade(lit)
				if alpha > 0 {
					f.Color[i] = f.Color[i].Lerp(c, alpha)
				}
			}
		}
	})
}

func (r *rendererImpl) DrawMesh(mesh *model.Mesh, world mgl32.Mat4, desc material.Descriptor, env *environment.Map) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.frame
	if f == nil || mesh == nil {
		return
	}
	r.stats.DrawCalls++
	r.stats.Instances++

	r.tris, r.corners = r.tris[:0], r.corners[:0]
	r.setup(mesh, world, !desc.DoubleSided)

	r.raster.Draw(f.Width, f.Height, r.tris, func(ti int, frag raster.Fragment) {
		i := f.Index(frag.X, frag.Y)
		if frag.Depth >= f.Depth[i] {
			return
		}
		p, n := r.surface(ti, frag.Bary)
		f.Depth[i] = frag.Depth
		f.Color[i] = r.shadeMetal(p, n, desc, env)
		f.Position[i] = common.TransformPoint(r.view, p)
		f.Normal[i] = r.viewNormal.Mul3x1(n).Normalize()
		f.Geometry[i] = true
	})
}

func (r *rendererImpl) DrawInstanced(mesh *model.Mesh, instances []mgl32.Mat4, world mgl32.Mat4, desc material.Descriptor, env *environment.Map) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.frame
	if f == nil || mesh == nil || len(instances) == 0 {
		return
	}
	r.stats.DrawCalls++
	r.stats.Instances += len(instances)

	r.tris, r.corners = r.tris[:0], r.corners[:0]
	for _, inst := range instances {
		r.setup(mesh, world.Mul4(inst), !desc.DoubleSided)
	}

	if len(r.hits) != len(f.Color) {
		r.hits = make([]gemHit, len(f.Color))
	}
	for i := range r.hits {
		r.hits[i] = gemHit{tri: -1, depth: math.MaxFloat32}
	}

	hits := r.hits
	r.raster.Draw(f.Width, f.Height, r.tris, func(ti int, frag raster.Fragment) {
		i := f.Index(frag.X, frag.Y)
		if frag.Depth >= f.Depth[i] || frag.Depth >= hits[i].depth {
			return
		}
		hits[i] = gemHit{tri: ti, depth: frag.Depth, bary: frag.Bary}
	})

	opacity := common.Clamp01(desc.Opacity)
	r.raster.Rows(f.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < f.Width; x++ {
				i := f.Index(x, y)
				h := hits[i]
				if h.tri < 0 {
					continue
				}
				p, n := r.surface(h.tri, h.bary)
				f.Color[i] = f.Color[i].Lerp(r.shadeRefraction(p, n, desc, env), opacity)
			}
		}
	})
}

// setup transforms a mesh and appends its visible triangles.
func (r *rendererImpl) setup(mesh *model.Mesh, world mgl32.Mat4, cull bool) {
	nm := common.NormalMatrix(world)
	n := len(mesh.Vertices)
	if cap(r.wpos) < n {
		r.wpos = make([]mgl32.Vec3, n)
		r.wnrm = make([]mgl32.Vec3, n)
		r.clip = make([]mgl32.Vec4, n)
	}
	wpos, wnrm, clip := r.wpos[:n], r.wnrm[:n], r.clip[:n]
	for i, v := range mesh.Vertices {
		wpos[i] = common.TransformPoint(world, v.Position)
		wnrm[i] = common.SafeNormalize(common.TransformNormal(nm, v.Normal))
		clip[i] = r.viewProj.Mul4x1(wpos[i].Vec4(1))
	}

	for t := 0; t < mesh.TriangleCount(); t++ {
		a, b, c := mesh.Indices[3*t], mesh.Indices[3*t+1], mesh.Indices[3*t+2]
		tri, ok := raster.Setup([3]mgl32.Vec4{clip[a], clip[b], clip[c]}, r.frame.Width, r.frame.Height)
		if !ok || (cull && !tri.FrontFacing) {
			continue
		}
		r.tris = append(r.tris, tri)
		r.corners = append(r.corners, corners{
			p: [3]mgl32.Vec3{wpos[a], wpos[b], wpos[c]},
			n: [3]mgl32.Vec3{wnrm[a], wnrm[b], wnrm[c]},
		})
		r.stats.Triangles++
	}
}

// surface interpolates the world position and the normal facing the viewer.
func (r *rendererImpl) surface(ti int, bary [3]float32) (mgl32.Vec3, mgl32.Vec3) {
	c := &r.corners[ti]
	p := c.p[0].Mul(bary[0]).Add(c.p[1].Mul(bary[1])).Add(c.p[2].Mul(bary[2]))
	n := common.SafeNormalize(c.n[0].Mul(bary[0]).Add(c.n[1].Mul(bary[1])).Add(c.n[2].Mul(bary[2])))
	if !r.tris[ti].FrontFacing {
		n = n.Mul(-1)
	}
	return p, n
}

// ray returns the world-space eye ray through the center of pixel (x, y).
func (r *rendererImpl) ray(x, y int) (mgl32.Vec3, mgl32.Vec3) {
	f := r.frame
	nx := (float32(x)+0.5)/float32(f.Width)*2 - 1
	ny := 1 - (float32(y)+0.5)/float32(f.Height)*2
	near := r.invViewProj.Mul4x1(mgl32.Vec4{nx, ny, -1, 1})
	far := r.invViewProj.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
	n := near.Vec3().Mul(1 / near[3])
	return n, common.SafeNormalize(far.Vec3().Mul(1 / far[3]).Sub(n))
}
