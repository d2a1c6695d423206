package presenter

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

var errNotConfigured = errors.New("presenter surface is not configured")

// presenter is the implementation of the Presenter interface.
type presenter struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode
	configured    bool
	clearColor    wgpu.Color
	fallback      bool

	pipeline *wgpu.RenderPipeline
	layout   *wgpu.BindGroupLayout
	sampler  *wgpu.Sampler

	// The frame texture is recreated when the frame size changes.
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
	texWidth  int
	texHeight int
}

// Presenter shows CPU-rendered frames in a window surface. Each Present uploads the frame to a
// texture and draws it over the whole surface, scaling with linear filtering when the frame and
// surface sizes differ.
//
// All methods must be called from the thread that created the window.
type Presenter interface {
	// Configure sizes the swapchain. It must be called before the first Present and after every
	// window resize.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	Configure(width, height int)

	// SetVSync selects FIFO presentation when on and immediate presentation when off. It takes
	// effect on the next Configure.
	//
	// Parameters:
	//   - on: whether to wait for vertical blank
	SetVSync(on bool)

	// Present uploads img and presents it.
	//
	// Parameters:
	//   - img: the sRGB-encoded frame
	//
	// Returns:
	//   - error: error if the surface is not configured or no surface image could be acquired
	Present(img *image.RGBA) error

	// Release frees every GPU object the presenter holds.
	Release()
}

var _ Presenter = &presenter{}

// NewPresenter creates a Presenter on the surface described by desc.
//
// Parameters:
//   - desc: the platform surface descriptor, usually from the window
//   - options: variadic list of PresenterBuilderOption functions to configure the presenter
//
// Returns:
//   - Presenter: the new presenter
//   - error: error if no adapter or device is available or the blit pipeline cannot be built
func NewPresenter(desc *wgpu.SurfaceDescriptor, options ...PresenterBuilderOption) (Presenter, error) {
	if desc == nil {
		return nil, errors.New("nil surface descriptor")
	}
	runtime.LockOSThread()

	p := &presenter{
		presentMode: wgpu.PresentModeFifo,
		clearColor:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
	for _, opt := range options {
		opt(p)
	}

	p.instance = wgpu.CreateInstance(nil)
	p.surface = p.instance.CreateSurface(desc)

	adapter, err := p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: p.fallback,
		CompatibleSurface:    p.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	p.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Presenter Device"})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	p.device = device
	p.queue = device.GetQueue()

	capabilities := p.surface.GetCapabilities(p.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, errors.New("surface reports no formats")
	}
	p.surfaceFormat = capabilities.Formats[0]
	p.alphaMode = capabilities.AlphaModes[0]

	if err := p.createPipeline(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *presenter) createPipeline() error {
	info, err := reflectShader(blitShader)
	if err != nil {
		return err
	}
	module, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Blit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: blitShader},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	desc := info.groups[0]
	p.layout, err = p.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}
	pipelineLayout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Blit",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.layout},
	})
	if err != nil {
		return err
	}

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Blit Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: info.vertexEntry,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: info.fragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    p.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Blit Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	return err
}

func (p *presenter) Configure(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width <= 0 || height <= 0 {
		p.configured = false
		return
	}
	p.surface.Configure(p.adapter, p.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      p.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: p.presentMode,
		AlphaMode:   p.alphaMode,
	})
	p.configured = true
}

func (p *presenter) SetVSync(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if on {
		p.presentMode = wgpu.PresentModeFifo
	} else {
		p.presentMode = wgpu.PresentModeImmediate
	}
}

func (p *presenter) Present(img *image.RGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.configured {
		return errNotConfigured
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if err := p.ensureTexture(w, h); err != nil {
		return err
	}

	p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: p.texture,
			Aspect:  wgpu.TextureAspectAll,
		},
		img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y):],
		&wgpu.TextureDataLayout{
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: uint32(h),
		},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)

	surfaceTexture, err := p.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: p.clearColor,
		}},
	})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	p.queue.Submit(commandBuffer)
	commandBuffer.Release()

	p.surface.Present()
	return nil
}

// ensureTexture recreates the frame texture and its bind group for a new frame size.
func (p *presenter) ensureTexture(w, h int) error {
	if p.texture != nil && p.texWidth == w && p.texHeight == h {
		return nil
	}
	p.releaseTexture()

	tex, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Frame Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		Format:        frameFormat(p.surfaceFormat),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: p.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return err
	}

	p.texture, p.view, p.bindGroup = tex, view, bindGroup
	p.texWidth, p.texHeight = w, h
	return nil
}

func (p *presenter) releaseTexture() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.view != nil {
		p.view.Release()
		p.view = nil
	}
	if p.texture != nil {
		p.texture.Release()
		p.texture = nil
	}
}

func (p *presenter) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseTexture()
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
	if p.device != nil {
		p.device.Release()
	}
	if p.adapter != nil {
		p.adapter.Release()
	}
	if p.surface != nil {
		p.surface.Release()
	}
	if p.instance != nil {
		p.instance.Release()
	}
	p.configured = false
}
