package scene

import (
	"github.com/Carmen-Shannon/oxy-jewel/engine/camera"
	"github.com/Carmen-Shannon/oxy-jewel/engine/environment"
	"github.com/Carmen-Shannon/oxy-jewel/engine/light"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer"
	"github.com/Carmen-Shannon/oxy-jewel/engine/renderer/postprocess"
)

// RingSceneBuilderOption is a functional option for configuring a RingScene.
// Use the With* functions to create options.
type RingSceneBuilderOption func(s *ringScene)

// WithSize sets the frame size in pixels.
//
// Parameters:
//   - width, height: the frame size
//
// Returns:
//   - RingSceneBuilderOption: option function to apply
func WithSize(width, height int) RingSceneBuilderOption {
	return func(s *ringScene) {
		s.width, s.height = width, height
	}
}

// WithCamera sets the scene camera. Its aspect ratio is replaced to match the frame size.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - RingSceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) RingSceneBuilderOption {
	return func(s *ringScene) {
		s.camera = cam
	}
}

// WithRenderer sets the renderer the scene draws with.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - RingSceneBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) RingSceneBuilderOption {
	return func(s *ringScene) {
		s.renderer = r
	}
}

// WithChain sets the post-processing chain run at the end of every tick.
//
// Parameters:
//   - c: the chain
//
// Returns:
//   - RingSceneBuilderOption: option function to apply
func WithChain(c postprocess.Chain) RingSceneBuilderOption {
	return func(s *ringScene) {
		s.chain = c
	}
}

// WithAccumulator sets the shadow accumulator.
//
// Parameters:
//   - a: the accumulator
//
// Returns:
//   - RingSceneBuilderOption: option function to apply
func WithAccumulator(a light.Accumulator) RingSceneBuilderOption {
	return func(s *ringScene) {
		s.shadow = a
	}
}

// WithEnvironment sets the environment map source and the background blur. The map is requested
// from the provider on the first tick.
//
// Parameters:
//   - p: the provider, or nil to keep the default
//   - url: the environment URL
//   - blur: the background blur in mip levels
//
// Returns:
//   - RingSceneBuilderOption: option function to apply
func WithEnvironment(p environment.Provider, url string, blur float32) RingSceneBuilderOption {
	return func(s *ringScene) {
		if p != nil {
			s.provider = p
		}
		s.envURL = url
		s.envBlur = blur
	}
}

// WithLayout sets the transform stack the ring is placed under.
//
// Parameters:
//   - layout: the layout
//
// Returns:
//   - RingSceneBuilderOption: option function to apply
func WithLayout(layout Layout) RingSceneBuilderOption {
	return func(s *ringScene) {
		s.layout = layout
	}
}
