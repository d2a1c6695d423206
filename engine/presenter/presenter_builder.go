package presenter

import (
	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresenterBuilderOption is a functional option for configuring a Presenter via NewPresenter.
type PresenterBuilderOption func(*presenter)

// WithVSync is an option builder that selects FIFO (on) or immediate (off) presentation.
//
// Parameters:
//   - on: whether to wait for vertical blank
//
// Returns:
//   - PresenterBuilderOption: a function that applies the vsync option to a presenter
func WithVSync(on bool) PresenterBuilderOption {
	return func(p *presenter) {
		if on {
			p.presentMode = wgpu.PresentModeFifo
		} else {
			p.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithFallbackAdapter is an option builder that forces the software adapter.
//
// Parameters:
//   - force: whether to request the fallback adapter
//
// Returns:
//   - PresenterBuilderOption: a function that applies the adapter option to a presenter
func WithFallbackAdapter(force bool) PresenterBuilderOption {
	return func(p *presenter) {
		p.fallback = force
	}
}

// WithClearColor is an option builder that sets the color shown before the first frame arrives.
//
// Parameters:
//   - c: the linear clear color
//
// Returns:
//   - PresenterBuilderOption: a function that applies the clear color option to a presenter
func WithClearColor(c common.Color) PresenterBuilderOption {
	return func(p *presenter) {
		p.clearColor = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: 1}
	}
}
