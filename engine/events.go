package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-jewel/common"
	"github.com/Carmen-Shannon/oxy-jewel/engine/config"
)

// EventKind identifies what an Event changes.
type EventKind int

const (
	// EventBandColor selects the band color.
	EventBandColor EventKind = iota

	// EventGemColor selects the gem color.
	EventGemColor

	// EventScale sets the ring scale.
	EventScale

	// EventScaleBy multiplies the current ring scale by Value.
	EventScaleBy

	// EventShadowTint sets the shadow tint directly.
	EventShadowTint

	// EventOrbit rotates the camera by DX (azimuth) and DY (polar) radians.
	EventOrbit

	// EventZoom scales the camera distance by Value.
	EventZoom

	// EventResetView returns the camera to its starting position.
	EventResetView

	// EventResize changes the render target size to Width x Height pixels.
	EventResize

	// EventSaveFrame writes the last rendered frame as a PNG to Path.
	EventSaveFrame
)

func (k EventKind) String() string {
	switch k {
	case EventBandColor:
		return "band color"
	case EventGemColor:
		return "gem color"
	case EventScale, EventScaleBy:
		return "scale"
	case EventShadowTint:
		return "shadow tint"
	case EventOrbit:
		return "orbit"
	case EventZoom:
		return "zoom"
	case EventResetView:
		return "reset view"
	case EventResize:
		return "resize"
	case EventSaveFrame:
		return "save frame"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a change queued on the engine and applied between ticks.
type Event struct {
	Kind  EventKind
	Color common.Color
	Value float32
	DX    float32
	DY    float32

	Width  int
	Height int
	Path   string
}

// BandColor selects the band color.
func BandColor(c common.Color) Event {
	return Event{Kind: EventBandColor, Color: c}
}

// GemColor selects the gem color.
func GemColor(c common.Color) Event {
	return Event{Kind: EventGemColor, Color: c}
}

// Scale sets the ring scale.
func Scale(s float32) Event {
	return Event{Kind: EventScale, Value: s}
}

// ScaleBy multiplies the ring scale.
func ScaleBy(factor float32) Event {
	return Event{Kind: EventScaleBy, Value: factor}
}

// ShadowTint sets the shadow tint.
func ShadowTint(c common.Color) Event {
	return Event{Kind: EventShadowTint, Color: c}
}

// Orbit rotates the camera around its target.
func Orbit(dAzimuth, dPolar float32) Event {
	return Event{Kind: EventOrbit, DX: dAzimuth, DY: dPolar}
}

// Zoom scales the camera distance.
func Zoom(factor float32) Event {
	return Event{Kind: EventZoom, Value: factor}
}

// ResetView returns the camera to its starting position.
func ResetView() Event {
	return Event{Kind: EventResetView}
}

// Resize changes the render target size.
func Resize(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

// SaveFrame writes the last rendered frame to path.
func SaveFrame(path string) Event {
	return Event{Kind: EventSaveFrame, Path: path}
}

// ConfigEvents returns the selection events that turn the ring section of prev into next.
// Fields that did not change produce no event.
//
// Parameters:
//   - prev: the configuration currently applied
//   - next: the reloaded configuration
//
// Returns:
//   - []Event: the events to submit, in band, gem, tint, scale order
//   - error: error if a color in next cannot be parsed
func ConfigEvents(prev, next *config.Config) ([]Event, error) {
	pb, pg, pt, err := prev.RingColors()
	if err != nil {
		return nil, err
	}
	nb, ng, nt, err := next.RingColors()
	if err != nil {
		return nil, err
	}

	var events []Event
	if nb != pb {
		events = append(events, BandColor(nb))
	}
	if ng != pg {
		events = append(events, GemColor(ng))
	}
	if next.Ring.ShadowTint != "" && nt != pt {
		events = append(events, ShadowTint(nt))
	}
	if next.Ring.Scale != prev.Ring.Scale {
		events = append(events, Scale(next.Ring.Scale))
	}
	return events, nil
}
