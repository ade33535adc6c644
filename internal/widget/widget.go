// Package widget describes the map capability the reconciliation engine drives.
//
// A Widget owns its camera and its markers. Callers only issue imperative
// commands and read positions back through Marker handles.
package widget

import "iqamahs/core-go/internal/geo"

// EventClick is the only event name the engine subscribes to.
const EventClick = "click"

type Icon string

const (
	IconDefault  Icon = "default"
	IconSelected Icon = "selected"
)

// Size is the icon's nominal edge length in pixels.
func (i Icon) Size() int {
	if i == IconSelected {
		return 44
	}
	return 36
}

type Corner string

const (
	TopLeft     Corner = "topleft"
	TopRight    Corner = "topright"
	BottomLeft  Corner = "bottomleft"
	BottomRight Corner = "bottomright"
)

// Options configures a widget at construction time.
type Options struct {
	// ZoomControl enables the widget's built-in zoom control.
	ZoomControl bool
	// ZoomControlPosition places an explicitly added zoom control. Empty means none.
	ZoomControlPosition Corner
	Tiles               TileLayer
	InitialBounds       geo.Bounds
}

type TileLayer struct {
	URLTemplate string
	Attribution string
	Subdomains  string
	MaxZoom     int
}

type FitOptions struct {
	Padding int
	MaxZoom float64
}

// Event is delivered to click handlers. Marker handlers see the event first.
type Event struct {
	Point   geo.Point
	stopped bool
}

func NewEvent(p geo.Point) *Event { return &Event{Point: p} }

// StopPropagation keeps the event from reaching the widget's background handlers.
func (e *Event) StopPropagation() { e.stopped = true }

func (e *Event) Stopped() bool { return e.stopped }

type Handler func(e *Event)

// Subscription releases a handler or observer registration. Close is idempotent.
type Subscription interface {
	Close()
}

type Widget interface {
	SetView(center geo.Point, zoom float64)
	FitBounds(b geo.Bounds, opts FitOptions)
	InvalidateSize()
	PlaceMarker(p geo.Point) Marker
	On(event string, h Handler) Subscription
	// Remove destroys the widget. No method may be called afterwards.
	Remove()
}

type Marker interface {
	Position() geo.Point
	SetIcon(icon Icon)
	SetZIndexOffset(offset int)
	On(event string, h Handler) Subscription
	Remove()
}

// Container is the display region a widget is bound to.
type Container interface {
	Size() (width, height int)
	OnResize(fn func(width, height int)) Subscription
}

// Factory constructs a widget bound to c.
type Factory func(c Container, opts Options) Widget

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Close() {
	if f != nil {
		f()
	}
}
