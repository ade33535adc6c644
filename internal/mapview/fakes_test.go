package mapview

import (
	"iqamahs/core-go/internal/geo"
	"iqamahs/core-go/internal/widget"
)

type call struct {
	Op     string
	Point  geo.Point
	Zoom   float64
	Bounds geo.Bounds
	Fit    widget.FitOptions
}

type fakeWidget struct {
	container widget.Container
	opts      widget.Options
	calls     []call
	markers   []*fakeMarker
	handlers  map[int]widget.Handler
	next      int
	removed   bool
}

func (w *fakeWidget) SetView(center geo.Point, zoom float64) {
	w.calls = append(w.calls, call{Op: "setView", Point: center, Zoom: zoom})
}

func (w *fakeWidget) FitBounds(b geo.Bounds, opts widget.FitOptions) {
	w.calls = append(w.calls, call{Op: "fitBounds", Bounds: b, Fit: opts})
}

func (w *fakeWidget) InvalidateSize() {
	w.calls = append(w.calls, call{Op: "invalidateSize"})
}

func (w *fakeWidget) PlaceMarker(p geo.Point) widget.Marker {
	mk := &fakeMarker{owner: w, pos: p, icon: widget.IconDefault, handlers: map[int]widget.Handler{}}
	w.markers = append(w.markers, mk)
	w.calls = append(w.calls, call{Op: "placeMarker", Point: p})
	return mk
}

func (w *fakeWidget) On(event string, h widget.Handler) widget.Subscription {
	id := w.next
	w.next++
	w.handlers[id] = h
	return widget.SubscriptionFunc(func() { delete(w.handlers, id) })
}

func (w *fakeWidget) Remove() {
	w.removed = true
	w.calls = append(w.calls, call{Op: "remove"})
}

func (w *fakeWidget) clickBackground() {
	ev := widget.NewEvent(geo.Point{})
	for _, h := range w.handlers {
		h(ev)
	}
}

// ops returns the recorded operation names, optionally filtered.
func (w *fakeWidget) ops(keep ...string) []string {
	out := []string{}
	for _, c := range w.calls {
		if len(keep) == 0 {
			out = append(out, c.Op)
			continue
		}
		for _, k := range keep {
			if c.Op == k {
				out = append(out, c.Op)
			}
		}
	}
	return out
}

func (w *fakeWidget) last(op string) (call, bool) {
	for i := len(w.calls) - 1; i >= 0; i-- {
		if w.calls[i].Op == op {
			return w.calls[i], true
		}
	}
	return call{}, false
}

func (w *fakeWidget) liveMarkers() []*fakeMarker {
	out := []*fakeMarker{}
	for _, mk := range w.markers {
		if !mk.removed {
			out = append(out, mk)
		}
	}
	return out
}

func (w *fakeWidget) clearCalls() { w.calls = nil }

type fakeMarker struct {
	owner    *fakeWidget
	pos      geo.Point
	icon     widget.Icon
	z        int
	handlers map[int]widget.Handler
	next     int
	removed  bool
}

func (m *fakeMarker) Position() geo.Point { return m.pos }
func (m *fakeMarker) SetIcon(icon widget.Icon) { m.icon = icon }
func (m *fakeMarker) SetZIndexOffset(offset int) { m.z = offset }
func (m *fakeMarker) Remove() { m.removed = true }

func (m *fakeMarker) On(event string, h widget.Handler) widget.Subscription {
	id := m.next
	m.next++
	m.handlers[id] = h
	return widget.SubscriptionFunc(func() { delete(m.handlers, id) })
}

// click mimics event bubbling: marker handlers first, then the widget's.
func (m *fakeMarker) click() {
	ev := widget.NewEvent(m.pos)
	for _, h := range m.handlers {
		h(ev)
	}
	if ev.Stopped() {
		return
	}
	for _, h := range m.owner.handlers {
		h(ev)
	}
}

type fakeContainer struct {
	width, height int
	observers     map[int]func(int, int)
	next          int
}

func newFakeContainer(width, height int) *fakeContainer {
	return &fakeContainer{width: width, height: height, observers: map[int]func(int, int){}}
}

func (c *fakeContainer) Size() (int, int) { return c.width, c.height }

func (c *fakeContainer) OnResize(fn func(int, int)) widget.Subscription {
	id := c.next
	c.next++
	c.observers[id] = fn
	return widget.SubscriptionFunc(func() { delete(c.observers, id) })
}

func (c *fakeContainer) resize(width, height int) {
	c.width, c.height = width, height
	for _, fn := range c.observers {
		fn(width, height)
	}
}

// fakeFactory records every widget it builds.
type fakeFactory struct {
	built []*fakeWidget
}

func (f *fakeFactory) build(c widget.Container, opts widget.Options) widget.Widget {
	w := &fakeWidget{container: c, opts: opts, handlers: map[int]widget.Handler{}}
	f.built = append(f.built, w)
	return w
}

func (f *fakeFactory) current() *fakeWidget {
	if len(f.built) == 0 {
		return nil
	}
	return f.built[len(f.built)-1]
}
