// Package canvas is a terminal map widget. It projects markers onto a grid of
// character cells using Web-Mercator math and behaves like a slippy map: a
// camera (center + zoom), fit-to-bounds, markers with icons and draw order,
// and click events that bubble from markers to the map background.
package canvas

import (
	"math"
	"sort"
	"sync"

	"iqamahs/core-go/internal/geo"
	"iqamahs/core-go/internal/widget"
)

const (
	// CellWidth and CellHeight are the pixel dimensions one terminal cell stands for.
	CellWidth  = 8.0
	CellHeight = 16.0

	defaultMaxZoom = 20
	zoomStep       = 1
)

// Map implements widget.Widget.
type Map struct {
	mu sync.Mutex

	container widget.Container
	opts      widget.Options
	maxZoom   float64

	width      int
	height     int
	sizeChecks int

	center geo.Point
	zoom   float64

	markers    map[int]*Marker
	nextMarker int

	handlers    map[int]widget.Handler
	nextHandler int

	removed  bool
	onChange func()
}

// New binds a map to c. The size is measured immediately and may be zero.
func New(c widget.Container, opts widget.Options) *Map {
	maxZoom := float64(opts.Tiles.MaxZoom)
	if maxZoom <= 0 {
		maxZoom = defaultMaxZoom
	}
	m := &Map{
		container: c,
		opts:      opts,
		maxZoom:   maxZoom,
		zoom:      1,
		markers:   make(map[int]*Marker),
		handlers:  make(map[int]widget.Handler),
	}
	m.width, m.height = c.Size()
	if !opts.InitialBounds.IsEmpty() {
		m.fitLocked(opts.InitialBounds, widget.FitOptions{})
	}
	return m
}

func (m *Map) SetView(center geo.Point, zoom float64) {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return
	}
	m.center = center
	m.zoom = m.clampZoom(zoom)
	m.mu.Unlock()
	m.changed()
}

func (m *Map) FitBounds(b geo.Bounds, opts widget.FitOptions) {
	m.mu.Lock()
	if m.removed || b.IsEmpty() {
		m.mu.Unlock()
		return
	}
	m.fitLocked(b, opts)
	m.mu.Unlock()
	m.changed()
}

// fitLocked picks the largest whole zoom at which b fits inside the padded
// viewport, capped by opts.MaxZoom, and centers on b.
func (m *Map) fitLocked(b geo.Bounds, opts widget.FitOptions) {
	x1, y1 := geo.Project(b.SouthWest(), 0)
	x2, y2 := geo.Project(b.NorthEast(), 0)
	m.center = geo.Unproject((x1+x2)/2, (y1+y2)/2, 0)

	availW := float64(m.width)*CellWidth - 2*float64(opts.Padding)
	availH := float64(m.height)*CellHeight - 2*float64(opts.Padding)
	dx, dy := math.Abs(x2-x1), math.Abs(y2-y1)

	zoom := m.maxZoom
	if availW <= 0 || availH <= 0 {
		zoom = 0
	} else {
		scale := math.Inf(1)
		if dx > 0 {
			scale = math.Min(scale, availW/dx)
		}
		if dy > 0 {
			scale = math.Min(scale, availH/dy)
		}
		if !math.IsInf(scale, 1) {
			zoom = math.Floor(math.Log2(scale))
		}
	}
	if opts.MaxZoom > 0 && zoom > opts.MaxZoom {
		zoom = opts.MaxZoom
	}
	m.zoom = m.clampZoom(zoom)
}

func (m *Map) clampZoom(z float64) float64 {
	if math.IsNaN(z) || z < 0 {
		return 0
	}
	if z > m.maxZoom {
		return m.maxZoom
	}
	return z
}

// InvalidateSize re-measures the container.
func (m *Map) InvalidateSize() {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return
	}
	m.width, m.height = m.container.Size()
	m.sizeChecks++
	m.mu.Unlock()
	m.changed()
}

func (m *Map) PlaceMarker(p geo.Point) widget.Marker {
	m.mu.Lock()
	mk := &Marker{
		owner:    m,
		id:       m.nextMarker,
		pos:      p,
		icon:     widget.IconDefault,
		handlers: make(map[int]widget.Handler),
	}
	m.nextMarker++
	if m.removed {
		mk.detached = true
	} else {
		m.markers[mk.id] = mk
	}
	m.mu.Unlock()
	m.changed()
	return mk
}

func (m *Map) On(event string, h widget.Handler) widget.Subscription {
	if event != widget.EventClick || h == nil {
		return widget.SubscriptionFunc(nil)
	}
	m.mu.Lock()
	id := m.nextHandler
	m.nextHandler++
	m.handlers[id] = h
	m.mu.Unlock()

	var once sync.Once
	return widget.SubscriptionFunc(func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.handlers, id)
			m.mu.Unlock()
		})
	})
}

func (m *Map) Remove() {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return
	}
	m.removed = true
	for _, mk := range m.markers {
		mk.detached = true
	}
	m.markers = make(map[int]*Marker)
	m.handlers = make(map[int]widget.Handler)
	m.mu.Unlock()
	m.changed()
}

// Removed reports whether Remove has been called.
func (m *Map) Removed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removed
}

// SetOnChange installs a hook called after every visible change.
func (m *Map) SetOnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Map) changed() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Camera returns the current center and zoom.
func (m *Map) Camera() (geo.Point, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center, m.zoom
}

// cellOf returns the grid cell p falls in for the current camera.
func (m *Map) cellOf(p geo.Point) (col, row int) {
	x, y := geo.Project(p, m.zoom)
	cx, cy := geo.Project(m.center, m.zoom)
	col = int(math.Floor((x-cx)/CellWidth + float64(m.width)/2))
	row = int(math.Floor((y-cy)/CellHeight + float64(m.height)/2))
	return col, row
}

// pointAt returns the geographic position at the middle of a cell.
func (m *Map) pointAt(col, row int) geo.Point {
	cx, cy := geo.Project(m.center, m.zoom)
	x := cx + (float64(col)+0.5-float64(m.width)/2)*CellWidth
	y := cy + (float64(row)+0.5-float64(m.height)/2)*CellHeight
	return geo.Unproject(x, y, m.zoom)
}

// drawOrderLocked returns live markers bottom to top. Like a slippy map, a
// marker's stacking order is its screen row plus its z-index offset.
func (m *Map) drawOrderLocked() []*Marker {
	out := make([]*Marker, 0, len(m.markers))
	for _, mk := range m.markers {
		out = append(out, mk)
	}
	rows := make(map[int]int, len(out))
	for _, mk := range out {
		_, row := m.cellOf(mk.pos)
		rows[mk.id] = row + mk.zIndex
	}
	sort.Slice(out, func(i, j int) bool {
		zi, zj := rows[out[i].id], rows[out[j].id]
		if zi != zj {
			return zi < zj
		}
		return out[i].id < out[j].id
	})
	return out
}

// footprint returns the columns a marker occupies on its row.
func footprint(icon widget.Icon, col int) (int, int) {
	if icon == widget.IconSelected {
		return col - 1, col + 1
	}
	return col, col
}

// Click delivers a click at a grid cell. The topmost marker under the cell
// receives it first; unless a marker handler stops propagation the map's own
// click handlers run afterwards. Clicks on the zoom control only zoom.
func (m *Map) Click(col, row int) {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return
	}
	if delta, ok := m.zoomControlHitLocked(col, row); ok {
		m.zoom = m.clampZoom(m.zoom + delta)
		m.mu.Unlock()
		m.changed()
		return
	}

	var hit *Marker
	order := m.drawOrderLocked()
	for i := len(order) - 1; i >= 0; i-- {
		mk := order[i]
		mc, mr := m.cellOf(mk.pos)
		lo, hi := footprint(mk.icon, mc)
		if mr == row && col >= lo && col <= hi {
			hit = mk
			break
		}
	}
	ev := widget.NewEvent(m.pointAt(col, row))
	var markerHandlers []widget.Handler
	if hit != nil {
		ev.Point = hit.pos
		markerHandlers = hit.handlerList()
	}
	mapHandlers := make([]widget.Handler, 0, len(m.handlers))
	ids := make([]int, 0, len(m.handlers))
	for id := range m.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		mapHandlers = append(mapHandlers, m.handlers[id])
	}
	m.mu.Unlock()

	for _, h := range markerHandlers {
		h(ev)
	}
	if ev.Stopped() {
		return
	}
	for _, h := range mapHandlers {
		h(ev)
	}
}

// CellOf reports where p currently renders.
func (m *Map) CellOf(p geo.Point) (col, row int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cellOf(p)
}

func (m *Map) zoomControlHitLocked(col, row int) (float64, bool) {
	x, y, ok := m.zoomControlOriginLocked()
	if !ok || row != y {
		return 0, false
	}
	switch col {
	case x + 1:
		return zoomStep, true
	case x + 3:
		return -zoomStep, true
	}
	return 0, false
}

// zoomControlOriginLocked locates the "[+|-]" control.
func (m *Map) zoomControlOriginLocked() (int, int, bool) {
	pos := m.opts.ZoomControlPosition
	if m.opts.ZoomControl && pos == "" {
		pos = widget.TopLeft
	}
	if pos == "" || m.width < len(zoomControl) || m.height < 1 {
		return 0, 0, false
	}
	x, y := 0, 0
	switch pos {
	case widget.TopRight:
		x = m.width - len(zoomControl)
	case widget.BottomLeft:
		y = m.height - 1
	case widget.BottomRight:
		x, y = m.width-len(zoomControl), m.height-1
	}
	return x, y, true
}

const zoomControl = "[+|-]"
