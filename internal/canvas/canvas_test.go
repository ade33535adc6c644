package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iqamahs/core-go/internal/geo"
	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/widget"
)

var (
	downtown = geo.Point{Lat: 29.7604, Lon: -95.3698}
	katy     = geo.Point{Lat: 29.7858, Lon: -95.7770}
)

func TestPane_ResizeNotifiesUntilClosed(t *testing.T) {
	p := NewPane(10, 5)
	var got [][2]int
	sub := p.OnResize(func(w, h int) { got = append(got, [2]int{w, h}) })

	p.Resize(10, 5)
	p.Resize(20, 6)
	p.Resize(-1, 3)
	sub.Close()
	sub.Close()
	p.Resize(1, 1)

	assert.Equal(t, [][2]int{{20, 6}, {0, 3}}, got)
	assert.Equal(t, 0, p.Observers())
	w, h := p.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestMap_FitBoundsCapsZoom(t *testing.T) {
	m := New(NewPane(100, 30), widget.Options{})

	b, ok := geo.NewBounds(downtown)
	require.True(t, ok)
	m.FitBounds(b, widget.FitOptions{Padding: 50, MaxZoom: 16})
	center, zoom := m.Camera()
	assert.Equal(t, 16.0, zoom)
	assert.InDelta(t, downtown.Lat, center.Lat, 1e-9)
	assert.InDelta(t, downtown.Lon, center.Lon, 1e-9)

	b, _ = geo.NewBounds(downtown, katy)
	m.FitBounds(b, widget.FitOptions{Padding: 50, MaxZoom: 16})
	_, zoom = m.Camera()
	assert.Less(t, zoom, 16.0)

	for _, p := range []geo.Point{downtown, katy} {
		col, row := m.CellOf(p)
		assert.GreaterOrEqual(t, col, 0)
		assert.Less(t, col, 100)
		assert.GreaterOrEqual(t, row, 0)
		assert.Less(t, row, 30)
	}
}

func TestNew_FramesInitialBounds(t *testing.T) {
	m := New(NewPane(100, 30), widget.Options{InitialBounds: masjid.HoustonBounds})
	center, zoom := m.Camera()
	assert.True(t, masjid.HoustonBounds.Contains(center), "center %+v", center)
	assert.Greater(t, zoom, 1.0)
}

func TestMap_FitWithoutSizeFallsBackToWorld(t *testing.T) {
	m := New(NewPane(0, 0), widget.Options{})
	b, _ := geo.NewBounds(downtown, katy)
	m.FitBounds(b, widget.FitOptions{Padding: 50})
	_, zoom := m.Camera()
	assert.Equal(t, 0.0, zoom)
}

func TestMap_InvalidateSizeRemeasures(t *testing.T) {
	p := NewPane(0, 0)
	m := New(p, widget.Options{})
	p.Resize(40, 10)

	assert.Equal(t, 0, m.Snapshot().Width)
	m.InvalidateSize()
	s := m.Snapshot()
	assert.Equal(t, 40, s.Width)
	assert.Equal(t, 10, s.Height)
	assert.Equal(t, 1, s.SizeChecks)
}

func TestMap_ClickPropagation(t *testing.T) {
	m := New(NewPane(100, 30), widget.Options{})
	m.SetView(downtown, 12)
	mk := m.PlaceMarker(downtown)

	var order []string
	stop := false
	mk.On(widget.EventClick, func(e *widget.Event) {
		order = append(order, "marker")
		if stop {
			e.StopPropagation()
		}
	})
	m.On(widget.EventClick, func(e *widget.Event) { order = append(order, "map") })

	col, row := m.CellOf(downtown)
	assert.Equal(t, 50, col)
	assert.Equal(t, 15, row)

	m.Click(col, row)
	assert.Equal(t, []string{"marker", "map"}, order)

	order, stop = nil, true
	m.Click(col, row)
	assert.Equal(t, []string{"marker"}, order)

	order = nil
	m.Click(0, 0)
	assert.Equal(t, []string{"map"}, order)
}

func TestMap_TopmostMarkerReceivesClick(t *testing.T) {
	m := New(NewPane(100, 30), widget.Options{})
	m.SetView(downtown, 12)
	a := m.PlaceMarker(downtown)
	b := m.PlaceMarker(downtown)

	var hits []string
	a.On(widget.EventClick, func(e *widget.Event) { hits = append(hits, "a"); e.StopPropagation() })
	b.On(widget.EventClick, func(e *widget.Event) { hits = append(hits, "b"); e.StopPropagation() })

	m.Click(50, 15)
	a.SetZIndexOffset(1000)
	m.Click(50, 15)
	assert.Equal(t, []string{"b", "a"}, hits)
}

func TestMap_ZoomControl(t *testing.T) {
	m := New(NewPane(100, 30), widget.Options{ZoomControlPosition: widget.BottomRight})
	m.SetView(downtown, 10)
	var background int
	m.On(widget.EventClick, func(*widget.Event) { background++ })

	m.Click(96, 29)
	_, zoom := m.Camera()
	assert.Equal(t, 11.0, zoom)
	m.Click(98, 29)
	m.Click(98, 29)
	_, zoom = m.Camera()
	assert.Equal(t, 9.0, zoom)
	assert.Zero(t, background)

	lines := strings.Split(m.String(), "\n")
	require.Len(t, lines, 30)
	assert.True(t, strings.HasSuffix(lines[29], zoomControl))
}

func TestMap_RenderSelectedMarker(t *testing.T) {
	m := New(NewPane(11, 3), widget.Options{})
	m.SetView(downtown, 12)
	mk := m.PlaceMarker(downtown)
	assert.Equal(t, "     ●     ", strings.Split(m.String(), "\n")[1])

	mk.SetIcon(widget.IconSelected)
	assert.Equal(t, "    [◆]    ", strings.Split(m.String(), "\n")[1])

	s := m.Snapshot()
	require.Len(t, s.Markers, 1)
	assert.Equal(t, string(widget.IconSelected), s.Markers[0].Icon)
	assert.Equal(t, 44, s.Markers[0].IconSize)
	assert.True(t, s.Markers[0].Visible)
}

func TestMap_RemoveDetachesEverything(t *testing.T) {
	var changes int
	h := NewHost(func() { changes++ })
	m := h.Factory(NewPane(20, 5), widget.Options{}).(*Map)
	mk := m.PlaceMarker(downtown).(*Marker)
	require.Same(t, m, h.Current())

	m.Remove()
	assert.True(t, mk.Detached())
	assert.Nil(t, h.Current())
	assert.Empty(t, m.Snapshot().Markers)

	late := m.PlaceMarker(katy).(*Marker)
	assert.True(t, late.Detached())
	mk.Remove()
	assert.Positive(t, changes)
}
