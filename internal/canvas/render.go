package canvas

import (
	"strings"

	"iqamahs/core-go/internal/geo"
	"iqamahs/core-go/internal/widget"
)

type GlyphKind int

const (
	GlyphEmpty GlyphKind = iota
	GlyphMarker
	GlyphSelected
	GlyphControl
)

type Glyph struct {
	Rune rune
	Kind GlyphKind
}

const (
	runeEmpty    = ' '
	runeMarker   = '●'
	runeSelected = '◆'
)

// Render draws markers bottom to top, then the zoom control.
func (m *Map) Render() [][]Glyph {
	m.mu.Lock()
	defer m.mu.Unlock()

	grid := make([][]Glyph, m.height)
	for r := range grid {
		row := make([]Glyph, m.width)
		for c := range row {
			row[c] = Glyph{Rune: runeEmpty}
		}
		grid[r] = row
	}
	if m.removed {
		return grid
	}

	put := func(col, row int, g Glyph) {
		if row < 0 || row >= m.height || col < 0 || col >= m.width {
			return
		}
		grid[row][col] = g
	}
	for _, mk := range m.drawOrderLocked() {
		col, row := m.cellOf(mk.pos)
		if mk.icon == widget.IconSelected {
			put(col-1, row, Glyph{Rune: '[', Kind: GlyphSelected})
			put(col, row, Glyph{Rune: runeSelected, Kind: GlyphSelected})
			put(col+1, row, Glyph{Rune: ']', Kind: GlyphSelected})
			continue
		}
		put(col, row, Glyph{Rune: runeMarker, Kind: GlyphMarker})
	}
	if x, y, ok := m.zoomControlOriginLocked(); ok {
		for i, r := range zoomControl {
			put(x+i, y, Glyph{Rune: r, Kind: GlyphControl})
		}
	}
	return grid
}

// String renders the grid as plain text, one line per row.
func (m *Map) String() string {
	grid := m.Render()
	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, g := range row {
			b.WriteRune(g.Rune)
		}
	}
	return b.String()
}

type MarkerState struct {
	ID       int       `json:"id"`
	Position geo.Point `json:"position"`
	Icon     string    `json:"icon"`
	IconSize int       `json:"icon_size"`
	ZIndex   int       `json:"z_index"`
	Col      int       `json:"col"`
	Row      int       `json:"row"`
	Visible  bool      `json:"visible"`
}

type Snapshot struct {
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Center      geo.Point     `json:"center"`
	Zoom        float64       `json:"zoom"`
	SizeChecks  int           `json:"size_checks"`
	Attribution string        `json:"attribution,omitempty"`
	Markers     []MarkerState `json:"markers"`
}

func (m *Map) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Width:       m.width,
		Height:      m.height,
		Center:      m.center,
		Zoom:        m.zoom,
		SizeChecks:  m.sizeChecks,
		Attribution: m.opts.Tiles.Attribution,
		Markers:     []MarkerState{},
	}
	for _, mk := range m.drawOrderLocked() {
		col, row := m.cellOf(mk.pos)
		s.Markers = append(s.Markers, MarkerState{
			ID:       mk.id,
			Position: mk.pos,
			Icon:     string(mk.icon),
			IconSize: mk.icon.Size(),
			ZIndex:   mk.zIndex,
			Col:      col,
			Row:      row,
			Visible:  col >= 0 && col < m.width && row >= 0 && row < m.height,
		})
	}
	return s
}
