package mapview

import "iqamahs/core-go/internal/widget"

// Highlighter derives marker visuals from the selection.
type Highlighter struct {
	SelectedZIndex int
	FocusZoom      float64
}

// Apply sets every marker's icon and draw order. It returns how many markers
// ended up selected, which is at most one.
func (h Highlighter) Apply(r *Registry, selectedID int, hasSelection bool) int {
	selected := 0
	r.each(func(id int, mk widget.Marker) {
		if hasSelection && id == selectedID {
			mk.SetIcon(widget.IconSelected)
			mk.SetZIndexOffset(h.SelectedZIndex)
			selected++
			return
		}
		mk.SetIcon(widget.IconDefault)
		mk.SetZIndexOffset(0)
	})
	return selected
}

// Focus centers the camera on the marker for id. Nothing happens when the
// entity has no marker.
func (h Highlighter) Focus(w widget.Widget, r *Registry, id int) bool {
	if w == nil {
		return false
	}
	mk, ok := r.Get(id)
	if !ok {
		return false
	}
	w.SetView(mk.Position(), h.FocusZoom)
	return true
}
