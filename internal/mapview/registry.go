package mapview

import (
	"sort"

	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/widget"
)

type entry struct {
	marker widget.Marker
	click  widget.Subscription
}

// Registry maps masjid IDs to the markers placed for them.
type Registry struct {
	entries map[int]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[int]entry)}
}

// Reconcile makes the tracked ID set equal to the IDs of list. Markers for
// vanished IDs are removed; new IDs get a marker whose click handler stops
// propagation and reports the entity to onClick. Surviving markers are left
// in place.
func (r *Registry) Reconcile(w widget.Widget, list []masjid.Masjid, onClick func(masjid.Masjid)) (added, removed int) {
	if w == nil {
		return 0, 0
	}

	want := make(map[int]struct{}, len(list))
	for _, m := range list {
		want[m.ID] = struct{}{}
	}

	for id, e := range r.entries {
		if _, ok := want[id]; ok {
			continue
		}
		r.drop(id, e)
		removed++
	}

	for _, m := range list {
		if _, ok := r.entries[m.ID]; ok {
			continue
		}
		mk := w.PlaceMarker(m.Location)
		entity := m
		sub := mk.On(widget.EventClick, func(e *widget.Event) {
			e.StopPropagation()
			if onClick != nil {
				onClick(entity)
			}
		})
		r.entries[m.ID] = entry{marker: mk, click: sub}
		added++
	}
	return added, removed
}

func (r *Registry) drop(id int, e entry) {
	if e.click != nil {
		e.click.Close()
	}
	e.marker.Remove()
	delete(r.entries, id)
}

func (r *Registry) Get(id int) (widget.Marker, bool) {
	e, ok := r.entries[id]
	return e.marker, ok
}

// IDs returns the tracked identifiers in ascending order.
func (r *Registry) IDs() []int {
	out := make([]int, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (r *Registry) Len() int { return len(r.entries) }

// Clear forgets every marker. When remove is set each marker is also taken
// off the widget; after the widget itself was destroyed that is unnecessary.
func (r *Registry) Clear(remove bool) {
	for id, e := range r.entries {
		if remove {
			r.drop(id, e)
			continue
		}
		delete(r.entries, id)
	}
}

func (r *Registry) each(fn func(id int, mk widget.Marker)) {
	for id, e := range r.entries {
		fn(id, e.marker)
	}
}
