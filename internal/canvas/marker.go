package canvas

import (
	"sort"
	"sync"

	"iqamahs/core-go/internal/geo"
	"iqamahs/core-go/internal/widget"
)

// Marker implements widget.Marker. Its mutable state is guarded by the owning map's lock.
type Marker struct {
	owner *Map
	id    int
	pos   geo.Point

	icon        widget.Icon
	zIndex      int
	handlers    map[int]widget.Handler
	nextHandler int
	detached    bool
}

func (mk *Marker) Position() geo.Point { return mk.pos }

func (mk *Marker) SetIcon(icon widget.Icon) {
	mk.owner.mu.Lock()
	mk.icon = icon
	mk.owner.mu.Unlock()
	mk.owner.changed()
}

func (mk *Marker) SetZIndexOffset(offset int) {
	mk.owner.mu.Lock()
	mk.zIndex = offset
	mk.owner.mu.Unlock()
	mk.owner.changed()
}

func (mk *Marker) Icon() widget.Icon {
	mk.owner.mu.Lock()
	defer mk.owner.mu.Unlock()
	return mk.icon
}

func (mk *Marker) ZIndexOffset() int {
	mk.owner.mu.Lock()
	defer mk.owner.mu.Unlock()
	return mk.zIndex
}

func (mk *Marker) On(event string, h widget.Handler) widget.Subscription {
	if event != widget.EventClick || h == nil {
		return widget.SubscriptionFunc(nil)
	}
	mk.owner.mu.Lock()
	id := mk.nextHandler
	mk.nextHandler++
	mk.handlers[id] = h
	mk.owner.mu.Unlock()

	var once sync.Once
	return widget.SubscriptionFunc(func() {
		once.Do(func() {
			mk.owner.mu.Lock()
			delete(mk.handlers, id)
			mk.owner.mu.Unlock()
		})
	})
}

func (mk *Marker) Remove() {
	mk.owner.mu.Lock()
	if mk.detached {
		mk.owner.mu.Unlock()
		return
	}
	mk.detached = true
	delete(mk.owner.markers, mk.id)
	mk.owner.mu.Unlock()
	mk.owner.changed()
}

// Detached reports whether the marker is no longer on its map.
func (mk *Marker) Detached() bool {
	mk.owner.mu.Lock()
	defer mk.owner.mu.Unlock()
	return mk.detached
}

// handlerList must be called with the owner's lock held.
func (mk *Marker) handlerList() []widget.Handler {
	ids := make([]int, 0, len(mk.handlers))
	for id := range mk.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]widget.Handler, 0, len(ids))
	for _, id := range ids {
		out = append(out, mk.handlers[id])
	}
	return out
}
