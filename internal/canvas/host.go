package canvas

import (
	"sync"

	"iqamahs/core-go/internal/widget"
)

// Host builds canvas maps for a map controller and remembers the live one so
// a renderer can draw it and forward clicks.
type Host struct {
	mu       sync.Mutex
	current  *Map
	onChange func()
}

func NewHost(onChange func()) *Host {
	return &Host{onChange: onChange}
}

// Factory satisfies widget.Factory.
func (h *Host) Factory(c widget.Container, opts widget.Options) widget.Widget {
	m := New(c, opts)
	m.SetOnChange(h.onChange)
	h.mu.Lock()
	h.current = m
	h.mu.Unlock()
	return m
}

// Current returns the live map, or nil when none is mounted.
func (h *Host) Current() *Map {
	h.mu.Lock()
	m := h.current
	h.mu.Unlock()
	if m == nil || m.Removed() {
		return nil
	}
	return m
}
