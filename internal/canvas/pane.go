package canvas

import (
	"sync"

	"iqamahs/core-go/internal/widget"
)

// Pane is a resizable display region measured in terminal cells.
type Pane struct {
	mu        sync.Mutex
	width     int
	height    int
	observers map[int]func(width, height int)
	next      int
}

func NewPane(width, height int) *Pane {
	return &Pane{width: width, height: height, observers: make(map[int]func(int, int))}
}

func (p *Pane) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Resize updates the pane and notifies observers when the size changed.
func (p *Pane) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	p.mu.Lock()
	if p.width == width && p.height == height {
		p.mu.Unlock()
		return
	}
	p.width, p.height = width, height
	fns := make([]func(int, int), 0, len(p.observers))
	for _, fn := range p.observers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(width, height)
	}
}

func (p *Pane) OnResize(fn func(width, height int)) widget.Subscription {
	p.mu.Lock()
	id := p.next
	p.next++
	p.observers[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return widget.SubscriptionFunc(func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.observers, id)
			p.mu.Unlock()
		})
	})
}

// Observers reports the number of live resize subscriptions.
func (p *Pane) Observers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.observers)
}
