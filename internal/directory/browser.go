// Package directory is the top-level container of the masjid browser: it
// owns the search and selection state and drives the map controller from it.
package directory

import (
	"sync"

	"github.com/rs/zerolog"

	"iqamahs/core-go/internal/mapview"
	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/widget"
)

// Browser wires State to a map controller. The map is mounted while the map
// view is active and torn down while the list view is shown.
type Browser struct {
	mu        sync.Mutex
	log       zerolog.Logger
	state     *State
	ctrl      *mapview.Controller
	container widget.Container
	unsub     func()
	closed    bool
}

func NewBrowser(log zerolog.Logger, state *State, factory widget.Factory, container widget.Container, opts mapview.Options) *Browser {
	b := &Browser{
		log:       log.With().Str("component", "directory").Logger(),
		state:     state,
		container: container,
	}
	b.ctrl = mapview.New(log, factory, b.selectFromMap, opts)
	return b
}

// Start subscribes to state changes and applies the current state.
func (b *Browser) Start() {
	b.mu.Lock()
	if b.unsub == nil && !b.closed {
		b.unsub = b.state.Subscribe(func(Snapshot) { b.sync() })
	}
	b.mu.Unlock()
	b.sync()
}

// Close unmounts the map and stops following state changes.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
	b.ctrl.Unmount()
}

func (b *Browser) State() *State { return b.state }

func (b *Browser) Map() *mapview.Controller { return b.ctrl }

// sync always reads the latest snapshot, so notifications that race each
// other still converge on the current state.
func (b *Browser) sync() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	snap := b.state.Snapshot()
	b.ctrl.Update(snap.Filtered, snap.Selected)
	switch snap.View {
	case ViewMap:
		b.ctrl.Mount(b.container)
	case ViewList:
		b.ctrl.Unmount()
	}
}

func (b *Browser) selectFromMap(m *masjid.Masjid) {
	if m == nil {
		b.log.Debug().Msg("map background clicked, clearing selection")
	} else {
		b.log.Debug().Int("masjid_id", m.ID).Msg("marker clicked")
	}
	b.state.Select(m)
}
