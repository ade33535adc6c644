// Package mapview keeps an imperative map widget consistent with a list of
// masjids and a single selection.
//
// The Controller is the only owner of the widget and its markers. Callers
// hand it the current list and selection through Update; it reconciles the
// markers, refreshes their visuals, moves the camera to a new selection and
// schedules a debounced viewport fit when nothing is selected. Every entry
// point, widget event and timer callback runs under one lock, so reactions
// never interleave.
package mapview

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/metrics"
	"iqamahs/core-go/internal/widget"
)

type Options struct {
	// SizeCheckDelay is how long after mount the container is measured again.
	SizeCheckDelay time.Duration
	// FitDelay debounces viewport fits.
	FitDelay       time.Duration
	SelectZoom     float64
	SingleZoom     float64
	FitPadding     int
	FitMaxZoom     float64
	SelectedZIndex int
	Widget         widget.Options
	Clock          Clock
	Metrics        *metrics.Metrics
}

const (
	DefaultSizeCheckDelay = 100 * time.Millisecond
	DefaultFitDelay       = 100 * time.Millisecond
	DefaultSelectZoom     = 14
	DefaultSingleZoom     = 13
	DefaultFitPadding     = 50
	DefaultFitMaxZoom     = 16
	DefaultSelectedZIndex = 1000
)

// SelectFunc receives selection requests from the map. nil means none.
type SelectFunc func(m *masjid.Masjid)

type Controller struct {
	mu  sync.Mutex
	log zerolog.Logger

	lifecycle   *Lifecycle
	registry    *Registry
	highlighter Highlighter
	fitter      *Fitter
	metrics     *metrics.Metrics
	onSelect    SelectFunc

	entities    []masjid.Masjid
	selected    masjid.Masjid
	hasSelected bool
}

func New(log zerolog.Logger, factory widget.Factory, onSelect SelectFunc, opts Options) *Controller {
	sizeDelay := opts.SizeCheckDelay
	if sizeDelay <= 0 {
		sizeDelay = DefaultSizeCheckDelay
	}
	fitDelay := opts.FitDelay
	if fitDelay <= 0 {
		fitDelay = DefaultFitDelay
	}
	selectZoom := opts.SelectZoom
	if selectZoom <= 0 {
		selectZoom = DefaultSelectZoom
	}
	singleZoom := opts.SingleZoom
	if singleZoom <= 0 {
		singleZoom = DefaultSingleZoom
	}
	padding := opts.FitPadding
	if padding < 0 {
		padding = 0
	} else if padding == 0 {
		padding = DefaultFitPadding
	}
	maxZoom := opts.FitMaxZoom
	if maxZoom <= 0 {
		maxZoom = DefaultFitMaxZoom
	}
	zIndex := opts.SelectedZIndex
	if zIndex <= 0 {
		zIndex = DefaultSelectedZIndex
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}

	log = log.With().Str("component", "mapview").Logger()
	c := &Controller{
		log:      log,
		registry: NewRegistry(),
		metrics:  opts.Metrics,
		onSelect: onSelect,
		highlighter: Highlighter{
			SelectedZIndex: zIndex,
			FocusZoom:      selectZoom,
		},
	}
	sched := &scheduler{mu: &c.mu, clock: clock}
	c.lifecycle = &Lifecycle{
		log:            log,
		factory:        factory,
		opts:           opts.Widget,
		sched:          sched,
		sizeCheckDelay: sizeDelay,
		metrics:        opts.Metrics,
	}
	c.fitter = &Fitter{
		log:        log,
		sched:      sched,
		metrics:    opts.Metrics,
		delay:      fitDelay,
		singleZoom: singleZoom,
		padding:    padding,
		maxZoom:    maxZoom,
	}
	return c
}

// Mount creates the widget inside container and runs a full pass against the
// last known list and selection. Mounting twice is a no-op.
func (c *Controller) Mount(container widget.Container) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lifecycle.Mount(container, c.handleBackgroundClick) {
		return
	}
	c.log.Debug().Msg("map widget mounted")
	c.passLocked(true, true)
}

// Unmount destroys the widget and cancels every pending deferral.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fitter.Cancel()
	c.registry.Clear(false)
	if c.lifecycle.Unmount() {
		c.log.Debug().Msg("map widget unmounted")
	}
}

// Ready reports whether a widget is mounted.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lifecycle.Widget() != nil
}

// Update hands the controller the current list and selection. Passes only
// run when something changed.
func (c *Controller) Update(list []masjid.Masjid, selected *masjid.Masjid) {
	c.mu.Lock()
	defer c.mu.Unlock()

	listChanged := !sameIDs(c.entities, list)
	selectionChanged := c.hasSelected != (selected != nil) ||
		(selected != nil && selected.ID != c.selected.ID)

	c.entities = append(c.entities[:0:0], list...)
	if selected != nil {
		c.selected, c.hasSelected = *selected, true
	} else {
		c.selected, c.hasSelected = masjid.Masjid{}, false
	}

	if !listChanged && !selectionChanged {
		return
	}
	c.passLocked(listChanged, selectionChanged)
}

func (c *Controller) passLocked(listChanged, selectionChanged bool) {
	w := c.lifecycle.Widget()
	if w == nil {
		return
	}

	if listChanged {
		start := time.Now()
		added, removed := c.registry.Reconcile(w, c.entities, c.handleMarkerClick)
		c.metrics.ObserveReconcile(added, removed, c.registry.Len(), time.Since(start))
		c.log.Debug().
			Int("added", added).
			Int("removed", removed).
			Int("markers", c.registry.Len()).
			Msg("markers reconciled")
	}

	c.highlighter.Apply(c.registry, c.selected.ID, c.hasSelected)

	if selectionChanged && c.hasSelected {
		if c.highlighter.Focus(w, c.registry, c.selected.ID) {
			c.metrics.IncCameraCommand(metrics.CameraCenter)
			c.log.Debug().Int("masjid_id", c.selected.ID).Msg("camera moved to selection")
		}
	}

	c.fitter.Trigger(w, c.entities, c.hasSelected)
}

// handleMarkerClick runs on the widget's event path, outside the lock.
func (c *Controller) handleMarkerClick(m masjid.Masjid) {
	if c.onSelect != nil {
		c.onSelect(&m)
	}
}

func (c *Controller) handleBackgroundClick(*widget.Event) {
	if c.onSelect != nil {
		c.onSelect(nil)
	}
}

// MarkerIDs returns the IDs currently holding a marker.
func (c *Controller) MarkerIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.IDs()
}

// FitPending reports whether a viewport fit is waiting for its delay.
func (c *Controller) FitPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fitter.Pending()
}

func sameIDs(a, b []masjid.Masjid) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
