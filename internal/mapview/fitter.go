package mapview

import (
	"time"

	"github.com/rs/zerolog"

	"iqamahs/core-go/internal/geo"
	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/metrics"
	"iqamahs/core-go/internal/widget"
)

// Fitter frames every visible entity once layout has settled. Only the most
// recent trigger can produce a camera command.
type Fitter struct {
	log        zerolog.Logger
	sched      *scheduler
	metrics    *metrics.Metrics
	delay      time.Duration
	singleZoom float64
	padding    int
	maxZoom    float64

	pending *task
}

// Trigger cancels any pending fit and, when nothing is selected and the list
// is non-empty, schedules a new one. Must be called with the controller lock held.
func (f *Fitter) Trigger(w widget.Widget, list []masjid.Masjid, hasSelection bool) {
	f.Cancel()
	if w == nil || hasSelection || len(list) == 0 {
		return
	}

	points := masjid.Positions(list)
	f.pending = f.sched.after(f.delay, func() {
		f.pending = nil
		f.fit(w, points)
	})
	f.metrics.IncViewportFit(metrics.FitScheduled)
}

// Cancel drops the pending fit, if any.
func (f *Fitter) Cancel() {
	if f.pending.cancel() {
		f.metrics.IncViewportFit(metrics.FitCancelled)
		f.log.Debug().Msg("viewport fit cancelled")
	}
	f.pending = nil
}

func (f *Fitter) Pending() bool { return f.pending.pending() }

func (f *Fitter) fit(w widget.Widget, points []geo.Point) {
	if len(points) == 0 {
		return
	}
	w.InvalidateSize()
	f.metrics.IncViewportFit(metrics.FitIssued)

	if len(points) == 1 {
		w.SetView(points[0], f.singleZoom)
		f.metrics.IncCameraCommand(metrics.CameraCenter)
		f.log.Debug().Float64("lat", points[0].Lat).Float64("lon", points[0].Lon).Msg("viewport centered on single masjid")
		return
	}

	bounds, _ := geo.NewBounds(points...)
	w.FitBounds(bounds, widget.FitOptions{Padding: f.padding, MaxZoom: f.maxZoom})
	f.metrics.IncCameraCommand(metrics.CameraFit)
	f.log.Debug().Int("points", len(points)).Msg("viewport fitted to bounds")
}
