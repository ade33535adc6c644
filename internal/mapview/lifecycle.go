package mapview

import (
	"time"

	"github.com/rs/zerolog"

	"iqamahs/core-go/internal/metrics"
	"iqamahs/core-go/internal/widget"
)

// Lifecycle owns the single widget bound to a container.
type Lifecycle struct {
	log            zerolog.Logger
	factory        widget.Factory
	opts           widget.Options
	sched          *scheduler
	sizeCheckDelay time.Duration
	metrics        *metrics.Metrics

	widget    widget.Widget
	resizeSub widget.Subscription
	clickSub  widget.Subscription
	sizeCheck *task
}

// Mount constructs the widget on first call. onBackground receives clicks on
// the widget background. Must be called with the controller lock held.
func (l *Lifecycle) Mount(c widget.Container, onBackground widget.Handler) bool {
	if l.widget != nil || c == nil {
		return false
	}

	opts := l.opts
	opts.ZoomControl = false
	if opts.ZoomControlPosition == "" {
		opts.ZoomControlPosition = widget.BottomRight
	}
	w := l.factory(c, opts)
	if w == nil {
		l.log.Warn().Msg("map widget factory returned nil")
		return false
	}
	l.widget = w
	l.metrics.IncWidgetMount()

	l.clickSub = w.On(widget.EventClick, onBackground)

	// The container may not be laid out yet; check its size again shortly.
	l.sizeCheck = l.sched.after(l.sizeCheckDelay, func() {
		if l.widget != nil {
			l.widget.InvalidateSize()
		}
	})
	l.resizeSub = c.OnResize(func(width, height int) {
		l.sched.run(func() {
			if l.widget == nil {
				return
			}
			l.log.Debug().Int("width", width).Int("height", height).Msg("map container resized")
			l.widget.InvalidateSize()
		})
	})

	if width, height := c.Size(); width == 0 || height == 0 {
		l.log.Debug().Msg("map mounted into zero-size container")
	}
	return true
}

// Unmount releases subscriptions, cancels the pending size check and destroys
// the widget. Must be called with the controller lock held.
func (l *Lifecycle) Unmount() bool {
	if l.widget == nil {
		return false
	}
	l.sizeCheck.cancel()
	l.sizeCheck = nil
	if l.resizeSub != nil {
		l.resizeSub.Close()
		l.resizeSub = nil
	}
	if l.clickSub != nil {
		l.clickSub.Close()
		l.clickSub = nil
	}
	l.widget.Remove()
	l.widget = nil
	return true
}

// Widget returns the live widget or nil when not ready.
func (l *Lifecycle) Widget() widget.Widget {
	return l.widget
}
