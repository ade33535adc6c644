package mapview

import (
	"sort"
	"sync"
	"time"
)

// Clock schedules deferred work. *time.Timer satisfies Timer.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock uses real timers.
var SystemClock Clock = systemClock{}

// ManualClock is a Clock whose time only moves when Advance is called.
// Due callbacks run synchronously on the goroutine calling Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d < 0 {
		d = 0
	}
	t := &manualTimer{clock: c, at: c.now + d, seq: c.seq, fn: f}
	c.seq++
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward by d, firing every timer that becomes due in
// deadline order. Timers scheduled by fired callbacks fire too if due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.fn()
	}
}

func (c *ManualClock) nextDueLocked(target time.Duration) *manualTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at != c.timers[j].at {
			return c.timers[i].at < c.timers[j].at
		}
		return c.timers[i].seq < c.timers[j].seq
	})
	if len(c.timers) == 0 || c.timers[0].at > target {
		return nil
	}
	return c.timers[0]
}

// Pending reports timers that have neither fired nor been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// scheduler runs deferred work under the controller lock.
type scheduler struct {
	mu    *sync.Mutex
	clock Clock
}

// task is a deferred action that can be cancelled until it runs.
type task struct {
	timer     Timer
	cancelled bool
	fired     bool
}

// after must be called with s.mu held. The callback waits for the lock, so it
// cannot observe the task before after returns.
func (s *scheduler) after(d time.Duration, fn func()) *task {
	t := &task{}
	t.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.cancelled {
			return
		}
		t.fired = true
		fn()
	})
	return t
}

// run executes fn under the lock.
func (s *scheduler) run(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// cancel reports whether the task was still pending. Must be called with the lock held.
func (t *task) cancel() bool {
	if t == nil || t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	t.timer.Stop()
	return true
}

func (t *task) pending() bool {
	return t != nil && !t.cancelled && !t.fired
}
