package webinarstate

import (
	"sync"
	"time"
)

// Countdown is a scheduled one-shot task with explicit start/stop, tied to
// the lifetime of whatever owns it. The callback runs exactly once at the
// fire instant; a countdown whose instant is already in the past fires
// immediately on Start. Stop is safe to call at any point, including after
// firing.
type Countdown struct {
	fireAt time.Time
	fn     func()

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
	fired   bool
}

// NewCountdown builds a countdown that runs fn at fireAt once started.
func NewCountdown(fireAt time.Time, fn func()) *Countdown {
	return &Countdown{fireAt: fireAt, fn: fn}
}

// Start arms the countdown. Repeated calls are no-ops.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return
	}
	c.started = true

	d := time.Until(c.fireAt)
	if d < 0 {
		d = 0
	}
	c.timer = time.AfterFunc(d, c.fire)
}

// Stop cancels a pending countdown. It reports whether the callback was
// prevented from running.
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired || c.stopped {
		return false
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
	}
	return true
}

// Fired reports whether the callback has run.
func (c *Countdown) Fired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

func (c *Countdown) fire() {
	c.mu.Lock()
	if c.fired || c.stopped {
		c.mu.Unlock()
		return
	}
	c.fired = true
	c.mu.Unlock()
	c.fn()
}

// Scheduler keeps one countdown per webinar so reminders can be rescheduled
// when an admin edits the start time, and cancelled on delete.
type Scheduler struct {
	mu     sync.Mutex
	byID   map[uint]*Countdown
	closed bool
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{byID: make(map[uint]*Countdown)}
}

// Schedule replaces any pending countdown for id with a new one and starts it.
func (s *Scheduler) Schedule(id uint, fireAt time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if prev, ok := s.byID[id]; ok {
		prev.Stop()
	}
	cd := NewCountdown(fireAt, fn)
	s.byID[id] = cd
	cd.Start()
}

// Cancel stops and removes the countdown for id, if any.
func (s *Scheduler) Cancel(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cd, ok := s.byID[id]; ok {
		cd.Stop()
		delete(s.byID, id)
	}
}

// Close cancels all pending countdowns; the scheduler accepts no new work.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, cd := range s.byID {
		cd.Stop()
		delete(s.byID, id)
	}
}
