package tasks

import (
	"sync"
	"time"

	"envios-web/internal/core/clock"
)

// Debouncer delays a call until no new trigger arrived for the configured window.
type Debouncer struct {
	mu    sync.Mutex
	clock clock.Clock
	delay time.Duration
	timer clock.Timer
}

// NewDebouncer returns a Debouncer. A zero delay runs triggers immediately.
func NewDebouncer(c clock.Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: c, delay: delay}
}

// Trigger schedules f, replacing any call still waiting.
func (d *Debouncer) Trigger(f func()) {
	if d.delay <= 0 {
		d.Stop()
		f()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.delay, f)
}

// Stop drops the waiting call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
