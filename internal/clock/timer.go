// internal/clock/timer.go
//
// Elapsed-time accumulator for one board.
// Notes:
//   - Time only accumulates between Start and Stop.
//   - The periodic sampler exists for embedders that redraw a live clock.
//     It is armed only while an OnTick hook is installed, so headless
//     sessions (the HTTP API, the terminal client) keep no recurring task.
package clock

import (
	"sync"
	"time"
)

// DefaultSampleInterval is the display sampling cadence (~60 Hz).
const DefaultSampleInterval = 16 * time.Millisecond

// Timer accumulates elapsed time only while running.
//
// While running with an OnTick hook installed, a recurring sampler reports
// the elapsed value to the hook. Sampled values never decrease within a run.
// The sampler is cancelled by Stop and Close, and by removing the hook.
type Timer struct {
	mu          sync.Mutex
	clk         Clock
	interval    time.Duration
	running     bool
	closed      bool
	startedAt   time.Time
	accumulated time.Duration
	lastSample  float64
	tick        func(ms float64)
	sampler     Task
	gen         uint64
}

// NewTimer returns a stopped Timer at zero. A nil clk uses Real; a
// non-positive interval uses DefaultSampleInterval.
func NewTimer(clk Clock, interval time.Duration) *Timer {
	if clk == nil {
		clk = Real{}
	}
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Timer{clk: clk, interval: interval}
}

// OnTick installs the sampling hook; nil removes it. The hook is called
// without the timer lock held. Installing it on a running timer arms the
// sampler straight away.
func (t *Timer) OnTick(fn func(ms float64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick = fn
	switch {
	case fn == nil:
		t.disarmLocked()
	case t.running && t.sampler == nil:
		t.armLocked()
	}
}

// Start begins accumulating. No-op if already running or closed.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.closed {
		return
	}
	t.running = true
	t.startedAt = t.clk.Now()
	t.armLocked()
}

// Stop freezes the elapsed value and cancels the sampler.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.accumulated += t.clk.Now().Sub(t.startedAt)
	t.running = false
	t.disarmLocked()
}

// Reset zeroes the elapsed value. The running state is left unchanged.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accumulated = 0
	t.lastSample = 0
	if t.running {
		t.startedAt = t.clk.Now()
	}
}

// ElapsedMs returns the accumulated active time in milliseconds.
func (t *Timer) ElapsedMs() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

// Running reports whether the timer is accumulating.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Close stops the timer for good and releases the sampler.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.accumulated += t.clk.Now().Sub(t.startedAt)
		t.running = false
	}
	t.closed = true
	t.disarmLocked()
}

func (t *Timer) elapsedLocked() float64 {
	d := t.accumulated
	if t.running {
		d += t.clk.Now().Sub(t.startedAt)
	}
	return float64(d) / float64(time.Millisecond)
}

// armLocked schedules the next sample. Without a hook there is nothing to
// report, so no task is scheduled.
func (t *Timer) armLocked() {
	if t.tick == nil || t.closed {
		t.sampler = nil
		return
	}
	t.gen++
	gen := t.gen
	t.sampler = t.clk.AfterFunc(t.interval, func() { t.sample(gen) })
}

func (t *Timer) disarmLocked() {
	t.gen++
	if t.sampler != nil {
		t.sampler.Cancel()
		t.sampler = nil
	}
}

func (t *Timer) sample(gen uint64) {
	t.mu.Lock()
	if !t.running || t.closed || gen != t.gen {
		t.mu.Unlock()
		return
	}
	ms := t.elapsedLocked()
	if ms < t.lastSample {
		ms = t.lastSample
	}
	t.lastSample = ms
	fn := t.tick
	t.armLocked()
	t.mu.Unlock()

	if fn != nil {
		fn(ms)
	}
}
