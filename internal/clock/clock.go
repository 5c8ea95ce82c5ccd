// internal/clock/clock.go
//
// Time source and deferred-task scheduling used by the game core.
//
// Every timed callback in the game (tile settle delays, timer sampling)
// goes through Clock.AfterFunc so it can be cancelled by handle, and so
// tests can drive time by hand with Fake.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel prevents the callback from running. It reports false if the
	// callback already ran or was already cancelled.
	Cancel() bool
}

// Clock provides the current time and one-shot deferred callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Task
}

// Real is the wall/monotonic clock backed by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, fn func()) Task {
	return realTask{t: time.AfterFunc(d, fn)}
}

type realTask struct{ t *time.Timer }

func (r realTask) Cancel() bool { return r.t.Stop() }

// Fake is a manually advanced Clock. Callbacks run synchronously inside
// Advance, in due-time order, on the caller's goroutine.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*fakeTask
}

type fakeTask struct {
	f     *Fake
	at    time.Time
	seq   uint64
	fn    func()
	state int // 0 pending, 1 fired, 2 cancelled
}

// NewFake returns a Fake starting at a fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTask{f: f, at: f.now.Add(d), seq: f.seq, fn: fn}
	f.pending = append(f.pending, t)
	return t
}

// Advance moves time forward by d, running every callback that falls due.
// Callbacks scheduled while advancing run too if they fall inside the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	for {
		next := f.nextDueLocked(target)
		if next == nil {
			break
		}
		f.now = next.at
		next.state = 1
		f.mu.Unlock()
		next.fn()
		f.mu.Lock()
	}
	f.now = target
	f.mu.Unlock()
}

// Pending reports how many callbacks are scheduled and not yet run or cancelled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTask {
	if len(f.pending) == 0 {
		return nil
	}
	sort.Slice(f.pending, func(i, j int) bool {
		if f.pending[i].at.Equal(f.pending[j].at) {
			return f.pending[i].seq < f.pending[j].seq
		}
		return f.pending[i].at.Before(f.pending[j].at)
	})
	first := f.pending[0]
	if first.at.After(target) {
		return nil
	}
	f.pending = f.pending[1:]
	return first
}

func (t *fakeTask) Cancel() bool {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if t.state != 0 {
		return false
	}
	t.state = 2
	for i, p := range t.f.pending {
		if p == t {
			t.f.pending = append(t.f.pending[:i], t.f.pending[i+1:]...)
			break
		}
	}
	return true
}
