package clock

import (
	"testing"
	"time"
)

func TestFake_RunsDueCallbacksInOrder(t *testing.T) {
	f := NewFake()
	var got []int
	f.AfterFunc(30*time.Millisecond, func() { got = append(got, 3) })
	f.AfterFunc(10*time.Millisecond, func() { got = append(got, 1) })
	f.AfterFunc(20*time.Millisecond, func() { got = append(got, 2) })

	f.Advance(25 * time.Millisecond)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2], got %v", got)
	}
	f.Advance(5 * time.Millisecond)
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", got)
	}
	if f.Pending() != 0 {
		t.Errorf("expected no pending tasks, got %d", f.Pending())
	}
}

func TestFake_Cancel(t *testing.T) {
	f := NewFake()
	ran := false
	task := f.AfterFunc(10*time.Millisecond, func() { ran = true })
	if !task.Cancel() {
		t.Fatal("first Cancel should report true")
	}
	if task.Cancel() {
		t.Error("second Cancel should report false")
	}
	f.Advance(time.Second)
	if ran {
		t.Error("cancelled callback ran")
	}
}

func TestFake_CallbackCanReschedule(t *testing.T) {
	f := NewFake()
	count := 0
	var again func()
	again = func() {
		count++
		f.AfterFunc(10*time.Millisecond, again)
	}
	f.AfterFunc(10*time.Millisecond, again)
	f.Advance(55 * time.Millisecond)
	if count != 5 {
		t.Errorf("expected 5 runs, got %d", count)
	}
}

func TestTimer_AccumulatesOnlyWhileRunning(t *testing.T) {
	f := NewFake()
	tm := NewTimer(f, 0)

	f.Advance(100 * time.Millisecond)
	if tm.ElapsedMs() != 0 {
		t.Fatalf("stopped timer accumulated %v", tm.ElapsedMs())
	}

	tm.Start()
	f.Advance(200 * time.Millisecond)
	tm.Start() // idempotent
	f.Advance(50 * time.Millisecond)
	tm.Stop()
	if got := tm.ElapsedMs(); got != 250 {
		t.Fatalf("expected 250ms, got %v", got)
	}

	f.Advance(time.Second)
	if got := tm.ElapsedMs(); got != 250 {
		t.Fatalf("stopped timer moved to %v", got)
	}

	tm.Start()
	f.Advance(10 * time.Millisecond)
	if got := tm.ElapsedMs(); got != 260 {
		t.Fatalf("expected resumed 260ms, got %v", got)
	}
}

func TestTimer_ResetKeepsRunningState(t *testing.T) {
	f := NewFake()
	tm := NewTimer(f, 0)
	tm.Start()
	f.Advance(100 * time.Millisecond)
	tm.Reset()
	if !tm.Running() {
		t.Fatal("Reset stopped a running timer")
	}
	if tm.ElapsedMs() != 0 {
		t.Fatalf("expected 0 after reset, got %v", tm.ElapsedMs())
	}
	f.Advance(40 * time.Millisecond)
	if tm.ElapsedMs() != 40 {
		t.Fatalf("expected 40ms, got %v", tm.ElapsedMs())
	}

	tm.Stop()
	tm.Reset()
	if tm.Running() || tm.ElapsedMs() != 0 {
		t.Fatalf("expected stopped at 0, got running=%v elapsed=%v", tm.Running(), tm.ElapsedMs())
	}
}

func TestTimer_SamplerTicksAndStops(t *testing.T) {
	f := NewFake()
	tm := NewTimer(f, 16*time.Millisecond)
	var samples []float64
	tm.OnTick(func(ms float64) { samples = append(samples, ms) })

	tm.Start()
	f.Advance(100 * time.Millisecond)
	if len(samples) != 6 {
		t.Fatalf("expected 6 samples in 100ms at 16ms cadence, got %d", len(samples))
	}
	for i := 1; i < len(samples); i++ {
		if samples[i] < samples[i-1] {
			t.Fatalf("sample %d went backwards: %v", i, samples)
		}
	}

	tm.Stop()
	if f.Pending() != 0 {
		t.Fatalf("sampler still scheduled after Stop: %d", f.Pending())
	}
	n := len(samples)
	f.Advance(time.Second)
	if len(samples) != n {
		t.Error("sampler fired after Stop")
	}
}

func TestTimer_NoHookSchedulesNothing(t *testing.T) {
	f := NewFake()
	tm := NewTimer(f, 16*time.Millisecond)
	tm.Start()
	if f.Pending() != 0 {
		t.Fatalf("expected no sampler without a hook, got %d pending", f.Pending())
	}
	f.Advance(time.Second)
	if f.Pending() != 0 {
		t.Fatalf("expected no sampler after advancing, got %d pending", f.Pending())
	}
	if got := tm.ElapsedMs(); got != 1000 {
		t.Errorf("expected 1000ms elapsed, got %v", got)
	}
}

func TestTimer_OnTickArmsRunningTimer(t *testing.T) {
	f := NewFake()
	tm := NewTimer(f, 16*time.Millisecond)
	tm.Start()
	f.Advance(10 * time.Millisecond)

	var samples []float64
	tm.OnTick(func(ms float64) { samples = append(samples, ms) })
	if f.Pending() != 1 {
		t.Fatalf("expected the sampler to be armed, got %d pending", f.Pending())
	}
	f.Advance(16 * time.Millisecond)
	if len(samples) != 1 || samples[0] != 26 {
		t.Fatalf("expected one sample at 26ms, got %v", samples)
	}

	tm.OnTick(nil)
	if f.Pending() != 0 {
		t.Fatalf("expected removing the hook to cancel the sampler, got %d pending", f.Pending())
	}
	f.Advance(time.Second)
	if len(samples) != 1 {
		t.Errorf("sampler fired after the hook was removed: %v", samples)
	}
}

func TestTimer_CloseCancelsSampler(t *testing.T) {
	f := NewFake()
	tm := NewTimer(f, 0)
	tm.OnTick(func(float64) {})
	tm.Start()
	tm.Close()
	if f.Pending() != 0 {
		t.Fatalf("expected no pending sampler after Close, got %d", f.Pending())
	}
	tm.Start()
	if tm.Running() {
		t.Error("closed timer restarted")
	}
}

func TestReal_AfterFuncCancel(t *testing.T) {
	task := Real{}.AfterFunc(time.Hour, func() {})
	if !task.Cancel() {
		t.Error("expected Cancel to stop a pending real timer")
	}
}
