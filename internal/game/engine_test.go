package game

import (
	"testing"
	"time"

	"github.com/robalobadob/minimal-match/internal/clock"
	"github.com/robalobadob/minimal-match/internal/deck"
)

// deckOf builds a deck whose tile i carries values[i].
func deckOf(values ...string) deck.Deck {
	d := make(deck.Deck, len(values))
	for i, v := range values {
		d[i] = deck.Tile{ID: i, Value: deck.Symbol(v)}
	}
	return d
}

// board16 is an 8-pair board where tiles 0,1 match and 0,2 do not.
func board16() deck.Deck {
	return deckOf("A", "A", "B", "C", "B", "C", "D", "D", "E", "E", "F", "F", "G", "G", "H", "H")
}

func newTestEngine(t *testing.T, d deck.Deck) (*Engine, *clock.Fake) {
	t.Helper()
	f := clock.NewFake()
	e, err := New(d, Options{Clock: f})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e, f
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew_RejectsInvalidDeck(t *testing.T) {
	if _, err := New(deckOf("A", "B"), Options{}); err == nil {
		t.Fatal("expected error for unpaired deck")
	}
}

func TestFlip_FirstFlipStartsTimer(t *testing.T) {
	e, f := newTestEngine(t, board16())

	s := e.Snapshot()
	if s.Running || s.Phase != PhaseIdle {
		t.Fatalf("fresh engine: running=%v phase=%s", s.Running, s.Phase)
	}

	f.Advance(time.Second)
	if res := e.Flip(3); res != FlipFirst {
		t.Fatalf("expected FlipFirst, got %s", res)
	}
	s = e.Snapshot()
	if !s.Running {
		t.Error("timer should run after first flip")
	}
	if s.ElapsedMs != 0 {
		t.Errorf("time before first flip must not count, got %v", s.ElapsedMs)
	}
	if s.Phase != PhaseAwaitingSecondFlip {
		t.Errorf("expected awaiting_second_flip, got %s", s.Phase)
	}
}

func TestFlip_SameIndexTwiceIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, board16())
	e.Flip(0)
	if res := e.Flip(0); res != FlipIgnored {
		t.Fatalf("expected FlipIgnored, got %s", res)
	}
	s := e.Snapshot()
	if !equalInts(s.Flipped, []int{0}) || s.Moves != 0 {
		t.Fatalf("expected flipped=[0] moves=0, got %v moves=%d", s.Flipped, s.Moves)
	}
}

func TestFlip_OutOfRangeIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, board16())
	for _, i := range []int{-1, 16, 100} {
		if res := e.Flip(i); res != FlipIgnored {
			t.Errorf("Flip(%d): expected FlipIgnored, got %s", i, res)
		}
	}
	if s := e.Snapshot(); s.Running || len(s.Flipped) != 0 {
		t.Error("invalid flips changed state")
	}
}

func TestFlip_MatchingPair(t *testing.T) {
	e, f := newTestEngine(t, board16())
	e.Flip(0)
	if res := e.Flip(1); res != FlipSecond {
		t.Fatalf("expected FlipSecond, got %s", res)
	}

	s := e.Snapshot()
	if s.Moves != 1 || s.Phase != PhaseResolving {
		t.Fatalf("pending pair: moves=%d phase=%s", s.Moves, s.Phase)
	}
	if len(s.Matched) != 0 {
		t.Fatal("pair matched before settle delay")
	}

	f.Advance(DefaultTiming.MatchDelay - time.Millisecond)
	if len(e.Snapshot().Matched) != 0 {
		t.Fatal("pair matched early")
	}
	f.Advance(time.Millisecond)

	s = e.Snapshot()
	if !equalInts(s.Matched, []int{0, 1}) {
		t.Errorf("expected matched=[0 1], got %v", s.Matched)
	}
	if len(s.Flipped) != 0 {
		t.Errorf("expected flipped empty, got %v", s.Flipped)
	}
	if s.Moves != 1 {
		t.Errorf("expected moves=1, got %d", s.Moves)
	}
	if s.Phase != PhaseIdle {
		t.Errorf("expected idle, got %s", s.Phase)
	}
}

func TestFlip_MismatchingPair(t *testing.T) {
	e, f := newTestEngine(t, board16())
	e.Flip(0)
	e.Flip(2)

	f.Advance(DefaultTiming.MatchDelay)
	if s := e.Snapshot(); len(s.Flipped) != 2 {
		t.Fatalf("mismatch cleared too early: %v", s.Flipped)
	}
	f.Advance(DefaultTiming.MismatchDelay - DefaultTiming.MatchDelay)

	s := e.Snapshot()
	if len(s.Flipped) != 0 || len(s.Matched) != 0 {
		t.Errorf("expected empty sets, got flipped=%v matched=%v", s.Flipped, s.Matched)
	}
	if s.Moves != 1 {
		t.Errorf("expected moves=1, got %d", s.Moves)
	}
}

func TestFlip_MatchIsAtomic(t *testing.T) {
	f := clock.NewFake()
	var seen []Snapshot
	e, err := New(board16(), Options{Clock: f, OnChange: func(s Snapshot) { seen = append(seen, s) }})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.Flip(0)
	e.Flip(1)
	f.Advance(time.Second)

	for _, s := range seen {
		m, fl := NewSet(s.Matched...), NewSet(s.Flipped...)
		if m.Has(0) != m.Has(1) {
			t.Fatalf("observed half-matched pair: %+v", s)
		}
		if m.Has(0) && (fl.Has(0) || fl.Has(1)) {
			t.Fatalf("observed tile both matched and flipped: %+v", s)
		}
	}
}

func TestFlip_InterruptReplacesPendingPair(t *testing.T) {
	cases := []struct {
		name        string
		a, b        int
		wantMatched []int
	}{
		{"pending mismatch", 0, 2, nil},
		{"pending match", 0, 1, []int{0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, f := newTestEngine(t, board16())
			e.Flip(tc.a)
			e.Flip(tc.b)

			if res := e.Flip(6); res != FlipInterrupted {
				t.Fatalf("expected FlipInterrupted, got %s", res)
			}
			s := e.Snapshot()
			if !equalInts(s.Flipped, []int{6}) {
				t.Fatalf("expected flipped=[6], got %v", s.Flipped)
			}
			if !equalInts(s.Matched, tc.wantMatched) {
				t.Fatalf("expected matched=%v, got %v", tc.wantMatched, s.Matched)
			}
			if s.Moves != 1 {
				t.Errorf("interrupt must not count a move, got %d", s.Moves)
			}

			// The superseded resolution must not clear the new tile.
			f.Advance(time.Second)
			if s := e.Snapshot(); !equalInts(s.Flipped, []int{6}) {
				t.Fatalf("stale resolution touched flipped: %v", s.Flipped)
			}
		})
	}
}

func TestFlip_PendingTileCannotBeReflipped(t *testing.T) {
	e, _ := newTestEngine(t, board16())
	e.Flip(0)
	e.Flip(2)
	if res := e.Flip(2); res != FlipIgnored {
		t.Fatalf("expected FlipIgnored, got %s", res)
	}
	if s := e.Snapshot(); !equalInts(s.Flipped, []int{0, 2}) {
		t.Fatalf("expected flipped=[0 2], got %v", s.Flipped)
	}
}

func TestFlip_MatchedTileIsNoop(t *testing.T) {
	e, f := newTestEngine(t, board16())
	e.Flip(0)
	e.Flip(1)
	f.Advance(time.Second)

	if res := e.Flip(0); res != FlipIgnored {
		t.Fatalf("expected FlipIgnored on matched tile, got %s", res)
	}
}

func TestCompletion(t *testing.T) {
	f := clock.NewFake()
	completions := 0
	e, err := New(deckOf("A", "B", "A", "B"), Options{
		Clock:      f,
		OnComplete: func(Snapshot) { completions++ },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.Flip(0)
	f.Advance(100 * time.Millisecond)
	e.Flip(2)
	f.Advance(DefaultTiming.MatchDelay)
	e.Flip(1)
	e.Flip(3)
	f.Advance(DefaultTiming.MatchDelay)

	s := e.Snapshot()
	if !s.Completed || s.Phase != PhaseCompleted {
		t.Fatalf("expected completed, got %+v", s)
	}
	if s.Running {
		t.Error("timer still running after completion")
	}
	if completions != 1 {
		t.Fatalf("expected one completion, got %d", completions)
	}
	if s.Moves != 2 {
		t.Errorf("expected 2 moves, got %d", s.Moves)
	}

	elapsed := s.ElapsedMs
	f.Advance(time.Second)
	if res := e.Flip(0); res != FlipIgnored {
		t.Errorf("flip after completion: expected FlipIgnored, got %s", res)
	}
	if got := e.Snapshot().ElapsedMs; got != elapsed {
		t.Errorf("elapsed moved after completion: %v -> %v", elapsed, got)
	}
	if completions != 1 {
		t.Errorf("completion fired again: %d", completions)
	}
}

func TestClose_DiscardsPendingResolution(t *testing.T) {
	e, f := newTestEngine(t, board16())
	e.Flip(0)
	e.Flip(1)
	e.Close()
	f.Advance(time.Second)

	s := e.Snapshot()
	if len(s.Matched) != 0 {
		t.Errorf("closed engine resolved pair: %v", s.Matched)
	}
	if f.Pending() != 0 {
		t.Errorf("expected no pending tasks after Close, got %d", f.Pending())
	}
	if res := e.Flip(4); res != FlipIgnored {
		t.Errorf("flip after Close: expected FlipIgnored, got %s", res)
	}
}

func TestAltTiming(t *testing.T) {
	f := clock.NewFake()
	e, err := New(board16(), Options{Clock: f, Timing: AltTiming})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.Flip(0)
	e.Flip(2)
	f.Advance(AltTiming.MismatchDelay - time.Millisecond)
	if len(e.Snapshot().Flipped) != 2 {
		t.Fatal("mismatch cleared before alt delay")
	}
	f.Advance(time.Millisecond)
	if len(e.Snapshot().Flipped) != 0 {
		t.Fatal("mismatch not cleared at alt delay")
	}
}

func TestSnapshot_CardsHideFaceDownValues(t *testing.T) {
	e, f := newTestEngine(t, board16())
	e.Flip(0)
	e.Flip(1)
	f.Advance(time.Second)
	e.Flip(4)

	cards := e.Snapshot().Cards()
	if len(cards) != 16 {
		t.Fatalf("expected 16 cards, got %d", len(cards))
	}
	if !cards[0].Matched || cards[0].Value != "A" {
		t.Errorf("card 0: %+v", cards[0])
	}
	if !cards[4].Flipped || cards[4].Value != "B" {
		t.Errorf("card 4: %+v", cards[4])
	}
	if cards[2].Value != "" {
		t.Errorf("face-down card leaked its value: %+v", cards[2])
	}
}

func TestNotify_DropsStaleSnapshots(t *testing.T) {
	var seen []int
	completions := 0
	e, err := New(deckOf("A", "A"), Options{
		Clock:      clock.NewFake(),
		OnChange:   func(s Snapshot) { seen = append(seen, s.Moves) },
		OnComplete: func(Snapshot) { completions++ },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	// A resolve snapshot delivered ahead of the flip that preceded it.
	e.notify(2, Snapshot{Moves: 2}, true)
	e.notify(1, Snapshot{Moves: 1}, false)
	e.notify(3, Snapshot{Moves: 3}, false)

	if len(seen) != 2 || seen[0] != 2 || seen[1] != 3 {
		t.Errorf("expected deliveries [2 3], got %v", seen)
	}
	if completions != 1 {
		t.Errorf("expected one completion, got %d", completions)
	}
}

func TestOnChange_SeesEveryTransitionInOrder(t *testing.T) {
	f := clock.NewFake()
	var phases []Phase
	e, err := New(board16(), Options{Clock: f, OnChange: func(s Snapshot) { phases = append(phases, s.Phase) }})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.Flip(0)
	e.Flip(2)
	f.Advance(DefaultTiming.MismatchDelay)

	want := []Phase{PhaseAwaitingSecondFlip, PhaseResolving, PhaseIdle}
	if len(phases) != len(want) {
		t.Fatalf("expected %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, phases)
		}
	}
}
