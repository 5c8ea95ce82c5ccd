// internal/game/engine.go
//
// Match engine for a single board.
// Responsibilities:
//   - Apply flips: first tile, second tile (counts a move), interrupts.
//   - Schedule pair resolution after a settle delay and apply it atomically.
//   - Start the timer on the first flip and stop it on completion.
//   - Detect completion exactly once and notify listeners.
//
// Notes:
//   - Invalid flips (out of range, already up, already matched, after
//     completion) are no-ops reported as FlipIgnored, never errors.
//   - Each scheduled resolution captures a generation number; any state
//     change that supersedes it (interrupt, Close) bumps the generation so a
//     late callback cannot touch the board.
//   - Listeners run after the engine lock is released, one at a time. A
//     snapshot older than one already delivered is dropped, so a Flip racing
//     a settle callback cannot redraw a stale board last. Listeners must not
//     call Flip on the engine that is notifying them.
package game

import (
	"fmt"
	"sync"

	"github.com/robalobadob/minimal-match/internal/clock"
	"github.com/robalobadob/minimal-match/internal/deck"
)

// Options configures a new Engine. Zero values pick defaults.
type Options struct {
	Timing Timing
	Clock  clock.Clock
	// Timer is started on the first flip and stopped on completion. If nil
	// the engine creates and owns one.
	Timer *clock.Timer
	// OnChange is called after every state change.
	OnChange func(Snapshot)
	// OnComplete is called once, when the last pair is matched.
	OnComplete func(Snapshot)
}

// Engine owns the flipped/matched state of one deck.
type Engine struct {
	mu       sync.Mutex
	deck     deck.Deck
	timing   Timing
	clk      clock.Clock
	timer    *clock.Timer
	ownTimer bool

	flipped   Set
	matched   Set
	moves     int
	completed bool
	closed    bool

	pending      clock.Task
	pendingPair  [2]int
	pendingMatch bool
	gen          uint64

	seq uint64 // bumped on every state change, under mu

	notifyMu  sync.Mutex
	delivered uint64

	onChange   func(Snapshot)
	onComplete func(Snapshot)
}

// New builds an engine for d. The deck must satisfy deck.Validate.
func New(d deck.Deck, opts Options) (*Engine, error) {
	if err := deck.Validate(d); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	e := &Engine{
		deck:       d,
		timing:     opts.Timing.withDefaults(),
		clk:        opts.Clock,
		timer:      opts.Timer,
		onChange:   opts.OnChange,
		onComplete: opts.OnComplete,
	}
	if e.clk == nil {
		e.clk = clock.Real{}
	}
	if e.timer == nil {
		e.timer = clock.NewTimer(e.clk, 0)
		e.ownTimer = true
	}
	return e, nil
}

// Flip turns tile index face up and applies the resulting transition.
func (e *Engine) Flip(index int) FlipResult {
	e.mu.Lock()
	if e.closed || e.completed || index < 0 || index >= len(e.deck) ||
		e.matched.Has(index) || e.flipped.Has(index) {
		e.mu.Unlock()
		return FlipIgnored
	}

	var res FlipResult
	switch {
	case e.pending != nil:
		// A third tile while a pair is settling: the pair's outcome is
		// applied now and only the new tile stays up.
		e.cancelPendingLocked()
		if e.pendingMatch {
			e.matched.add(e.pendingPair[0], e.pendingPair[1])
		}
		e.flipped.clear()
		e.flipped.add(index)
		res = FlipInterrupted

	case e.flipped.Len() == 0:
		e.flipped.add(index)
		if !e.timer.Running() {
			e.timer.Start()
		}
		res = FlipFirst

	case e.flipped.Len() == 1:
		first := e.flipped.Sorted()[0]
		e.flipped.add(index)
		e.moves++
		e.schedulePairLocked(first, index)
		res = FlipSecond

	default:
		e.flipped.clear()
		e.flipped.add(index)
		res = FlipInterrupted
	}

	e.seq++
	seq, snap := e.seq, e.snapshotLocked()
	e.mu.Unlock()

	e.notify(seq, snap, false)
	return res
}

// schedulePairLocked records the compared pair and arms its settle delay.
func (e *Engine) schedulePairLocked(a, b int) {
	match := e.deck[a].Value == e.deck[b].Value
	delay := e.timing.MismatchDelay
	if match {
		delay = e.timing.MatchDelay
	}
	e.gen++
	gen := e.gen
	e.pendingPair = [2]int{a, b}
	e.pendingMatch = match
	e.pending = e.clk.AfterFunc(delay, func() { e.resolve(gen) })
}

func (e *Engine) cancelPendingLocked() {
	e.gen++
	if e.pending != nil {
		e.pending.Cancel()
		e.pending = nil
	}
}

// resolve applies the outcome of the pair scheduled under gen.
func (e *Engine) resolve(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.gen || e.pending == nil {
		e.mu.Unlock()
		return
	}
	if e.pendingMatch {
		e.matched.add(e.pendingPair[0], e.pendingPair[1])
	}
	e.flipped.clear()
	e.pending = nil
	e.gen++

	justCompleted := false
	if !e.completed && e.matched.Len() == len(e.deck) {
		e.completed = true
		e.timer.Stop()
		justCompleted = true
	}

	e.seq++
	seq, snap := e.seq, e.snapshotLocked()
	e.mu.Unlock()

	e.notify(seq, snap, justCompleted)
}

// notify hands snap to the listeners. Completion is always reported even if
// the snapshot itself is stale.
func (e *Engine) notify(seq uint64, snap Snapshot, completed bool) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	if seq > e.delivered {
		e.delivered = seq
		if e.onChange != nil {
			e.onChange(snap)
		}
	}
	if completed && e.onComplete != nil {
		e.onComplete(snap)
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	tiles := make(deck.Deck, len(e.deck))
	copy(tiles, e.deck)
	return Snapshot{
		Tiles:     tiles,
		Flipped:   e.flipped.Sorted(),
		Matched:   e.matched.Sorted(),
		Moves:     e.moves,
		ElapsedMs: e.timer.ElapsedMs(),
		Running:   e.timer.Running(),
		Completed: e.completed,
		Phase:     e.phaseLocked(),
	}
}

func (e *Engine) phaseLocked() Phase {
	switch {
	case e.completed:
		return PhaseCompleted
	case e.pending != nil:
		return PhaseResolving
	case e.flipped.Len() == 1:
		return PhaseAwaitingSecondFlip
	default:
		return PhaseIdle
	}
}

// Phase reports the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phaseLocked()
}

// Completed reports whether every pair has been matched.
func (e *Engine) Completed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed
}

// Close discards any pending resolution. Further flips are ignored.
// A timer the engine created itself is closed too.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.cancelPendingLocked()
	if e.ownTimer {
		e.timer.Close()
	}
}
