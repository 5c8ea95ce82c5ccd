// internal/game/types.go
//
// Core type definitions for the match engine.
// Defines:
//   - Phase: coarse engine state (idle/awaiting/resolving/completed).
//   - FlipResult: what a single Flip call did.
//   - Timing: settle delays applied before a pair resolves.
//   - Snapshot / Card: read-only views of the board handed to callers.
package game

import (
	"time"

	"github.com/robalobadob/minimal-match/internal/deck"
)

// Phase is the engine's position in the flip/resolve cycle.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseAwaitingSecondFlip Phase = "awaiting_second_flip"
	PhaseResolving          Phase = "resolving"
	PhaseCompleted          Phase = "completed"
)

// FlipResult reports what a Flip call did.
type FlipResult string

const (
	FlipIgnored     FlipResult = "ignored"     // no state change
	FlipFirst       FlipResult = "first"       // first tile of a pair is up
	FlipSecond      FlipResult = "second"      // pair is up, resolution scheduled
	FlipInterrupted FlipResult = "interrupted" // pending pair superseded by this tile
)

// Timing holds the settle delays between the second flip of a pair and
// applying its outcome.
type Timing struct {
	MatchDelay    time.Duration
	MismatchDelay time.Duration
}

var (
	// DefaultTiming is the reference constant set.
	DefaultTiming = Timing{MatchDelay: 250 * time.Millisecond, MismatchDelay: 650 * time.Millisecond}
	// AltTiming is the alternate theme's constant set.
	AltTiming = Timing{MatchDelay: 300 * time.Millisecond, MismatchDelay: 600 * time.Millisecond}
)

// withDefaults fills zero delays from DefaultTiming.
func (t Timing) withDefaults() Timing {
	if t.MatchDelay <= 0 {
		t.MatchDelay = DefaultTiming.MatchDelay
	}
	if t.MismatchDelay <= 0 {
		t.MismatchDelay = DefaultTiming.MismatchDelay
	}
	return t
}

// Snapshot is a consistent copy of the engine state at one instant.
type Snapshot struct {
	Tiles     deck.Deck
	Flipped   []int // ascending
	Matched   []int // ascending
	Moves     int
	ElapsedMs float64
	Running   bool
	Completed bool
	Phase     Phase
}

// Card is a single board position as shown to a player: the value is only
// present while the tile is face up.
type Card struct {
	Index   int         `json:"index"`
	Value   deck.Symbol `json:"value,omitempty"`
	Flipped bool        `json:"flipped"`
	Matched bool        `json:"matched"`
}

// Cards projects the snapshot into the player-visible board.
func (s Snapshot) Cards() []Card {
	flipped := NewSet(s.Flipped...)
	matched := NewSet(s.Matched...)
	out := make([]Card, len(s.Tiles))
	for i, t := range s.Tiles {
		c := Card{Index: i, Flipped: flipped.Has(i), Matched: matched.Has(i)}
		if c.Flipped || c.Matched {
			c.Value = t.Value
		}
		out[i] = c
	}
	return out
}
