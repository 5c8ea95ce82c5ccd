// internal/deck/deck.go
//
// Deck generation for a single board.
// Responsibilities:
//   - Duplicate a symbol set into pairs and shuffle it (Fisher–Yates).
//   - Assign each tile a stable ID equal to its dealt position.
//   - Validate the pairing invariant (exactly two tiles per symbol).
//
// Randomness is always injected as a *rand.Rand so tests can pin a seed;
// production callers use NewRandomSource, which seeds from crypto/rand.
package deck

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrInvalidInput is returned for an empty or non-distinct symbol set.
var ErrInvalidInput = errors.New("deck: invalid input")

// Symbol is the value a pair of tiles share.
type Symbol string

// Tile is one face of the board. ID is assigned at generation time and
// never changes for the lifetime of the deck.
type Tile struct {
	ID    int    `json:"id"`
	Value Symbol `json:"value"`
}

// Deck is the ordered sequence of 2×N tiles for one session.
type Deck []Tile

// Pairs reports how many pairs the deck holds.
func (d Deck) Pairs() int { return len(d) / 2 }

// NewSource returns a deterministic random source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSource returns a random source seeded from crypto/rand.
func NewRandomSource() *rand.Rand {
	var b [16]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}

// Generate builds a shuffled deck holding every symbol exactly twice.
// A nil rng falls back to NewRandomSource.
func Generate(symbols []Symbol, rng *rand.Rand) (Deck, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: empty symbol set", ErrInvalidInput)
	}
	seen := make(map[Symbol]struct{}, len(symbols))
	for _, s := range symbols {
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidInput, s)
		}
		seen[s] = struct{}{}
	}
	if rng == nil {
		rng = NewRandomSource()
	}

	values := make([]Symbol, 0, 2*len(symbols))
	values = append(values, symbols...)
	values = append(values, symbols...)

	for i := len(values) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		values[i], values[j] = values[j], values[i]
	}

	d := make(Deck, len(values))
	for i, v := range values {
		d[i] = Tile{ID: i, Value: v}
	}
	return d, nil
}

// Validate checks that d is a well-formed deck: non-empty, every tile ID
// equal to its position, and exactly two tiles per symbol.
func Validate(d Deck) error {
	if len(d) == 0 {
		return fmt.Errorf("%w: empty deck", ErrInvalidInput)
	}
	counts := make(map[Symbol]int, len(d)/2)
	for i, t := range d {
		if t.ID != i {
			return fmt.Errorf("%w: tile %d has id %d", ErrInvalidInput, i, t.ID)
		}
		counts[t.Value]++
	}
	for s, n := range counts {
		if n != 2 {
			return fmt.Errorf("%w: symbol %q appears %d times", ErrInvalidInput, s, n)
		}
	}
	return nil
}
