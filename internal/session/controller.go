// internal/session/controller.go
//
// Session controller: one restartable play-through.
// Responsibilities:
//   - Build a fresh deck, timer state and match engine (New / Reset).
//   - Forward flips to the current engine.
//   - On completion, turn (name, elapsed, moves) into a leaderboard entry,
//     hand it to the submitter in the background and start a new session.
//
// Notes:
//   - Submission is fire-and-forget: failures are logged and never block
//     or fail Finalize.
//   - Reset closes the previous engine first, so a settle delay still in
//     flight cannot touch the new board.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minimal-match/internal/clock"
	"github.com/robalobadob/minimal-match/internal/deck"
	"github.com/robalobadob/minimal-match/internal/game"
	"github.com/robalobadob/minimal-match/internal/leaderboard"
)

// ErrNotCompleted is returned by Finalize before every pair is matched.
var ErrNotCompleted = errors.New("session: game not completed")

const defaultSubmitTimeout = 10 * time.Second

// Submitter is the leaderboard collaborator.
type Submitter interface {
	Submit(ctx context.Context, e leaderboard.Entry) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, e leaderboard.Entry) error

func (f SubmitterFunc) Submit(ctx context.Context, e leaderboard.Entry) error { return f(ctx, e) }

// State is the scalar part of a session.
type State struct {
	Moves     int     `json:"moves"`
	ElapsedMs float64 `json:"elapsedMs"`
	Running   bool    `json:"running"`
	Completed bool    `json:"completed"`
}

// Option customizes a Controller.
type Option func(*Controller)

func WithClock(c clock.Clock) Option           { return func(s *Controller) { s.clk = c } }
func WithRand(r *rand.Rand) Option             { return func(s *Controller) { s.rng = r } }
func WithTiming(t game.Timing) Option          { return func(s *Controller) { s.timing = t } }
func WithSubmitter(sub Submitter) Option       { return func(s *Controller) { s.submitter = sub } }
func WithSubmitTimeout(d time.Duration) Option { return func(s *Controller) { s.submitTimeout = d } }

// WithOnChange installs a listener for every board change of every session.
func WithOnChange(fn func(game.Snapshot)) Option { return func(s *Controller) { s.onChange = fn } }

// WithOnComplete installs a listener fired once per completed session.
func WithOnComplete(fn func(game.Snapshot)) Option { return func(s *Controller) { s.onComplete = fn } }

// WithOnTick installs the timer sampling hook (display refresh).
func WithOnTick(fn func(ms float64)) Option { return func(s *Controller) { s.onTick = fn } }

// Controller owns the current session and everything it is built from.
type Controller struct {
	mu      sync.Mutex
	id      string
	round   int
	symbols []deck.Symbol
	rng     *rand.Rand
	clk     clock.Clock
	timing  game.Timing
	timer   *clock.Timer
	engine  *game.Engine
	closed  bool

	submitter     Submitter
	submitTimeout time.Duration
	submits       sync.WaitGroup

	onChange   func(game.Snapshot)
	onComplete func(game.Snapshot)
	onTick     func(ms float64)
}

// New validates symbols and starts the first session.
func New(symbols []deck.Symbol, opts ...Option) (*Controller, error) {
	c := &Controller{
		id:            uuid.NewString(),
		symbols:       append([]deck.Symbol(nil), symbols...),
		timing:        game.DefaultTiming,
		submitTimeout: defaultSubmitTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	if c.clk == nil {
		c.clk = clock.Real{}
	}
	if c.rng == nil {
		c.rng = deck.NewRandomSource()
	}
	c.timer = clock.NewTimer(c.clk, 0)
	if c.onTick != nil {
		c.timer.OnTick(c.onTick)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.newSessionLocked(); err != nil {
		c.timer.Close()
		return nil, err
	}
	return c, nil
}

// newSessionLocked replaces the deck and engine wholesale.
func (c *Controller) newSessionLocked() error {
	d, err := deck.Generate(c.symbols, c.rng)
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	if c.engine != nil {
		c.engine.Close()
	}
	c.timer.Stop()
	c.timer.Reset()

	e, err := game.New(d, game.Options{
		Timing:     c.timing,
		Clock:      c.clk,
		Timer:      c.timer,
		OnChange:   c.onChange,
		OnComplete: c.completed,
	})
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	c.engine = e
	c.round++
	log.Debug().Str("session", c.id).Int("round", c.round).Int("tiles", len(d)).Msg("session started")
	return nil
}

func (c *Controller) completed(s game.Snapshot) {
	log.Info().Str("session", c.id).Int("moves", s.Moves).Float64("elapsedMs", s.ElapsedMs).Msg("session completed")
	if c.onComplete != nil {
		c.onComplete(s)
	}
}

// current returns the live engine without holding the lock during calls
// into it, so engine listeners may call back into the controller.
func (c *Controller) current() *game.Engine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine
}

// ID identifies the controller across resets.
func (c *Controller) ID() string { return c.id }

// Round counts the sessions started by this controller, starting at 1.
func (c *Controller) Round() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round
}

// Symbols returns a copy of the symbol set.
func (c *Controller) Symbols() []deck.Symbol {
	return append([]deck.Symbol(nil), c.symbols...)
}

// Flip forwards to the current engine.
func (c *Controller) Flip(index int) game.FlipResult {
	return c.current().Flip(index)
}

// Snapshot returns the current board.
func (c *Controller) Snapshot() game.Snapshot {
	return c.current().Snapshot()
}

// State returns the scalar session state.
func (c *Controller) State() State {
	s := c.Snapshot()
	return State{Moves: s.Moves, ElapsedMs: s.ElapsedMs, Running: s.Running, Completed: s.Completed}
}

// Reset discards the current session and starts a new one with the same symbols.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("session: closed")
	}
	return c.newSessionLocked()
}

// Finalize builds the score entry for a completed session, submits it in
// the background and starts a new session. It fails only if the session is
// not completed.
//
// The completion check, the entry and the restart happen under one lock, so
// concurrent calls for the same board yield exactly one entry.
func (c *Controller) Finalize(ctx context.Context, name string) (leaderboard.Entry, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return leaderboard.Entry{}, errors.New("session: closed")
	}
	snap := c.engine.Snapshot()
	if !snap.Completed {
		c.mu.Unlock()
		return leaderboard.Entry{}, ErrNotCompleted
	}
	entry := leaderboard.NewEntry(name, snap.ElapsedMs, snap.Moves)
	if err := c.newSessionLocked(); err != nil {
		log.Error().Err(err).Str("session", c.id).Msg("reset after finalize")
	}
	if c.submitter != nil {
		c.submits.Add(1)
	}
	c.mu.Unlock()

	if c.submitter != nil {
		go c.submit(context.WithoutCancel(ctx), entry)
	}
	return entry, nil
}

func (c *Controller) submit(ctx context.Context, e leaderboard.Entry) {
	defer c.submits.Done()
	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()
	if err := c.submitter.Submit(ctx, e); err != nil {
		log.Warn().Err(err).Str("session", c.id).Str("name", e.Name).Msg("score submission failed")
		return
	}
	log.Info().Str("session", c.id).Str("name", e.Name).Int64("timeMs", e.TimeMs).Int("moves", e.Moves).Msg("score submitted")
}

// Wait blocks until background submissions have finished.
func (c *Controller) Wait() { c.submits.Wait() }

// Close tears down the current engine and the timer sampler.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.engine != nil {
		c.engine.Close()
	}
	c.timer.Close()
}
