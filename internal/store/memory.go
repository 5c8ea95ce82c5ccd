// internal/store/memory.go
//
// In-memory registry of live game sessions for the HTTP API.
//
// Characteristics:
//   - Stores *session.Controller values keyed by game ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Tracks last access so idle sessions can be swept; swept and deleted
//     sessions are closed so their timers and settle delays are released.
//   - State is lost when the process restarts.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/minimal-match/internal/session"
)

// Sessions defines the registry interface for live sessions.
type Sessions interface {
	// Save registers c under id, replacing (and closing) any previous one.
	Save(ctx context.Context, id string, c *session.Controller) error

	// Get retrieves a session by ID and marks it as recently used.
	// Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*session.Controller, error)

	// Delete closes and removes a session. Missing IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep closes and removes sessions idle longer than ttl, returning how
	// many were removed.
	Sweep(ctx context.Context, ttl time.Duration) int

	// Len reports the number of live sessions.
	Len() int
}

type entry struct {
	ctrl     *session.Controller
	lastSeen time.Time
}

// memory is an in-memory map-based Sessions implementation.
type memory struct {
	mu       sync.RWMutex      // guards sessions
	sessions map[string]*entry // keyed by game ID
	now      func() time.Time
}

// NewMemorySessions constructs an empty registry.
func NewMemorySessions() Sessions {
	return &memory{sessions: make(map[string]*entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, id string, c *session.Controller) error {
	m.mu.Lock()
	prev := m.sessions[id]
	m.sessions[id] = &entry{ctrl: c, lastSeen: m.now()}
	m.mu.Unlock()

	if prev != nil && prev.ctrl != c {
		prev.ctrl.Close()
	}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*session.Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		return e.ctrl, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if e != nil {
		e.ctrl.Close()
	}
	return nil
}

func (m *memory) Sweep(ctx context.Context, ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)
	var stale []*session.Controller

	m.mu.Lock()
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.ctrl)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
