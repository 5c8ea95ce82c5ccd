// internal/leaderboard/entry.go
//
// Leaderboard payload types shared by the client, the service and the
// session controller.
//   - Entry: what a finished player submits ({name, time_ms, moves}).
//   - Score: a stored, ranked row as returned by GET /api/leaderboard.
package leaderboard

import (
	"math"
	"strings"
)

// AnonymousName replaces a blank player name.
const AnonymousName = "Anonymous"

// MaxEntries is the size of the public listing.
const MaxEntries = 20

// Entry is a score submission. It is immutable once created.
type Entry struct {
	Name   string `json:"name"`
	TimeMs int64  `json:"time_ms"`
	Moves  int    `json:"moves"`
}

// Score is one row of the listing.
type Score struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	TimeMs int64  `json:"time_ms"`
	Moves  int    `json:"moves"`
}

// NewEntry builds the submission for a finished session: the name is
// trimmed (blank becomes AnonymousName) and elapsed time rounded to whole ms.
func NewEntry(name string, elapsedMs float64, moves int) Entry {
	return Entry{
		Name:   NormalizeName(name),
		TimeMs: int64(math.Round(elapsedMs)),
		Moves:  moves,
	}
}

// NormalizeName trims whitespace and substitutes AnonymousName for blanks.
func NormalizeName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return AnonymousName
}
