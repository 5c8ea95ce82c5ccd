// internal/leaderboard/view.go
//
// Text rendering of the ranked list: loading state, empty state and rows
// with the time shown as seconds to two decimals.
package leaderboard

import (
	"fmt"
	"io"
)

// EmptyMessage is shown when the listing has no rows, including when the
// fetch failed.
const EmptyMessage = "No scores yet. Be the first!"

// Row is a ranked listing line. Rank is the 1-based position in the
// order the service returned.
type Row struct {
	Rank  int
	Name  string
	Time  string
	Moves int
}

// View is the display state of the leaderboard panel.
type View struct {
	Loading bool
	Rows    []Row
}

// LoadingView is the state before the first fetch completes.
func LoadingView() View { return View{Loading: true} }

// NewView ranks scores in the given order.
func NewView(scores []Score) View {
	rows := make([]Row, len(scores))
	for i, s := range scores {
		rows[i] = Row{Rank: i + 1, Name: s.Name, Time: FormatSeconds(float64(s.TimeMs)), Moves: s.Moves}
	}
	return View{Rows: rows}
}

// Empty reports whether the "no scores yet" state should be shown.
func (v View) Empty() bool { return !v.Loading && len(v.Rows) == 0 }

// Render writes the panel as plain text.
func (v View) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Leaderboard (Top %d)\n", MaxEntries); err != nil {
		return err
	}
	switch {
	case v.Loading:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	case v.Empty():
		_, err := fmt.Fprintln(w, EmptyMessage)
		return err
	}
	for _, r := range v.Rows {
		if _, err := fmt.Fprintf(w, "#%-3d %-24s %9s %4d moves\n", r.Rank, r.Name, r.Time, r.Moves); err != nil {
			return err
		}
	}
	return nil
}

// FormatSeconds renders ms as seconds with two decimals, truncated
// (1999ms -> "1.99s").
func FormatSeconds(ms float64) string {
	if ms < 0 {
		ms = 0
	}
	cs := int64(ms / 10)
	return fmt.Sprintf("%d.%02ds", cs/100, cs%100)
}
