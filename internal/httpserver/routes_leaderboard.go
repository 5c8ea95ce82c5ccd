// internal/httpserver/routes_leaderboard.go
//
// Leaderboard endpoints:
//   - GET  /api/leaderboard      → top 20, best first ({id,name,time_ms,moves}[])
//   - POST /api/leaderboard      → store {name,time_ms,moves}; blank name → "Anonymous"
//   - GET  /api/leaderboard/{id} → a single stored row
//
// Submitted values are taken at face value apart from basic sanity checks.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minimal-match/internal/leaderboard"
	"github.com/robalobadob/minimal-match/internal/store"
)

// maxNameRunes bounds stored player names.
const maxNameRunes = 32

// scoreGetter is implemented by stores that can load a single row.
type scoreGetter interface {
	Get(ctx context.Context, id int64) (leaderboard.Score, error)
}

func (s *Server) mountLeaderboard() {
	s.r.Route(leaderboard.Path, func(r chi.Router) {
		r.Get("/", s.handleListScores)
		r.Post("/", s.handleSubmitScore)
		r.Get("/{id}", s.handleGetScore)
	})
}

// handleListScores returns the ranked listing. Always a JSON array.
func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	rows, err := s.scores.Top(r.Context(), leaderboard.MaxEntries)
	if err != nil {
		log.Error().Err(err).Msg("list scores")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if rows == nil {
		rows = []leaderboard.Score{}
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// handleSubmitScore validates and stores one entry.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req leaderboard.Entry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.TimeMs < 0 || req.Moves < 0 {
		writeError(w, http.StatusBadRequest, "invalid_score")
		return
	}
	req.Name = clampName(leaderboard.NormalizeName(req.Name))

	row, err := s.scores.Insert(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("insert score")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Int64("id", row.ID).Str("name", row.Name).Int64("timeMs", row.TimeMs).Int("moves", row.Moves).Msg("score stored")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(row)
}

// handleGetScore returns one row, if the store supports lookups.
func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	g, ok := s.scores.(scoreGetter)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_id")
		return
	}
	row, err := g.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(row)
}

// clampName truncates name to maxNameRunes runes.
func clampName(name string) string {
	if utf8.RuneCountInString(name) <= maxNameRunes {
		return name
	}
	return string([]rune(name)[:maxNameRunes])
}

// storeSubmitter hands finished server-side sessions to the score store.
type storeSubmitter struct{ scores store.ScoreStore }

func (ss storeSubmitter) Submit(ctx context.Context, e leaderboard.Entry) error {
	e.Name = clampName(e.Name)
	_, err := ss.scores.Insert(ctx, e)
	return err
}
