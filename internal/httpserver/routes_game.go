// internal/httpserver/routes_game.go
//
// Server-side game sessions, so a thin client can play without keeping the
// clock or the deck itself:
//   - POST   /game/new      → new session; returns gameId + bearer token
//   - GET    /game/{id}     → current board
//   - POST   /game/flip     → flip one tile
//   - POST   /game/reset    → fresh deck for the same game
//   - POST   /game/finalize → submit the finished game, start a new one
//   - DELETE /game/{id}     → end the session
//
// Every route except /game/new requires "Authorization: Bearer <token>"
// for the game it touches. Face-down tile values are never sent.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minimal-match/internal/game"
	"github.com/robalobadob/minimal-match/internal/leaderboard"
	"github.com/robalobadob/minimal-match/internal/session"
	"github.com/robalobadob/minimal-match/internal/store"
)

func (s *Server) mountGame() {
	s.r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/flip", s.handleFlip)
		r.Post("/reset", s.handleReset)
		r.Post("/finalize", s.handleFinalize)
		r.Get("/{id}", s.handleGetGame)
		r.Delete("/{id}", s.handleEndGame)
	})
}

// boardRes is the public view of one session.
type boardRes struct {
	GameID    string          `json:"gameId"`
	Token     string          `json:"token,omitempty"`
	Round     int             `json:"round"`
	Cards     []game.Card     `json:"cards"`
	Moves     int             `json:"moves"`
	ElapsedMs int64           `json:"elapsedMs"`
	Elapsed   string          `json:"elapsed"` // "12.34s"
	Running   bool            `json:"running"`
	Completed bool            `json:"completed"`
	Phase     game.Phase      `json:"phase"`
	Result    game.FlipResult `json:"result,omitempty"`
}

func newBoardRes(c *session.Controller) boardRes {
	snap := c.Snapshot()
	return boardRes{
		GameID:    c.ID(),
		Round:     c.Round(),
		Cards:     snap.Cards(),
		Moves:     snap.Moves,
		ElapsedMs: int64(snap.ElapsedMs),
		Elapsed:   leaderboard.FormatSeconds(snap.ElapsedMs),
		Running:   snap.Running,
		Completed: snap.Completed,
		Phase:     snap.Phase,
	}
}

// handleNewGame creates and registers a session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	c, err := session.New(s.opts.Symbols,
		session.WithClock(s.opts.Clock),
		session.WithTiming(s.opts.Timing),
		session.WithSubmitter(storeSubmitter{scores: s.scores}),
	)
	if err != nil {
		log.Error().Err(err).Msg("new session")
		writeError(w, http.StatusInternalServerError, "new_game_failed")
		return
	}
	tok, err := s.signGameToken(c.ID())
	if err != nil {
		c.Close()
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	if err := s.sessions.Save(r.Context(), c.ID(), c); err != nil {
		c.Close()
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("gameId", c.ID()).Int("live", s.sessions.Len()).Msg("game created")

	res := newBoardRes(c)
	res.Token = tok
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

// loadGame authorizes the request for id and fetches its session.
// On failure it has already written the response.
func (s *Server) loadGame(w http.ResponseWriter, r *http.Request, id string) (*session.Controller, bool) {
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_game_id")
		return nil, false
	}
	if err := s.authorizeGame(r, id); err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	c, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return c, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadGame(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(newBoardRes(c))
}

// flipReq is the payload for POST /game/flip.
type flipReq struct {
	GameID string `json:"gameId"`
	Index  *int   `json:"index"`
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req flipReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	c, ok := s.loadGame(w, r, req.GameID)
	if !ok {
		return
	}
	result := c.Flip(*req.Index)
	res := newBoardRes(c)
	res.Result = result
	_ = json.NewEncoder(w).Encode(res)
}

// gameReq is the payload for reset/finalize.
type gameReq struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	c, ok := s.loadGame(w, r, req.GameID)
	if !ok {
		return
	}
	if err := c.Reset(); err != nil {
		log.Error().Err(err).Str("gameId", req.GameID).Msg("reset")
		writeError(w, http.StatusInternalServerError, "reset_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(newBoardRes(c))
}

// finalizeRes carries the submitted entry and the fresh board.
type finalizeRes struct {
	Entry leaderboard.Entry `json:"entry"`
	Board boardRes          `json:"board"`
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	c, ok := s.loadGame(w, r, req.GameID)
	if !ok {
		return
	}
	entry, err := c.Finalize(r.Context(), req.Name)
	if errors.Is(err, session.ErrNotCompleted) {
		writeError(w, http.StatusConflict, "not_completed")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "finalize_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(finalizeRes{Entry: entry, Board: newBoardRes(c)})
}

func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.loadGame(w, r, id); !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
