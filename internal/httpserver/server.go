// internal/httpserver/server.go
//
// HTTP server wiring for the Minimal Match backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging).
//   - Public endpoints: "/", "/health".
//   - Leaderboard endpoints: GET/POST /api/leaderboard.
//   - Game endpoints: server-side sessions under /game (token-guarded).
//
// Notes:
//   - CORS is single-origin and credentials-enabled.
//   - Server-side sessions are swept by RunJanitor once idle past SessionTTL.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minimal-match/internal/clock"
	"github.com/robalobadob/minimal-match/internal/deck"
	"github.com/robalobadob/minimal-match/internal/game"
	"github.com/robalobadob/minimal-match/internal/store"
)

// Options configures a Server. Zero values pick defaults.
type Options struct {
	ClientOrigin string
	JWTSecret    string
	SessionTTL   time.Duration
	Timing       game.Timing
	Symbols      []deck.Symbol
	// Clock drives settle delays and timers of server-side sessions.
	Clock clock.Clock
}

// Server bundles router, score store and live session registry.
type Server struct {
	r        *chi.Mux
	scores   store.ScoreStore
	sessions store.Sessions
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(scores store.ScoreStore, sessions store.Sessions, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if len(opts.Symbols) == 0 {
		opts.Symbols = deck.DefaultSymbols()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	s := &Server{r: chi.NewRouter(), scores: scores, sessions: sessions, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // zerolog access line
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"minimal-match","endpoints":["/health","GET /api/leaderboard","POST /api/leaderboard","POST /game/new","POST /game/flip"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountLeaderboard()
	s.mountGame()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sessions.Sweep(ctx, s.opts.SessionTTL); n > 0 {
				log.Info().Int("swept", n).Int("live", s.sessions.Len()).Msg("idle sessions closed")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}

// writeError answers {"error":code} with status.
func writeError(w http.ResponseWriter, status int, code string) {
	http.Error(w, `{"error":"`+code+`"}`, status)
}
