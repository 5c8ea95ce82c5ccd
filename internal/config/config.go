// internal/config/config.go
//
// Environment configuration for the server and the terminal client.
//
// Values come from the process environment, optionally seeded from a
// `.env` file in the working directory (development). Parsing and
// defaults are declared with struct tags.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/minimal-match/internal/deck"
	"github.com/robalobadob/minimal-match/internal/game"
)

// Server configures the leaderboard + game HTTP service.
type Server struct {
	Port          string        `env:"PORT" envDefault:"5175"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	DBPath        string        `env:"DB_PATH" envDefault:"./data/app.db"`
	ClientOrigin  string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	MatchDelay    time.Duration `env:"MATCH_DELAY" envDefault:"250ms"`
	MismatchDelay time.Duration `env:"MISMATCH_DELAY" envDefault:"650ms"`
	SymbolsFile   string        `env:"SYMBOLS_FILE"`
}

// Client configures the terminal client.
type Client struct {
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:5175"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadServer reads .env (if present) and parses Server from the environment.
func LoadServer() (Server, error) {
	_ = godotenv.Load()
	var c Server
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// LoadClient reads .env (if present) and parses Client from the environment.
func LoadClient() (Client, error) {
	_ = godotenv.Load()
	var c Client
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

// Timing returns the configured settle delays.
func (s Server) Timing() game.Timing {
	return game.Timing{MatchDelay: s.MatchDelay, MismatchDelay: s.MismatchDelay}
}

// Symbols returns the symbol set from SymbolsFile, or the embedded default.
func (s Server) Symbols() ([]deck.Symbol, error) {
	if s.SymbolsFile == "" {
		return deck.DefaultSymbols(), nil
	}
	return deck.LoadSymbols(s.SymbolsFile)
}
