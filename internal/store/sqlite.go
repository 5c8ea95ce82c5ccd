// internal/store/sqlite.go
//
// SQLite-backed leaderboard storage.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from the embedded sql/*.sql (idempotent, recorded
//     in _migrations).
//   - Inserting score rows and listing the best-first top N.
//
// Ranking order: time_ms ASC, then moves ASC, then created_at ASC, then id.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/minimal-match/assets"
	"github.com/robalobadob/minimal-match/internal/leaderboard"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ScoreStore persists leaderboard entries.
type ScoreStore interface {
	// Insert stores e and returns the created row.
	Insert(ctx context.Context, e leaderboard.Entry) (leaderboard.Score, error)

	// Top returns at most limit rows, best first.
	Top(ctx context.Context, limit int) ([]leaderboard.Score, error)
}

// SQLite is a ScoreStore on a database/sql handle.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at dsn and applies
// migrations. ":memory:" gives a private in-memory database.
func OpenSQLite(dsn string) (*SQLite, error) {
	memory := dsn == ":memory:"

	// Ensure directory exists for ./data/app.db, etc.
	if !memory {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if memory {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	migrations, err := assets.Migrations()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db, migrations); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// migrate applies every *.sql file in fsys in lexical order, once.
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Insert stores e. Validation (non-negative values, name length) is the
// caller's job; the schema only enforces non-negative numbers.
func (s *SQLite) Insert(ctx context.Context, e leaderboard.Entry) (leaderboard.Score, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (name, time_ms, moves) VALUES (?, ?, ?)`,
		e.Name, e.TimeMs, e.Moves,
	)
	if err != nil {
		return leaderboard.Score{}, fmt.Errorf("insert score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return leaderboard.Score{}, fmt.Errorf("insert score: %w", err)
	}
	return leaderboard.Score{ID: id, Name: e.Name, TimeMs: e.TimeMs, Moves: e.Moves}, nil
}

// Top returns the best rows. A non-positive or oversized limit is clamped
// to leaderboard.MaxEntries.
func (s *SQLite) Top(ctx context.Context, limit int) ([]leaderboard.Score, error) {
	if limit <= 0 || limit > leaderboard.MaxEntries {
		limit = leaderboard.MaxEntries
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, time_ms, moves
        FROM scores
        ORDER BY time_ms ASC, moves ASC, created_at ASC, id ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]leaderboard.Score, 0, limit)
	for rows.Next() {
		var r leaderboard.Score
		if err := rows.Scan(&r.ID, &r.Name, &r.TimeMs, &r.Moves); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns a single row by id.
func (s *SQLite) Get(ctx context.Context, id int64) (leaderboard.Score, error) {
	var r leaderboard.Score
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, time_ms, moves FROM scores WHERE id=?`, id,
	).Scan(&r.ID, &r.Name, &r.TimeMs, &r.Moves)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	return r, err
}
