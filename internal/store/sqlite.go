// Package store persists high scores. SQLite keeps one row per named slot
// so several players (or several front ends) can share a database file.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/tomz197/astrds/internal/config"
)

// ErrEmptyKey is returned when a slot is requested without a name.
var ErrEmptyKey = errors.New("store: empty slot key")

// SQLite manages the database connection for high-score slots.
type SQLite struct {
	db *sql.DB
}

// Entry is one stored high score.
type Entry struct {
	Key       string
	Score     int
	UpdatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*SQLite, error) {
	dbPath, err := config.ExpandHome(dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: cannot open database: %w", err)
	}
	// SQLite allows one writer; SSH sessions save from many goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: cannot connect to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS high_scores (
			slot TEXT PRIMARY KEY,
			score INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_high_scores_top ON high_scores(score DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Slot returns a handle to the named high-score slot.
func (s *SQLite) Slot(key string) (*Slot, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &Slot{db: s, key: key}, nil
}

// Get returns the score stored under key, or 0 if the slot is empty.
func (s *SQLite) Get(key string) (int, error) {
	var score int
	err := s.db.QueryRow("SELECT score FROM high_scores WHERE slot = ?", key).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: cannot load %s: %w", key, err)
	}
	return score, nil
}

// Put raises the score stored under key. A lower score than the stored
// one is ignored, so concurrent writers cannot lower a slot.
func (s *SQLite) Put(key string, score int) error {
	_, err := s.db.Exec(
		`INSERT INTO high_scores (slot, score, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE
		 SET score = excluded.score, updated_at = excluded.updated_at
		 WHERE excluded.score > high_scores.score`,
		key, score,
	)
	if err != nil {
		return fmt.Errorf("store: cannot save %s: %w", key, err)
	}
	return nil
}

// List returns up to limit slots ordered by score, best first.
func (s *SQLite) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT slot, score, updated_at
		 FROM high_scores
		 ORDER BY score DESC, slot ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var updatedAt any
		if err := rows.Scan(&e.Key, &e.Score, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: cannot scan row: %w", err)
		}
		// The driver hands back either a time.Time or the raw text.
		switch v := updatedAt.(type) {
		case time.Time:
			e.UpdatedAt = v
		case string:
			if parsed, err := time.Parse(time.DateTime, v); err == nil {
				e.UpdatedAt = parsed
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: row iteration error: %w", err)
	}
	return entries, nil
}

// Slot is one named high score in a SQLite database. It satisfies
// game.HighScoreStore.
type Slot struct {
	db  *SQLite
	key string
}

// Key returns the slot name.
func (s *Slot) Key() string { return s.key }

// Load returns the stored score, or 0 if nothing was saved yet.
func (s *Slot) Load() (int, error) {
	return s.db.Get(s.key)
}

// Save raises the stored score.
func (s *Slot) Save(score int) error {
	return s.db.Put(s.key, score)
}
