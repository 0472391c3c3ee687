// Package store keeps a history of route searches in SQLite
// (modernc.org/sqlite, no cgo).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/katalvlaran/gridroute/gridgraph"
)

var (
	// ErrNotFound indicates an unknown run id.
	ErrNotFound = errors.New("store: run not found")
	// ErrClosed indicates use after Close.
	ErrClosed = errors.New("store: closed")
)

// Run is one recorded search. Steps is -1 when no route was found.
type Run struct {
	ID        int64                  `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Start     gridgraph.Coordinate   `json:"start"`
	Goal      gridgraph.Coordinate   `json:"goal"`
	Found     bool                   `json:"found"`
	Steps     int                    `json:"steps"`
	Visited   int                    `json:"visited"`
	Path      []gridgraph.Coordinate `json:"path"`
	Error     string                 `json:"error,omitempty"`
}

// Store is safe for concurrent use; SQLite access is serialized on one connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path, creating parent directories.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("store: %s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			start_x INTEGER NOT NULL,
			start_y INTEGER NOT NULL,
			goal_x INTEGER NOT NULL,
			goal_y INTEGER NOT NULL,
			found INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			visited INTEGER NOT NULL,
			path_json TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS runs_created ON runs(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("store: schema: %w", err)
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun inserts r and returns its id. A zero CreatedAt is set to now.
func (s *Store) RecordRun(ctx context.Context, r Run) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Path == nil {
		r.Path = []gridgraph.Coordinate{}
	}
	pj, err := json.Marshal(r.Path)
	if err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(created_at,start_x,start_y,goal_x,goal_y,found,steps,visited,path_json,error)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.Start.X, r.Start.Y, r.Goal.X, r.Goal.Y,
		boolInt(r.Found), r.Steps, r.Visited, string(pj), r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert: %w", err)
	}
	return res.LastInsertId()
}

const selectRun = `SELECT id,created_at,start_x,start_y,goal_x,goal_y,found,steps,visited,path_json,error FROM runs`

// Runs returns up to limit runs, newest first. limit ≤ 0 means 20.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return out, nil
}

// Run fetches one run by id.
func (s *Store) Run(ctx context.Context, id int64) (Run, error) {
	if s == nil || s.db == nil {
		return Run{}, ErrClosed
	}
	r, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		created string
		found   int
		pj      string
	)
	err := sc.Scan(&r.ID, &created, &r.Start.X, &r.Start.Y, &r.Goal.X, &r.Goal.Y, &found, &r.Steps, &r.Visited, &pj, &r.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("store: scan: %w", err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("store: created_at: %w", err)
	}
	r.Found = found != 0
	if err := json.Unmarshal([]byte(pj), &r.Path); err != nil {
		return Run{}, fmt.Errorf("store: path_json: %w", err)
	}
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
