package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/lu-zhengda/wiper/internal/history"
	"github.com/lu-zhengda/wiper/internal/utils"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeFormat sorts lexically in UTC.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// WatchRoot is a directory the user asked wiper to monitor.
type WatchRoot struct {
	Path    string    `json:"path"`
	AddedAt time.Time `json:"added_at"`
}

// Store persists watch roots and wipe history in SQLite.
type Store struct {
	db *sql.DB
}

var _ history.Ledger = (*Store)(nil)

// DefaultPath returns $XDG_DATA_HOME/wiper/wiper.db.
func DefaultPath() string {
	return filepath.Join(utils.DataDir(), "wiper.db")
}

// Open opens the database at path, creating it and its parent directory
// if needed, and applies pending migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single writer connection for SQLite
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddRoot records path as a watch root. Adding an existing root keeps its
// original AddedAt.
func (s *Store) AddRoot(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watch_roots (path, added_at) VALUES (?, ?) ON CONFLICT(path) DO NOTHING`,
		path, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("adding watch root %s: %w", path, err)
	}
	return nil
}

// RemoveRoot deletes path from the watch roots and reports whether it was
// present.
func (s *Store) RemoveRoot(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watch_roots WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("removing watch root %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing watch root %s: %w", path, err)
	}
	return n > 0, nil
}

// Roots returns every watch root ordered by path.
func (s *Store) Roots(ctx context.Context) ([]WatchRoot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, added_at FROM watch_roots ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing watch roots: %w", err)
	}
	defer rows.Close()

	var roots []WatchRoot
	for rows.Next() {
		var (
			r     WatchRoot
			added string
		)
		if err := rows.Scan(&r.Path, &added); err != nil {
			return nil, fmt.Errorf("scanning watch root: %w", err)
		}
		r.AddedAt, _ = time.Parse(timeFormat, added)
		roots = append(roots, r)
	}
	return roots, rows.Err()
}

// Append stores a wipe record.
func (s *Store) Append(ctx context.Context, r history.WipeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wipe_history (id, path, bytes, date, projects, failed, method) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Path, r.Bytes, r.Date.UTC().Format(timeFormat), r.Projects, r.Failed, r.Method)
	if err != nil {
		return fmt.Errorf("recording wipe: %w", err)
	}
	return nil
}

// All returns every wipe record, oldest first.
func (s *Store) All(ctx context.Context) ([]history.WipeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, bytes, date, projects, failed, method FROM wipe_history ORDER BY date, rowid`)
	if err != nil {
		return nil, fmt.Errorf("loading wipe history: %w", err)
	}
	defer rows.Close()

	var records []history.WipeRecord
	for rows.Next() {
		var (
			r    history.WipeRecord
			date string
		)
		if err := rows.Scan(&r.ID, &r.Path, &r.Bytes, &date, &r.Projects, &r.Failed, &r.Method); err != nil {
			return nil, fmt.Errorf("scanning wipe record: %w", err)
		}
		r.Date, _ = time.Parse(timeFormat, date)
		records = append(records, r)
	}
	return records, rows.Err()
}
