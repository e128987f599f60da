package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/verigen/internal/model"
)

// SQLiteStore persists settings and generation history in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// kv and results tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id             TEXT PRIMARY KEY,
			module_code    TEXT NOT NULL,
			testbench_code TEXT NOT NULL,
			description    TEXT NOT NULL,
			provider       TEXT NOT NULL,
			model          TEXT NOT NULL,
			strategy       TEXT NOT NULL,
			source         TEXT NOT NULL,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS results_created_at ON results (created_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

// Keys returns every key starting with prefix, sorted.
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("listing keys with prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SaveResult inserts or replaces a generation result.
func (s *SQLiteStore) SaveResult(ctx context.Context, r model.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO results
		 (id, module_code, testbench_code, description, provider, model, strategy, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ModuleCode, r.TestbenchCode, r.Description, r.Provider, r.Model,
		r.Strategy, string(r.Source), r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving result %s: %w", r.ID, err)
	}
	return nil
}

const resultColumns = `id, module_code, testbench_code, description, provider, model, strategy, source, created_at`

// GetResult returns the result with the given id, or model.ErrNotFound.
func (s *SQLiteStore) GetResult(ctx context.Context, id string) (model.Result, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+resultColumns+" FROM results WHERE id = ?", id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, fmt.Errorf("result %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Result{}, fmt.Errorf("reading result %s: %w", id, err)
	}
	return r, nil
}

// LatestResult returns the most recently created result, or model.ErrNotFound.
func (s *SQLiteStore) LatestResult(ctx context.Context) (model.Result, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+resultColumns+" FROM results ORDER BY created_at DESC, rowid DESC LIMIT 1")
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Result{}, fmt.Errorf("latest result: %w", model.ErrNotFound)
	}
	if err != nil {
		return model.Result{}, fmt.Errorf("reading latest result: %w", err)
	}
	return r, nil
}

// ListResults returns up to limit results, newest first. A limit <= 0 returns all.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]model.Result, error) {
	var q strings.Builder
	q.WriteString("SELECT " + resultColumns + " FROM results ORDER BY created_at DESC, rowid DESC")
	args := []any{}
	if limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneResults deletes results older than olderThan and reports how many were removed.
func (s *SQLiteStore) PruneResults(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up results older than %v: %w", olderThan, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (model.Result, error) {
	var (
		r         model.Result
		source    string
		createdAt int64
	)
	err := row.Scan(&r.ID, &r.ModuleCode, &r.TestbenchCode, &r.Description,
		&r.Provider, &r.Model, &r.Strategy, &source, &createdAt)
	if err != nil {
		return model.Result{}, err
	}
	r.Source = model.Source(source)
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return r, nil
}
