package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore keeps suite history in a local SQLite file.
type SQLiteStore struct {
	historyDB
}

var sqliteQueries = queries{
	migrate: []string{
		`CREATE TABLE IF NOT EXISTS suite_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			suite TEXT NOT NULL,
			started_at_ms INTEGER NOT NULL,
			git_sha TEXT NOT NULL DEFAULT '',
			runs INTEGER NOT NULL,
			warmup_runs INTEGER NOT NULL,
			total_duration_ns INTEGER NOT NULL,
			document TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (suite, started_at_ms)
		);`,
		`CREATE TABLE IF NOT EXISTS benchmark_results (
			run_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			duration_ns INTEGER NOT NULL,
			bytes INTEGER,
			elements INTEGER,
			PRIMARY KEY (run_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_results_name ON benchmark_results(name);`,
	},
	upsertRun: `INSERT INTO suite_runs (suite, started_at_ms, git_sha, runs, warmup_runs, total_duration_ns, document)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (suite, started_at_ms) DO UPDATE SET
			git_sha = excluded.git_sha, runs = excluded.runs, warmup_runs = excluded.warmup_runs,
			total_duration_ns = excluded.total_duration_ns, document = excluded.document
		RETURNING id`,
	deleteResults: `DELETE FROM benchmark_results WHERE run_id = ?`,
	insertResult:  `INSERT INTO benchmark_results (run_id, name, duration_ns, bytes, elements) VALUES (?, ?, ?, ?, ?)`,
	latest:        `SELECT document FROM suite_runs WHERE suite = ? ORDER BY started_at_ms DESC LIMIT 1`,
	all:           `SELECT document FROM suite_runs WHERE suite = ? ORDER BY started_at_ms ASC`,
	suites:        `SELECT DISTINCT suite FROM suite_runs ORDER BY suite`,
	history: `SELECT r.started_at_ms, r.git_sha, b.duration_ns FROM benchmark_results b
		JOIN suite_runs r ON r.id = b.run_id
		WHERE r.suite = ? AND b.name = ? ORDER BY r.started_at_ms DESC LIMIT ?`,
	pruneResults: `DELETE FROM benchmark_results WHERE run_id IN (
		SELECT id FROM suite_runs WHERE suite = ? AND id NOT IN (
			SELECT id FROM suite_runs WHERE suite = ? ORDER BY started_at_ms DESC LIMIT ?))`,
	pruneRuns: `DELETE FROM suite_runs WHERE suite = ? AND id NOT IN (
		SELECT id FROM suite_runs WHERE suite = ? ORDER BY started_at_ms DESC LIMIT ?)`,
}

// NewSQLiteStore opens path and applies migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{historyDB{db: db, q: sqliteQueries}}
	if err := store.migrateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}
