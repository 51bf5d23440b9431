package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps suite history in PostgreSQL, for teams sharing one
// history across CI runners.
type PostgresStore struct {
	historyDB
}

var postgresQueries = queries{
	migrate: []string{
		`CREATE TABLE IF NOT EXISTS suite_runs (
			id BIGSERIAL PRIMARY KEY,
			suite TEXT NOT NULL,
			started_at_ms BIGINT NOT NULL,
			git_sha TEXT NOT NULL DEFAULT '',
			runs INTEGER NOT NULL,
			warmup_runs INTEGER NOT NULL,
			total_duration_ns BIGINT NOT NULL,
			document TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (suite, started_at_ms)
		);`,
		`CREATE TABLE IF NOT EXISTS benchmark_results (
			run_id BIGINT NOT NULL REFERENCES suite_runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			duration_ns BIGINT NOT NULL,
			bytes BIGINT,
			elements BIGINT,
			PRIMARY KEY (run_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_results_name ON benchmark_results(name);`,
	},
	upsertRun: `INSERT INTO suite_runs (suite, started_at_ms, git_sha, runs, warmup_runs, total_duration_ns, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (suite, started_at_ms) DO UPDATE SET
			git_sha = EXCLUDED.git_sha, runs = EXCLUDED.runs, warmup_runs = EXCLUDED.warmup_runs,
			total_duration_ns = EXCLUDED.total_duration_ns, document = EXCLUDED.document
		RETURNING id`,
	deleteResults: `DELETE FROM benchmark_results WHERE run_id = $1`,
	insertResult:  `INSERT INTO benchmark_results (run_id, name, duration_ns, bytes, elements) VALUES ($1, $2, $3, $4, $5)`,
	latest:        `SELECT document FROM suite_runs WHERE suite = $1 ORDER BY started_at_ms DESC LIMIT 1`,
	all:           `SELECT document FROM suite_runs WHERE suite = $1 ORDER BY started_at_ms ASC`,
	suites:        `SELECT DISTINCT suite FROM suite_runs ORDER BY suite`,
	history: `SELECT r.started_at_ms, r.git_sha, b.duration_ns FROM benchmark_results b
		JOIN suite_runs r ON r.id = b.run_id
		WHERE r.suite = $1 AND b.name = $2 ORDER BY r.started_at_ms DESC LIMIT $3`,
	pruneResults: `DELETE FROM benchmark_results WHERE run_id IN (
		SELECT id FROM suite_runs WHERE suite = $1 AND id NOT IN (
			SELECT id FROM suite_runs WHERE suite = $2 ORDER BY started_at_ms DESC LIMIT $3))`,
	pruneRuns: `DELETE FROM suite_runs WHERE suite = $1 AND id NOT IN (
		SELECT id FROM suite_runs WHERE suite = $2 ORDER BY started_at_ms DESC LIMIT $3)`,
}

// NewPostgresStore connects to dsn and applies migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := newPostgresStore(db)
	if err := store.migrateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func newPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{historyDB{db: db, q: postgresQueries}}
}
