package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stress/internal/benchmark"
)

// queries holds the dialect-specific SQL for one backend.
type queries struct {
	migrate       []string
	upsertRun     string
	deleteResults string
	insertResult  string
	latest        string
	all           string
	suites        string
	history       string
	pruneResults  string
	pruneRuns     string
}

// historyDB implements Store on top of database/sql.
type historyDB struct {
	db *sql.DB
	q  queries
}

func (h *historyDB) migrateSchema() error {
	for _, query := range h.q.migrate {
		if _, err := h.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (h *historyDB) Close() error {
	return h.db.Close()
}

// Save stores the suite document and one row per result. Saving the same
// suite and start time again replaces the earlier rows.
func (h *historyDB) Save(s *benchmark.Suite) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal suite %s: %w", s.Name, err)
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var runID int64
	err = tx.QueryRow(h.q.upsertRun,
		s.Name, s.StartedAt.UnixMilli(), s.GitSHA, s.Runs, s.WarmupRuns, s.TotalDuration.Nanoseconds(), string(doc),
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.Exec(h.q.deleteResults, runID); err != nil {
		return fmt.Errorf("failed to clear results: %w", err)
	}
	for _, r := range s.Results {
		if _, err := tx.Exec(h.q.insertResult, runID, r.Name, r.Duration.Nanoseconds(), nullCount(r.Bytes), nullCount(r.Elements)); err != nil {
			return fmt.Errorf("failed to save result %s: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// LoadLatest returns nil when the suite has no stored runs.
func (h *historyDB) LoadLatest(suite string) (*benchmark.Suite, error) {
	var doc string
	err := h.db.QueryRow(h.q.latest, suite).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSuite(doc)
}

// LoadAll returns every stored run of suite, oldest first.
func (h *historyDB) LoadAll(suite string) ([]*benchmark.Suite, error) {
	rows, err := h.db.Query(h.q.all, suite)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []*benchmark.Suite{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		s, err := decodeSuite(doc)
		if err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

func (h *historyDB) Suites() ([]string, error) {
	rows, err := h.db.Query(h.q.suites)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (h *historyDB) History(suite, name string, limit int) ([]Point, error) {
	rows, err := h.db.Query(h.q.history, suite, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var startedMs, durationNs int64
		var p Point
		if err := rows.Scan(&startedMs, &p.GitSHA, &durationNs); err != nil {
			return nil, err
		}
		p.StartedAt = time.UnixMilli(startedMs)
		p.Duration = time.Duration(durationNs)
		points = append(points, p)
	}
	return points, rows.Err()
}

func (h *historyDB) Prune(suite string, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	tx, err := h.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(h.q.pruneResults, suite, suite, keep); err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	res, err := tx.Exec(h.q.pruneRuns, suite, suite, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func decodeSuite(doc string) (*benchmark.Suite, error) {
	var s benchmark.Suite
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored suite: %w", err)
	}
	return &s, nil
}

// nullCount stores a throughput denominator; counts above MaxInt64 do not
// occur in practice and are clamped.
func nullCount(n *uint64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	v := *n
	if v > 1<<63-1 {
		v = 1<<63 - 1
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
