package db

import (
	"time"

	"stress/internal/benchmark"
)

// Point is one benchmark's median in one stored run.
type Point struct {
	StartedAt time.Time
	GitSHA    string
	Duration  time.Duration
}

// Store keeps the history of finished suites in a database.
type Store interface {
	benchmark.Store
	// Suites lists the suite names that have stored runs.
	Suites() ([]string, error)
	// History returns the most recent medians of one benchmark, newest first.
	History(suite, name string, limit int) ([]Point, error)
	// Prune keeps the newest keep runs of suite and deletes the rest.
	Prune(suite string, keep int) (int64, error)
	Close() error
}
