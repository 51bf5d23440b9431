package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stress/internal/benchmark"
)

// LatestSummary is the text companion of benchmark.LatestFile.
const LatestSummary = "latest.txt"

// JSONFile writes the results document and its text summary when a suite
// ends: <dir>/<suite>/<started_at>.json and .txt, plus latest copies.
type JSONFile struct {
	store  *benchmark.FileStore
	logger *slog.Logger
}

// NewJSONFile creates dir if needed.
func NewJSONFile(dir string) (*JSONFile, error) {
	store, err := benchmark.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &JSONFile{store: store, logger: slog.Default()}, nil
}

// Store exposes the underlying file store for reading results back.
func (j *JSONFile) Store() *benchmark.FileStore { return j.store }

func (j *JSONFile) SuiteStart(string, benchmark.RunConfig) error { return nil }
func (j *JSONFile) BenchStart(string) error                      { return nil }
func (j *JSONFile) BenchEnd(benchmark.Result) error              { return nil }

func (j *JSONFile) SuiteEnd(s *benchmark.Suite) error {
	if err := j.store.Save(s); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	jsonPath := j.store.Path(s)
	j.logger.Info("Results written", "path", jsonPath)

	summary := []byte(Summary(s))
	txtPath := strings.TrimSuffix(jsonPath, ".json") + ".txt"
	if err := os.WriteFile(txtPath, summary, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	latest := filepath.Join(j.store.SuiteDir(s.Name), LatestSummary)
	if err := os.WriteFile(latest, summary, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
