package benchmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Store persists finished suites.
type Store interface {
	Save(s *Suite) error
	// LoadLatest returns the most recent suite, or nil if none was saved.
	LoadLatest(suite string) (*Suite, error)
	LoadAll(suite string) ([]*Suite, error)
}

// LatestFile is the name of the copy of the most recent results in a suite directory.
const LatestFile = "latest.json"

// FileStore keeps one JSON document per run under dir/<suite>/<started_at>.json
// and mirrors the newest one to latest.json.
type FileStore struct {
	dir string
}

// NewFileStore ensures dir exists and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// SuiteDir returns the directory holding a suite's documents.
func (s *FileStore) SuiteDir(suite string) string {
	return filepath.Join(s.dir, SanitizeName(suite))
}

// Path returns where a run's document is written.
func (s *FileStore) Path(suite *Suite) string {
	return filepath.Join(s.SuiteDir(suite.Name), strconv.FormatInt(suite.StartedAt.UnixMilli(), 10)+".json")
}

func (s *FileStore) Save(suite *Suite) error {
	dir := s.SuiteDir(suite.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := EncodeSuite(suite)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path(suite), data, 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, LatestFile), data, 0644)
}

func (s *FileStore) LoadLatest(suite string) (*Suite, error) {
	out, err := readSuite(filepath.Join(s.SuiteDir(suite), LatestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

func (s *FileStore) LoadAll(suite string) ([]*Suite, error) {
	entries, err := os.ReadDir(s.SuiteDir(suite))
	if err != nil {
		if os.IsNotExist(err) {
			return []*Suite{}, nil
		}
		return nil, err
	}

	var runs []*Suite
	for _, e := range entries {
		if e.IsDir() || e.Name() == LatestFile || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		run, err := readSuite(filepath.Join(s.SuiteDir(suite), e.Name()))
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs, nil
}

func readSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Suite
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return &s, nil
}

// EncodeSuite renders a suite as indented JSON. The output depends only on
// the suite, so encoding the same suite twice gives identical bytes.
func EncodeSuite(s *Suite) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal suite %s: %w", s.Name, err)
	}
	return append(data, '\n'), nil
}

// SanitizeName makes a suite name safe to use as a directory name.
func SanitizeName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
