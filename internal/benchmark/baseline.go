package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Baseline maps full benchmark names to previously recorded durations.
type Baseline map[string]time.Duration

// LoadBaseline reads a results document written by a previous run. Every
// failure wraps ErrBaselineUnavailable.
func LoadBaseline(path string) (Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBaselineUnavailable, err)
	}
	defer f.Close()

	b, err := ParseBaseline(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

type baselineDoc struct {
	Results []struct {
		Name       string `json:"name"`
		DurationNS *int64 `json:"duration_ns"`
	} `json:"results"`
}

// ParseBaseline decodes a results document from r.
func ParseBaseline(r io.Reader) (Baseline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBaselineUnavailable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrBaselineUnavailable)
	}

	var doc baselineDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed document: %w", ErrBaselineUnavailable, err)
	}
	if len(doc.Results) == 0 {
		return nil, fmt.Errorf("%w: document contains no results", ErrBaselineUnavailable)
	}

	b := make(Baseline, len(doc.Results))
	for i, res := range doc.Results {
		if res.Name == "" {
			return nil, fmt.Errorf("%w: result %d has no name", ErrBaselineUnavailable, i)
		}
		if res.DurationNS == nil || *res.DurationNS < 0 {
			return nil, fmt.Errorf("%w: result %q has no valid duration_ns", ErrBaselineUnavailable, res.Name)
		}
		b[res.Name] = time.Duration(*res.DurationNS)
	}
	return b, nil
}

// BaselineFromSuite builds a Baseline from a stored suite.
func BaselineFromSuite(s *Suite) Baseline {
	b := make(Baseline, len(s.Results))
	for _, r := range s.Results {
		b[r.Name] = r.Duration
	}
	return b
}
