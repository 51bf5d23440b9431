package main

import (
	"encoding/json"
	"fmt"
	"os"

	"stress/internal/benchmark"
	"stress/internal/config"
)

// loadSuite reads a results document. Without a path it loads the latest
// results of the configured suite from the output directory.
func loadSuite(opts config.Options, path string) (*benchmark.Suite, error) {
	if path == "" {
		store, err := benchmark.NewFileStore(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		s, err := store.LoadLatest(opts.Suite)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("no results for suite %q in %s; run 'stress run' first", opts.Suite, opts.OutputDir)
		}
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s benchmark.Suite
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}
