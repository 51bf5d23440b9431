package benchmark

import "fmt"

// RunConfig is the resolved configuration of one Runner. It is copied into
// the Runner at construction and never changes afterwards.
type RunConfig struct {
	// Runs is the number of measured invocations per benchmark.
	Runs int
	// Warmup is the number of discarded invocations before measuring.
	Warmup         int
	Filter         Filter
	IncludeIgnored bool
}

// DefaultRunConfig returns a single measured run without warmup.
func DefaultRunConfig() RunConfig {
	return RunConfig{Runs: 1}
}

// Validate reports configuration errors wrapped in ErrInvalidConfig.
func (c RunConfig) Validate() error {
	if c.Runs < 1 {
		return fmt.Errorf("%w: measured run count must be at least 1, got %d", ErrInvalidConfig, c.Runs)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("%w: warmup run count must not be negative, got %d", ErrInvalidConfig, c.Warmup)
	}
	return nil
}
