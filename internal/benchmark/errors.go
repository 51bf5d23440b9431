package benchmark

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by NewRunner before any benchmark executes.
	ErrInvalidConfig = errors.New("invalid run configuration")
	// ErrRunnerFinished is returned by Run after Finish has been called.
	ErrRunnerFinished = errors.New("runner already finished")
	// ErrBaselineUnavailable wraps every baseline load failure. It is recoverable:
	// callers skip regression checks and carry on.
	ErrBaselineUnavailable = errors.New("baseline unavailable")
)

// ContractViolation reports a benchmark body that did not time exactly one region.
type ContractViolation struct {
	Benchmark string
	Calls     int
	Warmup    bool
}

func (e *ContractViolation) Error() string {
	phase := "measured"
	if e.Warmup {
		phase = "warmup"
	}
	if e.Calls == 0 {
		return fmt.Sprintf("benchmark %q did not call Measure during a %s run; every benchmark must measure exactly one operation", e.Benchmark, phase)
	}
	return fmt.Sprintf("benchmark %q called Measure more than once during a %s run; every benchmark must measure exactly one operation", e.Benchmark, phase)
}

// BenchmarkError wraps an error returned from a MeasureErr body.
type BenchmarkError struct {
	Benchmark string
	Err       error
}

func (e *BenchmarkError) Error() string {
	return fmt.Sprintf("benchmark %q failed: %v", e.Benchmark, e.Err)
}

func (e *BenchmarkError) Unwrap() error { return e.Err }
