package report

import (
	"errors"

	"stress/internal/benchmark"
)

// Multi fans every event out to each reporter. A failing reporter does not
// stop the others; their errors are joined.
type Multi []benchmark.Reporter

// NewMulti drops nil reporters.
func NewMulti(reporters ...benchmark.Reporter) Multi {
	var m Multi
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m Multi) SuiteStart(suite string, cfg benchmark.RunConfig) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.SuiteStart(suite, cfg))
	}
	return errors.Join(errs...)
}

func (m Multi) BenchStart(name string) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.BenchStart(name))
	}
	return errors.Join(errs...)
}

func (m Multi) BenchEnd(result benchmark.Result) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.BenchEnd(result))
	}
	return errors.Join(errs...)
}

func (m Multi) SuiteEnd(s *benchmark.Suite) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.SuiteEnd(s))
	}
	return errors.Join(errs...)
}
