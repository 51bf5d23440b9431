package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"stress/internal/benchmark"
	"stress/internal/report"
)

// ErrRegressions is returned by Execute when at least one benchmark got
// slower than its baseline by more than the threshold.
var ErrRegressions = errors.New("performance regressions detected")

// Options controls one harness run.
type Options struct {
	Suite          string
	Workload       string
	Filter         string
	Runs           int
	Warmup         int
	IncludeIgnored bool
	Verbose        bool
	Quiet          bool
	List           bool
	OutputDir      string
	Baseline       string
	Threshold      float64
	GitSHA         string
	ShowAllRuns    bool
	// Metadata is attached to the suite in order.
	Metadata benchmark.Tags

	// ConsoleOptions configure the console reporter.
	ConsoleOptions []report.ConsoleOption
	// Reporters are notified in addition to the console and JSON reporters.
	Reporters []benchmark.Reporter
	Logger    *slog.Logger
	Clock     benchmark.Clock
}

// DefaultOptions matches a bare invocation: one run, no warmup, 5% threshold.
func DefaultOptions(suite string) Options {
	return Options{Suite: suite, Runs: 1, Threshold: 0.05}
}

// RunConfig extracts the core runner configuration.
func (o Options) RunConfig() benchmark.RunConfig {
	return benchmark.RunConfig{
		Runs:           o.Runs,
		Warmup:         o.Warmup,
		Filter:         benchmark.Filter{Pattern: o.Workload, Substring: o.Filter},
		IncludeIgnored: o.IncludeIgnored,
	}
}

// List writes the registered benchmark names.
func List(w io.Writer, reg *Registry) {
	if reg.Len() == 0 {
		fmt.Fprintln(w, "No benchmarks registered.")
		return
	}
	fmt.Fprintf(w, "Registered benchmarks (%d):\n", reg.Len())
	for _, bm := range reg.Benchmarks() {
		if bm.Ignored {
			fmt.Fprintf(w, "  %s (ignored)\n", bm.Name)
			continue
		}
		fmt.Fprintf(w, "  %s\n", bm.Name)
	}
}

// Execute runs every registered benchmark in order and finishes the suite.
// The suite is returned even when an error is, so partial results can still
// be inspected. A contract violation stops the remaining benchmarks.
func Execute(ctx context.Context, reg *Registry, opts Options, out io.Writer) (*benchmark.Suite, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	runnerOpts := []benchmark.Option{benchmark.WithLogger(logger), benchmark.WithGitSHA(opts.GitSHA)}
	if opts.Clock != nil {
		runnerOpts = append(runnerOpts, benchmark.WithClock(opts.Clock))
	}
	for _, tag := range opts.Metadata {
		runnerOpts = append(runnerOpts, benchmark.WithMetadata(tag.Key, tag.Value))
	}

	if opts.Baseline != "" {
		baseline, err := benchmark.LoadBaseline(opts.Baseline)
		if err != nil {
			logger.Warn("Baseline unavailable, skipping regression checks", "path", opts.Baseline, "error", err)
		} else {
			runnerOpts = append(runnerOpts, benchmark.WithBaseline(baseline, opts.Threshold))
		}
	}

	reporters, err := buildReporters(opts, out)
	if err != nil {
		return nil, err
	}
	runnerOpts = append(runnerOpts, benchmark.WithReporter(reporters))

	runner, err := benchmark.NewRunner(opts.Suite, opts.RunConfig(), runnerOpts...)
	if err != nil {
		return nil, err
	}

	var runErr error
	for _, bm := range reg.Benchmarks() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := runner.RunBenchmark(bm); err != nil {
			runErr = err
			break
		}
	}

	suite := runner.Finish()
	if runErr != nil {
		return suite, runErr
	}
	if len(suite.Results) == 0 {
		if opts.Workload != "" || opts.Filter != "" {
			logger.Warn("No benchmarks matched the workload pattern", "workload", opts.Workload, "filter", opts.Filter)
		} else {
			logger.Warn("No benchmarks ran")
		}
	}
	if n := len(suite.Regressions); n > 0 {
		return suite, fmt.Errorf("%w: %d benchmark(s) slower than baseline", ErrRegressions, n)
	}
	return suite, nil
}

func buildReporters(opts Options, out io.Writer) (report.Multi, error) {
	var reps []benchmark.Reporter
	if !opts.Quiet && out != nil {
		consoleOpts := append([]report.ConsoleOption{report.WithAllRuns(opts.ShowAllRuns || opts.Verbose)}, opts.ConsoleOptions...)
		reps = append(reps, report.NewConsole(out, consoleOpts...))
	}
	if opts.OutputDir != "" {
		j, err := report.NewJSONFile(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		reps = append(reps, j)
	}
	reps = append(reps, opts.Reporters...)
	return report.NewMulti(reps...), nil
}
