package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stress/internal/benchmark"
	"stress/internal/telemetry"

	"github.com/spf13/pflag"
)

// ParseArgs parses the flags understood by a stress binary.
func ParseArgs(suite string, args []string) (Options, error) {
	opts := DefaultOptions(suite)

	fs := pflag.NewFlagSet(suite, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Workload, "workload", "", "Filter benchmarks by glob pattern")
	fs.StringVar(&opts.Filter, "filter", "", "Filter benchmarks by substring")
	fs.IntVar(&opts.Runs, "runs", opts.Runs, "Number of measurement runs")
	fs.IntVar(&opts.Warmup, "warmup", 0, "Number of warmup runs")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "Quiet mode")
	fs.BoolVar(&opts.IncludeIgnored, "include-ignored", false, "Include ignored benchmarks")
	fs.BoolVar(&opts.List, "list", false, "List benchmarks without running")
	fs.StringVar(&opts.OutputDir, "output-dir", "", "Output directory for JSON results")
	fs.StringVar(&opts.Baseline, "baseline", "", "Baseline JSON for regression comparison")
	fs.Float64Var(&opts.Threshold, "threshold", opts.Threshold, "Regression threshold")
	fs.StringVar(&opts.GitSHA, "git-sha", "", "Commit recorded with the results")

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", benchmark.ErrInvalidConfig, err)
	}
	if opts.Threshold < 0 {
		return opts, fmt.Errorf("%w: threshold must not be negative, got %g", benchmark.ErrInvalidConfig, opts.Threshold)
	}
	if opts.Quiet {
		opts.Verbose = false
	}
	return opts, nil
}

// Usage describes the flags accepted by ParseArgs.
func Usage() string {
	return strings.TrimLeft(`
USAGE:
    <binary> [OPTIONS]

OPTIONS:
    --workload <PATTERN>   Filter benchmarks by glob pattern
    --filter <TEXT>        Filter benchmarks by substring
    --runs <N>             Number of measurement runs (default: 1)
    --warmup <N>           Number of warmup runs (default: 0)
    -v, --verbose          Verbose output
    -q, --quiet            Quiet mode
    --include-ignored      Include ignored benchmarks
    --list                 List benchmarks without running
    --output-dir <PATH>    Output directory for JSON results
    --baseline <PATH>      Baseline JSON for regression comparison
    --threshold <FLOAT>    Regression threshold (default: 0.05)
    --git-sha <SHA>        Commit recorded with the results
`, "\n")
}

// exit allows tests to intercept process termination.
var exit = os.Exit

// Main is the entry point of a stress binary: it parses os.Args, runs reg
// and exits 0 on success, 1 on failure or regression, 2 on bad arguments.
func Main(reg *Registry) {
	exit(run(context.Background(), SuiteName(os.Args[0]), reg, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, suite string, reg *Registry, args []string, stdout, stderr io.Writer) int {
	opts, err := ParseArgs(suite, args)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(stderr, Usage())
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, Usage())
		return 2
	}

	if opts.List {
		List(stdout, reg)
		return 0
	}

	telemetry.InitLogger(opts.Verbose, "")
	suiteResult, err := Execute(ctx, reg, opts, stdout)
	switch {
	case errors.Is(err, ErrRegressions):
		fmt.Fprintf(stderr, "\n%d regression(s) detected!\n", len(suiteResult.Regressions))
		for _, r := range suiteResult.Regressions {
			fmt.Fprintf(stderr, "  %s is %.1f%% slower\n", r.Name, r.Percent())
		}
		return 1
	case errors.Is(err, benchmark.ErrInvalidConfig):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// SuiteName derives a suite name from an executable path: the file name
// without extension, with underscores turned into hyphens.
func SuiteName(exe string) string {
	name := strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "stress"
	}
	return strings.ReplaceAll(name, "_", "-")
}
