package benchmark

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"time"
)

// Runner executes benchmarks one at a time, in the order they are given,
// and collects their results. A Runner is not safe for concurrent use;
// running benchmarks in parallel would distort every measurement.
type Runner struct {
	suite    string
	cfg      RunConfig
	clock    Clock
	reporter Reporter
	logger   *slog.Logger

	baseline    Baseline
	threshold   float64
	hasBaseline bool

	gitSHA   string
	metadata Tags

	start   time.Time
	results []Result
	index   map[string]int
	aborted error
	done    *Suite
}

// Option customises a Runner.
type Option func(*Runner)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithReporter sets the reporter notified as the suite progresses.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBaseline compares every result against b when the Runner finishes.
// threshold is relative: 0.05 flags results more than 5% slower.
func WithBaseline(b Baseline, threshold float64) Option {
	return func(r *Runner) {
		r.baseline = b
		r.threshold = threshold
		r.hasBaseline = true
	}
}

// WithGitSHA records the commit the suite was run against.
func WithGitSHA(sha string) Option {
	return func(r *Runner) { r.gitSHA = sha }
}

// WithMetadata attaches a suite-level key/value pair.
func WithMetadata(key, value string) Option {
	return func(r *Runner) { r.metadata.Set(key, value) }
}

// NewRunner validates cfg and returns a Runner for the named suite.
func NewRunner(suite string, cfg RunConfig, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		suite:    suite,
		cfg:      cfg,
		clock:    SystemClock{},
		reporter: nopReporter{},
		logger:   slog.Default(),
		index:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("suite", suite)
	r.start = r.clock.Now()

	if err := r.reporter.SuiteStart(suite, cfg); err != nil {
		r.logger.Warn("reporter failed at suite start", "error", err)
	}
	return r, nil
}

// Config returns the Runner's configuration.
func (r *Runner) Config() RunConfig { return r.cfg }

// Run executes the benchmark name with body fn. It returns nil when the
// benchmark is filtered out.
func (r *Runner) Run(name string, fn func(*B)) error {
	return r.run(Benchmark{Name: name, Fn: fn}, "")
}

// RunBenchmark executes a registered benchmark, honouring its Ignored flag.
func (r *Runner) RunBenchmark(bm Benchmark) error {
	return r.run(bm, "")
}

// Group runs fn with a Group that prefixes every benchmark name with name.
// Grouping only affects naming. It returns the first error from the group.
func (r *Runner) Group(name string, fn func(g *Group)) error {
	g := &Group{runner: r, prefix: name}
	fn(g)
	return g.err
}

func (r *Runner) run(bm Benchmark, prefix string) error {
	if r.done != nil {
		return ErrRunnerFinished
	}
	if r.aborted != nil {
		return r.aborted
	}

	short := bm.Name
	if prefix != "" {
		short = prefix + "/" + bm.Name
	}
	if !r.cfg.Filter.MatchAny(path.Base(short), bm.Name, short) {
		r.logger.Debug("benchmark filtered out", "benchmark", short, "filter", r.cfg.Filter.String())
		return nil
	}
	if bm.Ignored && !r.cfg.IncludeIgnored {
		r.logger.Debug("benchmark ignored", "benchmark", short)
		return nil
	}
	if bm.Fn == nil {
		return fmt.Errorf("%w: benchmark %q has no body", ErrInvalidConfig, short)
	}

	full := r.suite + "/" + short
	if err := r.reporter.BenchStart(short); err != nil {
		r.logger.Warn("reporter failed at benchmark start", "benchmark", full, "error", err)
	}

	for i := range r.cfg.Warmup {
		if _, err := r.invoke(full, bm.Fn, i, true); err != nil {
			r.aborted = err
			return err
		}
	}

	runs := make([]time.Duration, 0, r.cfg.Runs)
	var last Record
	for i := range r.cfg.Runs {
		rec, err := r.invoke(full, bm.Fn, i, false)
		if err != nil {
			r.aborted = err
			return err
		}
		runs = append(runs, rec.Elapsed)
		last = rec
		r.logger.Debug("measured run", "benchmark", full, "run", i, "elapsed", rec.Elapsed)
	}

	result := Aggregate(full, runs, last)
	r.store(result)

	if err := r.reporter.BenchEnd(result); err != nil {
		r.logger.Warn("reporter failed at benchmark end", "benchmark", full, "error", err)
	}
	return nil
}

// invoke runs the body once with a fresh B.
func (r *Runner) invoke(name string, fn func(*B), iteration int, warmup bool) (rec Record, err error) {
	b := newB(name, iteration, warmup, r.clock, r.logger)
	defer func() {
		if p := recover(); p != nil {
			v, ok := p.(violation)
			if !ok {
				panic(p)
			}
			rec, err = Record{}, v.err
		}
	}()
	fn(b)
	return b.done()
}

func (r *Runner) store(result Result) {
	if i, ok := r.index[result.Name]; ok {
		r.logger.Warn("duplicate benchmark name, replacing earlier result", "benchmark", result.Name)
		r.results[i] = result
		return
	}
	r.index[result.Name] = len(r.results)
	r.results = append(r.results, result)
}

// Finish ends the suite and hands the results to the caller. After Finish
// the Runner accepts no more benchmarks; calling Finish again returns the
// same Suite.
func (r *Runner) Finish() *Suite {
	if r.done != nil {
		return r.done
	}

	s := &Suite{
		Name:          r.suite,
		Results:       slices.Clone(r.results),
		TotalDuration: r.clock.Since(r.start),
		StartedAt:     time.UnixMilli(r.start.UnixMilli()),
		Runs:          r.cfg.Runs,
		WarmupRuns:    r.cfg.Warmup,
		GitSHA:        r.gitSHA,
		Metadata:      r.metadata.Clone(),
	}
	if r.hasBaseline {
		s.Regressions = FindRegressions(s.Results, r.baseline, r.threshold)
	}
	r.done = s

	if err := r.reporter.SuiteEnd(s); err != nil {
		r.logger.Warn("reporter failed at suite end", "error", err)
	}
	return s
}

// Group namespaces benchmarks under a shared prefix.
type Group struct {
	runner *Runner
	prefix string
	err    error
}

// Run executes a benchmark named prefix/name.
func (g *Group) Run(name string, fn func(*B)) error {
	return g.RunBenchmark(Benchmark{Name: name, Fn: fn})
}

// RunBenchmark executes a registered benchmark under the group's prefix.
func (g *Group) RunBenchmark(bm Benchmark) error {
	err := g.runner.run(bm, g.prefix)
	if err != nil && g.err == nil {
		g.err = err
	}
	return err
}

// Group nests another prefix inside this one.
func (g *Group) Group(name string, fn func(g *Group)) error {
	sub := &Group{runner: g.runner, prefix: g.prefix + "/" + name}
	fn(sub)
	if sub.err != nil && g.err == nil {
		g.err = sub.err
	}
	return sub.err
}
