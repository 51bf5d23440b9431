package benchmark

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter captures reporter calls and can fail on demand.
type recordingReporter struct {
	events []string
	ended  []Result
	suite  *Suite
	err    error
}

func (r *recordingReporter) SuiteStart(suite string, cfg RunConfig) error {
	r.events = append(r.events, "start:"+suite)
	return r.err
}

func (r *recordingReporter) BenchStart(name string) error {
	r.events = append(r.events, "bench:"+name)
	return r.err
}

func (r *recordingReporter) BenchEnd(res Result) error {
	r.events = append(r.events, "end:"+res.Name)
	r.ended = append(r.ended, res)
	return r.err
}

func (r *recordingReporter) SuiteEnd(s *Suite) error {
	r.events = append(r.events, "finish:"+s.Name)
	r.suite = s
	return r.err
}

func newTestRunner(t *testing.T, cfg RunConfig, opts ...Option) (*Runner, *ManualClock) {
	t.Helper()
	clk := NewManualClock(time.UnixMilli(1700000000123))
	r, err := NewRunner("suite", cfg, append([]Option{WithClock(clk)}, opts...)...)
	require.NoError(t, err)
	return r, clk
}

// sequenceBody returns a body whose timed region takes the next duration
// from steps on each invocation.
func sequenceBody(clk *ManualClock, steps ...time.Duration) (func(*B), *int) {
	calls := 0
	return func(b *B) {
		d := steps[calls]
		calls++
		b.Measure(func() { clk.Advance(d) })
	}, &calls
}

func TestRunner_WarmupDiscardedAndMedianReported(t *testing.T) {
	r, clk := newTestRunner(t, RunConfig{Runs: 3, Warmup: 1})
	body, calls := sequenceBody(clk, ms(10), ms(30), ms(20), ms(40))

	require.NoError(t, r.Run("op", body))
	suite := r.Finish()

	assert.Equal(t, 4, *calls)
	require.Len(t, suite.Results, 1)
	res := suite.Results[0]
	assert.Equal(t, "suite/op", res.Name)
	assert.Equal(t, []time.Duration{ms(30), ms(20), ms(40)}, res.AllRuns)
	assert.Equal(t, ms(30), res.Duration)
}

func TestRunner_WarmupNeverInfluencesResult(t *testing.T) {
	for warmup := 0; warmup <= 4; warmup++ {
		r, clk := newTestRunner(t, RunConfig{Runs: 2, Warmup: warmup})
		steps := make([]time.Duration, 0, warmup+2)
		for range warmup {
			steps = append(steps, time.Hour)
		}
		steps = append(steps, ms(5), ms(7))
		body, _ := sequenceBody(clk, steps...)

		require.NoError(t, r.Run("op", body))
		res := r.Finish().Results[0]
		assert.Equal(t, []time.Duration{ms(5), ms(7)}, res.AllRuns, "warmup=%d", warmup)
		assert.Equal(t, ms(5), res.Duration, "warmup=%d", warmup)
	}
}

func TestRunner_ThroughputAndTagsFromLastMeasuredRun(t *testing.T) {
	r, clk := newTestRunner(t, RunConfig{Runs: 3, Warmup: 2})
	n := 0
	err := r.Run("copy", func(b *B) {
		n++
		b.SetBytes(uint64(n * 100))
		b.Tag("run", string(rune('0'+n)))
		b.Measure(func() { clk.Advance(ms(n)) })
		b.Tag("phase", "after")
	})
	require.NoError(t, err)

	res := r.Finish().Results[0]
	require.NotNil(t, res.Bytes)
	assert.Equal(t, uint64(500), *res.Bytes)
	assert.Nil(t, res.Elements)
	assert.Equal(t, Tags{{"run", "5"}, {"phase", "after"}}, res.Tags)
}

func TestRunner_ThroughputRate(t *testing.T) {
	r, clk := newTestRunner(t, RunConfig{Runs: 1})
	require.NoError(t, r.Run("write", func(b *B) {
		b.Measure(func() { clk.Advance(ms(250)) })
		b.SetBytes(1_000_000)
	}))

	res := r.Finish().Results[0]
	rate, ok := res.BytesPerSec()
	require.True(t, ok)
	assert.Equal(t, float64(1_000_000)/ms(250).Seconds(), rate)
	assert.Equal(t, 4_000_000.0, rate)
}

func TestRunner_MeasureNotCalled(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1})

	err := r.Run("forgot", func(b *B) {})

	var cv *ContractViolation
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, "suite/forgot", cv.Benchmark)
	assert.Equal(t, 0, cv.Calls)
	assert.Contains(t, err.Error(), "suite/forgot")
	assert.Empty(t, r.Finish().Results)
}

func TestRunner_MeasureCalledTwice(t *testing.T) {
	for _, phase := range []struct {
		name   string
		cfg    RunConfig
		warmup bool
	}{
		{"measured", RunConfig{Runs: 3}, false},
		{"warmup", RunConfig{Runs: 3, Warmup: 1}, true},
	} {
		t.Run(phase.name, func(t *testing.T) {
			r, clk := newTestRunner(t, phase.cfg)
			secondBodyRan := false

			err := r.Run("twice", func(b *B) {
				b.Measure(func() { clk.Advance(ms(1)) })
				b.Measure(func() { secondBodyRan = true })
			})

			var cv *ContractViolation
			require.ErrorAs(t, err, &cv)
			assert.Equal(t, 2, cv.Calls)
			assert.Equal(t, phase.warmup, cv.Warmup)
			assert.False(t, secondBodyRan)
		})
	}
}

func TestRunner_RecordDurationCountsAsMeasure(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1})

	require.NoError(t, r.Run("external", func(b *B) { b.RecordDuration(ms(12)) }))
	err := r.Run("both", func(b *B) {
		b.RecordDuration(ms(1))
		b.Measure(func() {})
	})

	var cv *ContractViolation
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, ms(12), r.Finish().Results[0].Duration)
}

func TestRunner_MeasureErrFailsBenchmark(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 2})
	boom := errors.New("disk full")

	err := r.Run("fsync", func(b *B) {
		_ = b.MeasureErr(func() error { return boom })
	})

	var be *BenchmarkError
	require.ErrorAs(t, err, &be)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "suite/fsync", be.Benchmark)
}

func TestRunner_AbortsAfterFatalError(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1})

	first := r.Run("bad", func(b *B) {})
	require.Error(t, first)

	ran := false
	second := r.Run("good", func(b *B) {
		ran = true
		b.Measure(func() {})
	})
	assert.Equal(t, first, second)
	assert.False(t, ran)
}

func TestRunner_UserPanicPropagates(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1})
	assert.PanicsWithValue(t, "boom", func() {
		_ = r.Run("panics", func(b *B) { panic("boom") })
	})
}

func TestRunner_FilterAndIgnored(t *testing.T) {
	rep := &recordingReporter{}
	r, _ := newTestRunner(t, RunConfig{Runs: 1, Filter: Filter{Pattern: "write*"}}, WithReporter(rep))
	body := func(b *B) { b.Measure(func() {}) }

	for _, name := range []string{"write_file", "write_large_file", "rewrite"} {
		require.NoError(t, r.Run(name, body))
	}
	require.NoError(t, r.RunBenchmark(Benchmark{Name: "write_slow", Ignored: true, Fn: body}))

	suite := r.Finish()
	var names []string
	for _, res := range suite.Results {
		names = append(names, res.Name)
	}
	assert.Equal(t, []string{"suite/write_file", "suite/write_large_file"}, names)
	assert.NotContains(t, rep.events, "bench:rewrite")
	assert.NotContains(t, rep.events, "bench:write_slow")
}

func TestRunner_FilterMatchesLeafOfQualifiedName(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1, Filter: Filter{Pattern: "write*"}})
	body := func(b *B) { b.Measure(func() {}) }

	for _, name := range []string{"io/write_file", "io/read_file", "cpu/rewrite"} {
		require.NoError(t, r.Run(name, body))
	}

	suite := r.Finish()
	require.Len(t, suite.Results, 1)
	assert.Equal(t, "suite/io/write_file", suite.Results[0].Name)
}

func TestRunner_IncludeIgnored(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1, IncludeIgnored: true})
	require.NoError(t, r.RunBenchmark(Benchmark{Name: "slow", Ignored: true, Fn: func(b *B) { b.Measure(func() {}) }}))
	assert.Len(t, r.Finish().Results, 1)
}

func TestRunner_GroupPrefixesNames(t *testing.T) {
	r, clk := newTestRunner(t, RunConfig{Runs: 1, Filter: Filter{Pattern: "write*"}})
	body := func(b *B) { b.Measure(func() { clk.Advance(ms(1)) }) }

	err := r.Group("io", func(g *Group) {
		_ = g.Run("write_file", body)
		_ = g.Run("read_file", body)
		_ = g.Group("nested", func(g *Group) {
			_ = g.Run("write_log", body)
		})
	})
	require.NoError(t, err)

	suite := r.Finish()
	require.Len(t, suite.Results, 2)
	assert.Equal(t, "suite/io/write_file", suite.Results[0].Name)
	assert.Equal(t, "suite/io/nested/write_log", suite.Results[1].Name)
}

func TestRunner_GroupReturnsFirstError(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1})
	err := r.Group("g", func(g *Group) {
		_ = g.Run("bad", func(b *B) {})
	})
	var cv *ContractViolation
	assert.ErrorAs(t, err, &cv)
}

func TestRunner_DuplicateNameOverwrites(t *testing.T) {
	r, clk := newTestRunner(t, RunConfig{Runs: 1})
	run := func(name string, d time.Duration) {
		require.NoError(t, r.Run(name, func(b *B) { b.Measure(func() { clk.Advance(d) }) }))
	}
	run("a", ms(1))
	run("b", ms(2))
	run("a", ms(3))

	suite := r.Finish()
	require.Len(t, suite.Results, 2)
	assert.Equal(t, "suite/a", suite.Results[0].Name)
	assert.Equal(t, ms(3), suite.Results[0].Duration)
	assert.Equal(t, "suite/b", suite.Results[1].Name)
}

func TestRunner_FinishConsumes(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1})
	require.NoError(t, r.Run("a", func(b *B) { b.Measure(func() {}) }))

	first := r.Finish()
	assert.ErrorIs(t, r.Run("b", func(b *B) { b.Measure(func() {}) }), ErrRunnerFinished)
	assert.Same(t, first, r.Finish())
	assert.Len(t, first.Results, 1)
}

func TestRunner_SuiteMetadata(t *testing.T) {
	r, clk := newTestRunner(t, RunConfig{Runs: 2, Warmup: 1}, WithGitSHA("abc123"), WithMetadata("host", "ci-1"))
	require.NoError(t, r.Run("a", func(b *B) { b.Measure(func() { clk.Advance(ms(10)) }) }))

	suite := r.Finish()
	assert.Equal(t, "suite", suite.Name)
	assert.Equal(t, 2, suite.Runs)
	assert.Equal(t, 1, suite.WarmupRuns)
	assert.Equal(t, "abc123", suite.GitSHA)
	assert.Equal(t, int64(1700000000123), suite.StartedAt.UnixMilli())
	assert.Equal(t, ms(30), suite.TotalDuration)
	v, ok := suite.Metadata.Get("host")
	assert.True(t, ok)
	assert.Equal(t, "ci-1", v)
}

func TestRunner_ReporterFailuresKeepResults(t *testing.T) {
	rep := &recordingReporter{err: errors.New("disk gone")}
	r, _ := newTestRunner(t, RunConfig{Runs: 1}, WithReporter(rep))
	require.NoError(t, r.Run("a", func(b *B) { b.Measure(func() {}) }))

	suite := r.Finish()
	assert.Len(t, suite.Results, 1)
	assert.Equal(t, []string{"start:suite", "bench:a", "end:suite/a", "finish:suite"}, rep.events)
	assert.Same(t, suite, rep.suite)
}

func TestRunner_BaselineRegressions(t *testing.T) {
	base := Baseline{"suite/op": ms(100), "suite/steady": ms(100), "suite/removed": ms(1)}
	r, clk := newTestRunner(t, RunConfig{Runs: 1}, WithBaseline(base, 0.05))
	run := func(name string, d time.Duration) {
		require.NoError(t, r.Run(name, func(b *B) { b.Measure(func() { clk.Advance(d) }) }))
	}
	run("op", ms(106))
	run("steady", ms(104))
	run("new", ms(500))

	suite := r.Finish()
	require.Len(t, suite.Regressions, 1)
	reg := suite.Regressions[0]
	assert.Equal(t, "suite/op", reg.Name)
	assert.Equal(t, ms(100), reg.Baseline)
	assert.Equal(t, ms(106), reg.Current)
	assert.InDelta(t, 1.06, reg.Ratio, 1e-12)
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	_, err := NewRunner("s", RunConfig{Runs: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewRunner("s", RunConfig{Runs: 1, Warmup: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunner_NilBody(t *testing.T) {
	r, _ := newTestRunner(t, RunConfig{Runs: 1})
	assert.ErrorIs(t, r.Run("nil", nil), ErrInvalidConfig)
}
