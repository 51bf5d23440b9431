package registry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stress/internal/benchmark"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepping returns a benchmark body whose timed region advances clk by d.
func stepping(clk *benchmark.ManualClock, d time.Duration) func(*benchmark.B) {
	return func(b *benchmark.B) { b.Measure(func() { clk.Advance(d) }) }
}

func writeBaseline(t *testing.T, suite *benchmark.Suite) string {
	t.Helper()
	data, err := benchmark.EncodeSuite(suite)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestExecute_RunsInOrderWithFilter(t *testing.T) {
	clk := benchmark.NewManualClock(time.UnixMilli(1700000000000))
	reg := New().
		Add("write_file", stepping(clk, 10*time.Millisecond)).
		Add("rewrite", stepping(clk, 10*time.Millisecond)).
		AddIgnored("write_huge", stepping(clk, time.Second)).
		Add("write_large_file", stepping(clk, 20*time.Millisecond))

	opts := DefaultOptions("io")
	opts.Workload = "write*"
	opts.Clock = clk
	opts.OutputDir = t.TempDir()

	var out bytes.Buffer
	suite, err := Execute(context.Background(), reg, opts, &out)
	require.NoError(t, err)

	require.Len(t, suite.Results, 2)
	assert.Equal(t, "io/write_file", suite.Results[0].Name)
	assert.Equal(t, "io/write_large_file", suite.Results[1].Name)
	assert.Contains(t, out.String(), "Benchmark Suite: io")
	assert.FileExists(t, filepath.Join(opts.OutputDir, "io", "latest.json"))
	assert.FileExists(t, filepath.Join(opts.OutputDir, "io", "latest.txt"))
}

func TestExecute_Quiet(t *testing.T) {
	clk := benchmark.NewManualClock(time.Now())
	opts := DefaultOptions("q")
	opts.Quiet = true
	opts.Clock = clk

	var out bytes.Buffer
	_, err := Execute(context.Background(), New().Add("a", stepping(clk, time.Millisecond)), opts, &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestExecute_Regressions(t *testing.T) {
	clk := benchmark.NewManualClock(time.UnixMilli(1700000000000))
	baseline := writeBaseline(t, &benchmark.Suite{
		Name: "io",
		Results: []benchmark.Result{
			{Name: "io/slow", Duration: 100 * time.Millisecond},
			{Name: "io/steady", Duration: 100 * time.Millisecond},
		},
	})
	reg := New().
		Add("slow", stepping(clk, 106*time.Millisecond)).
		Add("steady", stepping(clk, 104*time.Millisecond))

	opts := DefaultOptions("io")
	opts.Baseline = baseline
	opts.Clock = clk
	opts.Quiet = true

	suite, err := Execute(context.Background(), reg, opts, nil)
	require.ErrorIs(t, err, ErrRegressions)
	require.Len(t, suite.Regressions, 1)
	assert.Equal(t, "io/slow", suite.Regressions[0].Name)
	assert.InDelta(t, 1.06, suite.Regressions[0].Ratio, 1e-9)
}

func TestExecute_MissingBaselineIsNotFatal(t *testing.T) {
	clk := benchmark.NewManualClock(time.Now())
	opts := DefaultOptions("io")
	opts.Baseline = filepath.Join(t.TempDir(), "missing.json")
	opts.Clock = clk
	opts.Quiet = true

	suite, err := Execute(context.Background(), New().Add("a", stepping(clk, time.Millisecond)), opts, nil)
	require.NoError(t, err)
	assert.Len(t, suite.Results, 1)
	assert.Empty(t, suite.Regressions)
}

func TestExecute_StopsOnContractViolation(t *testing.T) {
	clk := benchmark.NewManualClock(time.Now())
	ranAfter := false
	reg := New().
		Add("good", stepping(clk, time.Millisecond)).
		Add("bad", func(b *benchmark.B) {}).
		Add("after", func(b *benchmark.B) {
			ranAfter = true
			b.Measure(func() {})
		})

	opts := DefaultOptions("io")
	opts.Clock = clk
	opts.Quiet = true

	suite, err := Execute(context.Background(), reg, opts, nil)
	var cv *benchmark.ContractViolation
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, "io/bad", cv.Benchmark)
	assert.False(t, ranAfter)
	require.NotNil(t, suite)
	assert.Len(t, suite.Results, 1)
}

func TestExecute_InvalidConfig(t *testing.T) {
	opts := DefaultOptions("io")
	opts.Runs = 0
	_, err := Execute(context.Background(), New().Add("a", noop), opts, nil)
	assert.ErrorIs(t, err, benchmark.ErrInvalidConfig)
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := DefaultOptions("io")
	opts.Quiet = true

	suite, err := Execute(ctx, New().Add("a", noop), opts, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, suite.Results)
}

func TestExecute_ExtraReporters(t *testing.T) {
	clk := benchmark.NewManualClock(time.Now())
	rec := &countingReporter{}
	opts := DefaultOptions("io")
	opts.Clock = clk
	opts.Quiet = true
	opts.Reporters = []benchmark.Reporter{rec}

	_, err := Execute(context.Background(), New().Add("a", stepping(clk, time.Millisecond)), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.ended)
	assert.True(t, rec.finished)
}

type countingReporter struct {
	ended    int
	finished bool
}

func (c *countingReporter) SuiteStart(string, benchmark.RunConfig) error { return nil }
func (c *countingReporter) BenchStart(string) error                      { return nil }
func (c *countingReporter) BenchEnd(benchmark.Result) error              { c.ended++; return nil }
func (c *countingReporter) SuiteEnd(*benchmark.Suite) error              { c.finished = true; return nil }

func TestList(t *testing.T) {
	var buf bytes.Buffer
	List(&buf, New())
	assert.Equal(t, "No benchmarks registered.\n", buf.String())

	buf.Reset()
	List(&buf, New().Add("a", noop).AddIgnored("b", noop))
	assert.Equal(t, "Registered benchmarks (2):\n  a\n  b (ignored)\n", buf.String())
}
