package benchmark

import (
	"fmt"
	"log/slog"
	"time"
)

// Record is what one invocation of a benchmark body produced.
type Record struct {
	Elapsed  time.Duration
	Bytes    *uint64
	Elements *uint64
	Tags     Tags
}

// B is handed to a benchmark body once per invocation. The body must time
// exactly one region through Measure, MeasureErr or RecordDuration. Code
// before and after that call is setup and teardown and is never timed.
type B struct {
	name      string
	iteration int
	warmup    bool
	clock     Clock
	logger    *slog.Logger

	calls  int
	err    error
	record Record
}

func newB(name string, iteration int, warmup bool, clock Clock, logger *slog.Logger) *B {
	return &B{
		name:      name,
		iteration: iteration,
		warmup:    warmup,
		clock:     clock,
		logger:    logger,
	}
}

// violation is the panic payload that unwinds a body which tried to time a
// second region. The Runner recovers it and reports the ContractViolation.
type violation struct {
	err *ContractViolation
}

// Name returns the benchmark's full name.
func (b *B) Name() string { return b.name }

// Iteration returns the zero-based index of this invocation within its phase.
func (b *B) Iteration() int { return b.iteration }

// Warmup reports whether this invocation's timing will be discarded.
func (b *B) Warmup() bool { return b.warmup }

// Measure runs fn once and records how long it took.
func (b *B) Measure(fn func()) {
	b.begin()
	start := b.clock.Now()
	fn()
	b.record.Elapsed = b.clock.Since(start)
}

// MeasureErr is Measure for operations that can fail. A non-nil error is
// returned to the body and fails the benchmark once the body returns.
func (b *B) MeasureErr(fn func() error) error {
	b.begin()
	start := b.clock.Now()
	err := fn()
	b.record.Elapsed = b.clock.Since(start)
	if err != nil {
		b.err = err
	}
	return err
}

// RecordDuration stores a duration timed by the system under test. It takes
// the place of Measure.
func (b *B) RecordDuration(d time.Duration) {
	b.begin()
	b.record.Elapsed = clampElapsed(d)
}

// SetBytes declares how many bytes the timed region processed.
func (b *B) SetBytes(n uint64) {
	b.record.Bytes = &n
}

// SetElements declares how many elements or operations the timed region processed.
func (b *B) SetElements(n uint64) {
	b.record.Elements = &n
}

// Tag attaches metadata to the result.
func (b *B) Tag(key, value string) {
	b.record.Tags.Set(key, value)
}

// Logf writes a debug line attributed to this benchmark.
func (b *B) Logf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...), "benchmark", b.name, "iteration", b.iteration, "warmup", b.warmup)
}

func (b *B) begin() {
	b.calls++
	if b.calls > 1 {
		panic(violation{err: &ContractViolation{Benchmark: b.name, Calls: b.calls, Warmup: b.warmup}})
	}
}

// done checks the exactly-once contract at invocation teardown.
func (b *B) done() (Record, error) {
	if b.calls == 0 {
		return Record{}, &ContractViolation{Benchmark: b.name, Calls: 0, Warmup: b.warmup}
	}
	if b.err != nil {
		return Record{}, &BenchmarkError{Benchmark: b.name, Err: b.err}
	}
	return b.record, nil
}
