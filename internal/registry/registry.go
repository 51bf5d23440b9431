package registry

import (
	"fmt"
	"os/exec"

	"stress/internal/benchmark"

	"github.com/kballard/go-shellquote"
)

// Registry is the ordered list of benchmarks a binary knows about.
// Benchmarks run in the order they were added.
type Registry struct {
	entries []benchmark.Benchmark
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add registers a benchmark that runs by default.
func (r *Registry) Add(name string, fn func(*benchmark.B)) *Registry {
	return r.Register(benchmark.Benchmark{Name: name, Fn: fn})
}

// AddIgnored registers a benchmark that only runs with --include-ignored.
func (r *Registry) AddIgnored(name string, fn func(*benchmark.B)) *Registry {
	return r.Register(benchmark.Benchmark{Name: name, Ignored: true, Fn: fn})
}

// Register appends bm.
func (r *Registry) Register(bm benchmark.Benchmark) *Registry {
	r.entries = append(r.entries, bm)
	return r
}

// AddCommand registers a benchmark that times an external command line.
func (r *Registry) AddCommand(name, cmdline string, ignored bool) error {
	bm, err := CommandBenchmark(name, cmdline)
	if err != nil {
		return err
	}
	bm.Ignored = ignored
	r.Register(bm)
	return nil
}

// Benchmarks returns a copy of the registered benchmarks.
func (r *Registry) Benchmarks() []benchmark.Benchmark {
	out := make([]benchmark.Benchmark, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

func (r *Registry) Len() int { return len(r.entries) }

// execCommand allows mocking in tests.
var execCommand = exec.Command

// CommandBenchmark builds a benchmark whose timed region runs cmdline to
// completion. The command line is split with shell quoting rules but is not
// run through a shell.
func CommandBenchmark(name, cmdline string) (benchmark.Benchmark, error) {
	argv, err := shellquote.Split(cmdline)
	if err != nil {
		return benchmark.Benchmark{}, fmt.Errorf("benchmark %q: invalid command %q: %w", name, cmdline, err)
	}
	if len(argv) == 0 {
		return benchmark.Benchmark{}, fmt.Errorf("benchmark %q: empty command", name)
	}

	return benchmark.Benchmark{
		Name: name,
		Fn: func(b *benchmark.B) {
			cmd := execCommand(argv[0], argv[1:]...)
			b.Tag("command", cmdline)
			_ = b.MeasureErr(func() error {
				if out, err := cmd.CombinedOutput(); err != nil {
					return fmt.Errorf("%w: %s", err, out)
				}
				return nil
			})
		},
	}, nil
}
