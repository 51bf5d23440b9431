package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"stress/internal/benchmark"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Console prints one line per finished benchmark. Nothing is printed when a
// benchmark starts, so a failing benchmark never leaves a half-written line.
type Console struct {
	mu          sync.Mutex
	w           io.Writer
	suite       string
	showAllRuns bool
	styles      styles
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console, *lipgloss.Renderer)

// WithAllRuns prints the individual measured runs under each result.
func WithAllRuns(show bool) ConsoleOption {
	return func(c *Console, _ *lipgloss.Renderer) { c.showAllRuns = show }
}

// WithColorProfile forces a colour profile, e.g. termenv.Ascii for --no-color.
func WithColorProfile(p termenv.Profile) ConsoleOption {
	return func(_ *Console, r *lipgloss.Renderer) { r.SetColorProfile(p) }
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{w: w}
	renderer := lipgloss.NewRenderer(w)
	for _, opt := range opts {
		opt(c, renderer)
	}
	c.styles = newStyles(renderer)
	return c
}

func (c *Console) SuiteStart(suite string, cfg benchmark.RunConfig) error {
	c.mu.Lock()
	c.suite = suite
	c.mu.Unlock()

	header := strings.Join([]string{
		rule,
		c.styles.banner.Render("Benchmark Suite: " + suite),
		fmt.Sprintf("Runs: %d, Warmup: %d", cfg.Runs, cfg.Warmup),
		rule,
	}, "\n")
	return c.writeLine(header + "\n")
}

func (c *Console) BenchStart(string) error { return nil }

func (c *Console) BenchEnd(r benchmark.Result) error {
	c.mu.Lock()
	suite := c.suite
	c.mu.Unlock()

	line := fmt.Sprintf("  %s %*s",
		c.styles.name.Render(fmt.Sprintf("%-*s", nameWidth, displayName(suite, r.Name))),
		durationWidth, FormatDuration(r.Duration))
	if tp := FormatThroughput(r); tp != "" {
		line += "  " + c.styles.throughput.Render("("+tp+")")
	}
	if c.showAllRuns && len(r.AllRuns) > 1 {
		line += "\n      " + c.styles.runs.Render("runs: "+formatRuns(r.AllRuns))
	}
	return c.writeLine(line)
}

func (c *Console) SuiteEnd(s *benchmark.Suite) error {
	lines := []string{rule}
	for _, reg := range s.Regressions {
		lines = append(lines, c.styles.regression.Render("REGRESSION "+reg.String()))
	}
	lines = append(lines,
		fmt.Sprintf("Completed %d benchmarks in %s", len(s.Results), FormatDuration(s.TotalDuration)),
		rule,
	)
	return c.writeLine(strings.Join(lines, "\n") + "\n")
}

// writeLine emits msg and its newline in a single Write.
func (c *Console) writeLine(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, msg+"\n")
	return err
}
