package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"stress/internal/benchmark"

	"github.com/charmbracelet/glamour"
)

// Markdown renders a suite as a markdown table.
func Markdown(s *benchmark.Suite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Benchmark Suite: %s\n\n", s.Name)
	if s.GitSHA != "" {
		fmt.Fprintf(&b, "Commit `%s`, ", s.GitSHA)
	}
	fmt.Fprintf(&b, "%d runs, %d warmup\n\n", s.Runs, s.WarmupRuns)

	b.WriteString("| Benchmark | Median | Min | Max | Throughput |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, r := range s.Results {
		tp := FormatThroughput(r)
		if tp == "" {
			tp = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			displayName(s.Name, r.Name), FormatDuration(r.Duration),
			FormatDuration(r.Min()), FormatDuration(r.Max()), tp)
	}

	if len(s.Regressions) > 0 {
		b.WriteString("\n### Regressions\n\n")
		for _, reg := range s.Regressions {
			fmt.Fprintf(&b, "- **%s**: %s -> %s (+%.1f%%)\n",
				reg.Name, FormatDuration(reg.Baseline), FormatDuration(reg.Current), reg.Percent())
		}
	}
	return b.String()
}

// RenderTerminal renders markdown for a terminal, falling back to the raw
// text when glamour cannot render it.
func RenderTerminal(md string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// MarkdownSummary appends the suite table to a job summary file such as
// $GITHUB_STEP_SUMMARY.
type MarkdownSummary struct {
	path string
}

// NewMarkdownSummary returns nil when path is empty.
func NewMarkdownSummary(path string) *MarkdownSummary {
	if path == "" {
		return nil
	}
	return &MarkdownSummary{path: path}
}

func (m *MarkdownSummary) SuiteStart(string, benchmark.RunConfig) error { return nil }
func (m *MarkdownSummary) BenchStart(string) error                      { return nil }
func (m *MarkdownSummary) BenchEnd(benchmark.Result) error              { return nil }

func (m *MarkdownSummary) SuiteEnd(s *benchmark.Suite) error {
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open step summary: %w", err)
	}
	defer f.Close()
	_, err = io.WriteString(f, Markdown(s)+"\n")
	return err
}
