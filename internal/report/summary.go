package report

import (
	"fmt"
	"strconv"
	"strings"

	"stress/internal/benchmark"
)

// Summary renders the human-readable companion of a results document.
// The same suite always renders to the same text.
func Summary(s *benchmark.Suite) string {
	var b strings.Builder
	b.WriteString(doubleRule + "\n")
	fmt.Fprintf(&b, "Benchmark Suite: %s\n", s.Name)
	b.WriteString(doubleRule + "\n\n")

	fmt.Fprintf(&b, "Completed: %s\n", strconv.FormatInt(s.StartedAt.UnixMilli(), 10))
	if s.GitSHA != "" {
		fmt.Fprintf(&b, "Git SHA:   %s\n", s.GitSHA)
	}
	fmt.Fprintf(&b, "Runs:      %d (warmup %d)\n", s.Runs, s.WarmupRuns)
	b.WriteString("\n")

	b.WriteString("Results:\n")
	b.WriteString(rule + "\n")
	for _, r := range s.Results {
		b.WriteString(resultLine(s.Name, r) + "\n")
	}
	b.WriteString(rule + "\n")

	if len(s.Regressions) > 0 {
		b.WriteString("Regressions:\n")
		for _, reg := range s.Regressions {
			fmt.Fprintf(&b, "  %s\n", reg)
		}
		b.WriteString(rule + "\n")
	}

	fmt.Fprintf(&b, "Total time: %s\n", FormatDuration(s.TotalDuration))
	fmt.Fprintf(&b, "Benchmarks: %d\n", len(s.Results))
	b.WriteString(doubleRule + "\n")
	return b.String()
}
