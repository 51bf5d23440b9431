package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"stress/internal/benchmark"
)

// GitHubActions emits workflow annotations for regressions and a collapsed
// result group. It stays silent outside GitHub Actions.
type GitHubActions struct {
	w       io.Writer
	enabled bool
}

// NewGitHubActions returns a reporter that is enabled when GITHUB_ACTIONS is set.
func NewGitHubActions(w io.Writer) *GitHubActions {
	_, ok := os.LookupEnv("GITHUB_ACTIONS")
	return &GitHubActions{w: w, enabled: ok}
}

func (g *GitHubActions) SuiteStart(string, benchmark.RunConfig) error { return nil }
func (g *GitHubActions) BenchStart(string) error                      { return nil }
func (g *GitHubActions) BenchEnd(benchmark.Result) error              { return nil }

func (g *GitHubActions) SuiteEnd(s *benchmark.Suite) error {
	if !g.enabled {
		return nil
	}
	var b strings.Builder
	for _, reg := range s.Regressions {
		fmt.Fprintf(&b, "::warning title=Performance Regression in %s::Benchmark '%s' is %.1f%% slower than baseline\n",
			s.Name, reg.Name, reg.Percent())
	}
	fmt.Fprintf(&b, "::group::Benchmark Results - %s\n", s.Name)
	for _, r := range s.Results {
		fmt.Fprintf(&b, "  %s: %s\n", r.Name, actionsDuration(r.Duration))
	}
	b.WriteString("::endgroup::\n")
	_, err := io.WriteString(g.w, b.String())
	return err
}

func actionsDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.2fms", d.Seconds()*1000)
}
