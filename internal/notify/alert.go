package notify

import (
	"fmt"
	"strings"

	"stress/internal/benchmark"
)

// Alert describes the regressions of one finished suite.
type Alert struct {
	Suite       string
	GitSHA      string
	Regressions []benchmark.Regression
}

// NewAlert returns the alert for s, or false when s has no regressions.
func NewAlert(s *benchmark.Suite) (Alert, bool) {
	if s == nil || len(s.Regressions) == 0 {
		return Alert{}, false
	}
	return Alert{Suite: s.Name, GitSHA: s.GitSHA, Regressions: s.Regressions}, true
}

// Title is the one-line headline of the alert.
func (a Alert) Title() string {
	title := fmt.Sprintf("%d performance regression(s) in %s", len(a.Regressions), a.Suite)
	if a.GitSHA != "" {
		title += " at " + shortSHA(a.GitSHA)
	}
	return title
}

// Text renders the alert as plain text, one regression per line.
func (a Alert) Text() string {
	var b strings.Builder
	b.WriteString(a.Title())
	for _, reg := range a.Regressions {
		b.WriteString("\n- ")
		b.WriteString(reg.String())
	}
	return b.String()
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
