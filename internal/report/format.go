package report

import (
	"fmt"
	"strings"
	"time"

	"stress/internal/benchmark"
)

const (
	nameWidth     = 40
	durationWidth = 14
	rule          = "---------------------------------------------------------------"
	doubleRule    = "==============================================================="
)

// FormatDuration renders d in ns, us, ms or s with two decimals.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	switch {
	case secs >= 1:
		return fmt.Sprintf("%.2fs", secs)
	case secs >= 1e-3:
		return fmt.Sprintf("%.2fms", secs*1e3)
	case secs >= 1e-6:
		return fmt.Sprintf("%.2fus", secs*1e6)
	default:
		return fmt.Sprintf("%.2fns", secs*1e9)
	}
}

// FormatThroughput renders the result's rate, or "" when it declared no
// bytes or elements. Bytes take precedence.
func FormatThroughput(r benchmark.Result) string {
	if bps, ok := r.BytesPerSec(); ok {
		switch {
		case bps >= 1e9:
			return fmt.Sprintf("%.2f GB/s", bps/1e9)
		case bps >= 1e6:
			return fmt.Sprintf("%.2f MB/s", bps/1e6)
		case bps >= 1e3:
			return fmt.Sprintf("%.2f KB/s", bps/1e3)
		default:
			return fmt.Sprintf("%.2f B/s", bps)
		}
	}
	if eps, ok := r.ElementsPerSec(); ok {
		switch {
		case eps >= 1e6:
			return fmt.Sprintf("%.2fM ops/s", eps/1e6)
		case eps >= 1e3:
			return fmt.Sprintf("%.2fK ops/s", eps/1e3)
		default:
			return fmt.Sprintf("%.0f ops/s", eps)
		}
	}
	return ""
}

// displayName drops the suite prefix from a full result name.
func displayName(suite, name string) string {
	if suite != "" {
		if short, ok := strings.CutPrefix(name, suite+"/"); ok {
			return short
		}
	}
	return name
}

// resultLine is the fixed-width row shared by the console and the text summary.
func resultLine(suite string, r benchmark.Result) string {
	line := fmt.Sprintf("  %-*s %*s", nameWidth, displayName(suite, r.Name), durationWidth, FormatDuration(r.Duration))
	if tp := FormatThroughput(r); tp != "" {
		line += "  (" + tp + ")"
	}
	return line
}

func formatRuns(runs []time.Duration) string {
	parts := make([]string, len(runs))
	for i, d := range runs {
		parts[i] = FormatDuration(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
