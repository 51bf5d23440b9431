package benchmark

import (
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Compare checks one result against the baseline. It reports a Regression
// only when current/baseline exceeds 1+threshold; a ratio exactly at the
// threshold passes. Names missing from the baseline, and baseline entries
// of zero duration, never regress.
func Compare(current Result, b Baseline, threshold float64) (Regression, bool) {
	base, ok := b[current.Name]
	if !ok || base <= 0 {
		return Regression{}, false
	}
	if exceeds(current.Duration, base, threshold) {
		return Regression{
			Name:     current.Name,
			Baseline: base,
			Current:  current.Duration,
			Ratio:    float64(current.Duration) / float64(base),
		}, true
	}
	return Regression{}, false
}

// exceeds reports whether (cur-base)/base > threshold. The threshold is
// taken as the decimal it prints as, so 100ms against 136ms at 0.36 sits
// exactly on the boundary.
func exceeds(cur, base time.Duration, threshold float64) bool {
	return changeVs(cur, base, threshold) > 0
}

// changeVs compares the relative change (cur-base)/base with threshold and
// returns -1, 0 or +1.
func changeVs(cur, base time.Duration, threshold float64) int {
	limit, ok := new(big.Rat).SetString(strconv.FormatFloat(threshold, 'g', -1, 64))
	if !ok {
		ratio := float64(cur) / float64(base)
		switch {
		case ratio > 1.0+threshold:
			return 1
		case ratio < 1.0+threshold:
			return -1
		}
		return 0
	}
	change := new(big.Rat).SetFrac(big.NewInt(int64(cur-base)), big.NewInt(int64(base)))
	return change.Cmp(limit)
}

// FindRegressions compares every result and returns the regressions in
// result order. Baseline entries without a current result are ignored.
func FindRegressions(results []Result, b Baseline, threshold float64) []Regression {
	var out []Regression
	for _, r := range results {
		if reg, ok := Compare(r, b, threshold); ok {
			out = append(out, reg)
		}
	}
	return out
}

// Status classifies a Delta.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusPass       Status = "PASS"
	StatusRegression Status = "FAIL"
	StatusImproved   Status = "IMPR"
)

// Delta is one row of a side-by-side comparison.
type Delta struct {
	Name     string
	Current  time.Duration
	Baseline time.Duration
	// Ratio is Current/Baseline, zero for new benchmarks.
	Ratio  float64
	Status Status
}

// Percent returns the relative change in percent.
func (d Delta) Percent() float64 {
	if d.Ratio == 0 {
		return 0
	}
	return (d.Ratio - 1.0) * 100
}

func (d Delta) String() string {
	if d.Status == StatusNew {
		return fmt.Sprintf("%s: %s (new)", d.Name, d.Current)
	}
	return fmt.Sprintf("%s: %+.2f%%", d.Name, d.Percent())
}

// Diff lines up every result with its baseline entry. Results at least
// threshold faster than their baseline are marked improved.
func Diff(results []Result, b Baseline, threshold float64) []Delta {
	deltas := make([]Delta, 0, len(results))
	for _, r := range results {
		d := Delta{Name: r.Name, Current: r.Duration, Status: StatusNew}
		if base, ok := b[r.Name]; ok && base > 0 {
			d.Baseline = base
			d.Ratio = float64(r.Duration) / float64(base)
			switch {
			case exceeds(r.Duration, base, threshold):
				d.Status = StatusRegression
			case changeVs(r.Duration, base, -threshold) < 0:
				d.Status = StatusImproved
			default:
				d.Status = StatusPass
			}
		}
		deltas = append(deltas, d)
	}
	return deltas
}
