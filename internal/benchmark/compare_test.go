package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	base := Baseline{"s/op": ms(100), "s/zero": 0}

	tests := []struct {
		name      string
		result    Result
		threshold float64
		regressed bool
	}{
		{"six percent slower", Result{Name: "s/op", Duration: ms(106)}, 0.05, true},
		{"four percent slower", Result{Name: "s/op", Duration: ms(104)}, 0.05, false},
		{"exactly at threshold", Result{Name: "s/op", Duration: ms(105)}, 0.05, false},
		{"faster", Result{Name: "s/op", Duration: ms(50)}, 0.05, false},
		{"zero threshold any slowdown", Result{Name: "s/op", Duration: ms(100) + 1}, 0, true},
		{"absent from baseline", Result{Name: "s/new", Duration: time.Hour}, 0.05, false},
		{"zero baseline", Result{Name: "s/zero", Duration: time.Hour}, 0.05, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, ok := Compare(tt.result, base, tt.threshold)
			assert.Equal(t, tt.regressed, ok)
			if ok {
				assert.Equal(t, tt.result.Name, reg.Name)
				assert.Equal(t, tt.result.Duration, reg.Current)
			}
		})
	}
}

func TestCompare_BoundaryIsExact(t *testing.T) {
	base := Baseline{"s/op": ms(100)}
	for pct := 1; pct < 100; pct++ {
		threshold := float64(pct) / 100
		at := Result{Name: "s/op", Duration: ms(100 + pct)}
		_, ok := Compare(at, base, threshold)
		assert.False(t, ok, "%dms at threshold %v", 100+pct, threshold)

		above := Result{Name: "s/op", Duration: ms(100+pct) + 1}
		_, ok = Compare(above, base, threshold)
		assert.True(t, ok, "%v at threshold %v", above.Duration, threshold)
	}
}

func TestCompare_RatioAndPercent(t *testing.T) {
	reg, ok := Compare(Result{Name: "s/op", Duration: ms(106)}, Baseline{"s/op": ms(100)}, 0.05)
	require.True(t, ok)
	assert.InDelta(t, 1.06, reg.Ratio, 1e-12)
	assert.InDelta(t, 6.0, reg.Percent(), 1e-9)
	assert.Contains(t, reg.String(), "s/op is 6.0% slower")
}

func TestFindRegressions_KeepsResultOrder(t *testing.T) {
	base := Baseline{"a": ms(10), "b": ms(10), "c": ms(10), "gone": ms(10)}
	results := []Result{
		{Name: "c", Duration: ms(20)},
		{Name: "a", Duration: ms(20)},
		{Name: "b", Duration: ms(10)},
	}

	regs := FindRegressions(results, base, 0.1)
	require.Len(t, regs, 2)
	assert.Equal(t, "c", regs[0].Name)
	assert.Equal(t, "a", regs[1].Name)
}

func TestFindRegressions_EmptyBaseline(t *testing.T) {
	assert.Empty(t, FindRegressions([]Result{{Name: "a", Duration: ms(1)}}, Baseline{}, 0.05))
}

func TestDiff(t *testing.T) {
	base := Baseline{"slow": ms(100), "same": ms(100), "fast": ms(100)}
	results := []Result{
		{Name: "slow", Duration: ms(120)},
		{Name: "same", Duration: ms(103)},
		{Name: "fast", Duration: ms(80)},
		{Name: "new", Duration: ms(7)},
	}

	deltas := Diff(results, base, 0.05)
	require.Len(t, deltas, 4)
	assert.Equal(t, StatusRegression, deltas[0].Status)
	assert.Equal(t, StatusPass, deltas[1].Status)
	assert.Equal(t, StatusImproved, deltas[2].Status)
	assert.Equal(t, StatusNew, deltas[3].Status)

	assert.InDelta(t, 20.0, deltas[0].Percent(), 1e-9)
	assert.InDelta(t, -20.0, deltas[2].Percent(), 1e-9)
	assert.Equal(t, "new: 7ms (new)", deltas[3].String())
	assert.Equal(t, "slow: +20.00%", deltas[0].String())
}

func TestDiff_BoundariesPass(t *testing.T) {
	base := Baseline{"up": ms(100), "down": ms(100)}
	results := []Result{
		{Name: "up", Duration: ms(157)},
		{Name: "down", Duration: ms(43)},
	}

	deltas := Diff(results, base, 0.57)
	require.Len(t, deltas, 2)
	assert.Equal(t, StatusPass, deltas[0].Status)
	assert.Equal(t, StatusPass, deltas[1].Status)
}
