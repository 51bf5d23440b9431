package benchmark

import (
	"slices"
	"time"
)

// Median returns the middle of the sorted durations. For an even count it
// returns the lower of the two middle values, so the reported figure is
// always one that was actually observed.
func Median(runs []time.Duration) time.Duration {
	if len(runs) == 0 {
		return 0
	}
	sorted := slices.Clone(runs)
	slices.Sort(sorted)
	return sorted[(len(sorted)-1)/2]
}

// Aggregate reduces the measured runs of one benchmark to a Result. The
// throughput denominators and tags come from last, the final measured
// invocation.
func Aggregate(name string, runs []time.Duration, last Record) Result {
	return Result{
		Name:     name,
		Duration: Median(runs),
		AllRuns:  slices.Clone(runs),
		Bytes:    last.Bytes,
		Elements: last.Elements,
		Tags:     last.Tags.Clone(),
	}
}
