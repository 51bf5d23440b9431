package benchmark

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Benchmark is one registered benchmark: a name, whether it only runs when
// ignored benchmarks are included, and its body.
type Benchmark struct {
	Name    string
	Ignored bool
	Fn      func(*B)
}

// Result is the outcome of one benchmark.
type Result struct {
	// Name is the full name, "suite/benchmark".
	Name string
	// Duration is the median of AllRuns.
	Duration time.Duration
	// AllRuns holds one duration per measured run, in execution order.
	AllRuns  []time.Duration
	Bytes    *uint64
	Elements *uint64
	Tags     Tags
}

// Rate is a throughput derived from a result's denominator and its duration.
type Rate struct {
	PerSecond float64
	Unit      string
}

const (
	UnitBytes    = "B/s"
	UnitElements = "elem/s"
)

// BytesPerSec returns Bytes divided by Duration in seconds.
func (r Result) BytesPerSec() (float64, bool) {
	return perSecond(r.Bytes, r.Duration)
}

// ElementsPerSec returns Elements divided by Duration in seconds.
func (r Result) ElementsPerSec() (float64, bool) {
	return perSecond(r.Elements, r.Duration)
}

// Throughput returns the byte rate if bytes were declared, otherwise the
// element rate.
func (r Result) Throughput() (Rate, bool) {
	if v, ok := r.BytesPerSec(); ok {
		return Rate{PerSecond: v, Unit: UnitBytes}, true
	}
	if v, ok := r.ElementsPerSec(); ok {
		return Rate{PerSecond: v, Unit: UnitElements}, true
	}
	return Rate{}, false
}

func perSecond(n *uint64, d time.Duration) (float64, bool) {
	if n == nil || d <= 0 {
		return 0, false
	}
	return float64(*n) / d.Seconds(), true
}

// Min returns the fastest measured run.
func (r Result) Min() time.Duration {
	if len(r.AllRuns) == 0 {
		return r.Duration
	}
	m := r.AllRuns[0]
	for _, d := range r.AllRuns[1:] {
		m = min(m, d)
	}
	return m
}

// Max returns the slowest measured run.
func (r Result) Max() time.Duration {
	if len(r.AllRuns) == 0 {
		return r.Duration
	}
	m := r.AllRuns[0]
	for _, d := range r.AllRuns[1:] {
		m = max(m, d)
	}
	return m
}

// Mean returns the arithmetic mean of the measured runs.
func (r Result) Mean() time.Duration {
	if len(r.AllRuns) == 0 {
		return r.Duration
	}
	return time.Duration(stat.Mean(nanos(r.AllRuns), nil))
}

// StdDev returns the sample standard deviation of the measured runs, or
// zero with fewer than two runs.
func (r Result) StdDev() time.Duration {
	if len(r.AllRuns) < 2 {
		return 0
	}
	return time.Duration(stat.StdDev(nanos(r.AllRuns), nil))
}

func nanos(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = float64(d.Nanoseconds())
	}
	return out
}

// Regression is a result that got slower than its baseline by more than the
// configured threshold.
type Regression struct {
	Name     string
	Baseline time.Duration
	Current  time.Duration
	// Ratio is Current / Baseline.
	Ratio float64
}

// Percent returns how much slower the current run is, in percent.
func (r Regression) Percent() float64 {
	return (r.Ratio - 1.0) * 100
}

func (r Regression) String() string {
	return fmt.Sprintf("%s is %.1f%% slower (%s -> %s)", r.Name, r.Percent(), r.Baseline, r.Current)
}

// Suite is everything a finished Runner produced.
type Suite struct {
	Name          string
	Results       []Result
	Regressions   []Regression
	TotalDuration time.Duration
	StartedAt     time.Time
	Runs          int
	WarmupRuns    int
	GitSHA        string
	Metadata      Tags
}

type resultJSON struct {
	Name       string  `json:"name"`
	DurationNS int64   `json:"duration_ns"`
	AllRunsNS  []int64 `json:"all_runs_ns,omitempty"`
	Bytes      *uint64 `json:"bytes"`
	Elements   *uint64 `json:"elements"`
	Tags       Tags    `json:"tags"`
}

type regressionJSON struct {
	Name       string  `json:"name"`
	BaselineNS int64   `json:"baseline_ns"`
	CurrentNS  int64   `json:"current_ns"`
	Ratio      float64 `json:"ratio"`
}

type suiteJSON struct {
	Suite           string           `json:"suite"`
	Results         []Result         `json:"results"`
	TotalDurationNS int64            `json:"total_duration_ns"`
	StartedAt       string           `json:"started_at"`
	Runs            int              `json:"runs"`
	WarmupRuns      int              `json:"warmup_runs"`
	GitSHA          string           `json:"git_sha"`
	Metadata        Tags             `json:"metadata,omitempty"`
	Regressions     []regressionJSON `json:"regressions,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Name:       r.Name,
		DurationNS: r.Duration.Nanoseconds(),
		Bytes:      r.Bytes,
		Elements:   r.Elements,
		Tags:       r.Tags,
	}
	for _, d := range r.AllRuns {
		out.AllRunsNS = append(out.AllRunsNS, d.Nanoseconds())
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.DurationNS < 0 {
		return fmt.Errorf("result %q: negative duration_ns %d", in.Name, in.DurationNS)
	}
	*r = Result{
		Name:     in.Name,
		Duration: time.Duration(in.DurationNS),
		Bytes:    in.Bytes,
		Elements: in.Elements,
		Tags:     in.Tags,
	}
	for _, ns := range in.AllRunsNS {
		r.AllRuns = append(r.AllRuns, time.Duration(ns))
	}
	return nil
}

func (s Suite) MarshalJSON() ([]byte, error) {
	out := suiteJSON{
		Suite:           s.Name,
		Results:         s.Results,
		TotalDurationNS: s.TotalDuration.Nanoseconds(),
		StartedAt:       strconv.FormatInt(s.StartedAt.UnixMilli(), 10),
		Runs:            s.Runs,
		WarmupRuns:      s.WarmupRuns,
		GitSHA:          s.GitSHA,
		Metadata:        s.Metadata,
	}
	if out.Results == nil {
		out.Results = []Result{}
	}
	for _, reg := range s.Regressions {
		out.Regressions = append(out.Regressions, regressionJSON{
			Name:       reg.Name,
			BaselineNS: reg.Baseline.Nanoseconds(),
			CurrentNS:  reg.Current.Nanoseconds(),
			Ratio:      reg.Ratio,
		})
	}
	return json.Marshal(out)
}

func (s *Suite) UnmarshalJSON(data []byte) error {
	var in suiteJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var started time.Time
	if in.StartedAt != "" {
		ms, err := strconv.ParseInt(in.StartedAt, 10, 64)
		if err != nil {
			return fmt.Errorf("suite %q: invalid started_at %q: %w", in.Suite, in.StartedAt, err)
		}
		started = time.UnixMilli(ms)
	}
	*s = Suite{
		Name:          in.Suite,
		Results:       in.Results,
		TotalDuration: time.Duration(in.TotalDurationNS),
		StartedAt:     started,
		Runs:          in.Runs,
		WarmupRuns:    in.WarmupRuns,
		GitSHA:        in.GitSHA,
		Metadata:      in.Metadata,
	}
	for _, reg := range in.Regressions {
		s.Regressions = append(s.Regressions, Regression{
			Name:     reg.Name,
			Baseline: time.Duration(reg.BaselineNS),
			Current:  time.Duration(reg.CurrentNS),
			Ratio:    reg.Ratio,
		})
	}
	return nil
}
