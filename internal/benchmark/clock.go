package benchmark

import (
	"sync"
	"time"
)

// Clock is the time source used to bracket a timed region.
type Clock interface {
	Now() time.Time
	// Since returns the time elapsed since start, never negative.
	Since(start time.Time) time.Duration
}

// SystemClock reads the monotonic clock carried by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Since(start time.Time) time.Duration {
	return clampElapsed(time.Since(start))
}

// ManualClock only moves when Advance is called. It lets simulated
// workloads produce exact durations.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Since(start time.Time) time.Duration {
	return clampElapsed(c.Now().Sub(start))
}

// Advance moves the clock forward by d. Negative values move it backwards,
// which Since reports as zero elapsed time.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func clampElapsed(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
