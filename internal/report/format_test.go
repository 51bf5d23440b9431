package report

import (
	"testing"
	"time"

	"stress/internal/benchmark"

	"github.com/stretchr/testify/assert"
)

func u64(n uint64) *uint64 { return &n }

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1234567 * time.Microsecond, "1.23s"},
		{2 * time.Second, "2.00s"},
		{123456 * time.Microsecond, "123.46ms"},
		{123456 * time.Nanosecond, "123.46us"},
		{500 * time.Nanosecond, "500.00ns"},
		{0, "0.00ns"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), "input %d", tt.in)
	}
}

func TestFormatThroughput(t *testing.T) {
	tests := []struct {
		name   string
		result benchmark.Result
		want   string
	}{
		{"gigabytes", benchmark.Result{Duration: time.Second, Bytes: u64(1_000_000_000)}, "1.00 GB/s"},
		{"megabytes", benchmark.Result{Duration: 250 * time.Millisecond, Bytes: u64(1_000_000)}, "4.00 MB/s"},
		{"kilobytes", benchmark.Result{Duration: time.Second, Bytes: u64(2048)}, "2.05 KB/s"},
		{"bytes", benchmark.Result{Duration: time.Second, Bytes: u64(12)}, "12.00 B/s"},
		{"mega ops", benchmark.Result{Duration: time.Second, Elements: u64(1_000_000)}, "1.00M ops/s"},
		{"kilo ops", benchmark.Result{Duration: time.Second, Elements: u64(1500)}, "1.50K ops/s"},
		{"ops", benchmark.Result{Duration: time.Second, Elements: u64(500)}, "500 ops/s"},
		{"bytes win", benchmark.Result{Duration: time.Second, Bytes: u64(1_000_000), Elements: u64(500)}, "1.00 MB/s"},
		{"none", benchmark.Result{Duration: time.Second}, ""},
		{"zero duration", benchmark.Result{Bytes: u64(1)}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatThroughput(tt.result))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "write", displayName("io", "io/write"))
	assert.Equal(t, "group/write", displayName("io", "io/group/write"))
	assert.Equal(t, "other/write", displayName("io", "other/write"))
	assert.Equal(t, "write", displayName("", "write"))
}
