package workloads

import (
	"runtime"
	"slices"
	"strconv"

	"stress/internal/benchmark"
)

var sink any

// AllocateBuffer times allocating and touching a size byte buffer.
func AllocateBuffer(size int) func(*benchmark.B) {
	return func(b *benchmark.B) {
		b.SetBytes(uint64(size))
		b.Measure(func() {
			buf := make([]byte, size)
			buf[0] = 1
			buf[size-1] = 1
			sink = buf
		})
		sink = nil
	}
}

// MemoryCopy times copying a size byte buffer into a new one.
func MemoryCopy(size int) func(*benchmark.B) {
	return func(b *benchmark.B) {
		src := make([]byte, size)
		for i := range src {
			src[i] = 1
		}
		b.SetBytes(uint64(size))
		b.Measure(func() {
			sink = slices.Clone(src)
		})
		sink = nil
	}
}

// SortVector times sorting n pseudo-random integers.
func SortVector(n int) func(*benchmark.B) {
	return func(b *benchmark.B) {
		data := make([]uint32, n)
		x := uint32(2463534242)
		for i := range data {
			x ^= x << 13
			x ^= x >> 17
			x ^= x << 5
			data[i] = x
		}
		b.SetElements(uint64(n))
		b.Measure(func() {
			slices.Sort(data)
		})
		runtime.KeepAlive(data)
	}
}

// HashStrings times inserting n distinct keys into a set.
func HashStrings(n int) func(*benchmark.B) {
	return func(b *benchmark.B) {
		keys := make([]string, n)
		for i := range keys {
			keys[i] = "key_" + strconv.Itoa(i)
		}
		b.SetElements(uint64(n))
		b.Measure(func() {
			set := make(map[string]struct{})
			for _, k := range keys {
				set[k] = struct{}{}
			}
			sink = set
		})
		sink = nil
	}
}

// Fibonacci times the naive recursive Fibonacci of n.
func Fibonacci(n int) func(*benchmark.B) {
	return func(b *benchmark.B) {
		b.Tag("n", strconv.Itoa(n))
		var result uint64
		b.Measure(func() {
			result = fib(n)
		})
		sink = result
	}
}

func fib(n int) uint64 {
	if n < 2 {
		return uint64(n)
	}
	return fib(n-1) + fib(n-2)
}
