// Package workloads holds the built-in demonstration benchmarks shipped with
// the stress binary.
package workloads

import (
	"stress/internal/registry"
)

// Sizes used by the built-in workloads.
const (
	SmallFileSize  = 1 << 10
	LargeFileSize  = 64 << 20
	LargeAllocSize = 10 << 20
	CopySize       = 1 << 20
	SortLength     = 1_000_000
	HashKeys       = 10_000
	SQLiteRows     = 1_000
)

// Register adds every built-in workload to reg. File and database workloads
// write below dir.
func Register(reg *registry.Registry, dir string) *registry.Registry {
	return reg.
		Add("io/write_1kb_file", WriteFile(dir, SmallFileSize)).
		AddIgnored("io/write_large_file", WriteFile(dir, LargeFileSize)).
		Add("io/sqlite_txn", SQLiteTxn(dir, SQLiteRows)).
		Add("mem/allocate_large_buffer", AllocateBuffer(LargeAllocSize)).
		Add("mem/memory_copy_1mb", MemoryCopy(CopySize)).
		Add("cpu/sort_large_vector", SortVector(SortLength)).
		Add("cpu/hash_string_throughput", HashStrings(HashKeys)).
		Add("cpu/compute_fibonacci", Fibonacci(30))
}
