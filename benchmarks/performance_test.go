// Package benchmarks
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Performance benchmarks for the scheduler: fork-join recursion depth,
// scope fan-out, and external injection throughput.

package benchmarks

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/momentics/hioload-sched/sched"
)

func fib(pool *sched.ThreadPool, n int) int {
	if n < 12 {
		return fibSerial(n)
	}
	a, b := sched.Join(pool,
		func() int { return fib(pool, n-1) },
		func() int { return fib(pool, n-2) },
	)
	return a + b
}

func fibSerial(n int) int {
	if n < 2 {
		return n
	}
	return fibSerial(n-1) + fibSerial(n-2)
}

// BenchmarkJoinRecursive measures divide-and-conquer join overhead.
func BenchmarkJoinRecursive(b *testing.B) {
	pool := sched.New(runtime.NumCPU())
	defer pool.Terminate()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fib(pool, 24)
	}
}

// BenchmarkScopeFanout measures heap-task spawn/drain throughput.
func BenchmarkScopeFanout(b *testing.B) {
	pool := sched.New(runtime.NumCPU())
	defer pool.Terminate()

	var sink atomic.Int64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Spawn(func(s *sched.Scope) {
			for j := 0; j < 1024; j++ {
				s.Spawn(func(*sched.Scope) { sink.Add(1) })
			}
		})
	}
}

// BenchmarkExternalJoin measures the injection path from non-worker
// callers contending on the pool mutex.
func BenchmarkExternalJoin(b *testing.B) {
	pool := sched.New(runtime.NumCPU())
	defer pool.Terminate()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sched.Join(pool, func() int { return 1 }, func() int { return 2 })
		}
	})
}
