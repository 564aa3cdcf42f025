// Package unit tests the scheduler through its public surface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package unit

import (
	"math/rand"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/control"
	"github.com/momentics/hioload-sched/sched"
)

// quickSort splits around a pivot and sorts both halves through the
// pool, the original smoke test for recursive divide-and-conquer.
func quickSort(pool *sched.ThreadPool, v []int) {
	if len(v) <= 1 {
		return
	}
	mid := partition(v)
	lo, hi := v[:mid], v[mid+1:]
	sched.Join(pool,
		func() struct{} { quickSort(pool, lo); return struct{}{} },
		func() struct{} { quickSort(pool, hi); return struct{}{} },
	)
}

func partition(v []int) int {
	pivot := len(v) - 1
	i := 0
	for j := 0; j < pivot; j++ {
		if v[j] <= v[pivot] {
			v[i], v[j] = v[j], v[i]
			i++
		}
	}
	v[i], v[pivot] = v[pivot], v[i]
	return i
}

func TestQuickSortThroughPool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]int, 6*1024)
	for i := range data {
		data[i] = rng.Int()
	}
	want := append([]int(nil), data...)
	sort.Ints(want)

	pool := sched.New(4)
	defer pool.Terminate()

	quickSort(pool, data)

	for i := range data {
		if data[i] != want[i] {
			t.Fatalf("sort mismatch at %d: got %d, want %d", i, data[i], want[i])
		}
	}
}

// N independent, mutually non-blocking tasks on a multi-worker pool
// must all complete: the countdown reaches zero and the spawning call
// returns within the test's bounded time.
func TestLivenessUnderFanout(t *testing.T) {
	pool := sched.New(2)
	defer pool.Terminate()

	const tasks = 5000
	var countdown atomic.Int64
	countdown.Store(tasks)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pool.Spawn(func(s *sched.Scope) {
			for i := 0; i < tasks; i++ {
				s.Spawn(func(*sched.Scope) { countdown.Add(-1) })
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatalf("fan-out starved: countdown at %d", countdown.Load())
	}
	if countdown.Load() != 0 {
		t.Fatalf("expected countdown 0, got %d", countdown.Load())
	}
}

func TestPoolSatisfiesContract(t *testing.T) {
	var pool api.Pool = sched.New(2)
	defer pool.Terminate()

	if pool.Len() != 2 {
		t.Fatalf("expected 2 workers, got %d", pool.Len())
	}
	if pool.Stats()["workers"] != 2 {
		t.Fatalf("stats disagree with Len: %v", pool.Stats())
	}
}

func TestMetricsPublishing(t *testing.T) {
	probes := control.NewDebugProbes()
	metrics := control.NewMetricsRegistry()

	pool := sched.New(2, sched.WithProbes(probes))
	defer pool.Terminate()

	sched.Join(pool, func() int { return 1 }, func() int { return 2 })

	metrics.SetAll(pool.Stats())
	snap := metrics.GetSnapshot()
	if snap["workers"] != int64(2) {
		t.Errorf("expected workers metric 2, got %v", snap["workers"])
	}
	if metrics.Updated().IsZero() {
		t.Error("metrics registry did not record an update time")
	}

	state := probes.DumpState()
	if state["sched.pool.workers"] != 2 {
		t.Errorf("expected worker probe 2, got %v", state["sched.pool.workers"])
	}
}
