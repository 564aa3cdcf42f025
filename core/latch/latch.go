// File: core/latch/latch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One-shot latches in three flavors. SpinLatch is an atomic flag whose
// waiters poll and yield (worker threads would rather steal work than
// sleep, so a pure wait only happens on the narrow panic-cleanup path).
// LockLatch parks the calling thread on a condition variable and is
// meant for callers outside the pool's cooperative protocol. CountLatch
// generalizes the flag to a counter that fires when it reaches zero and
// backs fork-join scopes.

package latch

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-sched/api"
)

// Compile-time contract checks.
var (
	_ api.ProbeLatch = (*SpinLatch)(nil)
	_ api.WaitLatch  = (*LockLatch)(nil)
	_ api.ProbeLatch = (*CountLatch)(nil)
)

// Spin backoff tunables, process-wide. The defaults reproduce the
// plain yield loop of the original design; a positive park interval
// degrades a long spin to short sleeps after yieldThreshold rounds.
var (
	yieldThreshold atomic.Int32
	parkInterval   atomic.Int64 // nanoseconds; 0 disables parking
)

// SetBackoff adjusts the spin-wait backoff policy. yields is the number
// of Gosched rounds before parking kicks in, park the sleep interval.
// A zero park keeps the pure-yield behavior.
func SetBackoff(yields int32, park time.Duration) {
	yieldThreshold.Store(yields)
	parkInterval.Store(int64(park))
}

// SpinWait polls l until it fires, yielding between probes and parking
// per the package backoff policy.
func SpinWait(l api.ProbeLatch) {
	rounds := int32(0)
	for !l.Probe() {
		rounds++
		if park := parkInterval.Load(); park > 0 && rounds > yieldThreshold.Load() {
			time.Sleep(time.Duration(park))
			continue
		}
		runtime.Gosched()
	}
}

// SpinLatch is a set-once atomic flag.
type SpinLatch struct {
	fired atomic.Bool
}

// NewSpin creates an unset spin latch.
func NewSpin() *SpinLatch {
	return &SpinLatch{}
}

// Set fires the latch. Idempotent.
func (l *SpinLatch) Set() {
	l.fired.Store(true)
}

// Probe reports whether the latch has fired.
func (l *SpinLatch) Probe() bool {
	return l.fired.Load()
}

// Spin busy-waits until the latch fires.
func (l *SpinLatch) Spin() {
	SpinWait(l)
}

// LockLatch parks waiters on a condition variable.
type LockLatch struct {
	mu    sync.Mutex
	cond  *sync.Cond
	fired bool
}

// NewLock creates an unset lock latch.
func NewLock() *LockLatch {
	l := &LockLatch{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Set fires the latch and wakes all waiters. Idempotent.
func (l *LockLatch) Set() {
	l.mu.Lock()
	l.fired = true
	l.mu.Unlock()
	l.cond.Broadcast()
}

// Probe reports whether the latch has fired. Not particularly
// efficient; the blocking callers use Wait.
func (l *LockLatch) Probe() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fired
}

// Wait blocks the calling thread until the latch fires.
func (l *LockLatch) Wait() {
	l.mu.Lock()
	for !l.fired {
		l.cond.Wait()
	}
	l.mu.Unlock()
}

// CountLatch tracks a counter starting at one. Set decrements; the
// latch reads as fired once the counter reaches zero. Increment adds
// outstanding work and must never be called on a fired latch.
type CountLatch struct {
	counter atomic.Int64
}

// NewCount creates a counting latch with one outstanding unit.
func NewCount() *CountLatch {
	l := &CountLatch{}
	l.counter.Store(1)
	return l
}

// Increment registers one more unit of outstanding work.
func (l *CountLatch) Increment() {
	if l.counter.Add(1) <= 1 {
		panic(api.NewError(api.ErrCodeInternal, "count latch incremented after firing"))
	}
}

// Set retires one unit of outstanding work.
func (l *CountLatch) Set() {
	if l.counter.Add(-1) < 0 {
		panic(api.NewError(api.ErrCodeInternal, "count latch decremented below zero"))
	}
}

// Probe reports whether all outstanding work has retired.
func (l *CountLatch) Probe() bool {
	return l.counter.Load() == 0
}
