// File: sched/slave.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-worker state. A threadSlave is constructed once at worker startup,
// pinned to that worker's OS thread for the thread's whole life, and
// never shared: the deque owner handle and the spawn counter are touched
// only by the owning thread, while peers reach the deque exclusively
// through their stealer handles.

package sched

import (
	"runtime"
	"time"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/deque"
	"github.com/momentics/hioload-sched/core/latch"
)

type threadSlave struct {
	index  int
	worker *deque.Worker[Ref]

	// Peer thief handles, fixed at construction; self excluded.
	stealers []*deque.Stealer[Ref]

	// spawnCount tracks locally-unpaired pushes. join pairs each push
	// with a pop; Scope.Spawn pushes without popping and bumps this
	// counter instead. Callers snapshot the counter before running a
	// task body and hand the snapshot to popSpawned afterwards, which
	// drains the deque back down to it. The net effect is that a worker
	// always returns to stealing with an empty local deque.
	spawnCount int

	// Weak per-worker generator for steal victim selection.
	rngState uint64
}

func newThreadSlave(index int, worker *deque.Worker[Ref], stealers []*deque.Stealer[Ref]) *threadSlave {
	return &threadSlave{
		index:    index,
		worker:   worker,
		stealers: stealers,
		rngState: uint64(time.Now().UnixNano()) ^ (uint64(index+1) << 32) | 1,
	}
}

func (s *threadSlave) push(r *Ref) {
	s.worker.Push(r)
}

// pop takes the most recent local task, returning nil if a thief won
// the race for it.
func (s *threadSlave) pop() *Ref {
	return s.worker.Pop()
}

func (s *threadSlave) bumpSpawnCount() {
	s.spawnCount++
}

// popSpawned pops and executes locally spawned tasks until the spawn
// count is back to start or the deque is empty, whichever comes first.
// Either way the counter is restored to start, keeping the deque
// balanced around the caller's frame.
func (s *threadSlave) popSpawned(start int) {
	for s.spawnCount != start {
		if r := s.pop(); r != nil {
			s.spawnCount--
			r.Execute(api.Execute)
		} else {
			// Everything below was stolen; the thieves own it now.
			s.spawnCount = start
			break
		}
	}
}

// xorshift64*, seeded per worker. Cheap and unlocked; the steal path
// only needs decorrelated victim choices, not quality randomness.
func (s *threadSlave) nextRand() uint64 {
	x := s.rngState
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	s.rngState = x
	return x * 0x2545F4914F6CDD1D
}

// stealTask scans all peers once from a uniformly-random start and
// returns the first stolen task. Abort from a victim means transient
// contention; move on rather than retry the same victim.
func (s *threadSlave) stealTask() *Ref {
	if len(s.stealers) == 0 {
		return nil
	}
	start := int(s.nextRand() % uint64(len(s.stealers)))
	for i := 0; i < len(s.stealers); i++ {
		victim := s.stealers[(start+i)%len(s.stealers)]
		if r, res := victim.Steal(); res == deque.Data {
			return r
		}
	}
	return nil
}

// stealUntil keeps this worker busy thieving until the latch fires.
// The local deque must be empty relative to the current spawn count on
// entry; stolen tasks may spawn children, which are drained after each
// execution to restore that invariant.
//
// If a stolen body panics, the guard spins the latch down before
// unwinding continues: the frame owning the awaited task must stay
// alive until its thief is done with it.
func (s *threadSlave) stealUntil(l api.ProbeLatch) {
	start := s.spawnCount
	completed := false
	defer func() {
		if !completed {
			latch.SpinWait(l)
		}
	}()
	for !l.Probe() {
		if r := s.stealTask(); r != nil {
			r.Execute(api.Execute)
			s.popSpawned(start)
		} else {
			runtime.Gosched()
		}
	}
	completed = true
}
