// File: sched/join.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The fork-join primitive. Join is a free generic function because Go
// methods cannot carry type parameters.

package sched

import (
	"github.com/momentics/hioload-sched/core/latch"
)

// Join runs opA and opB, potentially in parallel, and returns both
// results in argument order regardless of which thread ran which. It is
// the primitive for recursive divide-and-conquer: called on a worker it
// is a cheap local-deque operation, called from outside it injects both
// closures into the pool and blocks.
//
// Both halves are guaranteed complete when Join returns. A panic in
// either closure propagates to the caller after the other half has been
// properly finalized.
func Join[RA, RB any](p *ThreadPool, opA func() RA, opB func() RB) (RA, RB) {
	slave := currentSlave()
	if slave == nil {
		return joinInject(p, opA, opB)
	}
	return joinWorker(slave, opA, opB)
}

// joinInject is the non-worker path: wrap both closures in stack tasks
// backed by blocking latches, hand them to the pool, sleep on both.
func joinInject[RA, RB any](p *ThreadPool, opA func() RA, opB func() RB) (RA, RB) {
	latchA := latch.NewLock()
	latchB := latch.NewLock()
	taskA := newStackTask(opA, latchA)
	taskB := newStackTask(opB, latchB)

	p.inject(taskA.ref(), taskB.ref())
	latchA.Wait()
	latchB.Wait()

	resultA := taskA.unwrap()
	return resultA, taskB.unwrap()
}

// joinWorker is the worker path: advertise opB on the local deque, run
// opA inline, then either pop opB back and run it ourselves or thieve
// until the thief that took it is done.
func joinWorker[RA, RB any](slave *threadSlave, opA func() RA, opB func() RB) (RA, RB) {
	latchB := latch.NewSpin()
	taskB := newStackTask(opB, latchB)
	slave.push(taskB.ref())

	// Snapshot of async spawns on this thread before opA runs.
	spawnCount := slave.spawnCount

	var resultA RA
	func() {
		completed := false
		defer func() {
			if !completed {
				// opA is panicking. If a thief took opB, halt the
				// unwinding here until it is finished with our frame.
				if slave.pop() == nil {
					latch.SpinWait(latchB)
				}
			}
		}()
		resultA = opA()
		completed = true
	}()

	// Drain any spawns opA produced so opB is back on top if it is
	// still ours.
	slave.popSpawned(spawnCount)

	var resultB RB
	if slave.pop() != nil {
		// Not stolen; run it right here.
		resultB = taskB.runInline()
	} else {
		// Stolen; help out elsewhere until the thief finishes it.
		slave.stealUntil(latchB)
		resultB = taskB.unwrap()
	}
	return resultA, resultB
}
