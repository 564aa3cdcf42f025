// Package sched
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Embedded fork-join work-stealing scheduler. A fixed pool of workers,
// each locked to its own OS thread, runs tasks from per-worker
// Chase-Lev deques; idle workers steal from random peers instead of
// sleeping, and threads outside the pool hand work in through a
// mutex-guarded injection queue.
//
// The public surface is deliberately small:
//
//	pool := sched.New(4)
//	defer pool.Terminate()
//
//	sum, count := sched.Join(pool,
//	    func() int { return partialSum(lo) },
//	    func() int { return partialSum(hi) },
//	)
//
//	pool.Spawn(func(s *sched.Scope) {
//	    for _, chunk := range chunks {
//	        chunk := chunk
//	        s.Spawn(func(*sched.Scope) { process(chunk) })
//	    }
//	})
//
// Join runs its two closures potentially in parallel and always returns
// their results in argument order. Spawn opens a fork-join scope whose
// spawned tasks — including tasks they spawn themselves — are all
// complete by the time Spawn returns. Panics inside user closures
// propagate to the caller; the scheduler only guarantees its own state
// stays consistent while they unwind.
package sched
