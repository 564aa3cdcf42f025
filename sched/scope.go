// File: sched/scope.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fork-join scopes: arbitrary-fan-out spawning with the guarantee that
// no descendant outlives the scope. Mechanically this is the same
// local-push / rebalance / steal-until-latch machinery as Join,
// generalized from a fixed pair to a counter.

package sched

import (
	"sync/atomic"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/core/latch"
)

// Scope is a fork-join context. Tasks spawned into it may run on any
// worker and may themselves spawn more tasks into it; the call that
// created the scope does not return until all of them have completed.
type Scope struct {
	pool *ThreadPool

	// completed starts at one for the scope body itself; every spawn
	// adds one and every completion retires one.
	completed *latch.CountLatch

	// First panic raised by any task in the scope; re-raised at the
	// scope's creator once everything has completed.
	panicVal atomic.Pointer[panicBox]
}

type panicBox struct {
	value any
}

// Spawn hands op to the pool as a fork-join scope. Called on a worker
// it runs the scope machinery directly; called from outside it behaves
// like half of Join — inject and block — so the call is synchronous to
// the caller while the pool parallelizes the inside.
func (p *ThreadPool) Spawn(op func(*Scope)) {
	if slave := currentSlave(); slave != nil {
		runScope(p, slave, op)
		return
	}

	l := latch.NewLock()
	task := newStackTask(func() struct{} {
		p.Spawn(op)
		return struct{}{}
	}, l)
	p.inject(task.ref())
	l.Wait()
	task.unwrap()
}

// runScope executes op inside a fresh scope on the given worker and
// blocks — by thieving — until every spawned descendant is done.
func runScope(p *ThreadPool, slave *threadSlave, op func(*Scope)) {
	s := &Scope{
		pool:      p,
		completed: latch.NewCount(),
	}

	spawnCount := slave.spawnCount
	s.executeBody(op)
	slave.popSpawned(spawnCount)

	// Local deque is drained back to the snapshot, so either everything
	// ran here or the stragglers were stolen; thieve until they retire.
	slave.stealUntil(s.completed)

	if pb := s.panicVal.Swap(nil); pb != nil {
		panic(pb.value)
	}
}

// Spawn schedules body to run sometime before the scope completes. Only
// callable from inside the scope, i.e. on a worker thread; the body may
// spawn further tasks into the same scope.
func (s *Scope) Spawn(body func(*Scope)) {
	if s.completed.Probe() {
		panic(api.NewError(api.ErrCodeInternal, "spawn into a completed scope"))
	}
	s.completed.Increment()

	slave := currentSlave()
	if slave == nil {
		panic(api.NewError(api.ErrCodeInvalidArgument, "scope spawn from a non-worker thread"))
	}

	ref := &Ref{invoke: func(mode api.TaskMode) {
		if mode == api.Abort {
			s.completed.Set()
			return
		}
		s.executeBody(body)
	}}
	slave.bumpSpawnCount()
	slave.push(ref)
}

// executeBody runs one task body, captures its panic if any, and
// retires its unit of the completion latch on every exit path.
func (s *Scope) executeBody(body func(*Scope)) {
	defer s.completed.Set()
	defer func() {
		if r := recover(); r != nil {
			s.recordPanic(r)
		}
	}()
	body(s)
}

// recordPanic keeps the first panic for the scope's creator; later ones
// go to the pool's panic handler or are dropped.
func (s *Scope) recordPanic(value any) {
	if !s.panicVal.CompareAndSwap(nil, &panicBox{value: value}) {
		if h := s.pool.opts.panicHandler; h != nil {
			h(value)
		}
	}
}
