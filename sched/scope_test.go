// Package sched tests fork-join scopes.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sched

import (
	"sync/atomic"
	"testing"
)

// Every task spawned into a scope — including recursively — has
// completed by the time the spawning call returns.
func TestScopeContainment(t *testing.T) {
	pool := New(4)
	defer pool.Terminate()

	const (
		width = 16
		depth = 4
	)

	var executed, spawned atomic.Int64
	var grow func(s *Scope, level int)
	grow = func(s *Scope, level int) {
		executed.Add(1)
		if level == 0 {
			return
		}
		for i := 0; i < width/level; i++ {
			spawned.Add(1)
			s.Spawn(func(s *Scope) { grow(s, level-1) })
		}
	}

	pool.Spawn(func(s *Scope) { grow(s, depth) })

	// The root body plus every spawned descendant.
	if executed.Load() != spawned.Load()+1 {
		t.Fatalf("scope returned with %d of %d tasks executed",
			executed.Load(), spawned.Load()+1)
	}
}

// From outside the pool, Spawn is synchronous: both counters must be
// visible once the calls return.
func TestSpawnFromExternalThreads(t *testing.T) {
	pool := New(2)
	defer pool.Terminate()

	var counter atomic.Int64
	pool.Spawn(func(*Scope) { counter.Add(1) })
	pool.Spawn(func(*Scope) { counter.Add(1) })

	if counter.Load() != 2 {
		t.Fatalf("expected counter 2 after both spawns returned, got %d", counter.Load())
	}
}

func TestScopeSpawnSiblingsRunConcurrently(t *testing.T) {
	pool := New(4)
	defer pool.Terminate()

	const tasks = 1000
	var countdown atomic.Int64
	countdown.Store(tasks)

	pool.Spawn(func(s *Scope) {
		for i := 0; i < tasks; i++ {
			s.Spawn(func(*Scope) { countdown.Add(-1) })
		}
	})

	if countdown.Load() != 0 {
		t.Fatalf("expected countdown 0, got %d", countdown.Load())
	}
}

func TestScopePanicPropagatesToCaller(t *testing.T) {
	pool := New(2)
	defer pool.Terminate()

	defer func() {
		r := recover()
		if r != "scope boom" {
			t.Fatalf("expected scope panic to surface, recovered %v", r)
		}
	}()
	pool.Spawn(func(s *Scope) {
		s.Spawn(func(*Scope) { panic("scope boom") })
	})
	t.Fatal("unreachable: spawn must re-raise the task panic")
}

// The first panic wins the scope; later ones go to the pool handler.
func TestScopeSecondPanicGoesToHandler(t *testing.T) {
	handled := make(chan any, 2)
	pool := New(1, WithPanicHandler(func(v any) { handled <- v }))
	defer pool.Terminate()

	recovered := func() (r any) {
		defer func() { r = recover() }()
		pool.Spawn(func(s *Scope) {
			s.Spawn(func(*Scope) { panic("first") })
			s.Spawn(func(*Scope) { panic("second") })
		})
		return nil
	}()

	if recovered == nil {
		t.Fatal("expected one panic to surface at the caller")
	}
	var other any
	select {
	case other = <-handled:
	default:
		t.Fatal("expected the losing panic to reach the handler")
	}

	got := map[any]bool{recovered: true, other: true}
	if !got["first"] || !got["second"] {
		t.Fatalf("expected panics {first, second}, got {%v, %v}", recovered, other)
	}
}
