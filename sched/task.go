// File: sched/task.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Task references and stack tasks. A Ref is the type-erased,
// ownership-transferring handle that travels through deques and the
// injection queue; in Go the erasure collapses to a boxed closure. The
// exactly-once contract is enforced at runtime: resolving a Ref twice
// is a fatal scheduler invariant violation.

package sched

import (
	"sync/atomic"

	"github.com/momentics/hioload-sched/api"
)

var _ api.Task = (*Ref)(nil)

// Ref is a pending task. It is resolved at most once, in exactly one of
// {Execute, Abort} modes, by exactly one thread.
type Ref struct {
	invoke func(api.TaskMode)
	taken  atomic.Bool
}

// Execute resolves the task in the given mode.
func (r *Ref) Execute(mode api.TaskMode) {
	if r.taken.Swap(true) {
		panic(api.NewError(api.ErrCodeInternal, "task reference resolved twice"))
	}
	r.invoke(mode)
}

// stackTask is a closure plus a result slot plus a latch, owned by the
// stack frame of the join/spawn call that created it. That frame must
// not return until the latch has fired, or a thief could observe a
// dead task.
type stackTask[R any] struct {
	latch    api.Latch
	op       func() R
	result   R
	panicVal any
}

func newStackTask[R any](op func() R, l api.Latch) *stackTask[R] {
	return &stackTask[R]{latch: l, op: op}
}

// ref advertises the task for other threads.
func (t *stackTask[R]) ref() *Ref {
	return &Ref{invoke: t.execute}
}

func (t *stackTask[R]) execute(mode api.TaskMode) {
	if mode == api.Abort {
		t.latch.Set()
		return
	}
	defer t.latch.Set()
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.panicVal = r
			}
		}()
		t.result = t.op()
	}()
}

// runInline runs the body directly on the owning thread, bypassing the
// latch. Only valid when the task's Ref was popped back unexecuted.
func (t *stackTask[R]) runInline() R {
	return t.op()
}

// unwrap returns the stored result, re-raising a captured user panic at
// the caller. Only valid after the latch has fired.
func (t *stackTask[R]) unwrap() R {
	if t.panicVal != nil {
		panic(t.panicVal)
	}
	return t.result
}
