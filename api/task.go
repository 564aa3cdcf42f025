// Package api
// Author: momentics
//
// Task execution contract shared by the deque and the scheduler runtime.

package api

// TaskMode selects how a pending task reference is resolved.
type TaskMode int

const (
	// Execute runs the task body and then resolves its latch.
	Execute TaskMode = iota

	// Abort resolves the task's latch without invoking its body. Used
	// during pool termination so blocked waiters are still released.
	Abort
)

// Task is a pending unit of work advertised for stealing. Each task is
// resolved at most once, in exactly one of the two modes, by exactly
// one thread. Resolving a task twice corrupts scheduler state and is a
// fatal invariant violation.
type Task interface {
	Execute(mode TaskMode)
}
