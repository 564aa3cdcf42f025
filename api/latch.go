// Package api
// Author: momentics
//
// Latch contracts: single-use, set-once synchronization signals.

package api

// Latch is a one-shot signal. It starts unset; eventually exactly one
// logical owner calls Set and it becomes set forever. A latch never
// transitions from set back to unset.
type Latch interface {
	// Set fires the latch, releasing anyone observing it.
	Set()
}

// ProbeLatch is a latch whose state can be polled without blocking.
// Worker threads use probing latches so that "waiting" can mean
// "go steal and run other work" instead of sleeping.
type ProbeLatch interface {
	Latch

	// Probe reports whether the latch has fired.
	Probe() bool
}

// WaitLatch is a latch that parks the calling OS thread until it fires.
// Intended only for threads outside the pool's cooperative protocol;
// pool workers must never block-wait this way.
type WaitLatch interface {
	Latch

	// Wait blocks until Set has been called.
	Wait()
}
