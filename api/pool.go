// Package api
// Author: momentics
//
// Minimal pool contract consumed by subsystems that treat the scheduler
// as an opaque parallel-execution resource.

package api

// Pool is the worker-count/lifecycle surface of a scheduler pool.
// Fork-join entry points are generic free functions and therefore live
// on the concrete type, not here.
type Pool interface {
	// Len returns the number of worker threads.
	Len() int

	// Terminate shuts the pool down, aborting not-yet-started injected
	// tasks, and waits for every worker to exit.
	Terminate()

	// Stats returns basic scheduling counters.
	Stats() map[string]int64
}
