// File: sched/tls.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Current-worker registry. Go has no thread-local storage, so each
// worker locks its goroutine to an OS thread and registers itself under
// that thread's ID; Join and Spawn consult the registry to decide
// whether the caller is a worker. The slot is written exactly once at
// worker startup and cleared when the worker exits. Because a locked
// thread runs exactly one goroutine, a non-worker caller can never
// collide with a worker's key.
//
// currentThreadID is platform-split the usual way: tls_linux.go,
// tls_windows.go, tls_other.go.

package sched

import (
	"sync"

	"github.com/momentics/hioload-sched/api"
)

var currentSlaves sync.Map // thread key (uint64) -> *threadSlave

// setCurrentSlave pins s to the calling thread. Worker startup only.
func setCurrentSlave(s *threadSlave) {
	if _, loaded := currentSlaves.LoadOrStore(currentThreadID(), s); loaded {
		panic(api.NewError(api.ErrCodeInternal, "worker slot already occupied").
			WithContext("worker", s.index))
	}
}

// clearCurrentSlave releases the calling thread's slot at worker exit.
func clearCurrentSlave() {
	currentSlaves.Delete(currentThreadID())
}

// currentSlave returns the calling thread's worker state, or nil when
// the caller is not one of the pool's workers.
func currentSlave() *threadSlave {
	if v, ok := currentSlaves.Load(currentThreadID()); ok {
		return v.(*threadSlave)
	}
	return nil
}
