// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contract surface of the hioload-sched library.
//
// The api package holds only types and interfaces shared between the
// scheduler runtime (sched), the lock-free primitives (core/deque,
// core/latch) and the introspection layer (control). It has no
// dependencies and no behavior of its own.
package api
