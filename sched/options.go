// File: sched/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool construction options and the control-plane wiring: spin/backoff
// tunables read from a ConfigStore (with hot-reload) and counter probes
// published through a Debug registry.

package sched

import (
	"time"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/control"
	"github.com/momentics/hioload-sched/core/latch"
)

// Config keys recognized in a control.ConfigStore.
const (
	// ConfigSpinYieldThreshold is the number of yield rounds a spinning
	// waiter performs before parking kicks in.
	ConfigSpinYieldThreshold = "sched.spin.yield_threshold"

	// ConfigSpinParkNanos is the park interval in nanoseconds; zero
	// keeps the pure-yield spin of the original design.
	ConfigSpinParkNanos = "sched.spin.park_ns"
)

type options struct {
	pinWorkers   bool
	panicHandler func(any)
	config       *control.ConfigStore
	probes       api.Debug
}

// Option customizes pool construction.
type Option func(*options)

// WithAffinity pins each worker thread to a CPU core (worker index
// modulo core count). Pinning failures are ignored: affinity is a
// locality hint, not a correctness requirement.
func WithAffinity() Option {
	return func(o *options) { o.pinWorkers = true }
}

// WithPanicHandler installs a handler for user panics the scheduler has
// nobody left to rethrow to, e.g. every panic after the first within
// one scope. The handler may be invoked from multiple threads at once.
func WithPanicHandler(fn func(any)) Option {
	return func(o *options) { o.panicHandler = fn }
}

// WithConfig binds the pool's spin tunables to a config store and
// re-applies them on every reload.
func WithConfig(cs *control.ConfigStore) Option {
	return func(o *options) { o.config = cs }
}

// WithProbes registers the pool's introspection probes in a debug
// registry at construction time.
func WithProbes(d api.Debug) Option {
	return func(o *options) { o.probes = d }
}

func applySpinConfig(cs *control.ConfigStore) {
	latch.SetBackoff(
		int32(cs.IntOr(ConfigSpinYieldThreshold, 0)),
		time.Duration(cs.IntOr(ConfigSpinParkNanos, 0)),
	)
}
