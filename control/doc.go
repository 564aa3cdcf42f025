// Package control
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime configuration, metrics and debug introspection layer for the
// scheduler. Provides concurrent-safe state handling primitives:
//   - Immutable snapshot config reads with atomic updates and reload hooks
//   - Metrics telemetry registry
//   - Debug probe registration and state export
//
// The scheduler consumes this package for its spin/backoff tunables and
// publishes its counters through the probe registry; nothing here sits
// on a hot path.
package control
