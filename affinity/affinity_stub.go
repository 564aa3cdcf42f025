//go:build !linux && !windows
// +build !linux,!windows

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub implementation for unsupported platforms.
// Returns an error to indicate unavailability.

package affinity

import "github.com/momentics/hioload-sched/api"

// setAffinityPlatform is a stub for platforms without CPU affinity support.
func setAffinityPlatform(cpuID int) error {
	return api.ErrNotSupported
}
