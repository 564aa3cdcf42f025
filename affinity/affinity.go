// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral API for CPU affinity. Platform-specific implementations
// are located in separate files (affinity_linux.go, affinity_windows.go,
// etc.) guarded by build tags. The caller must have locked its goroutine
// to an OS thread first; pinning an unlocked thread is meaningless.

package affinity

// SetAffinity pins the current OS thread to a given logical CPU/core on
// supported platforms. On unsupported platforms returns an error.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}
