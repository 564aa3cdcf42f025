//go:build windows
// +build windows

// File: affinity/affinity_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows implementation of thread CPU affinity via SetThreadAffinityMask.

package affinity

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	kernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procSetAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// setAffinityPlatform sets the calling thread's affinity to a given CPU.
func setAffinityPlatform(cpuID int) error {
	if cpuID < 0 || cpuID >= 64 {
		return fmt.Errorf("affinity: cpu index %d out of mask range 0..63", cpuID)
	}
	mask := uintptr(1) << uint(cpuID)
	ret, _, err := procSetAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if ret == 0 {
		return fmt.Errorf("affinity: SetThreadAffinityMask(cpu=%d): %w", cpuID, err)
	}
	return nil
}
