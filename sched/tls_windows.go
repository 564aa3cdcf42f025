//go:build windows
// +build windows

// File: sched/tls_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows worker identity: the native thread ID of the calling thread.

package sched

import "golang.org/x/sys/windows"

func currentThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
