//go:build linux
// +build linux

// File: sched/tls_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux worker identity: the kernel thread ID. Workers lock their
// goroutine to its OS thread, so the TID is a stable key for the whole
// worker lifetime.

package sched

import "golang.org/x/sys/unix"

func currentThreadID() uint64 {
	return uint64(unix.Gettid())
}
