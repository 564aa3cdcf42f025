//go:build !linux && !windows
// +build !linux,!windows

// File: sched/tls_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fallback worker identity for platforms without a cheap thread-ID
// syscall: the goroutine ID parsed from the runtime stack header.
// Workers still lock their OS threads, so goroutine identity is just as
// stable a key — only the per-call lookup is slower than a TID read.

package sched

import (
	"bytes"
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

func currentThreadID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header layout: "goroutine 123 [running]:".
	header := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(header, ' '); i > 0 {
		if id, err := strconv.ParseUint(string(header[:i]), 10, 64); err == nil {
			return id
		}
	}
	panic("sched: unable to parse goroutine id from stack header")
}
