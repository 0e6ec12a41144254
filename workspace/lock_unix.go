// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

//go:build unix

package workspace

import (
	"golang.org/x/sys/unix"
)

// processGone is true if no process has the pid.
func processGone(pid int) bool {
	return unix.Kill(pid, 0) == unix.ESRCH
}
