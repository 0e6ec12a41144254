// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

//go:build !unix

package backend

import (
	"os/exec"
)

// setProcessGroup keeps the default cancellation, which kills only the
// direct child.
func setProcessGroup(cmd *exec.Cmd) {
}
