//go:build !windows

package app

import (
	"os"
	"syscall"
)

var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// terminate asks the daemon to stop; its watcher loop exits on SIGTERM and
// removes the PID file itself.
func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// processExists sends signal 0 to pid.
func processExists(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
