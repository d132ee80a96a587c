// Package procutil provides small process-table introspection helpers used
// by the supervisor's tests. Grounded in the
// teacher's IsProcessRunning pattern: a signal-0 probe is the portable way
// to ask "does this PID still exist" without racing a wait() call owned
// by someone else.
package procutil

import (
	"os"
	"syscall"
)

// IsRunning reports whether a process with the given PID currently exists.
// Sending signal 0 checks for existence without actually delivering a
// signal.
func IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
