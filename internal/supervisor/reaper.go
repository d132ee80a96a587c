package supervisor

import (
	"context"
	"log"
	"syscall"
	"time"
)

const reaperIdlePoll = 100 * time.Millisecond

// reaper repeatedly waits for ANY child of this process (waitpid(-1, 0)),
// logs its exit, and drains it from the kernel's process table. This is
// the PID-1 responsibility: it reaps grandchildren the supervisor never
// itself spawned, not just services and cron invocations it tracks
// directly.
//
// runReaper blocks natively on the wait4 syscall; it is run on its own
// goroutine and never participates in the cooperative cancellation
// selects used elsewhere, matching the "dedicated thread for blocking
// work" requirement.
func runReaper(flag *ShutdownFlag, sighandlerExitCancel context.CancelFunc, logger *log.Logger) {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, 0, nil)

		switch {
		case err == nil:
			logReapedChild(logger, pid, status)
			continue

		case err == syscall.ECHILD:
			if flag.Get() {
				logger.Println("reaper: no children remain and shutdown is in progress, exiting")
				sighandlerExitCancel()
				return
			}
			time.Sleep(reaperIdlePoll)
			continue

		default:
			logger.Printf("reaper: wait4 error: %v", err)
			continue
		}
	}
}

func logReapedChild(logger *log.Logger, pid int, status syscall.WaitStatus) {
	switch {
	case status.Exited():
		logger.Printf("reaper: pid %d exited with status %d", pid, status.ExitStatus())
	case status.Signaled():
		logger.Printf("reaper: pid %d terminated by signal %v (core dumped: %v)", pid, status.Signal(), status.CoreDump())
	default:
		logger.Printf("reaper: pid %d reaped with raw status %v", pid, status)
	}
}
