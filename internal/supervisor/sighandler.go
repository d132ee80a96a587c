package supervisor

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// runSignalHandler observes process-directed signals until sighandlerExit
// is cancelled. On interrupt or terminate it sets the shutdown flag and
// cancels servicesCancel exactly once (idempotent on repeated signals);
// child-exit notifications are absorbed here only so the runtime doesn't
// install a default handler for them — actual reaping happens in the
// reaper via waitpid(-1).
func runSignalHandler(
	sighandlerExit context.Context,
	flag *ShutdownFlag,
	servicesCancel context.CancelFunc,
	logger *log.Logger,
) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGCHLD)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sighandlerExit.Done():
			logger.Println("signal handler: exiting")
			return

		case sig := <-sigCh:
			switch sig {
			case os.Interrupt, syscall.SIGTERM:
				logger.Printf("signal handler: received %v, beginning shutdown", sig)
				flag.Set()
				servicesCancel()
			case syscall.SIGCHLD:
				// absorbed; the reaper handles actual reaping via waitpid(-1)
			}
		}
	}
}
