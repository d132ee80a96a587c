package supervisor

import (
	"context"
	"log"
	"syscall"
	"time"
)

const (
	pumpTermInterval = 100 * time.Millisecond
	pumpKillInterval = 10 * time.Millisecond
	pumpTermToKillAt = 5 * time.Second
)

// broadcastFunc sends a signal to every process this process may signal;
// production code always uses killProcessGroup (syscall.Kill(-1, sig)),
// but tests inject a recorder so a unit test never sends a real broadcast
// signal.
type broadcastFunc func(signal syscall.Signal)

func killProcessGroup(sig syscall.Signal) {
	_ = syscall.Kill(-1, sig)
}

// runShutdownPump blocks until servicesCancel fires (arming), then
// broadcasts TERM to pid -1 (every process it is permitted to signal,
// except itself and init) every 100ms, escalating to KILL every 10ms
// after 5 seconds. It disarms when sighandlerExit fires, which happens
// once the reaper has observed no remaining children.
//
// Broadcasting to -1 is coarse but deliberate: supervisors can only TERM
// the children they directly hold, so grandchildren would otherwise be
// stranded on shutdown.
func runShutdownPump(servicesCancel context.Context, sighandlerExit context.Context, logger *log.Logger) {
	runShutdownPumpWithBroadcast(servicesCancel, sighandlerExit, logger, killProcessGroup)
}

func runShutdownPumpWithBroadcast(servicesCancel context.Context, sighandlerExit context.Context, logger *log.Logger, broadcast broadcastFunc) {
	<-servicesCancel.Done()

	armedAt := time.Now()
	logger.Println("shutdown pump: armed, broadcasting TERM to process group")

	mode := "term"
	ticker := time.NewTicker(pumpTermInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sighandlerExit.Done():
			logger.Println("shutdown pump: disarmed")
			return

		case <-ticker.C:
			if mode == "term" {
				broadcast(syscall.SIGTERM)
				if time.Since(armedAt) >= pumpTermToKillAt {
					mode = "kill"
					ticker.Stop()
					ticker = time.NewTicker(pumpKillInterval)
					logger.Println("shutdown pump: escalating to KILL")
				}
			} else {
				broadcast(syscall.SIGKILL)
			}
		}
	}
}
