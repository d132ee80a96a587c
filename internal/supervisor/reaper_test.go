package supervisor

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

// TestReaperDrainsOrphanedChildren verifies the PID-1 reaping property:
// children spawned directly by this test process (standing in for
// grandchildren reparented to the supervisor) are all reaped, and the
// reaper then observes ECHILD and exits once shutdown is flagged.
func TestReaperDrainsOrphanedChildren(t *testing.T) {
	const n = 3
	for i := 0; i < n; i++ {
		cmd := exec.Command("/bin/sh", "-c", "exit 0")
		if err := cmd.Start(); err != nil {
			t.Fatalf("failed to start fixture child: %v", err)
		}
		// Deliberately do not call cmd.Wait(): leave the exited child
		// for the reaper to collect via waitpid(-1), like a grandchild
		// this process never explicitly waits on.
	}

	flag := &ShutdownFlag{}
	sighandlerExitCtx, sighandlerExitCancel := context.WithCancel(context.Background())
	_ = sighandlerExitCtx

	done := make(chan struct{})
	go func() {
		runReaper(flag, sighandlerExitCancel, testLogger())
		close(done)
	}()

	// Give the reaper a moment to drain the fixture children, then flag
	// shutdown so it exits on the next ECHILD observation.
	time.Sleep(300 * time.Millisecond)
	flag.Set()

	select {
	case <-sighandlerExitCtx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected reaper to cancel sighandlerExit after observing ECHILD with shutdown flagged")
	}
}
