package supervisor

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/wingmate/wingmate/internal/config"
	"github.com/wingmate/wingmate/internal/procutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeScript(t *testing.T, path string, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed writing script: %v", err)
	}
}

func TestServiceSupervisorRestartsOnExit(t *testing.T) {
	script := t.TempDir() + "/quick-exit.sh"
	writeScript(t, script, "exit 0\n")

	t.Setenv("PATH", "/bin:/usr/bin")
	sup := &ServiceSupervisor{Command: config.ServiceCommand{Kind: config.ShellPrefixed, Path: script}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.run(ctx, testLogger())
		close(done)
	}()

	deadline := time.After(3 * time.Second)
	for sup.RestartCount() < 3 {
		select {
		case <-deadline:
			t.Fatal("expected at least 3 starts (initial start plus 2 restarts) within 3 seconds")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected supervisor to stop after cancellation")
	}
}

func TestServiceSupervisorTerminatesOnCancel(t *testing.T) {
	script := t.TempDir() + "/sleeper.sh"
	writeScript(t, script, "trap '' TERM\nsleep 30\n")

	t.Setenv("PATH", "/bin:/usr/bin")
	sup := &ServiceSupervisor{Command: config.ServiceCommand{Kind: config.ShellPrefixed, Path: script}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sup.run(ctx, testLogger())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sup.CurrentPID() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected service to start within 2 seconds")
		case <-time.After(10 * time.Millisecond):
		}
	}

	pid := sup.CurrentPID()
	cancel()

	select {
	case <-done:
	case <-time.After(6 * time.Second):
		t.Fatal("expected KILL escalation to terminate a TERM-ignoring child within ~5s")
	}

	if procutil.IsRunning(pid) {
		t.Fatalf("expected pid %d to be gone after shutdown", pid)
	}
}
