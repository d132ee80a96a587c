package supervisor

import (
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/wingmate/wingmate/internal/config"
)

const serviceTermGrace = 5 * time.Second

// ServiceSupervisor owns the restart loop for a single configured service.
// One is created per config.ServiceCommand; its fields beyond the command
// itself exist purely for observability (current pid, restart count), not
// for control flow — the spec forbids backoff or any other throttling of
// the restart loop.
type ServiceSupervisor struct {
	Command config.ServiceCommand

	mu           sync.Mutex
	pid          int
	restartCount int
}

// CurrentPID returns the pid of the currently-running child, or 0 if none
// is running.
func (s *ServiceSupervisor) CurrentPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

// RestartCount returns the number of times this service has been
// (re)started so far, including the initial start.
func (s *ServiceSupervisor) RestartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restartCount
}

func (s *ServiceSupervisor) setPID(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = pid
}

// run loops: spawn, await (child exit or cancellation), and on cancellation
// terminate the child and return. On natural child exit it restarts
// immediately, with no backoff, until servicesCancel fires.
func (s *ServiceSupervisor) run(servicesCancel context.Context, logger *log.Logger) {
	shellPath, shellErr := resolveServiceShell(s.Command)

	for {
		select {
		case <-servicesCancel.Done():
			return
		default:
		}

		if s.Command.Kind == config.ShellPrefixed && shellErr != nil {
			logger.Printf("service %s: %v", s.Command.Path, shellErr)
			return
		}

		path, args, err := s.Command.CommandLine(shellPath)
		if err != nil {
			logger.Printf("service %s: %v", s.Command.Path, err)
			return
		}

		cmd := exec.Command(path, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Start(); err != nil {
			logger.Printf("service %s: %v", s.Command.Path, &SpawnError{Source: err, Message: commandLineString(path, args)})
			// Spawn failure terminates only this supervisor's task; the
			// overall supervisor keeps running the rest of the fleet.
			return
		}

		s.mu.Lock()
		s.pid = cmd.Process.Pid
		s.restartCount++
		s.mu.Unlock()
		logger.Printf("service %s: started pid %d", s.Command.Path, cmd.Process.Pid)

		waitDone := make(chan error, 1)
		go func() {
			waitDone <- cmd.Wait()
		}()

		select {
		case err := <-waitDone:
			s.setPID(0)
			if err != nil && !isECHILD(err) {
				logger.Printf("service %s (pid %d): %v", s.Command.Path, cmd.Process.Pid, &ChildExitError{Source: err})
			} else {
				logger.Printf("service %s (pid %d): exited, restarting", s.Command.Path, cmd.Process.Pid)
			}
			// loop and restart immediately

		case <-servicesCancel.Done():
			s.terminateAndWait(cmd, waitDone, logger)
			s.setPID(0)
			return
		}
	}
}

// terminateAndWait sends TERM to the child, races a 5s timer against its
// exit, and escalates to KILL if the timer wins. An ESRCH on the initial
// TERM (the child already exited) is silent success; any other signal
// failure is logged as fatal for this task.
func (s *ServiceSupervisor) terminateAndWait(cmd *exec.Cmd, waitDone <-chan error, logger *log.Logger) {
	pid := cmd.Process.Pid

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// os.Process.Signal reports ESRCH as os.ErrProcessDone.
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			return
		}
		logger.Printf("service %s (pid %d): %v", s.Command.Path, pid, &KillError{Pid: pid, Signal: "SIGTERM", Source: err})
		return
	}

	timer := time.NewTimer(serviceTermGrace)
	defer timer.Stop()

	select {
	case <-waitDone:
		logger.Printf("service %s (pid %d): exited after TERM", s.Command.Path, pid)
	case <-timer.C:
		logger.Printf("service %s (pid %d): did not exit within grace period, sending KILL", s.Command.Path, pid)
		_ = cmd.Process.Signal(syscall.SIGKILL)
		<-waitDone
	}
}

// resolveServiceShell resolves the shell once, up front, only if this
// service actually needs one.
func resolveServiceShell(cmd config.ServiceCommand) (string, error) {
	if cmd.Kind != config.ShellPrefixed {
		return "", nil
	}
	return requireShellFunc()
}

// requireShellFunc is a package-level indirection so tests can substitute
// a fake shell resolver without touching the real PATH.
var requireShellFunc = config.RequireShell

func commandLineString(path string, args []string) string {
	if len(args) == 0 {
		return path
	}
	return path + " " + strings.Join(args, " ")
}

func isECHILD(err error) bool {
	return errors.Is(err, syscall.ECHILD)
}
