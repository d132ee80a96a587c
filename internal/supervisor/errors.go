package supervisor

import "fmt"

// SpawnError wraps a failure to start a child process. message is the
// attempted command line ("<shell> <script>" for ShellPrefixed services).
type SpawnError struct {
	Source  error
	Message string
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %q: %v", e.Message, e.Source)
}

func (e *SpawnError) Unwrap() error { return e.Source }

// ChildExitError wraps an unexpected wait() failure (ECHILD is filtered
// out before this is constructed — the reaper may have already consumed
// the status, which is benign).
type ChildExitError struct {
	Source error
}

func (e *ChildExitError) Error() string {
	return fmt.Sprintf("error waiting for child: %v", e.Source)
}

func (e *ChildExitError) Unwrap() error { return e.Source }

// ChildNotFoundError is returned when a signal delivery targets a pid that
// no longer exists for reasons other than ESRCH-is-benign (i.e. anything
// the caller didn't already treat as silent success).
type ChildNotFoundError struct {
	Pid int
}

func (e *ChildNotFoundError) Error() string {
	return fmt.Sprintf("child pid %d not found", e.Pid)
}

// KillError wraps an unexpected failure delivering a signal to a child.
type KillError struct {
	Pid    int
	Signal string
	Source error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("failed to send %s to pid %d: %v", e.Signal, e.Pid, e.Source)
}

func (e *KillError) Unwrap() error { return e.Source }

// CronConfigError tags configuration problems discovered when a cron
// runner task starts, rather than at config-load time.
type CronConfigError struct {
	Reason string
}

func (e *CronConfigError) Error() string {
	return "cron config: " + e.Reason
}

// ClashingConfig is the CronConfigError reason used when a crontab entry
// violates the day-of-month/day-of-week clash invariant.
const ClashingConfig = "clashing day-of-month/day-of-week config"

// SignalError wraps a failure setting up a signal stream.
type SignalError struct {
	Source error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("failed to set up signal handling: %v", e.Source)
}

func (e *SignalError) Unwrap() error { return e.Source }
