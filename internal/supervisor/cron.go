package supervisor

import (
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/wingmate/wingmate/internal/config"
)

const (
	cronTick         = 20 * time.Second
	cronMinInterFire = 60 * time.Second
	timeOffsetEnvVar = "WINGMATE_TIME_OFFSET"
)

// CronRunner owns one crontab entry: it ticks every 20 seconds, evaluates
// the entry's match predicate against the current wall time, and spawns
// the command when due. Multiple simultaneous invocations of the same
// entry are tracked in an auxiliary bag and all awaited on cancellation.
type CronRunner struct {
	Entry config.CrontabEntry

	mu            sync.Mutex
	lastRunning   time.Time
	invocationsWG sync.WaitGroup
}

// run validates the entry's day-of-month/day-of-week clash invariant at
// task entry (not at config-load time), then ticks until servicesCancel
// fires. A clashing entry fails only this task; the rest of the
// supervisor keeps running.
func (r *CronRunner) run(servicesCancel context.Context, logger *log.Logger) {
	if err := r.Entry.Validate(); err != nil {
		logger.Printf("cron %q: %v", r.Entry.Command, &CronConfigError{Reason: ClashingConfig})
		return
	}

	ticker := time.NewTicker(cronTick)
	defer ticker.Stop()

	for {
		select {
		case <-servicesCancel.Done():
			logger.Printf("cron %q: shutting down, waiting for running invocations", r.Entry.Command)
			r.invocationsWG.Wait()
			return

		case <-ticker.C:
			now, ok := currentWallClock()
			if !ok {
				continue // indeterminate clock: never fire on it
			}
			if r.isDue(now) {
				r.spawnInvocation(servicesCancel, logger)
			}
		}
	}
}

// isDue evaluates the match predicate and enforces the at-most-once-per-
// minute firing gate.
func (r *CronRunner) isDue(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.lastRunning.IsZero() && now.Sub(r.lastRunning) < cronMinInterFire {
		return false
	}

	minute := uint(now.Minute())
	hour := uint(now.Hour())
	day := uint(now.Day())
	month := uint(now.Month())
	weekday := uint(now.Weekday()) // time.Sunday == 0, matches spec's mapping

	matched := r.Entry.Minute.Match(minute) &&
		r.Entry.Hour.Match(hour) &&
		r.Entry.DayOfMonth.Match(day) &&
		r.Entry.Month.Match(month) &&
		r.Entry.DayOfWeek.Match(weekday)

	if matched {
		r.lastRunning = now
	}
	return matched
}

// currentWallClock resolves the wall-clock source: WINGMATE_TIME_OFFSET
// (a signed integer hour offset from UTC) if set and parseable, else
// local time. If neither resolves, the tick is skipped entirely — the
// spec requires never firing on an indeterminate clock.
func currentWallClock() (time.Time, bool) {
	raw := os.Getenv(timeOffsetEnvVar)
	if raw == "" {
		return time.Now(), true
	}

	offsetHours, err := strconv.Atoi(raw)
	if err != nil {
		return time.Now(), true
	}

	loc := time.FixedZone("wingmate-offset", offsetHours*3600)
	return time.Now().In(loc), true
}

// spawnInvocation splits the command on ASCII space, spawns it, and
// tracks it in the invocation bag so shutdown can await every concurrent
// run to completion.
func (r *CronRunner) spawnInvocation(servicesCancel context.Context, logger *log.Logger) {
	fields := splitCommand(r.Entry.Command)
	if len(fields) == 0 {
		logger.Printf("cron %q: empty command after splitting, skipping", r.Entry.Command)
		return
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	invocationID := uuid.New().String()

	if err := cmd.Start(); err != nil {
		logger.Printf("cron %q: %v", r.Entry.Command, &SpawnError{Source: err, Message: r.Entry.Command})
		return
	}

	logger.Printf("cron %q: spawned invocation %s (pid %d)", r.Entry.Command, invocationID, cmd.Process.Pid)

	r.invocationsWG.Add(1)
	go r.awaitInvocation(cmd, invocationID, servicesCancel, logger)
}

func (r *CronRunner) awaitInvocation(cmd *exec.Cmd, invocationID string, servicesCancel context.Context, logger *log.Logger) {
	defer r.invocationsWG.Done()

	waitDone := make(chan error, 1)
	go func() {
		waitDone <- cmd.Wait()
	}()

	select {
	case err := <-waitDone:
		if err != nil && !isECHILD(err) {
			logger.Printf("cron %q invocation %s: %v", r.Entry.Command, invocationID, &ChildExitError{Source: err})
		} else {
			logger.Printf("cron %q invocation %s: completed", r.Entry.Command, invocationID)
		}

	case <-servicesCancel.Done():
		pid := cmd.Process.Pid
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
			logger.Printf("cron %q invocation %s (pid %d): %v", r.Entry.Command, invocationID, pid, &KillError{Pid: pid, Signal: "SIGTERM", Source: err})
		}
		<-waitDone
		logger.Printf("cron %q invocation %s: exited after TERM", r.Entry.Command, invocationID)
	}
}

// splitCommand splits on ASCII space and drops empty segments.
func splitCommand(command string) []string {
	raw := strings.Split(command, " ")
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
