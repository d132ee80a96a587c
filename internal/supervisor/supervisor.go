// Package supervisor implements the wingmate runtime: the concurrent
// composition of a signal handler, per-service restart loops, per-crontab
// cron runners, a universal child reaper, and a TERM/KILL shutdown pump.
//
// The cancellation graph is deliberately cyclic (see design notes in
// SPEC_FULL.md §9): the signal handler arms the shutdown pump by
// cancelling servicesCancel; the reaper disarms both the signal handler
// and the pump by cancelling sighandlerExit once no children remain and
// shutdown was requested. Two independent one-shot context.Context
// cancellations plus one mutex-guarded bool are the only shared state —
// no component owns another outright.
package supervisor

import (
	"context"
	"log"
	"sync"

	"github.com/wingmate/wingmate/internal/config"
)

// Supervisor runs every configured service and crontab entry alongside
// the signal handler, reaper, and shutdown pump, and blocks until all of
// them have returned.
type Supervisor struct {
	cfg    *config.Config
	logger *log.Logger

	mu       sync.Mutex
	services []*ServiceSupervisor
	cronJobs []*CronRunner
}

// New builds a Supervisor for the given discovered config.
func New(cfg *config.Config, logger *log.Logger) *Supervisor {
	return &Supervisor{cfg: cfg, logger: logger}
}

// Services returns the per-service supervisors, available only after Run
// has been called (used by tests/observability to inspect live PIDs).
func (s *Supervisor) Services() []*ServiceSupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ServiceSupervisor(nil), s.services...)
}

// CronJobs returns the per-entry cron runners, available only after Run
// has been called.
func (s *Supervisor) CronJobs() []*CronRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*CronRunner(nil), s.cronJobs...)
}

// Run starts every component and blocks until they have all joined —
// which happens only once a shutdown has fully drained (see the package
// doc's cancellation graph). A non-nil error here only ever comes from
// the orchestration loop itself, never from an individual service or
// cron task (those are logged and the supervisor continues running).
func (s *Supervisor) Run(ctx context.Context) error {
	flag := &ShutdownFlag{}

	servicesCancelCtx, servicesCancel := context.WithCancel(context.Background())
	sighandlerExitCtx, sighandlerExitCancel := context.WithCancel(context.Background())

	// An externally cancelled ctx (e.g. in tests) is treated the same as
	// a received signal: it arms shutdown directly.
	go func() {
		<-ctx.Done()
		flag.Set()
		servicesCancel()
	}()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		runReaper(flag, sighandlerExitCancel, s.logger)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runSignalHandler(sighandlerExitCtx, flag, servicesCancel, s.logger)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runShutdownPump(servicesCancelCtx, sighandlerExitCtx, s.logger)
	}()

	s.mu.Lock()
	for _, svc := range s.cfg.Services {
		sup := &ServiceSupervisor{Command: svc}
		s.services = append(s.services, sup)

		wg.Add(1)
		go func(sup *ServiceSupervisor) {
			defer wg.Done()
			sup.run(servicesCancelCtx, s.logger)
		}(sup)
	}

	for _, entry := range s.cfg.Crontab {
		runner := &CronRunner{Entry: entry}
		s.cronJobs = append(s.cronJobs, runner)

		wg.Add(1)
		go func(runner *CronRunner) {
			defer wg.Done()
			runner.run(servicesCancelCtx, s.logger)
		}(runner)
	}
	s.mu.Unlock()

	wg.Wait()
	return nil
}
