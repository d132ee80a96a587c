package main

import (
	"context"
	"log"
	"os"

	"github.com/kurtosis-tech/stacktrace"
	"github.com/spf13/cobra"

	"github.com/wingmate/wingmate/internal/config"
	"github.com/wingmate/wingmate/internal/supervisor"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Discover services and crontab entries and run the supervisor loop",
	RunE:  runStart,
}

// runStart loads the config, builds the supervisor, and blocks until a
// full shutdown has drained (see internal/supervisor's package doc for
// the cancellation graph). It is also the root command's default action,
// matching the teacher's pattern of a bare invocation doing the single
// thing this binary exists to do.
func runStart(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stdout, "wingmate: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		return stacktrace.Propagate(err, "failed to load config")
	}

	logger.Printf("loaded config: %d services, %d crontab entries", len(cfg.Services), len(cfg.Crontab))
	for _, note := range cfg.Notes {
		logger.Printf("config note: %s", note)
	}

	sup := supervisor.New(cfg, logger)
	return sup.Run(context.Background())
}
