package main

import (
	"github.com/spf13/cobra"
)

const wingmateCmdStr = "wingmate"

var rootCmd = &cobra.Command{
	Use:          wingmateCmdStr,
	Short:        "wingmate — container init/supervisor for services and cron",
	SilenceUsage: true,
	RunE:         runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}
