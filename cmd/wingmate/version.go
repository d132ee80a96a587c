package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the wingmate release version; overridden at build time via
// -ldflags "-X main.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the wingmate version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wingmate version %s\n", Version)
	},
}
