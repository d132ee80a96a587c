// Command wingmate is a lightweight container-oriented init/supervisor:
// it discovers services and crontab entries from the filesystem, starts
// and restarts them, runs scheduled commands, reaps every orphaned
// child, and coordinates an orderly shutdown on termination signals.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
