// Package main is the entry point for the toggl2jira CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/toggl2jira/cmd"
	"github.com/danielolaszy/toggl2jira/internal/logging"
)

// main executes the root command and exits non-zero when it fails.
func main() {
	logging.Info("starting toggl2jira", "version", "1.0.0", "log_level", logging.LevelFromEnv())

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
