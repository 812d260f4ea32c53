package main

import (
	"os"

	"github.com/sqlsage/sqlsage/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Subcommands render their own errors; flag and usage errors
		// surface through cobra. Either way the exit code is the verdict.
		os.Exit(cli.GetExitCode(err))
	}
}
