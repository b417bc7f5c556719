package main

import (
	"github.com/spf13/cobra"
)

const version = "0.3.0"

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel  string
	logFormat string
}

func newCLI() *cobra.Command {
	globals := &globalFlags{}
	root := &cobra.Command{
		Use:           "csresolve",
		Short:         "Resolve names and types across C# compilations",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  csresolve check . --out .csresolve/report.json
  csresolve check src --define DEBUG --using System --fail-on-errors
  csresolve stats --report .csresolve/report.json --top-unresolved 20
  csresolve types . --kind interface
  csresolve files . --sort unresolved --top 20
  csresolve watch . --out .csresolve/report.json --metrics-addr :8089`,
	}
	root.PersistentFlags().StringVar(&globals.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&globals.logFormat, "log-format", "text", "log format: text|json")

	root.AddCommand(
		newCheckCmd(globals),
		newStatsCmd(globals),
		newTypesCmd(globals),
		newFilesCmd(globals),
		newWatchCmd(globals),
	)
	return root
}
