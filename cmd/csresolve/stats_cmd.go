package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"csresolve/internal/stats"
)

func newStatsCmd(globals *globalFlags) *cobra.Command {
	var flags buildFlags
	var reportPath string
	var top int
	var topUnresolved int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats [path]",
		Short: "Summarize resolution by mode, target kind and diagnostic code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if top <= 0 || topUnresolved <= 0 {
				return fmt.Errorf("top and top-unresolved must be > 0")
			}
			logger, err := newLogger(cmd, globals)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			r, err := loadOrBuild(ctx, reportPath, targetArg(args), &flags, logger)
			if err != nil {
				return err
			}
			summary, err := stats.Build(r, stats.Options{TopFiles: top, TopUnresolved: topUnresolved})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return emitJSON(out, summary)
			}

			fmt.Fprintf(out,
				"stats: compilation=%s files=%d types=%d references=%d errors=%d warnings=%d\n",
				summary.Compilation,
				summary.FileCount,
				summary.TypeCount,
				summary.ReferenceCount,
				summary.ErrorCount,
				summary.WarningCount,
			)
			sections := []struct {
				title  string
				counts []stats.Count
			}{
				{title: "modes", counts: summary.Modes},
				{title: "targets", counts: summary.Targets},
				{title: "diagnostics", counts: summary.Diagnostics},
				{title: "unresolved", counts: summary.Unresolved},
			}
			for _, section := range sections {
				if len(section.counts) == 0 {
					continue
				}
				fmt.Fprintf(out, "%s:\n", section.title)
				for _, count := range section.counts {
					fmt.Fprintf(out, "  %s count=%d\n", count.Name, count.Count)
				}
			}
			if len(summary.TopFiles) > 0 {
				fmt.Fprintln(out, "top files:")
				for _, file := range summary.TopFiles {
					fmt.Fprintf(out, "  %s types=%d references=%d unresolved=%d\n", file.Path, file.Types, file.References, file.Unresolved)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&reportPath, "report", "", "read a saved report instead of compiling")
	cmd.Flags().IntVar(&top, "top", 10, "number of top files by unresolved references")
	cmd.Flags().IntVar(&topUnresolved, "top-unresolved", 10, "number of most frequent unresolved names")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}
