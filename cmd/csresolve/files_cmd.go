package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"csresolve/internal/files"
)

func newFilesCmd(globals *globalFlags) *cobra.Command {
	var flags buildFlags
	var reportPath string
	var minTypes int
	var sortBy string
	var top int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "files [path]",
		Short: "List compiled files with declared type and reference density",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if minTypes < 0 {
				return fmt.Errorf("min-types must be >= 0")
			}
			if top <= 0 {
				return fmt.Errorf("top must be > 0")
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
			listing, err := files.Build(r, files.Options{MinTypes: minTypes, SortBy: sortBy, Top: top})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return emitJSON(out, listing)
			}
			fmt.Fprintf(out, "files: total=%d shown=%d compilation=%s\n", listing.TotalFiles, listing.ShownFiles, listing.Compilation)
			for _, entry := range listing.Entries {
				fmt.Fprintf(out, "%s types=%d references=%d unresolved=%d\n", entry.Path, entry.Types, entry.References, entry.Unresolved)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&reportPath, "report", "", "read a saved report instead of compiling")
	cmd.Flags().IntVar(&minTypes, "min-types", 0, "minimum declared types per file")
	cmd.Flags().StringVar(&sortBy, "sort", "types", "sort by types|references|unresolved|path")
	cmd.Flags().IntVar(&top, "top", 50, "maximum files to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}
