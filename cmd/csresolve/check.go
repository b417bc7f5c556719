package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"csresolve/pkg/compilation"
	"csresolve/pkg/model"
	"csresolve/pkg/report"
)

func newCheckCmd(globals *globalFlags) *cobra.Command {
	var flags buildFlags
	var outPath string
	var jsonOutput bool
	var failOnErrors bool

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Compile C# sources and report name and type resolution diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, globals)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			c, err := compileTarget(ctx, targetArg(args), &flags, logger, nil)
			if err != nil {
				return err
			}
			r, err := writeReport(ctx, c, outPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := emitJSON(out, r); err != nil {
					return err
				}
			} else {
				printCheck(out, c, r)
				if strings.TrimSpace(outPath) != "" {
					fmt.Fprintf(out, "report: %s\n", outPath)
				}
			}

			if failOnErrors && r.ErrorCount() > 0 {
				return exitCodeError{code: 2, err: errors.New("compilation has errors")}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "write the report snapshot to this path or URL")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the report as JSON")
	cmd.Flags().BoolVar(&failOnErrors, "fail-on-errors", false, "exit with code 2 when any error diagnostic is reported")
	return cmd
}

func writeReport(ctx context.Context, c *compilation.Compilation, outPath string) (*model.Report, error) {
	r := report.Build(c, time.Now())
	if strings.TrimSpace(outPath) == "" {
		return r, nil
	}
	return r, report.Save(ctx, outPath, r)
}

func printCheck(w io.Writer, c *compilation.Compilation, r *model.Report) {
	for _, d := range c.Diagnostics() {
		fmt.Fprintln(w, d.Error())
	}
	counters := r.Counters
	fmt.Fprintf(w,
		"check: compilation=%s files=%d types=%d errors=%d warnings=%d\n",
		r.Compilation,
		r.FileCount(),
		r.TypeCount(),
		r.ErrorCount(),
		r.WarningCount(),
	)
	fmt.Fprintf(w,
		"resolution: locations=%d system=%d source=%d referenced=%d namespace=%d alias=%d name=%d type-parameter=%d unresolved=%d ambiguous=%d\n",
		counters.Locations,
		counters.ResolvedToSystemType,
		counters.ResolvedToSourceType,
		counters.ResolvedToReferencedType,
		counters.ResolvedToNamespace,
		counters.ResolvedToHierarchy,
		counters.ResolvedToName,
		counters.ResolvedToTypeParameter,
		counters.Unresolved,
		counters.Ambiguous,
	)
}
