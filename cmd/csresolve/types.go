package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"csresolve/pkg/model"
)

func newTypesCmd(globals *globalFlags) *cobra.Command {
	var flags buildFlags
	var reportPath string
	var kind string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "types [path]",
		Short: "List declared types with their base class and interfaces",
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

			r, err := loadOrBuild(ctx, reportPath, targetArg(args), &flags, logger)
			if err != nil {
				return err
			}
			declared := filterTypes(r, kind)

			out := cmd.OutOrStdout()
			if jsonOutput {
				return emitJSON(out, declared)
			}
			for _, t := range declared {
				line := fmt.Sprintf("%s:%d %s %s %s", t.File, t.Line, t.Access, t.Kind, t.Name)
				var supertypes []string
				if t.Base != "" {
					supertypes = append(supertypes, t.Base)
				}
				supertypes = append(supertypes, t.Interfaces...)
				if len(supertypes) > 0 {
					line += " : " + strings.Join(supertypes, ", ")
				}
				if t.Parts > 1 {
					line += fmt.Sprintf(" (partial x%d)", t.Parts)
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "types: %d\n", len(declared))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&reportPath, "report", "", "read a saved report instead of compiling")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind: class|struct|interface|enum|delegate")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}

func filterTypes(r *model.Report, kind string) []model.DeclaredType {
	kind = strings.ToLower(strings.TrimSpace(kind))
	result := make([]model.DeclaredType, 0, r.TypeCount())
	for _, file := range r.Files {
		for _, t := range file.Types {
			if kind != "" && t.Kind != kind {
				continue
			}
			result = append(result, t)
		}
	}
	return result
}
