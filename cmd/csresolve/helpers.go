package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/gmetric"

	"csresolve/internal/logging"
	"csresolve/internal/project"
	"csresolve/pkg/compilation"
	"csresolve/pkg/model"
	"csresolve/pkg/report"
)

// buildFlags override the project file.
type buildFlags struct {
	defines     []string
	usings      []string
	platform    string
	parallelism int
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.defines, "define", nil, "preprocessor symbol (repeatable)")
	cmd.Flags().StringSliceVar(&f.usings, "using", nil, "implicit global using namespace (repeatable)")
	cmd.Flags().StringVar(&f.platform, "platform", "", "platform library: mscorlib|none (default from project)")
	cmd.Flags().IntVar(&f.parallelism, "parallelism", 0, "worker limit (0 uses the project value or GOMAXPROCS)")
}

func (f *buildFlags) apply(cfg *project.Config) {
	cfg.Defines = appendUnique(cfg.Defines, f.defines...)
	cfg.ImplicitUsings = appendUnique(cfg.ImplicitUsings, f.usings...)
	if strings.TrimSpace(f.platform) != "" {
		cfg.Platform = f.platform
	}
	if f.parallelism > 0 {
		cfg.Parallelism = f.parallelism
	}
}

func appendUnique(values []string, extra ...string) []string {
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		seen[value] = true
	}
	for _, value := range extra {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		values = append(values, value)
	}
	return values
}

func newLogger(cmd *cobra.Command, globals *globalFlags) (*slog.Logger, error) {
	return logging.New(globals.logLevel, globals.logFormat, cmd.ErrOrStderr())
}

func targetArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

// compileTarget loads the project at target, applies flag overrides and runs
// the compilation.
func compileTarget(ctx context.Context, target string, flags *buildFlags, logger *slog.Logger, metrics *gmetric.Service) (*compilation.Compilation, error) {
	cfg, err := project.Find(ctx, target)
	if err != nil {
		return nil, err
	}
	if flags != nil {
		flags.apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	input, err := cfg.Load(ctx, logger, metrics)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	c := compilation.New(input.Options)
	if err := c.Parse(ctx, input.Sources); err != nil {
		return nil, err
	}
	logger.Info("compilation finished",
		"compilation", c.Name(),
		"files", len(input.Sources),
		"errors", len(c.Errors()),
		"warnings", len(c.Warnings()),
		"duration", time.Since(started))
	return c, nil
}

// loadOrBuild reads a saved report, or compiles target when reportPath is empty.
func loadOrBuild(ctx context.Context, reportPath, target string, flags *buildFlags, logger *slog.Logger) (*model.Report, error) {
	if strings.TrimSpace(reportPath) != "" {
		return report.Load(ctx, reportPath)
	}
	c, err := compileTarget(ctx, target, flags, logger, nil)
	if err != nil {
		return nil, err
	}
	return report.Build(c, time.Now()), nil
}

func emitJSON(w io.Writer, value any) error {
	if w == nil {
		w = os.Stdout
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
