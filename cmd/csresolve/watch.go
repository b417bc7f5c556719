package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/viant/gmetric"

	"csresolve/internal/project"
	"csresolve/pkg/ignore"
	"csresolve/pkg/model"
	"csresolve/pkg/structdiff"
)

const metricsURI = "/v1/api/metric/"

func newWatchCmd(globals *globalFlags) *cobra.Command {
	var flags buildFlags
	var outPath string
	var debounce time.Duration
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-run check whenever a source or project file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if debounce <= 0 {
				return fmt.Errorf("debounce must be > 0")
			}
			logger, err := newLogger(cmd, globals)
			if err != nil {
				return err
			}
			target := targetArg(args)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics := gmetric.New()
			if strings.TrimSpace(metricsAddr) != "" {
				server := &http.Server{Addr: metricsAddr, Handler: gmetric.NewHandler(metricsURI, metrics)}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("metrics server stopped", "error", err)
					}
				}()
				defer server.Close()
				logger.Info("serving metrics", "addr", metricsAddr, "uri", metricsURI)
			}

			out := cmd.OutOrStdout()
			var previous *model.Report
			run := func(changed []string) {
				if len(changed) > 0 {
					logger.Info("change detected", "files", len(changed))
				}
				c, err := compileTarget(ctx, target, &flags, logger, metrics)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "watch check error: %v\n", err)
					return
				}
				r, err := writeReport(ctx, c, outPath)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "watch save error: %v\n", err)
				}
				if previous != nil {
					diff := structdiff.Compare(previous, r)
					if !diff.Changed() {
						previous = r
						return
					}
					printChanges(out, diff)
				}
				previous = r
				printCheck(out, c, r)
			}
			run(nil)

			cfg, err := project.Find(ctx, target)
			if err != nil {
				return err
			}
			matcher, err := cfg.Matcher(ctx)
			if err != nil {
				return err
			}
			ignorePaths := map[string]bool{}
			if strings.TrimSpace(outPath) != "" {
				if absOut, err := filepath.Abs(outPath); err == nil {
					ignorePaths[filepath.Clean(absOut)] = true
				}
			}

			fmt.Fprintf(out, "watching: debounce=%s target=%s\n", debounce, target)
			if err := watchWithFSNotify(ctx, cfg.BaseDir, debounce, ignorePaths, matcher, logger, run); err != nil {
				return err
			}
			fmt.Fprintln(out, "watch: stopped")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "rewrite the report snapshot after each run")
	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "quiet period before re-running check")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve phase metrics on this address (e.g. :8089)")
	return cmd
}

func printChanges(w io.Writer, diff structdiff.Report) {
	fmt.Fprintf(w,
		"watch: changed files=%d types=+%d -%d ~%d diagnostics=+%d -%d\n",
		diff.Stats.ChangedFiles,
		diff.Stats.AddedTypes,
		diff.Stats.RemovedTypes,
		diff.Stats.ModifiedTypes,
		diff.Stats.AddedDiagnostics,
		diff.Stats.RemovedDiagnostics,
	)
	for _, t := range diff.AddedTypes {
		fmt.Fprintf(w, "  + %s %s (%s:%d)\n", t.Kind, t.Name, t.File, t.Line)
	}
	for _, t := range diff.RemovedTypes {
		fmt.Fprintf(w, "  - %s %s (%s:%d)\n", t.Kind, t.Name, t.File, t.Line)
	}
	for _, t := range diff.ModifiedTypes {
		fmt.Fprintf(w, "  ~ %s %s [%s]\n", t.After.Kind, t.After.Name, strings.Join(t.Fields, ","))
	}
}

func watchWithFSNotify(ctx context.Context, root string, debounce time.Duration, ignorePaths map[string]bool, matcher *ignore.Matcher, logger *slog.Logger, onChange func(changedPaths []string)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absRoot = filepath.Clean(absRoot)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, absRoot, absRoot, matcher); err != nil {
		return err
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	pending := false
	pendingPaths := map[string]bool{}

	resetDebounce := func(path string) {
		pendingPaths[path] = true
		if pending {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		timer.Reset(debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			eventPath := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(eventPath); statErr == nil && info.IsDir() {
					if !shouldSkipWatchDir(absRoot, eventPath, matcher) {
						if err := addWatchRecursive(watcher, eventPath, absRoot, matcher); err != nil {
							logger.Warn("failed to watch directory", "path", eventPath, "error", err)
						}
					}
					continue
				}
			}
			if !isWatchedFile(eventPath, ignorePaths, absRoot, matcher) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			resetDebounce(eventPath)
		case <-timer.C:
			if pending {
				pending = false
				changed := make([]string, 0, len(pendingPaths))
				for path := range pendingPaths {
					changed = append(changed, path)
				}
				sort.Strings(changed)
				pendingPaths = map[string]bool{}
				onChange(changed)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, dir string, root string, matcher *ignore.Matcher) error {
	return filepath.WalkDir(filepath.Clean(dir), func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if shouldSkipWatchDir(root, path, matcher) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func shouldSkipWatchDir(root, path string, matcher *ignore.Matcher) bool {
	if path == root {
		return false
	}
	name := filepath.Base(path)
	if name == ".git" || name == ".hg" || name == ".svn" || name == ".vs" || name == "node_modules" {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	if relPath, err := filepath.Rel(root, path); err == nil {
		return matcher.Match(filepath.ToSlash(relPath), true)
	}
	return false
}

// isWatchedFile keeps sources, project files and ignore files.
func isWatchedFile(path string, ignorePaths map[string]bool, root string, matcher *ignore.Matcher) bool {
	if ignorePaths[path] {
		return false
	}
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") || strings.HasPrefix(base, ".#") {
		return false
	}
	if base == project.IgnoreFileName {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".cs", ".yaml", ".yml":
	default:
		return false
	}
	if relPath, err := filepath.Rel(root, path); err == nil {
		return !matcher.Match(filepath.ToSlash(relPath), false)
	}
	return true
}
