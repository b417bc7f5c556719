package compilation

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/parser"
)

// WorkersEnv overrides the number of parse workers.
const WorkersEnv = "CSRESOLVE_WORKERS"

// Source is one input file.
type Source struct {
	Path    string
	Content []byte
}

type parseResult struct {
	File *ast.CompilationUnit
	Err  error
}

// parseFiles parses sources on a fixed pool of workers. Results keep the
// order of sources. A cancelled context leaves the remaining results with
// the context error.
func parseFiles(ctx context.Context, sources []Source, defines []string, sink diag.Sink, limit int) []parseResult {
	if len(sources) == 0 {
		return nil
	}

	results := make([]parseResult, len(sources))
	workers := workerCount(len(sources), limit)

	taskCh := make(chan int, len(sources))
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				if err := ctx.Err(); err != nil {
					results[idx] = parseResult{Err: err}
					continue
				}
				source := sources[idx]
				results[idx] = parseResult{File: parser.ParseFile(source.Path, source.Content, defines, sink)}
			}
		}()
	}

	for i := range sources {
		taskCh <- i
	}
	close(taskCh)
	wg.Wait()
	return results
}

// workerCount picks the pool size: the environment override, else the
// configured limit, else GOMAXPROCS, never more than taskCount.
func workerCount(taskCount, limit int) int {
	if taskCount <= 0 {
		return 0
	}

	if raw := strings.TrimSpace(os.Getenv(WorkersEnv)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	workers := limit
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}
	if workers > taskCount {
		workers = taskCount
	}
	return workers
}
