// Package compilation drives a whole compilation: parse every file, build
// the declaration space, check declaration modifiers, resolve every
// reference and validate signatures. Source errors end up as diagnostics;
// Parse only fails on cancellation or misconfiguration.
package compilation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/gmetric"

	"csresolve/pkg/access"
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/resolve"
	"csresolve/pkg/scope"
)

// ErrParsed is returned when Parse is called a second time.
var ErrParsed = errors.New("compilation already parsed")

// PlatformNone disables the built-in platform library.
const PlatformNone = "none"

// Reference is a compilation this one is compiled against. Its files are
// declared under each alias, or in the global namespace tree when it has
// none. Diagnostics in referenced files are not reported.
type Reference struct {
	Name    string
	Aliases []string
	Files   []Source
}

// Options configures a Compilation.
type Options struct {
	Name           string
	Defines        []string
	ImplicitUsings []string
	References     []Reference
	// Platform names the platform library: "" or scope.PlatformName for the
	// built-in one, PlatformNone for none.
	Platform    string
	Logger      *slog.Logger
	Metrics     *gmetric.Service
	Parallelism int
}

// Compilation holds the results of one Parse call.
type Compilation struct {
	opts    Options
	logger  *slog.Logger
	metrics *metrics
	bag     *diag.Bag

	files   []*ast.CompilationUnit
	space   *scope.Space
	session *resolve.Session
	engine  *resolve.Engine
	parsed  bool
}

// New creates an empty compilation.
func New(opts Options) *Compilation {
	if opts.Name == "" {
		opts.Name = "main"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compilation{
		opts:    opts,
		logger:  logger,
		metrics: newMetrics(opts.Metrics, opts.Name),
		bag:     diag.NewBag(),
		session: resolve.NewSession(),
	}
}

// Parse compiles files. It returns an error only when ctx is cancelled, the
// options are invalid or the compilation was already parsed; everything
// found in the sources is reported as diagnostics.
func (c *Compilation) Parse(ctx context.Context, files []Source) error {
	if c.parsed {
		return ErrParsed
	}
	c.parsed = true
	if err := c.checkOptions(); err != nil {
		return err
	}

	var refs [][]*ast.CompilationUnit
	err := c.phase("parse", len(files), func() error {
		var err error
		if c.files, err = c.parse(ctx, files, c.bag); err != nil {
			return err
		}
		for _, ref := range c.opts.References {
			parsed, err := c.parse(ctx, ref.Files, nil)
			if err != nil {
				return err
			}
			refs = append(refs, parsed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = c.phase("declare", len(c.files), func() error {
		b := scope.NewBuilder(c.bag)
		if c.opts.Platform != PlatformNone {
			b.AddPlatform()
		}
		for i, ref := range c.opts.References {
			b.AddReference(ref.Name, ref.Aliases, refs[i])
		}
		b.AddSource(c.opts.Name, c.files)
		c.space = b.Build()
		for _, file := range c.files {
			c.session.Register(file)
		}
		access.NewChecker(c.bag).CheckSpace(c.space)
		return ctx.Err()
	})
	if err != nil {
		return err
	}

	c.session.OnResolve = c.metrics.onResolve()
	c.engine = resolve.New(c.space, c.session, c.bag, resolve.WithImplicitUsings(c.opts.ImplicitUsings...))
	err = c.phase("resolve", len(c.files), func() error {
		return c.engine.ResolveFiles(ctx, c.files, c.opts.Parallelism)
	})
	if err != nil {
		return err
	}

	return c.phase("validate", len(c.space.Types), func() error {
		c.engine.Validate()
		return nil
	})
}

func (c *Compilation) checkOptions() error {
	switch c.opts.Platform {
	case "", scope.PlatformName, PlatformNone:
	default:
		return fmt.Errorf("unknown platform %q", c.opts.Platform)
	}
	seen := map[string]bool{c.opts.Name: true}
	for _, ref := range c.opts.References {
		if ref.Name == "" {
			return errors.New("reference without a name")
		}
		if seen[ref.Name] {
			return fmt.Errorf("duplicate compilation name %q", ref.Name)
		}
		seen[ref.Name] = true
	}
	return nil
}

func (c *Compilation) parse(ctx context.Context, sources []Source, sink diag.Sink) ([]*ast.CompilationUnit, error) {
	results := parseFiles(ctx, sources, c.opts.Defines, sink, c.opts.Parallelism)
	files := make([]*ast.CompilationUnit, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			return nil, result.Err
		}
		files = append(files, result.File)
	}
	return files, nil
}

// phase runs fn as one timed step.
func (c *Compilation) phase(name string, size int, fn func() error) error {
	started := time.Now()
	onDone := c.metrics.begin(name, started)
	err := fn()
	onDone(time.Now())
	c.logger.Debug("phase", "phase", name, "files", size, "duration", time.Since(started), "errors", c.bag.ErrorCount())
	return err
}

// Errors returns the error diagnostics in source order.
func (c *Compilation) Errors() []*diag.Diagnostic { return c.bag.Errors() }

// Warnings returns the warning diagnostics in source order.
func (c *Compilation) Warnings() []*diag.Diagnostic { return c.bag.Warnings() }

// Diagnostics returns every diagnostic in source order.
func (c *Compilation) Diagnostics() []*diag.Diagnostic { return c.bag.Sorted() }

// DeclaredTypes returns the types declared by the sources, nested ones
// included, in declaration order. Types rejected as duplicates are left out.
func (c *Compilation) DeclaredTypes() []*scope.Type {
	if c.space == nil {
		return nil
	}
	var result []*scope.Type
	for _, t := range c.space.Types {
		if !t.Detached {
			result = append(result, t)
		}
	}
	return result
}

// Session returns the resolution results.
func (c *Compilation) Session() *resolve.Session { return c.session }

// Space returns the declaration space, nil before Parse.
func (c *Compilation) Space() *scope.Space { return c.space }

// Files returns the parsed source files in input order.
func (c *Compilation) Files() []*ast.CompilationUnit { return c.files }

// Name returns the compilation name.
func (c *Compilation) Name() string { return c.opts.Name }
