// Package project loads csresolve.yaml and turns it into compilation inputs.
package project

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/gmetric"
	"gopkg.in/yaml.v3"

	"csresolve/internal/files"
	"csresolve/pkg/compilation"
	"csresolve/pkg/ignore"
	"csresolve/pkg/scope"
)

const (
	// FileName is the project file looked up in a project directory.
	FileName = "csresolve.yaml"
	// IgnoreFileName holds extra exclude patterns next to the project file.
	IgnoreFileName = ".csresolveignore"
)

// Reference is a referenced compilation, optionally bound to extern aliases.
type Reference struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Sources []string `yaml:"sources"`
}

type Config struct {
	Name           string      `yaml:"name"`
	Sources        []string    `yaml:"sources"`
	Exclude        []string    `yaml:"exclude,omitempty"`
	Defines        []string    `yaml:"defines,omitempty"`
	ImplicitUsings []string    `yaml:"implicit_usings,omitempty"`
	Platform       string      `yaml:"platform,omitempty"`
	Parallelism    int         `yaml:"parallelism,omitempty"`
	References     []Reference `yaml:"references,omitempty"`

	// URL is where the config was loaded from; empty for a default config.
	URL string `yaml:"-"`
	// BaseDir anchors relative sources.
	BaseDir string `yaml:"-"`
}

// Default returns the config used when dir holds no project file: every
// source under dir, named after the directory.
func Default(dir string) *Config {
	cfg := &Config{Sources: []string{"."}, BaseDir: dir}
	cfg.Init()
	return cfg
}

// Init fills defaults.
func (c *Config) Init() {
	if len(c.Sources) == 0 {
		c.Sources = []string{"."}
	}
	if c.Name == "" {
		if abs, err := filepath.Abs(c.BaseDir); err == nil {
			c.Name = filepath.Base(abs)
		}
	}
	if c.Name == "" || c.Name == "." || c.Name == string(filepath.Separator) {
		c.Name = "main"
	}
}

// Validate checks the config before any source is read.
func (c *Config) Validate() error {
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0")
	}
	switch c.Platform {
	case "", scope.PlatformName, compilation.PlatformNone:
	default:
		return fmt.Errorf("unsupported platform %q", c.Platform)
	}
	names := map[string]bool{c.Name: true}
	for i, ref := range c.References {
		if strings.TrimSpace(ref.Name) == "" {
			return fmt.Errorf("reference #%d: name is required", i+1)
		}
		if names[ref.Name] {
			return fmt.Errorf("reference %q: duplicate name", ref.Name)
		}
		names[ref.Name] = true
		if len(ref.Sources) == 0 {
			return fmt.Errorf("reference %q: sources are required", ref.Name)
		}
	}
	return nil
}

// NewConfigFromURL loads and validates a project file.
func NewConfigFromURL(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load project: %v", URL)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode project: %v", URL)
	}
	cfg.URL = URL
	cfg.BaseDir = filepath.Dir(URL)
	cfg.Init()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid project: %v", URL)
	}
	return cfg, nil
}

// Find loads target/csresolve.yaml, or target itself when it names a yaml
// file, falling back to Default.
func Find(ctx context.Context, target string) (*Config, error) {
	if ext := strings.ToLower(filepath.Ext(target)); ext == ".yaml" || ext == ".yml" {
		return NewConfigFromURL(ctx, target)
	}
	candidate := filepath.Join(target, FileName)
	ok, err := afs.New().Exists(ctx, candidate)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check project: %v", candidate)
	}
	if ok {
		return NewConfigFromURL(ctx, candidate)
	}
	return Default(target), nil
}

// Roots returns sources resolved against BaseDir.
func (c *Config) Roots(sources []string) []string {
	result := make([]string, 0, len(sources))
	for _, source := range sources {
		if filepath.IsAbs(source) {
			result = append(result, filepath.Clean(source))
			continue
		}
		result = append(result, filepath.Join(c.BaseDir, source))
	}
	return result
}

// Matcher returns the exclude patterns: the build output defaults, Exclude,
// then the ignore file next to the project when present.
func (c *Config) Matcher(ctx context.Context) (*ignore.Matcher, error) {
	matcher := ignore.Default(c.Exclude...)
	ignoreURL := filepath.Join(c.BaseDir, IgnoreFileName)
	ok, err := afs.New().Exists(ctx, ignoreURL)
	if err != nil || !ok {
		return matcher, nil
	}
	extra, err := ignore.Load(ctx, ignoreURL)
	if err != nil {
		return nil, err
	}
	return matcher.Extend(extra), nil
}

// Discover lists the main compilation's sources.
func (c *Config) Discover(ctx context.Context) ([]files.Source, error) {
	matcher, err := c.Matcher(ctx)
	if err != nil {
		return nil, err
	}
	return files.Discover(ctx, c.Roots(c.Sources), matcher)
}

// Input is everything a compilation needs.
type Input struct {
	Options compilation.Options
	Sources []compilation.Source
}

// Load discovers and reads the main sources and every reference.
func (c *Config) Load(ctx context.Context, logger *slog.Logger, metrics *gmetric.Service) (*Input, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	matcher, err := c.Matcher(ctx)
	if err != nil {
		return nil, err
	}

	discovered, err := files.Discover(ctx, c.Roots(c.Sources), matcher)
	if err != nil {
		return nil, err
	}
	sources, err := files.Load(ctx, discovered)
	if err != nil {
		return nil, err
	}
	logger.Info("sources discovered", "compilation", c.Name, "files", len(sources))

	input := &Input{
		Sources: sources,
		Options: compilation.Options{
			Name:           c.Name,
			Defines:        c.Defines,
			ImplicitUsings: c.ImplicitUsings,
			Platform:       c.Platform,
			Parallelism:    c.Parallelism,
			Logger:         logger,
			Metrics:        metrics,
		},
	}
	for _, ref := range c.References {
		discovered, err := files.Discover(ctx, c.Roots(ref.Sources), matcher)
		if err != nil {
			return nil, errors.Wrapf(err, "reference %v", ref.Name)
		}
		refSources, err := files.Load(ctx, discovered)
		if err != nil {
			return nil, errors.Wrapf(err, "reference %v", ref.Name)
		}
		logger.Info("reference discovered", "reference", ref.Name, "aliases", ref.Aliases, "files", len(refSources))
		input.Options.References = append(input.Options.References, compilation.Reference{
			Name:    ref.Name,
			Aliases: ref.Aliases,
			Files:   refSources,
		})
	}
	return input, nil
}
