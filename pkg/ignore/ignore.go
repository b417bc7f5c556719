// Package ignore implements gitignore-style pattern matching for excluding
// source files from a compilation.
package ignore

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
)

// DefaultPatterns exclude build output directories.
var DefaultPatterns = []string{"bin/", "obj/"}

type pattern struct {
	raw     string
	negated bool
	dirOnly bool
	glob    string
}

// Matcher evaluates file paths against a set of gitignore-style patterns.
type Matcher struct {
	patterns []pattern
}

// Load reads patterns from URL, one per line.
func Load(ctx context.Context, URL string) (*Matcher, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load ignore file: %v", URL)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read ignore file: %v", URL)
	}
	return ParsePatterns(lines), nil
}

// Default returns a Matcher holding DefaultPatterns followed by extra.
func Default(extra ...string) *Matcher {
	lines := append(append([]string{}, DefaultPatterns...), extra...)
	return ParsePatterns(lines)
}

// Extend returns a Matcher applying the patterns of m, then those of other.
// Later patterns win, so other can re-include what m excludes.
func (m *Matcher) Extend(other *Matcher) *Matcher {
	result := &Matcher{}
	if m != nil {
		result.patterns = append(result.patterns, m.patterns...)
	}
	if other != nil {
		result.patterns = append(result.patterns, other.patterns...)
	}
	return result
}

// ParsePatterns builds a Matcher from raw pattern lines.
func ParsePatterns(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := pattern{raw: line}

		if strings.HasPrefix(line, "!") {
			p.negated = true
			line = line[1:]
		}

		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}

		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match returns true if the given path should be ignored.
// The path should be slash-separated and relative to the project root.
// isDir indicates whether the path refers to a directory.
func (m *Matcher) Match(path string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	path = filepath.ToSlash(path)
	ignored := false

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matchPattern(p.glob, path) {
			ignored = !p.negated
		}
	}
	return ignored
}

// matchPattern checks whether a gitignore glob matches the given path.
// Patterns without a slash match against the basename only.
// Patterns with a slash match against the full path.
func matchPattern(glob, path string) bool {
	if strings.Contains(glob, "/") {
		matched, _ := filepath.Match(glob, path)
		return matched
	}

	// Match against basename
	base := filepath.Base(path)
	if matched, _ := filepath.Match(glob, base); matched {
		return true
	}

	// Also try matching against each path component for directory patterns
	parts := strings.Split(path, "/")
	for _, part := range parts {
		if matched, _ := filepath.Match(glob, part); matched {
			return true
		}
	}
	return false
}
