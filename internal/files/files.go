// Package files discovers C# sources under project roots and lists them with
// their structural density taken from a report.
package files

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	furl "github.com/viant/afs/url"

	"csresolve/pkg/compilation"
	"csresolve/pkg/ignore"
	"csresolve/pkg/model"
)

// Extension is the suffix of discovered source files.
const Extension = ".cs"

// Source is a discovered file before its content is read.
type Source struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// Discover walks every root and returns the .cs files the matcher keeps,
// sorted by path. A root naming a file is returned as is.
func Discover(ctx context.Context, roots []string, matcher *ignore.Matcher) ([]Source, error) {
	fs := afs.New()
	seen := make(map[string]bool)
	var result []Source
	for _, root := range roots {
		object, err := fs.Object(ctx, root)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open source root: %v", root)
		}
		if !object.IsDir() {
			if !seen[root] {
				seen[root] = true
				result = append(result, Source{Path: root, SizeBytes: object.Size()})
			}
			continue
		}
		err = walk(ctx, fs, root, "", matcher, func(path string, object storage.Object) {
			if seen[path] {
				return
			}
			seen[path] = true
			result = append(result, Source{Path: path, SizeBytes: object.Size()})
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

func walk(ctx context.Context, fs afs.Service, root, rel string, matcher *ignore.Matcher, visit func(string, storage.Object)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Join(root, rel)
	objects, err := fs.List(ctx, dir)
	if err != nil {
		return errors.Wrapf(err, "failed to list: %v", dir)
	}
	self, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve: %v", dir)
	}
	for i, object := range objects {
		if object.Name() == "" || filepath.Clean(furl.Path(object.URL())) == self {
			continue
		}
		// afs lists a directory itself first.
		if i == 0 && object.IsDir() && object.Name() == filepath.Base(self) {
			continue
		}
		childRel := filepath.ToSlash(filepath.Join(rel, object.Name()))
		if matcher.Match(childRel, object.IsDir()) {
			continue
		}
		if object.IsDir() {
			if err := walk(ctx, fs, root, childRel, matcher, visit); err != nil {
				return err
			}
			continue
		}
		if !strings.EqualFold(filepath.Ext(object.Name()), Extension) {
			continue
		}
		visit(filepath.Join(root, filepath.FromSlash(childRel)), object)
	}
	return nil
}

// Load reads the content of every source.
func Load(ctx context.Context, sources []Source) ([]compilation.Source, error) {
	fs := afs.New()
	result := make([]compilation.Source, 0, len(sources))
	for _, source := range sources {
		data, err := fs.DownloadWithURL(ctx, source.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read source: %v", source.Path)
		}
		result = append(result, compilation.Source{Path: source.Path, Content: data})
	}
	return result, nil
}

type Options struct {
	MinTypes int
	SortBy   string
	Top      int
}

type Entry struct {
	Path       string `json:"path"`
	Types      int    `json:"types"`
	References int    `json:"references"`
	Unresolved int    `json:"unresolved"`
}

type Report struct {
	Compilation string  `json:"compilation"`
	TotalFiles  int     `json:"total_files"`
	ShownFiles  int     `json:"shown_files"`
	Entries     []Entry `json:"entries,omitempty"`
}

// Build lists the files of r ordered by SortBy: types (default), references,
// unresolved or path.
func Build(r *model.Report, opts Options) (Report, error) {
	if r == nil {
		return Report{}, fmt.Errorf("report is nil")
	}
	if opts.MinTypes < 0 {
		opts.MinTypes = 0
	}
	if opts.Top <= 0 {
		opts.Top = 50
	}
	sortBy := strings.ToLower(strings.TrimSpace(opts.SortBy))
	if sortBy == "" {
		sortBy = "types"
	}
	switch sortBy {
	case "types", "references", "unresolved", "path":
	default:
		return Report{}, fmt.Errorf("unsupported sort %q", opts.SortBy)
	}

	entries := make([]Entry, 0, len(r.Files))
	for _, file := range r.Files {
		if len(file.Types) < opts.MinTypes {
			continue
		}
		entry := Entry{Path: file.Path, Types: len(file.Types), References: len(file.References)}
		for _, ref := range file.References {
			if !ref.IsResolved() {
				entry.Unresolved++
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		var left, right int
		switch sortBy {
		case "path":
			return entries[i].Path < entries[j].Path
		case "references":
			left, right = entries[i].References, entries[j].References
		case "unresolved":
			left, right = entries[i].Unresolved, entries[j].Unresolved
		default:
			left, right = entries[i].Types, entries[j].Types
		}
		if left == right {
			return entries[i].Path < entries[j].Path
		}
		return left > right
	})

	if opts.Top < len(entries) {
		entries = entries[:opts.Top]
	}

	return Report{
		Compilation: r.Compilation,
		TotalFiles:  len(r.Files),
		ShownFiles:  len(entries),
		Entries:     entries,
	}, nil
}
