// Package report turns a finished compilation into a model.Report and
// persists it as JSON through afs, so any afs-supported URL can hold it.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"csresolve/pkg/ast"
	"csresolve/pkg/compilation"
	"csresolve/pkg/model"
	"csresolve/pkg/resolve"
	"csresolve/pkg/scope"
)

// Build snapshots c. Files keep input order; references keep source order.
func Build(c *compilation.Compilation, generatedAt time.Time) *model.Report {
	session := c.Session()
	r := &model.Report{
		Version:     model.Version,
		Compilation: c.Name(),
		SessionID:   session.ID,
		GeneratedAt: generatedAt.UTC(),
		Counters:    counters(session.Counters()),
	}

	byFile := make(map[string][]model.DeclaredType)
	for _, t := range c.DeclaredTypes() {
		declared := declaredType(t)
		byFile[declared.File] = append(byFile[declared.File], declared)
	}
	for _, file := range c.Files() {
		summary := model.FileSummary{Path: file.Path, Types: byFile[file.Path]}
		for _, node := range ast.References(file) {
			info, ok := session.Info(node)
			if !ok {
				continue
			}
			summary.References = append(summary.References, reference(node, info))
		}
		r.Files = append(r.Files, summary)
	}
	for _, d := range c.Diagnostics() {
		r.Diagnostics = append(r.Diagnostics, *d)
	}
	return r
}

func declaredType(t *scope.Type) model.DeclaredType {
	result := model.DeclaredType{
		Name:   t.FullName(),
		Kind:   t.Kind.String(),
		Access: t.Access.String(),
		Parts:  t.PartCount(),
	}
	if decl := t.Decl(); decl != nil {
		pos := decl.NameToken.Pos
		result.File, result.Line = pos.File, pos.Line
	}
	if t.Base != nil {
		result.Base = t.Base.FullName()
	}
	for _, iface := range t.Interfaces {
		result.Interfaces = append(result.Interfaces, iface.FullName())
	}
	return result
}

func reference(node ast.Node, info *resolve.Info) model.Reference {
	pos := node.Pos()
	result := model.Reference{
		File:   pos.File,
		Name:   referenceName(node),
		Line:   pos.Line,
		Column: pos.Column,
		Target: info.Kind().String(),
		Mode:   info.Status().String(),
		Code:   info.Code,
	}
	switch {
	case info.SuccessfullyResolved():
		result.Resolved = info.Resolver().FullName()
	case info.IsAmbiguous():
		for _, item := range info.Items() {
			result.Candidates = append(result.Candidates, item.Resolver.FullName())
		}
	}
	return result
}

func referenceName(node ast.Node) string {
	switch n := node.(type) {
	case *ast.TypeReference:
		return n.String()
	case *ast.NameExpr:
		if n.Alias != "" {
			return n.Alias + "::" + n.Name
		}
		return n.Name
	}
	return ""
}

func counters(c resolve.Counters) model.Counters {
	return model.Counters{
		ResolutionCounter:        c.ResolutionCounter,
		Locations:                c.Locations,
		ResolvedToSystemType:     c.ResolvedToSystemType,
		ResolvedToSourceType:     c.ResolvedToSourceType,
		ResolvedToReferencedType: c.ResolvedToReferencedType,
		ResolvedToNamespace:      c.ResolvedToNamespace,
		ResolvedToHierarchy:      c.ResolvedToHierarchy,
		ResolvedToName:           c.ResolvedToName,
		ResolvedToTypeParameter:  c.ResolvedToTypeParameter,
		Unresolved:               c.Unresolved,
		Ambiguous:                c.Ambiguous,
	}
}

// Save writes r as indented JSON to URL.
func Save(ctx context.Context, URL string, r *model.Report) error {
	if r == nil {
		return nil
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	fs := afs.New()
	if err = fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to save report: %v", URL)
	}
	return nil
}

// Load reads a report written by Save.
func Load(ctx context.Context, URL string) (*model.Report, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load report: %v", URL)
	}

	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "failed to decode report: %v", URL)
	}
	return &r, nil
}
