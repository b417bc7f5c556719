// Package structdiff compares two report snapshots to detect added, removed
// and modified declared types, and diagnostics that appeared or went away.
package structdiff

import (
	"sort"
	"strings"

	"csresolve/pkg/diag"
	"csresolve/pkg/model"
)

type TypeRef struct {
	File   string `json:"file"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Access string `json:"access"`
	Line   int    `json:"line"`
}

type ModifiedType struct {
	Before TypeRef  `json:"before"`
	After  TypeRef  `json:"after"`
	Fields []string `json:"fields"`
}

// DiagnosticRef identifies a diagnostic independent of its column.
type DiagnosticRef struct {
	File    string `json:"file"`
	Code    string `json:"code"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type Stats struct {
	AddedTypes         int `json:"added_types"`
	RemovedTypes       int `json:"removed_types"`
	ModifiedTypes      int `json:"modified_types"`
	AddedDiagnostics   int `json:"added_diagnostics"`
	RemovedDiagnostics int `json:"removed_diagnostics"`
	ChangedFiles       int `json:"changed_files"`
}

type Report struct {
	BeforeSession      string          `json:"before_session,omitempty"`
	AfterSession       string          `json:"after_session,omitempty"`
	AddedTypes         []TypeRef       `json:"added_types,omitempty"`
	RemovedTypes       []TypeRef       `json:"removed_types,omitempty"`
	ModifiedTypes      []ModifiedType  `json:"modified_types,omitempty"`
	AddedDiagnostics   []DiagnosticRef `json:"added_diagnostics,omitempty"`
	RemovedDiagnostics []DiagnosticRef `json:"removed_diagnostics,omitempty"`
	Stats              Stats           `json:"stats"`
}

// Changed reports whether anything differs between the snapshots.
func (r Report) Changed() bool {
	s := r.Stats
	return s.AddedTypes+s.RemovedTypes+s.ModifiedTypes+s.AddedDiagnostics+s.RemovedDiagnostics > 0
}

func Compare(before, after *model.Report) Report {
	report := Report{}
	if before != nil {
		report.BeforeSession = before.SessionID
	}
	if after != nil {
		report.AfterSession = after.SessionID
	}

	beforeTypes := flattenTypes(before)
	afterTypes := flattenTypes(after)

	for key, afterType := range afterTypes {
		beforeType, exists := beforeTypes[key]
		if !exists {
			report.AddedTypes = append(report.AddedTypes, toTypeRef(afterType))
			continue
		}

		fields := changedFields(beforeType, afterType)
		if len(fields) == 0 {
			continue
		}

		report.ModifiedTypes = append(report.ModifiedTypes, ModifiedType{
			Before: toTypeRef(beforeType),
			After:  toTypeRef(afterType),
			Fields: fields,
		})
	}

	for key, beforeType := range beforeTypes {
		if _, exists := afterTypes[key]; exists {
			continue
		}
		report.RemovedTypes = append(report.RemovedTypes, toTypeRef(beforeType))
	}

	report.AddedDiagnostics, report.RemovedDiagnostics = compareDiagnostics(before, after)
	sortTypeRefs(report.AddedTypes)
	sortTypeRefs(report.RemovedTypes)
	sort.Slice(report.ModifiedTypes, func(i, j int) bool {
		left := report.ModifiedTypes[i].After
		right := report.ModifiedTypes[j].After
		if left.File == right.File {
			if left.Line == right.Line {
				return left.Name < right.Name
			}
			return left.Line < right.Line
		}
		return left.File < right.File
	})

	report.Stats = Stats{
		AddedTypes:         len(report.AddedTypes),
		RemovedTypes:       len(report.RemovedTypes),
		ModifiedTypes:      len(report.ModifiedTypes),
		AddedDiagnostics:   len(report.AddedDiagnostics),
		RemovedDiagnostics: len(report.RemovedDiagnostics),
		ChangedFiles:       countChangedFiles(report),
	}
	return report
}

// flattenTypes keys types by full name; a partial type moving between files
// is a modification, not a removal.
func flattenTypes(r *model.Report) map[string]model.DeclaredType {
	flat := make(map[string]model.DeclaredType, r.TypeCount())
	if r == nil {
		return flat
	}

	for _, file := range r.Files {
		for _, t := range file.Types {
			flat[t.Name] = t
		}
	}
	return flat
}

func toTypeRef(t model.DeclaredType) TypeRef {
	return TypeRef{
		File:   t.File,
		Kind:   t.Kind,
		Name:   t.Name,
		Access: t.Access,
		Line:   t.Line,
	}
}

func changedFields(before, after model.DeclaredType) []string {
	fields := make([]string, 0, 4)
	if before.Kind != after.Kind {
		fields = append(fields, "kind")
	}
	if before.Access != after.Access {
		fields = append(fields, "access")
	}
	if before.Base != after.Base || strings.Join(before.Interfaces, ",") != strings.Join(after.Interfaces, ",") {
		fields = append(fields, "supertypes")
	}
	if before.Parts != after.Parts {
		fields = append(fields, "parts")
	}
	if before.File != after.File || before.Line != after.Line {
		fields = append(fields, "location")
	}
	return fields
}

func sortTypeRefs(items []TypeRef) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].File == items[j].File {
			if items[i].Line == items[j].Line {
				return items[i].Name < items[j].Name
			}
			return items[i].Line < items[j].Line
		}
		return items[i].File < items[j].File
	})
}

func compareDiagnostics(before, after *model.Report) ([]DiagnosticRef, []DiagnosticRef) {
	beforeSet := diagnosticSet(before)
	afterSet := diagnosticSet(after)

	added := make([]DiagnosticRef, 0, 4)
	removed := make([]DiagnosticRef, 0, 4)
	for ref, count := range afterSet {
		for i := beforeSet[ref]; i < count; i++ {
			added = append(added, ref)
		}
	}
	for ref, count := range beforeSet {
		for i := afterSet[ref]; i < count; i++ {
			removed = append(removed, ref)
		}
	}
	sortDiagnosticRefs(added)
	sortDiagnosticRefs(removed)
	return added, removed
}

func diagnosticSet(r *model.Report) map[DiagnosticRef]int {
	set := map[DiagnosticRef]int{}
	if r == nil {
		return set
	}
	for _, d := range r.Diagnostics {
		set[toDiagnosticRef(d)]++
	}
	return set
}

func toDiagnosticRef(d diag.Diagnostic) DiagnosticRef {
	return DiagnosticRef{File: d.File, Code: d.Code, Line: d.Line, Message: d.Message}
}

func sortDiagnosticRefs(items []DiagnosticRef) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].File != items[j].File {
			return items[i].File < items[j].File
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		if items[i].Code != items[j].Code {
			return items[i].Code < items[j].Code
		}
		return items[i].Message < items[j].Message
	})
}

func countChangedFiles(report Report) int {
	seen := map[string]bool{}
	for _, item := range report.AddedTypes {
		seen[item.File] = true
	}
	for _, item := range report.RemovedTypes {
		seen[item.File] = true
	}
	for _, item := range report.ModifiedTypes {
		seen[item.After.File] = true
	}
	for _, item := range report.AddedDiagnostics {
		seen[item.File] = true
	}
	for _, item := range report.RemovedDiagnostics {
		seen[item.File] = true
	}
	return len(seen)
}
