// Package model defines the report snapshot of a compilation: DeclaredType, Reference, FileSummary and Report.
package model

import (
	"time"

	"csresolve/pkg/diag"
)

// Version is the current report format.
const Version = "1"

// DeclaredType is a type declared by the compilation, reported at its first part.
type DeclaredType struct {
	File       string   `json:"file"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Access     string   `json:"access"`
	Parts      int      `json:"parts,omitempty"`
	Base       string   `json:"base,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	Line       int      `json:"line"`
}

// Reference is one resolved or failed type reference or simple name.
type Reference struct {
	File       string   `json:"file"`
	Name       string   `json:"name"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	Target     string   `json:"target"`
	Mode       string   `json:"mode"`
	Resolved   string   `json:"resolved,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
	Code       string   `json:"code,omitempty"`
}

// IsResolved reports whether the reference found exactly one target.
func (r Reference) IsResolved() bool {
	return r.Resolved != ""
}

// FileSummary holds the types declared in one file and the references it contains.
type FileSummary struct {
	Path       string         `json:"path"`
	Types      []DeclaredType `json:"types,omitempty"`
	References []Reference    `json:"references,omitempty"`
}

// Counters mirrors the resolution tallies of a session.
type Counters struct {
	ResolutionCounter        int `json:"resolution_counter"`
	Locations                int `json:"locations"`
	ResolvedToSystemType     int `json:"resolved_to_system_type"`
	ResolvedToSourceType     int `json:"resolved_to_source_type"`
	ResolvedToReferencedType int `json:"resolved_to_referenced_type"`
	ResolvedToNamespace      int `json:"resolved_to_namespace"`
	ResolvedToHierarchy      int `json:"resolved_to_hierarchy"`
	ResolvedToName           int `json:"resolved_to_name"`
	ResolvedToTypeParameter  int `json:"resolved_to_type_parameter"`
	Unresolved               int `json:"unresolved"`
	Ambiguous                int `json:"ambiguous"`
}

// Report is the snapshot of one compilation run.
type Report struct {
	Version     string            `json:"version"`
	Compilation string            `json:"compilation"`
	SessionID   string            `json:"session_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Files       []FileSummary     `json:"files"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
	Counters    Counters          `json:"counters"`
}

// FileCount returns the number of files in the report.
func (r *Report) FileCount() int {
	if r == nil {
		return 0
	}
	return len(r.Files)
}

// TypeCount returns the number of declared types across all files.
func (r *Report) TypeCount() int {
	if r == nil {
		return 0
	}

	total := 0
	for _, file := range r.Files {
		total += len(file.Types)
	}
	return total
}

// ReferenceCount returns the number of references across all files.
func (r *Report) ReferenceCount() int {
	if r == nil {
		return 0
	}

	total := 0
	for _, file := range r.Files {
		total += len(file.References)
	}
	return total
}

// Unresolved returns the references that did not find exactly one target, in file order.
func (r *Report) Unresolved() []Reference {
	if r == nil {
		return nil
	}

	var result []Reference
	for _, file := range r.Files {
		for _, ref := range file.References {
			if !ref.IsResolved() {
				result = append(result, ref)
			}
		}
	}
	return result
}

// ErrorCount returns the number of error diagnostics.
func (r *Report) ErrorCount() int {
	return r.count(diag.SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (r *Report) WarningCount() int {
	return r.count(diag.SeverityWarning)
}

func (r *Report) count(severity diag.Severity) int {
	if r == nil {
		return 0
	}

	total := 0
	for _, d := range r.Diagnostics {
		if d.Severity == severity {
			total++
		}
	}
	return total
}
