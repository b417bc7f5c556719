package model

import (
	"testing"

	"csresolve/pkg/diag"
)

func sampleReport() *Report {
	return &Report{
		Files: []FileSummary{
			{
				Path: "a.cs",
				Types: []DeclaredType{
					{File: "a.cs", Name: "App.Shape", Kind: "class", Access: "public", Line: 3},
					{File: "a.cs", Name: "App.Shape.Part", Kind: "struct", Access: "private", Line: 5},
				},
				References: []Reference{
					{File: "a.cs", Name: "double", Target: "type", Mode: "platform", Resolved: "System.Double"},
					{File: "a.cs", Name: "Missing", Target: "unresolved", Mode: "unresolved", Code: "CS0246"},
				},
			},
			{
				Path: "b.cs",
				References: []Reference{
					{File: "b.cs", Name: "T", Target: "ambiguous", Mode: "unresolved", Candidates: []string{"N1.T", "N2.T"}, Code: "CS0104"},
				},
			},
			{Path: "c.cs"},
		},
		Diagnostics: []diag.Diagnostic{
			{Code: "CS0246", Severity: diag.SeverityError},
			{Code: "CS0104", Severity: diag.SeverityError},
			{Code: "CS1030", Severity: diag.SeverityWarning},
		},
	}
}

func TestReportCounts(t *testing.T) {
	r := sampleReport()
	if got := r.FileCount(); got != 3 {
		t.Errorf("FileCount() = %d, want 3", got)
	}
	if got := r.TypeCount(); got != 2 {
		t.Errorf("TypeCount() = %d, want 2", got)
	}
	if got := r.ReferenceCount(); got != 3 {
		t.Errorf("ReferenceCount() = %d, want 3", got)
	}
	if got := r.ErrorCount(); got != 2 {
		t.Errorf("ErrorCount() = %d, want 2", got)
	}
	if got := r.WarningCount(); got != 1 {
		t.Errorf("WarningCount() = %d, want 1", got)
	}
}

func TestReportUnresolved(t *testing.T) {
	unresolved := sampleReport().Unresolved()
	if len(unresolved) != 2 {
		t.Fatalf("len(Unresolved()) = %d, want 2", len(unresolved))
	}
	if unresolved[0].Name != "Missing" || unresolved[1].Name != "T" {
		t.Errorf("Unresolved() = %q, %q, want Missing, T", unresolved[0].Name, unresolved[1].Name)
	}
}

func TestReportNilSafety(t *testing.T) {
	var r *Report
	if got := r.FileCount(); got != 0 {
		t.Errorf("FileCount() on nil = %d, want 0", got)
	}
	if got := r.TypeCount(); got != 0 {
		t.Errorf("TypeCount() on nil = %d, want 0", got)
	}
	if got := r.ReferenceCount(); got != 0 {
		t.Errorf("ReferenceCount() on nil = %d, want 0", got)
	}
	if got := r.ErrorCount(); got != 0 {
		t.Errorf("ErrorCount() on nil = %d, want 0", got)
	}
	if got := r.Unresolved(); got != nil {
		t.Errorf("Unresolved() on nil = %v, want nil", got)
	}
}

func TestReferenceIsResolved(t *testing.T) {
	if !(Reference{Resolved: "System.String"}).IsResolved() {
		t.Error("reference with a target should be resolved")
	}
	if (Reference{Candidates: []string{"A", "B"}}).IsResolved() {
		t.Error("ambiguous reference should not be resolved")
	}
}
