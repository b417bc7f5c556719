package structdiff

import (
	"testing"

	"csresolve/pkg/diag"
	"csresolve/pkg/model"
)

func TestCompare_TypeAndDiagnosticChanges(t *testing.T) {
	before := &model.Report{
		SessionID: "before",
		Files: []model.FileSummary{
			{
				Path: "a.cs",
				Types: []model.DeclaredType{
					{File: "a.cs", Kind: "class", Name: "App.OldOnly", Access: "public", Line: 3},
					{File: "a.cs", Kind: "class", Name: "App.Shared", Access: "internal", Base: "System.Object", Line: 10},
				},
			},
		},
		Diagnostics: []diag.Diagnostic{
			{File: "a.cs", Code: "CS0246", Line: 4, Message: "type Foo not found"},
			{File: "a.cs", Code: "CS0246", Line: 4, Message: "type Foo not found"},
		},
	}

	after := &model.Report{
		SessionID: "after",
		Files: []model.FileSummary{
			{
				Path: "a.cs",
				Types: []model.DeclaredType{
					{File: "a.cs", Kind: "class", Name: "App.NewOnly", Access: "public", Line: 5},
					{File: "a.cs", Kind: "class", Name: "App.Shared", Access: "public", Base: "App.NewOnly", Line: 10},
				},
			},
			{Path: "b.cs"},
		},
		Diagnostics: []diag.Diagnostic{
			{File: "a.cs", Code: "CS0246", Line: 4, Message: "type Foo not found"},
			{File: "b.cs", Code: "CS0103", Line: 1, Message: "name x not found"},
		},
	}

	report := Compare(before, after)
	if report.BeforeSession != "before" || report.AfterSession != "after" {
		t.Fatalf("unexpected sessions: %q %q", report.BeforeSession, report.AfterSession)
	}
	if report.Stats.AddedTypes != 1 || report.AddedTypes[0].Name != "App.NewOnly" {
		t.Fatalf("unexpected added types: %+v", report.AddedTypes)
	}
	if report.Stats.RemovedTypes != 1 || report.RemovedTypes[0].Name != "App.OldOnly" {
		t.Fatalf("unexpected removed types: %+v", report.RemovedTypes)
	}
	if report.Stats.ModifiedTypes != 1 {
		t.Fatalf("expected 1 modified type, got %d", report.Stats.ModifiedTypes)
	}
	mod := report.ModifiedTypes[0]
	if len(mod.Fields) != 2 || mod.Fields[0] != "access" || mod.Fields[1] != "supertypes" {
		t.Fatalf("unexpected modified fields: %v", mod.Fields)
	}

	if report.Stats.AddedDiagnostics != 1 || report.AddedDiagnostics[0].Code != "CS0103" {
		t.Fatalf("unexpected added diagnostics: %+v", report.AddedDiagnostics)
	}
	if report.Stats.RemovedDiagnostics != 1 || report.RemovedDiagnostics[0].Code != "CS0246" {
		t.Fatalf("unexpected removed diagnostics: %+v", report.RemovedDiagnostics)
	}
	if report.Stats.ChangedFiles != 2 {
		t.Fatalf("expected 2 changed files, got %d", report.Stats.ChangedFiles)
	}
	if !report.Changed() {
		t.Fatal("expected report to be changed")
	}
}

func TestCompare_Unchanged(t *testing.T) {
	snapshot := &model.Report{
		Files: []model.FileSummary{
			{Path: "a.cs", Types: []model.DeclaredType{{File: "a.cs", Kind: "struct", Name: "P", Line: 1}}},
		},
		Diagnostics: []diag.Diagnostic{{File: "a.cs", Code: "CS1030", Line: 2, Message: "todo"}},
	}
	report := Compare(snapshot, snapshot)
	if report.Changed() || report.Stats.ChangedFiles != 0 {
		t.Fatalf("expected no changes, got %+v", report.Stats)
	}
}

func TestCompare_NilBaseline(t *testing.T) {
	after := &model.Report{
		Files: []model.FileSummary{
			{Path: "a.cs", Types: []model.DeclaredType{{File: "a.cs", Kind: "class", Name: "C", Line: 1}}},
		},
	}
	report := Compare(nil, after)
	if report.Stats.AddedTypes != 1 || report.Stats.RemovedTypes != 0 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
	if Compare(nil, nil).Changed() {
		t.Fatal("comparing two nil reports should report no change")
	}
}
