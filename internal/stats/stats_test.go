package stats

import (
	"testing"

	"csresolve/pkg/diag"
	"csresolve/pkg/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Compilation: "demo",
		SessionID:   "session",
		Files: []model.FileSummary{
			{
				Path:  "a.cs",
				Types: []model.DeclaredType{{Name: "A"}, {Name: "B"}},
				References: []model.Reference{
					{Name: "int", Target: "type", Mode: "platform", Resolved: "System.Int32"},
					{Name: "string", Target: "type", Mode: "platform", Resolved: "System.String"},
					{Name: "Missing", Target: "unresolved", Mode: "unresolved", Code: "CS0246"},
				},
			},
			{
				Path:  "b.cs",
				Types: []model.DeclaredType{{Name: "C"}},
				References: []model.Reference{
					{Name: "Missing", Target: "unresolved", Mode: "unresolved", Code: "CS0246"},
					{Name: "T", Target: "ambiguous", Mode: "unresolved", Candidates: []string{"N1.T", "N2.T"}, Code: "CS0104"},
				},
			},
			{Path: "c.cs"},
		},
		Diagnostics: []diag.Diagnostic{
			{Code: "CS0246", Severity: diag.SeverityError},
			{Code: "CS0246", Severity: diag.SeverityError},
			{Code: "CS0104", Severity: diag.SeverityError},
			{Code: "CS1030", Severity: diag.SeverityWarning},
		},
		Counters: model.Counters{Locations: 5, ResolutionCounter: 5, Unresolved: 2, Ambiguous: 1},
	}
}

func TestBuildAggregatesCounts(t *testing.T) {
	report, err := Build(sampleReport(), Options{TopFiles: 1})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if report.FileCount != 3 || report.TypeCount != 3 || report.ReferenceCount != 5 {
		t.Fatalf("unexpected report totals: %+v", report)
	}
	if report.ErrorCount != 3 || report.WarningCount != 1 {
		t.Fatalf("unexpected diagnostic totals: %+v", report)
	}
	if report.Counters.Locations != 5 || report.SessionID != "session" {
		t.Fatalf("counters not carried over: %+v", report)
	}
	if report.Modes[0] != (Count{Name: "unresolved", Count: 3}) || report.Modes[1] != (Count{Name: "platform", Count: 2}) {
		t.Fatalf("unexpected modes: %+v", report.Modes)
	}
	if len(report.Targets) != 3 || report.Targets[0] != (Count{Name: "type", Count: 2}) || report.Targets[1].Name != "unresolved" {
		t.Fatalf("unexpected targets: %+v", report.Targets)
	}
	if report.Diagnostics[0] != (Count{Name: "CS0246", Count: 2}) || report.Diagnostics[1].Name != "CS0104" {
		t.Fatalf("unexpected diagnostics: %+v", report.Diagnostics)
	}
	if len(report.TopFiles) != 1 || report.TopFiles[0].Path != "b.cs" || report.TopFiles[0].Unresolved != 2 {
		t.Fatalf("unexpected top files: %+v", report.TopFiles)
	}
}

func TestBuildTopUnresolved(t *testing.T) {
	report, err := Build(sampleReport(), Options{TopUnresolved: 1})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(report.Unresolved) != 1 || report.Unresolved[0] != (Count{Name: "Missing", Count: 2}) {
		t.Fatalf("unexpected unresolved names: %+v", report.Unresolved)
	}
	if len(report.TopFiles) != 3 {
		t.Fatalf("expected default top files to keep all 3, got %d", len(report.TopFiles))
	}
}

func TestBuildNilReport(t *testing.T) {
	if _, err := Build(nil, Options{}); err == nil {
		t.Fatal("expected nil report to fail")
	}
}
