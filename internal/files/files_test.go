package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"csresolve/pkg/ignore"
	"csresolve/pkg/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscoverSkipsIgnoredAndForeignFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.cs"), "class App {}")
	writeFile(t, filepath.Join(root, "Models", "Shape.cs"), "class Shape {}")
	writeFile(t, filepath.Join(root, "Models", "Shape.g.cs"), "class Generated {}")
	writeFile(t, filepath.Join(root, "README.md"), "# app")
	writeFile(t, filepath.Join(root, "bin", "Debug", "Out.cs"), "class Out {}")
	writeFile(t, filepath.Join(root, "obj", "Temp.cs"), "class Temp {}")

	sources, err := Discover(context.Background(), []string{root}, ignore.Default("*.g.cs"))
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	want := []string{
		filepath.Join(root, "App.cs"),
		filepath.Join(root, "Models", "Shape.cs"),
	}
	if len(sources) != len(want) {
		t.Fatalf("Discover() = %+v, want %v", sources, want)
	}
	for i, path := range want {
		if sources[i].Path != path {
			t.Errorf("sources[%d] = %q, want %q", i, sources[i].Path, path)
		}
	}
	if sources[0].SizeBytes != int64(len("class App {}")) {
		t.Errorf("unexpected size %d", sources[0].SizeBytes)
	}

	loaded, err := Load(context.Background(), sources)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if string(loaded[1].Content) != "class Shape {}" {
		t.Errorf("unexpected content %q", loaded[1].Content)
	}
}

func TestDiscoverFileRootAndDuplicates(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "One.cs")
	writeFile(t, path, "class One {}")

	sources, err := Discover(context.Background(), []string{path, root, path}, nil)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(sources) != 1 || sources[0].Path != path {
		t.Fatalf("expected a single source, got %+v", sources)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(context.Background(), []string{filepath.Join(t.TempDir(), "absent")}, nil)
	if err == nil {
		t.Fatal("expected missing root to fail")
	}
}

func sampleReport() *model.Report {
	return &model.Report{
		Compilation: "demo",
		Files: []model.FileSummary{
			{
				Path:  "a.cs",
				Types: []model.DeclaredType{{Name: "A"}, {Name: "B"}},
				References: []model.Reference{
					{Name: "int", Resolved: "System.Int32"},
				},
			},
			{
				Path:  "b.cs",
				Types: []model.DeclaredType{{Name: "C"}},
				References: []model.Reference{
					{Name: "Missing"},
					{Name: "T", Candidates: []string{"N1.T", "N2.T"}},
					{Name: "string", Resolved: "System.String"},
				},
			},
			{Path: "c.cs"},
		},
	}
}

func TestBuildFiltersAndSorts(t *testing.T) {
	report, err := Build(sampleReport(), Options{MinTypes: 1, SortBy: "unresolved", Top: 10})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if report.Compilation != "demo" || report.TotalFiles != 3 || report.ShownFiles != 2 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	first := report.Entries[0]
	if first.Path != "b.cs" || first.Unresolved != 2 || first.References != 3 {
		t.Fatalf("expected b.cs first by unresolved, got %+v", report.Entries)
	}
}

func TestBuildDefaultSortByTypes(t *testing.T) {
	report, err := Build(sampleReport(), Options{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(report.Entries) != 3 || report.Entries[0].Path != "a.cs" || report.Entries[2].Path != "c.cs" {
		t.Fatalf("unexpected entries: %+v", report.Entries)
	}
}

func TestBuildSortByPathAndTop(t *testing.T) {
	report, err := Build(sampleReport(), Options{SortBy: "path", Top: 2})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(report.Entries) != 2 || report.Entries[0].Path != "a.cs" || report.Entries[1].Path != "b.cs" {
		t.Fatalf("unexpected entries: %+v", report.Entries)
	}
}

func TestBuildInvalidSort(t *testing.T) {
	if _, err := Build(&model.Report{}, Options{SortBy: "bad"}); err == nil {
		t.Fatal("expected invalid sort to fail")
	}
	if _, err := Build(nil, Options{}); err == nil {
		t.Fatal("expected nil report to fail")
	}
}
