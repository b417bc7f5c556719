package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csresolve/internal/project"
	"csresolve/pkg/ignore"
	"csresolve/pkg/model"
	"csresolve/pkg/structdiff"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sampleProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.FileName), "name: shapes\nsources: [src]\nimplicit_usings: [System]\n")
	writeFile(t, filepath.Join(dir, "src", "Shape.cs"), `
namespace Shapes
{
    public interface IShape { double Area(); }
    public class Circle : IShape
    {
        private double radius;
        public double Area() { return Math.PI * radius * radius; }
    }
}`)
	writeFile(t, filepath.Join(dir, "src", "Broken.cs"), `
namespace Shapes
{
    class Broken { Missing value; }
}`)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newCLI()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewCLIHasCommands(t *testing.T) {
	root := newCLI()
	for _, name := range []string{"check", "stats", "types", "files", "watch"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	_, err := run(t, "unknown-command")
	assert.Error(t, err)
}

func TestCheckWritesReport(t *testing.T) {
	dir := sampleProject(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	out, err := run(t, "check", dir, "--out", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "CS0246")
	assert.Contains(t, out, "check: compilation=shapes files=2 types=3 errors=1 warnings=0")
	assert.Contains(t, out, "report: "+reportPath)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var r model.Report
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, "shapes", r.Compilation)
	assert.Equal(t, 1, r.ErrorCount())
}

func TestCheckFailOnErrors(t *testing.T) {
	dir := sampleProject(t)
	_, err := run(t, "check", dir, "--fail-on-errors")
	require.Error(t, err)

	var withCode interface{ ExitCode() int }
	require.True(t, errors.As(err, &withCode))
	assert.Equal(t, 2, withCode.ExitCode())
}

func TestCheckJSONAndOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Program.cs"), `
#if TRACE
class Program { Console console; }
#endif`)

	out, err := run(t, "check", dir, "--json", "--define", "TRACE", "--using", "System", "--log-level", "error")
	require.NoError(t, err)
	var r model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 0, r.ErrorCount())
	assert.Equal(t, 1, r.TypeCount())
	assert.Equal(t, filepath.Base(dir), r.Compilation)

	_, err = run(t, "check", dir, "--platform", "netstandard")
	assert.Error(t, err)
	_, err = run(t, "check", dir, "--log-level", "loud")
	assert.Error(t, err)
}

func TestStatsFromReport(t *testing.T) {
	dir := sampleProject(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")
	_, err := run(t, "check", dir, "--out", reportPath)
	require.NoError(t, err)

	out, err := run(t, "stats", "--report", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "stats: compilation=shapes files=2 types=3")
	assert.Contains(t, out, "diagnostics:\n  CS0246 count=1")
	assert.Contains(t, out, "unresolved:\n  Missing count=1")

	_, err = run(t, "stats", "--report", reportPath, "--top", "0")
	assert.Error(t, err)
}

func TestTypesAndFiles(t *testing.T) {
	dir := sampleProject(t)

	out, err := run(t, "types", dir, "--kind", "class")
	require.NoError(t, err)
	assert.Contains(t, out, "public class Shapes.Circle : System.Object, Shapes.IShape")
	assert.Contains(t, out, "internal class Shapes.Broken : System.Object")
	assert.NotContains(t, out, "interface Shapes.IShape")
	assert.Contains(t, out, "types: 2")

	out, err = run(t, "files", dir, "--sort", "unresolved", "--json")
	require.NoError(t, err)
	var listing struct {
		TotalFiles int `json:"total_files"`
		Entries    []struct {
			Path       string `json:"path"`
			Unresolved int    `json:"unresolved"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, 2, listing.TotalFiles)
	require.Len(t, listing.Entries, 2)
	assert.Equal(t, filepath.Join(dir, "src", "Broken.cs"), listing.Entries[0].Path)
	assert.Equal(t, 1, listing.Entries[0].Unresolved)

	_, err = run(t, "files", dir, "--sort", "bogus")
	assert.Error(t, err)
}

func TestWatchFilters(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "repo")
	matcher := ignore.Default("*.g.cs")

	assert.True(t, isWatchedFile(filepath.Join(root, "src", "App.cs"), nil, root, matcher))
	assert.True(t, isWatchedFile(filepath.Join(root, project.FileName), nil, root, matcher))
	assert.True(t, isWatchedFile(filepath.Join(root, project.IgnoreFileName), nil, root, matcher))
	assert.False(t, isWatchedFile(filepath.Join(root, "src", "App.g.cs"), nil, root, matcher))
	assert.False(t, isWatchedFile(filepath.Join(root, "README.md"), nil, root, matcher))
	assert.False(t, isWatchedFile(filepath.Join(root, ".App.cs.swp"), nil, root, matcher))

	out := filepath.Join(root, "report.yaml")
	assert.False(t, isWatchedFile(out, map[string]bool{out: true}, root, matcher))

	assert.False(t, shouldSkipWatchDir(root, root, matcher))
	assert.True(t, shouldSkipWatchDir(root, filepath.Join(root, ".git"), matcher))
	assert.True(t, shouldSkipWatchDir(root, filepath.Join(root, "src", "obj"), matcher))
	assert.False(t, shouldSkipWatchDir(root, filepath.Join(root, "src"), matcher))
}

func TestPrintChanges(t *testing.T) {
	before := &model.Report{Files: []model.FileSummary{{Path: "a.cs", Types: []model.DeclaredType{{File: "a.cs", Kind: "class", Name: "Old", Line: 1}}}}}
	after := &model.Report{Files: []model.FileSummary{{Path: "a.cs", Types: []model.DeclaredType{{File: "a.cs", Kind: "class", Name: "New", Line: 1}}}}}

	var out bytes.Buffer
	printChanges(&out, structdiff.Compare(before, after))
	assert.Contains(t, out.String(), "watch: changed files=1 types=+1 -1 ~0 diagnostics=+0 -0")
	assert.Contains(t, out.String(), "  + class New (a.cs:1)")
	assert.Contains(t, out.String(), "  - class Old (a.cs:1)")
}
