package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csresolve/pkg/compilation"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const projectYAML = `name: app
sources:
  - src
exclude:
  - "*.g.cs"
defines: [DEBUG]
implicit_usings: [System]
parallelism: 2
references:
  - name: tools
    aliases: [T]
    sources: [lib]
`

func TestFindLoadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), projectYAML)

	cfg, err := Find(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, []string{"src"}, cfg.Sources)
	assert.Equal(t, []string{"DEBUG"}, cfg.Defines)
	assert.Equal(t, []string{"System"}, cfg.ImplicitUsings)
	assert.Equal(t, 2, cfg.Parallelism)
	require.Len(t, cfg.References, 1)
	assert.Equal(t, Reference{Name: "tools", Aliases: []string{"T"}, Sources: []string{"lib"}}, cfg.References[0])
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, []string{filepath.Join(dir, "src")}, cfg.Roots(cfg.Sources))
}

func TestFindDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Widgets")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	cfg, err := Find(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "Widgets", cfg.Name)
	assert.Equal(t, []string{"."}, cfg.Sources)
	assert.Empty(t, cfg.URL)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		description string
		config      Config
		valid       bool
	}{
		{description: "minimal", config: Config{Name: "app"}, valid: true},
		{description: "platform none", config: Config{Name: "app", Platform: compilation.PlatformNone}, valid: true},
		{description: "negative parallelism", config: Config{Name: "app", Parallelism: -1}},
		{description: "unknown platform", config: Config{Name: "app", Platform: "netstandard"}},
		{description: "unnamed reference", config: Config{Name: "app", References: []Reference{{Sources: []string{"lib"}}}}},
		{description: "reference named like project", config: Config{Name: "app", References: []Reference{{Name: "app", Sources: []string{"lib"}}}}},
		{description: "reference without sources", config: Config{Name: "app", References: []Reference{{Name: "lib"}}}},
	}
	for _, testCase := range testCases {
		err := testCase.config.Validate()
		if testCase.valid {
			assert.NoError(t, err, testCase.description)
		} else {
			assert.Error(t, err, testCase.description)
		}
	}
}

func TestNewConfigFromURLErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewConfigFromURL(context.Background(), filepath.Join(dir, FileName))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "sources: [unterminated\n")
	_, err = NewConfigFromURL(context.Background(), bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "parallelism: -3\n")
	_, err = Find(context.Background(), invalid)
	assert.Error(t, err)
}

func TestLoadBuildsCompilationInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), projectYAML)
	writeFile(t, filepath.Join(dir, IgnoreFileName), "Legacy/\n")
	writeFile(t, filepath.Join(dir, "src", "App.cs"), "extern alias T;\nclass App { T::Ext.Tool tool; }")
	writeFile(t, filepath.Join(dir, "src", "App.g.cs"), "class Generated {}")
	writeFile(t, filepath.Join(dir, "src", "obj", "Temp.cs"), "class Temp {}")
	writeFile(t, filepath.Join(dir, "src", "Legacy", "Old.cs"), "class Old {}")
	writeFile(t, filepath.Join(dir, "lib", "Tool.cs"), "namespace Ext { public class Tool {} }")

	cfg, err := Find(context.Background(), dir)
	require.NoError(t, err)
	input, err := cfg.Load(context.Background(), nil, nil)
	require.NoError(t, err)

	require.Len(t, input.Sources, 1)
	assert.Equal(t, filepath.Join(dir, "src", "App.cs"), input.Sources[0].Path)
	assert.Equal(t, "app", input.Options.Name)
	assert.Equal(t, 2, input.Options.Parallelism)
	require.Len(t, input.Options.References, 1)
	assert.Equal(t, "tools", input.Options.References[0].Name)
	require.Len(t, input.Options.References[0].Files, 1)

	c := compilation.New(input.Options)
	require.NoError(t, c.Parse(context.Background(), input.Sources))
	assert.Empty(t, c.Diagnostics())
}
