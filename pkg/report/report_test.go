package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csresolve/pkg/compilation"
	"csresolve/pkg/model"
)

func compile(t *testing.T, texts ...string) *compilation.Compilation {
	t.Helper()
	var sources []compilation.Source
	for i, text := range texts {
		sources = append(sources, compilation.Source{Path: filepath.Join("src", string(rune('a'+i))+".cs"), Content: []byte(text)})
	}
	c := compilation.New(compilation.Options{Name: "demo"})
	require.NoError(t, c.Parse(context.Background(), sources))
	return c
}

func TestBuild(t *testing.T) {
	c := compile(t, `
namespace N1 { public class T {} }
namespace N2 { public class T {} }`, `
using N1;
using N2;
class Holder : System.IDisposable
{
    T item;
    Missing other;
    public void Dispose() {}
}`)
	generated := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	r := Build(c, generated)

	assert.Equal(t, model.Version, r.Version)
	assert.Equal(t, "demo", r.Compilation)
	assert.Equal(t, c.Session().ID, r.SessionID)
	assert.True(t, r.GeneratedAt.Equal(generated))
	require.Equal(t, 2, r.FileCount())
	assert.Equal(t, 3, r.TypeCount())

	holder := r.Files[1].Types[0]
	assert.Equal(t, "Holder", holder.Name)
	assert.Equal(t, "class", holder.Kind)
	assert.Equal(t, "internal", holder.Access)
	assert.Equal(t, "System.Object", holder.Base)
	assert.Equal(t, []string{"System.IDisposable"}, holder.Interfaces)
	assert.Equal(t, filepath.Join("src", "b.cs"), holder.File)

	unresolved := r.Unresolved()
	require.Len(t, unresolved, 2)
	assert.Equal(t, "T", unresolved[0].Name)
	assert.Equal(t, "ambiguous", unresolved[0].Target)
	assert.Equal(t, []string{"N1.T", "N2.T"}, unresolved[0].Candidates)
	assert.Equal(t, "CS0104", unresolved[0].Code)
	assert.Equal(t, "Missing", unresolved[1].Name)
	assert.Equal(t, "CS0246", unresolved[1].Code)

	assert.Equal(t, r.Counters.Locations, r.ReferenceCount())
	assert.Equal(t, 1, r.Counters.Ambiguous)
	assert.Equal(t, 2, r.ErrorCount())
}

func TestSaveLoad(t *testing.T) {
	r := Build(compile(t, `class C { int n; }`), time.Now())
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, Save(context.Background(), path, r))
	loaded, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, r.SessionID, loaded.SessionID)
	assert.Equal(t, r.Files, loaded.Files)
	assert.Equal(t, r.Counters, loaded.Counters)
	assert.True(t, r.GeneratedAt.Equal(loaded.GeneratedAt))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestSaveNil(t *testing.T) {
	assert.NoError(t, Save(context.Background(), filepath.Join(t.TempDir(), "nil.json"), nil))
}
