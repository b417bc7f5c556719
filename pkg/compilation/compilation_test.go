package compilation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gmetric"

	"csresolve/pkg/diag"
)

func sources(texts ...string) []Source {
	result := make([]Source, len(texts))
	for i, text := range texts {
		result[i] = Source{Path: "file" + string(rune('a'+i)) + ".cs", Content: []byte(text)}
	}
	return result
}

func codes(diagnostics []*diag.Diagnostic) []string {
	var result []string
	for _, d := range diagnostics {
		result = append(result, d.Code)
	}
	return result
}

func TestParseResolvesAcrossFiles(t *testing.T) {
	c := New(Options{Parallelism: 2})
	err := c.Parse(context.Background(), sources(`
using System;
namespace App
{
    public class Shape { public virtual double Area() { return 0; } }
}`, `
using System.Collections.Generic;
namespace App
{
    public class Circle : Shape
    {
        private readonly List<Shape> parts = new List<Shape>();
        public override double Area() { return Math.PI; }
    }
}`))
	require.NoError(t, err)

	assert.Equal(t, []string{diag.CodeNameNotFound}, codes(c.Errors()))
	var names []string
	for _, typ := range c.DeclaredTypes() {
		names = append(names, typ.FullName())
	}
	assert.ElementsMatch(t, []string{"App.Shape", "App.Circle"}, names)

	counters := c.Session().Counters()
	assert.Equal(t, counters.Locations, counters.ResolutionCounter)
	assert.Equal(t, 1, counters.Unresolved)
	assert.Empty(t, c.Session().Pending())
}

func TestImplicitUsingsAndDefines(t *testing.T) {
	c := New(Options{
		ImplicitUsings: []string{"System"},
		Defines:        []string{"DEBUG"},
	})
	err := c.Parse(context.Background(), sources(`
#if DEBUG
class Debug { Console output; }
#else
class Release {}
#endif
#warning check this`))
	require.NoError(t, err)

	assert.Empty(t, c.Errors())
	assert.Equal(t, []string{diag.CodeUserWarning}, codes(c.Warnings()))
	require.Len(t, c.DeclaredTypes(), 1)
	assert.Equal(t, "Debug", c.DeclaredTypes()[0].Name)
}

func TestReferencesUnderAlias(t *testing.T) {
	c := New(Options{
		References: []Reference{
			{Name: "tools", Aliases: []string{"T"}, Files: sources(`namespace Ext { public class Tool : Missing {} }`)},
			{Name: "shared", Files: sources(`namespace Shared { public class Widget {} }`)},
		},
	})
	err := c.Parse(context.Background(), sources(`
extern alias T;
using Shared;
class C { T::Ext.Tool tool; Widget widget; }`))
	require.NoError(t, err)

	assert.Empty(t, c.Diagnostics())
	counters := c.Session().Counters()
	assert.Equal(t, 1, counters.ResolvedToHierarchy)
	assert.Equal(t, 2, counters.ResolvedToReferencedType)
}

func TestAccessModifierChecksRun(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.Parse(context.Background(), sources(`struct S { protected int x; }`)))

	assert.Equal(t, []string{diag.CodeProtectedInStruct}, codes(c.Errors()))
}

func TestWithoutPlatform(t *testing.T) {
	c := New(Options{Platform: PlatformNone})
	require.NoError(t, c.Parse(context.Background(), sources(`class C { int x; }`)))

	assert.Equal(t, []string{diag.CodeTypeNotFound}, codes(c.Errors()))
}

func TestParseErrors(t *testing.T) {
	ctx := context.Background()

	c := New(Options{})
	require.NoError(t, c.Parse(ctx, nil))
	assert.ErrorIs(t, c.Parse(ctx, nil), ErrParsed)

	assert.Error(t, New(Options{Platform: "netstandard"}).Parse(ctx, nil))
	assert.Error(t, New(Options{References: []Reference{{Name: "main"}}}).Parse(ctx, nil))
	assert.Error(t, New(Options{References: []Reference{{}}}).Parse(ctx, nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := New(Options{}).Parse(cancelled, sources(`class C {}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetricsArePublished(t *testing.T) {
	service := gmetric.New()
	c := New(Options{Name: "demo", Metrics: service})
	require.NoError(t, c.Parse(context.Background(), sources(`class C { int x; }`)))

	require.NotNil(t, c.Session().OnResolve)
	for _, phase := range []string{"parse", "declare", "resolve", "validate", "reference"} {
		assert.NotNil(t, service.LookupOperation("demo."+phase), phase)
	}
}

func TestWorkerCount(t *testing.T) {
	assert.Equal(t, 0, workerCount(0, 4))
	assert.Equal(t, 2, workerCount(5, 2))
	assert.Equal(t, 1, workerCount(1, 0))

	t.Setenv(WorkersEnv, "3")
	assert.Equal(t, 3, workerCount(10, 8))
	assert.Equal(t, 2, workerCount(2, 8))

	t.Setenv(WorkersEnv, "bogus")
	assert.Equal(t, 4, workerCount(10, 4))
}
