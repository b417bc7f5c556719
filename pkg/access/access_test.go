package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/parser"
	"csresolve/pkg/scope"
)

type fixture struct {
	space *scope.Space
	lib   *scope.Unit
	bag   *diag.Bag
}

func newFixture(t *testing.T, src string, lib string) *fixture {
	t.Helper()
	bag := diag.NewBag()
	file := parser.ParseFile("main.cs", []byte(src), nil, bag)
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Errors())
	b := scope.NewBuilder(bag)
	b.AddPlatform()
	var unit *scope.Unit
	if lib != "" {
		unit = b.AddReference("lib", nil, []*ast.CompilationUnit{parser.ParseFile("lib.cs", []byte(lib), nil, nil)})
	}
	b.AddSource("main", []*ast.CompilationUnit{file})
	return &fixture{space: b.Build(), lib: unit, bag: bag}
}

func (f *fixture) typ(t *testing.T, name string) *scope.Type {
	t.Helper()
	result := f.space.Lookup(name, 0)
	require.NotNil(t, result, "type %s", name)
	return result
}

func (f *fixture) site(t *scope.Type) Site {
	return Site{Unit: t.Unit, Type: t}
}

func TestTypeDomain(t *testing.T) {
	f := newFixture(t, `
class Outer {
    public class Open {}
    class Hidden {}
}
public class Other {}`, "")
	outer := f.typ(t, "Outer")
	other := f.typ(t, "Other")
	open := outer.Nested[scope.Key{Name: "Open"}]
	hidden := outer.Nested[scope.Key{Name: "Hidden"}]

	assert.True(t, TypeDomain(other).IsUniverse())
	assert.Equal(t, "compilation(main)", TypeDomain(outer).String())
	assert.Equal(t, "compilation(main)", TypeDomain(open).String(), "public nested type is capped by its internal container")
	assert.Equal(t, "type(Outer) & compilation(main)", TypeDomain(hidden).String())

	assert.True(t, IsAccessible(hidden, f.site(outer)))
	assert.True(t, IsAccessible(hidden, f.site(open)), "nested types see the private members of their container")
	assert.False(t, IsAccessible(hidden, f.site(other)))
	assert.False(t, IsAccessible(open, Site{Unit: &scope.Unit{Name: "elsewhere"}}))
	assert.True(t, IsAccessible(other, Site{Unit: &scope.Unit{Name: "elsewhere"}}))
}

func TestMemberDomain(t *testing.T) {
	f := newFixture(t, `
public class Base {
    protected int P;
    protected internal int PI;
    private protected int PP;
    private int Secret;
}
public class Derived : Base {}
public class Stranger {}`, `
public class Remote : Base {}
public class Unrelated {}`)
	base := f.typ(t, "Base")
	derived := f.typ(t, "Derived")
	stranger := f.typ(t, "Stranger")
	remote := f.typ(t, "Remote")
	unrelated := f.typ(t, "Unrelated")
	derived.Base = base
	remote.Base = base

	member := func(name string) *scope.Member { return base.Members[name][0] }
	tests := []struct {
		member string
		site   *scope.Type
		want   bool
	}{
		{"P", derived, true},
		{"P", remote, true},
		{"P", stranger, false},
		{"PI", stranger, true},
		{"PI", remote, true},
		{"PI", unrelated, false},
		{"PP", derived, true},
		{"PP", remote, false},
		{"PP", stranger, false},
		{"Secret", base, true},
		{"Secret", derived, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s from %s", tt.member, tt.site.Name), func(t *testing.T) {
			assert.Equal(t, tt.want, IsAccessible(member(tt.member), f.site(tt.site)))
		})
	}
	assert.Equal(t, remote.Unit, f.lib)
}

func TestDomainsAreMonotonic(t *testing.T) {
	f := newFixture(t, `
namespace N {
    public class A {
        protected internal class B {
            private protected class C { public int X; protected int Y; }
            internal int Z;
        }
        public static void M() {}
    }
    struct S { public int Field; }
}`, "")
	for _, typ := range f.space.Types {
		if typ.Outer != nil {
			assert.True(t, TypeDomain(typ).Subset(TypeDomain(typ.Outer)), "%s within %s", typ.FullName(), typ.Outer.FullName())
		}
		for _, m := range typ.Order {
			assert.True(t, MemberDomain(m).Subset(TypeDomain(typ)), "%s within its type", m.FullName())
		}
	}
}

func TestDomainSubset(t *testing.T) {
	f := newFixture(t, "class A { class B {} } public class C {}", "")
	a := f.typ(t, "A")
	b := a.Nested[scope.Key{Name: "B"}]
	c := f.typ(t, "C")

	assert.False(t, TypeDomain(c).Subset(TypeDomain(a)), "public is wider than internal")
	assert.True(t, TypeDomain(a).Subset(TypeDomain(c)))
	assert.True(t, TypeDomain(b).Subset(TypeDomain(a)))
	assert.True(t, Domain{{Kind: Empty}}.Subset(TypeDomain(b)))
	assert.Equal(t, Domain{{Kind: Empty}}, TypeDomain(b).Intersect(Domain{{Kind: Empty}}))
	assert.Len(t, TypeDomain(b).Intersect(TypeDomain(a)), 2, "intersection drops duplicate elements")
}

func TestCheckerModifiers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "valid combinations", src: "public class A { protected internal int x; private protected int y; internal class N {} }"},
		{name: "two protections", src: "class A { public private int x; }", want: []string{diag.CodeMultipleProtection}},
		{name: "private namespace member", src: "private class A {}", want: []string{diag.CodeNamespaceMemberAccess}},
		{name: "protected namespace member", src: "namespace N { protected class A {} }", want: []string{diag.CodeNamespaceMemberAccess}},
		{name: "protected in struct", src: "struct S { protected int x; }", want: []string{diag.CodeProtectedInStruct}},
		{name: "protected nested type in struct", src: "struct S { protected class N {} }", want: []string{diag.CodeProtectedInStruct}},
		{name: "protected in sealed class", src: "sealed class A { protected void M() {} }", want: []string{diag.CodeProtectedInSealed}},
		{name: "protected override in sealed class", src: "class B { protected virtual void M() {} } sealed class A : B { protected override void M() {} }"},
		{name: "protected in static class", src: "static class A { protected static int x; }", want: []string{diag.CodeProtectedInStatic}},
		{name: "explicit implementation", src: "interface I { void M(); } class A : I { public void I.M() {} }", want: []string{diag.CodeModifierNotValid}},
		{name: "multi-variable field reported once", src: "struct S { protected int x, y; }", want: []string{diag.CodeProtectedInStruct}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.src, "")
			NewChecker(f.bag).CheckSpace(f.space)
			var got []string
			for _, d := range f.bag.Sorted() {
				got = append(got, d.Code)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProtectedInSealedIsWarning(t *testing.T) {
	f := newFixture(t, "sealed class A { protected int x; }", "")
	NewChecker(f.bag).CheckSpace(f.space)
	assert.False(t, f.bag.HasErrors())
	assert.Equal(t, 1, f.bag.WarningCount())
}
