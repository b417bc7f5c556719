package scope

import (
	"testing"

	"csresolve/pkg/ast"
)

func TestNamespaceFullName(t *testing.T) {
	h := &Hierarchy{Alias: GlobalAlias}
	h.Root = NewNamespace("", nil, h)
	inner := h.Root.Child("Acme").Child("Tools")

	if got := inner.FullName(); got != "Acme.Tools" {
		t.Fatalf("FullName: expected Acme.Tools, got %q", got)
	}
	if !h.Root.IsGlobal() {
		t.Fatal("root namespace should be global")
	}
	if h.Root.Child("Acme") != inner.Parent {
		t.Fatal("Child should return the existing namespace")
	}
	if got := len(inner.Enclosing()); got != 3 {
		t.Fatalf("Enclosing: expected 3 namespaces, got %d", got)
	}
}

func TestTypeFullName(t *testing.T) {
	h := &Hierarchy{Alias: GlobalAlias}
	h.Root = NewNamespace("", nil, h)
	ns := h.Root.Child("N")
	outer := NewType("Box", 1, ast.KindClass, nil, ns, nil)
	outer.TypeParams = []*TypeParam{{Name: "T", Owner: outer}}
	inner := NewType("Item", 0, ast.KindStruct, nil, ns, outer)

	if got := inner.FullName(); got != "N.Box<T>.Item" {
		t.Fatalf("FullName: expected N.Box<T>.Item, got %q", got)
	}
	if !inner.EnclosedBy(outer) || outer.EnclosedBy(inner) {
		t.Fatal("EnclosedBy should follow the Outer chain only")
	}
	if !inner.IsSealed() || !inner.IsValueType() {
		t.Fatal("struct should be a sealed value type")
	}
}

func TestDerivesFromStopsOnCycle(t *testing.T) {
	a := NewType("A", 0, ast.KindClass, nil, &Namespace{}, nil)
	b := NewType("B", 0, ast.KindClass, nil, &Namespace{}, nil)
	c := NewType("C", 0, ast.KindClass, nil, &Namespace{}, nil)
	a.Base = b
	b.Base = a

	if !a.DerivesFrom(b) {
		t.Fatal("A should derive from B")
	}
	if a.DerivesFrom(c) {
		t.Fatal("A should not derive from C")
	}
	if got := len(a.Chain()); got != 2 {
		t.Fatalf("Chain: expected 2 types, got %d", got)
	}
}

func TestSupertypes(t *testing.T) {
	ns := &Namespace{}
	object := NewType("Object", 0, ast.KindClass, nil, ns, nil)
	iface := NewType("I", 0, ast.KindInterface, nil, ns, nil)
	derived := NewType("J", 0, ast.KindInterface, nil, ns, nil)
	derived.Interfaces = []*Type{iface}
	class := NewType("C", 0, ast.KindClass, nil, ns, nil)
	class.Base = object
	class.Interfaces = []*Type{derived, iface}

	got := class.Supertypes()
	if len(got) != 3 {
		t.Fatalf("Supertypes: expected 3, got %d", len(got))
	}
	if got[0] != object {
		t.Fatalf("Supertypes: expected base class first, got %s", got[0].Name)
	}
	if !class.Implements(iface) {
		t.Fatal("C should implement I through J")
	}
}

func TestTypeParamScopeLookup(t *testing.T) {
	outer := NewTypeParamScope([]*TypeParam{{Name: "T"}, {Name: "U"}}, nil)
	inner := NewTypeParamScope([]*TypeParam{{Name: "T", Ordinal: 0}}, outer)

	if got := inner.Lookup("T"); got != inner.Params[0] {
		t.Fatal("inner T should shadow the outer one")
	}
	if got := inner.Lookup("U"); got != outer.Params[1] {
		t.Fatal("U should be found in the enclosing scope")
	}
	if got := inner.Lookup("V"); got != nil {
		t.Fatalf("unexpected type parameter %v", got)
	}
	if NewTypeParamScope(nil, outer) != outer {
		t.Fatal("an empty parameter list should not create a scope")
	}
}

func TestAccessibilityOf(t *testing.T) {
	tests := []struct {
		mods ast.Modifiers
		def  Accessibility
		want Accessibility
	}{
		{0, AccessInternal, AccessInternal},
		{ast.ModPublic, AccessPrivate, AccessPublic},
		{ast.ModProtected | ast.ModInternal, AccessPrivate, AccessProtectedInternal},
		{ast.ModPrivate | ast.ModProtected, AccessPrivate, AccessPrivateProtected},
		{ast.ModProtected | ast.ModStatic, AccessPrivate, AccessProtected},
		{ast.ModPrivate, AccessPublic, AccessPrivate},
	}
	for _, tt := range tests {
		if got := AccessibilityOf(tt.mods, tt.def); got != tt.want {
			t.Errorf("AccessibilityOf(%s): expected %s, got %s", tt.mods, tt.want, got)
		}
	}
}
