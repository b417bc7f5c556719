package resolve

import (
	"csresolve/pkg/access"
	"csresolve/pkg/ast"
	"csresolve/pkg/scope"
)

// ContextKind is the kind of declaration a reference appears in.
type ContextKind int

const (
	ContextSourceFile ContextKind = iota
	ContextNamespace
	ContextTypeDeclaration
)

// Expect is the category of symbol a reference position accepts.
type Expect int

const (
	ExpectType Expect = iota
	ExpectNamespace
	ExpectNamespaceOrType
	ExpectValue
)

// Context is the lexical position of a reference: the using scope, the
// enclosing namespace and type, the type parameters and locals in scope.
type Context struct {
	Kind       ContextKind
	Unit       *scope.Unit
	Usings     *UsingScope
	Namespace  *scope.Namespace
	Type       *scope.Type
	TypeParams *scope.TypeParamScope
	Locals     *LocalScope
	Expect     Expect
	// Attribute marks attribute type positions, where `X` also finds `XAttribute`.
	Attribute bool
}

func (c Context) site() access.Site {
	return access.Site{Unit: c.Unit, Type: c.Type}
}

func (c Context) expecting(expect Expect) Context {
	c.Expect = expect
	c.Attribute = false
	return c
}

func (c Context) attribute() Context {
	c.Expect = ExpectType
	c.Attribute = true
	return c
}

// UsingScope is the set of using and extern alias directives of one
// compilation unit or namespace body. Directives are visible only at or
// below their declaring scope.
type UsingScope struct {
	Parent     *UsingScope
	Unit       *scope.Unit
	Namespace  *scope.Namespace
	Directives []*ast.UsingDirective
	Externs    []*ast.ExternAlias
}

// directiveScope is the scope directive targets of s are resolved in: the
// outer scopes plus the extern aliases of s, never the usings of s itself.
func (s *UsingScope) directiveScope() *UsingScope {
	return &UsingScope{Parent: s.Parent, Unit: s.Unit, Namespace: s.Namespace, Externs: s.Externs}
}

// Local is a local variable, parameter or range variable.
type Local struct {
	Name string
	Decl ast.Node
	Type *ast.TypeReference
}

// FullName implements scope.Symbol.
func (l *Local) FullName() string { return l.Name }

// LocalScope is one block of local declarations.
type LocalScope struct {
	Parent *LocalScope
	names  map[string]*Local
}

// NewLocalScope opens a block nested in parent.
func NewLocalScope(parent *LocalScope) *LocalScope {
	return &LocalScope{Parent: parent, names: make(map[string]*Local)}
}

// Declare adds a local to s.
func (s *LocalScope) Declare(name string, decl ast.Node, typ *ast.TypeReference) *Local {
	l := &Local{Name: name, Decl: decl, Type: typ}
	s.names[name] = l
	return l
}

// Lookup finds name in s or an enclosing block.
func (s *LocalScope) Lookup(name string) *Local {
	for cur := s; cur != nil; cur = cur.Parent {
		if l, ok := cur.names[name]; ok {
			return l
		}
	}
	return nil
}

// typeParamScope returns the type parameters visible inside t: its own and
// those of every enclosing type.
func typeParamScope(t *scope.Type) *scope.TypeParamScope {
	if t == nil {
		return nil
	}
	return scope.NewTypeParamScope(t.TypeParams, typeParamScope(t.Outer))
}
