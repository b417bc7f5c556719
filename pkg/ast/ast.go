// Package ast defines the syntax tree produced by the parser and walked by the
// declaration builder and the resolver.
//
// Node categories are closed sets expressed as sealed interfaces: every
// declaration implements Decl or Member, every expression Expr and every
// statement Stmt. Consumers dispatch with a type switch.
package ast

import (
	"strings"

	"csresolve/pkg/token"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() token.Position
}

// Decl is a namespace member: a namespace or a type declaration.
type Decl interface {
	Node
	declNode()
}

// Member is a type member declaration.
type Member interface {
	Node
	memberNode()
}

// Modifiers is a set of declaration modifiers.
type Modifiers uint32

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModInternal
	ModStatic
	ModSealed
	ModAbstract
	ModVirtual
	ModOverride
	ModReadonly
	ModConst
	ModExtern
	ModUnsafe
	ModVolatile
	ModNew
	ModPartial
	ModAsync
)

// AccessMask covers the accessibility modifiers.
const AccessMask = ModPublic | ModPrivate | ModProtected | ModInternal

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModPublic, "public"}, {ModPrivate, "private"}, {ModProtected, "protected"},
	{ModInternal, "internal"}, {ModStatic, "static"}, {ModSealed, "sealed"},
	{ModAbstract, "abstract"}, {ModVirtual, "virtual"}, {ModOverride, "override"},
	{ModReadonly, "readonly"}, {ModConst, "const"}, {ModExtern, "extern"},
	{ModUnsafe, "unsafe"}, {ModVolatile, "volatile"}, {ModNew, "new"},
	{ModPartial, "partial"}, {ModAsync, "async"},
}

// ModifierFor returns the modifier flag for a modifier keyword.
func ModifierFor(text string) (Modifiers, bool) {
	for _, item := range modifierNames {
		if item.name == text {
			return item.mod, true
		}
	}
	return 0, false
}

// Has reports whether all of flags are set.
func (m Modifiers) Has(flags Modifiers) bool {
	return m&flags == flags
}

// Access returns only the accessibility modifiers.
func (m Modifiers) Access() Modifiers {
	return m & AccessMask
}

func (m Modifiers) String() string {
	var parts []string
	for _, item := range modifierNames {
		if m&item.mod != 0 {
			parts = append(parts, item.name)
		}
	}
	return strings.Join(parts, " ")
}

// CompilationUnit is one parsed source file.
type CompilationUnit struct {
	Path       string
	Externs    []*ExternAlias
	Usings     []*UsingDirective
	Attributes []*Attribute
	Members    []Decl
	EOF        token.Position
}

func (c *CompilationUnit) Pos() token.Position {
	return token.Position{File: c.Path, Line: 1, Column: 1}
}

// ExternAlias is `extern alias Name;`.
type ExternAlias struct {
	Name  string
	Token token.Token
}

func (e *ExternAlias) Pos() token.Position { return e.Token.Pos }

// UsingDirective is `using N;`, `using static T;` or `using A = N.T;`.
type UsingDirective struct {
	Alias  string
	Static bool
	Global bool
	Target *TypeReference
	Token  token.Token
}

func (u *UsingDirective) Pos() token.Position { return u.Token.Pos }

// IsAlias reports whether the directive introduces an alias.
func (u *UsingDirective) IsAlias() bool { return u.Alias != "" }

// NamespaceDecl is a block or file-scoped namespace declaration.
type NamespaceDecl struct {
	Name       []string
	NameToken  token.Token
	FileScoped bool
	Externs    []*ExternAlias
	Usings     []*UsingDirective
	Members    []Decl
	Token      token.Token
	CloseBrace token.Position
}

func (n *NamespaceDecl) Pos() token.Position { return n.Token.Pos }
func (n *NamespaceDecl) declNode() {}

// FullName returns the dotted namespace name.
func (n *NamespaceDecl) FullName() string { return strings.Join(n.Name, ".") }

// TypeKind classifies type declarations.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindStruct
	KindInterface
	KindEnum
	KindDelegate
)

func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindDelegate:
		return "delegate"
	}
	return "type"
}

// TypeDecl is a class, struct, interface, enum or delegate declaration. It is
// both a namespace member and a type member (nested types).
type TypeDecl struct {
	Kind        TypeKind
	Name        string
	NameToken   token.Token
	Modifiers   Modifiers
	ModToken    token.Token
	Attributes  []*Attribute
	TypeParams  []*TypeParameter
	Bases       []*TypeReference
	Constraints []*ConstraintClause
	Members     []Member
	ReturnType  *TypeReference
	Parameters  []*Parameter
	Token       token.Token
}

func (t *TypeDecl) Pos() token.Position { return t.Token.Pos }
func (t *TypeDecl) declNode() {}
func (t *TypeDecl) memberNode() {}

// Arity returns the number of type parameters.
func (t *TypeDecl) Arity() int { return len(t.TypeParams) }

// TypeParameter is one entry of a type parameter list.
type TypeParameter struct {
	Name     string
	Variance string
	Token    token.Token
}

func (t *TypeParameter) Pos() token.Position { return t.Token.Pos }

// ConstraintKind classifies a single generic constraint.
type ConstraintKind int

const (
	ConstraintType ConstraintKind = iota
	ConstraintClass
	ConstraintStruct
	ConstraintNew
)

// ConstraintClause is `where T : c1, c2`.
type ConstraintClause struct {
	Name        string
	Token       token.Token
	Constraints []*Constraint
}

func (c *ConstraintClause) Pos() token.Position { return c.Token.Pos }

type Constraint struct {
	Kind  ConstraintKind
	Type  *TypeReference
	Token token.Token
}

func (c *Constraint) Pos() token.Position { return c.Token.Pos }

// Attribute is one attribute in an attribute section.
type Attribute struct {
	Target string
	Type   *TypeReference
	Args   []*Argument
}

func (a *Attribute) Pos() token.Position { return a.Type.Pos() }
