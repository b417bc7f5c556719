// Package scope provides the declaration space for a compilation: the
// namespace and type hierarchies contributed by source files, referenced
// compilations and the platform library. Scopes carry non-owning parent links
// and are read-only once the Builder has finished.
package scope

import (
	"strings"

	"csresolve/pkg/ast"
)

// Origin classifies where a declaration comes from.
type Origin int

const (
	OriginSource Origin = iota
	OriginReferenced
	OriginPlatform
)

func (o Origin) String() string {
	switch o {
	case OriginSource:
		return "source"
	case OriginReferenced:
		return "referenced"
	default:
		return "platform"
	}
}

// Accessibility is the declared accessibility of a type or member.
type Accessibility int

const (
	AccessPrivate Accessibility = iota
	AccessPrivateProtected
	AccessProtected
	AccessInternal
	AccessProtectedInternal
	AccessPublic
)

func (a Accessibility) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessPrivateProtected:
		return "private protected"
	case AccessProtected:
		return "protected"
	case AccessInternal:
		return "internal"
	case AccessProtectedInternal:
		return "protected internal"
	default:
		return "public"
	}
}

// AccessibilityOf maps the access modifiers in mods to an Accessibility,
// falling back to def when none is present. Invalid combinations are reported
// by the access package; here the choice is deterministic.
func AccessibilityOf(mods ast.Modifiers, def Accessibility) Accessibility {
	switch access := mods.Access(); {
	case access == 0:
		return def
	case access.Has(ast.ModProtected | ast.ModInternal):
		return AccessProtectedInternal
	case access.Has(ast.ModPrivate | ast.ModProtected):
		return AccessPrivateProtected
	case access.Has(ast.ModPublic):
		return AccessPublic
	case access.Has(ast.ModInternal):
		return AccessInternal
	case access.Has(ast.ModProtected):
		return AccessProtected
	}
	return AccessPrivate
}

// Key identifies a type within its container.
type Key struct {
	Name  string
	Arity int
}

// Symbol is anything a reference can resolve to.
type Symbol interface {
	FullName() string
}

// Unit is one compilation contributing declarations: the source being
// compiled, a referenced compilation or the platform library.
type Unit struct {
	Name    string
	Origin  Origin
	Aliases []string
}

// Hierarchy is one namespace tree: the global one, or one per extern alias.
type Hierarchy struct {
	Alias string
	Root  *Namespace
}

// FullName implements Symbol.
func (h *Hierarchy) FullName() string { return h.Alias + "::" }

// Namespace is a merged namespace declaration scope. Fragments holds the
// source declarations contributing to it.
type Namespace struct {
	Name       string
	Parent     *Namespace
	Hierarchy  *Hierarchy
	Namespaces map[string]*Namespace
	Types      map[Key][]*Type
	Fragments  []*ast.NamespaceDecl
}

// NewNamespace creates a namespace and attaches it under parent.
func NewNamespace(name string, parent *Namespace, hierarchy *Hierarchy) *Namespace {
	ns := &Namespace{
		Name:       name,
		Parent:     parent,
		Hierarchy:  hierarchy,
		Namespaces: make(map[string]*Namespace),
		Types:      make(map[Key][]*Type),
	}
	if parent != nil {
		parent.Namespaces[name] = ns
	}
	return ns
}

// IsGlobal reports whether ns is a hierarchy root.
func (n *Namespace) IsGlobal() bool { return n.Parent == nil }

// FullName returns the dotted name; the global namespace has an empty name.
func (n *Namespace) FullName() string {
	if n.Parent == nil {
		return ""
	}
	if n.Parent.Parent == nil {
		return n.Name
	}
	return n.Parent.FullName() + "." + n.Name
}

// Child returns the named sub-namespace, creating it when missing.
func (n *Namespace) Child(name string) *Namespace {
	if child, ok := n.Namespaces[name]; ok {
		return child
	}
	return NewNamespace(name, n, n.Hierarchy)
}

// Type is a merged type declaration. Parts holds every partial fragment in
// declaration order; the first part is authoritative.
type Type struct {
	Name       string
	Arity      int
	Kind       ast.TypeKind
	Modifiers  ast.Modifiers
	Access     Accessibility
	Unit       *Unit
	Namespace  *Namespace
	Outer      *Type
	Parts      []*ast.TypeDecl
	TypeParams []*TypeParam
	Nested     map[Key]*Type
	Members    map[string][]*Member
	Order      []*Member
	Detached   bool

	// Base and Interfaces are filled once the base clauses are resolved.
	Base       *Type
	Interfaces []*Type
	BaseState  State
}

// State tracks lazily computed per-symbol data.
type State int

const (
	StatePending State = iota
	StateRunning
	StateDone
)

// NewType creates a type owned by ns (and outer for nested types).
func NewType(name string, arity int, kind ast.TypeKind, unit *Unit, ns *Namespace, outer *Type) *Type {
	return &Type{
		Name:      name,
		Arity:     arity,
		Kind:      kind,
		Unit:      unit,
		Namespace: ns,
		Outer:     outer,
		Nested:    make(map[Key]*Type),
		Members:   make(map[string][]*Member),
	}
}

// Key returns the (name, arity) key of t.
func (t *Type) Key() Key { return Key{Name: t.Name, Arity: t.Arity} }

// PartCount returns the number of merged partial fragments.
func (t *Type) PartCount() int { return len(t.Parts) }

// Decl returns the authoritative declaration, nil for library types.
func (t *Type) Decl() *ast.TypeDecl {
	if len(t.Parts) == 0 {
		return nil
	}
	return t.Parts[0]
}

// FullName returns `N.Outer<T>.Name<U>`.
func (t *Type) FullName() string {
	var b strings.Builder
	if t.Outer != nil {
		b.WriteString(t.Outer.FullName())
		b.WriteByte('.')
	} else if ns := t.Namespace.FullName(); ns != "" {
		b.WriteString(ns)
		b.WriteByte('.')
	}
	b.WriteString(t.Name)
	if t.Arity > 0 {
		names := make([]string, len(t.TypeParams))
		for i, param := range t.TypeParams {
			names[i] = param.Name
		}
		b.WriteByte('<')
		b.WriteString(strings.Join(names, ", "))
		b.WriteByte('>')
	}
	return b.String()
}

func (t *Type) IsClass() bool     { return t.Kind == ast.KindClass }
func (t *Type) IsInterface() bool { return t.Kind == ast.KindInterface }
func (t *Type) IsStatic() bool    { return t.Modifiers.Has(ast.ModStatic) }

// IsValueType reports whether t is a struct or enum.
func (t *Type) IsValueType() bool {
	return t.Kind == ast.KindStruct || t.Kind == ast.KindEnum
}

// IsSealed reports whether t cannot be derived from.
func (t *Type) IsSealed() bool {
	return t.Kind != ast.KindClass || t.Modifiers.Has(ast.ModSealed) || t.Modifiers.Has(ast.ModStatic)
}

// DerivesFrom reports whether base is t or a (transitive) base class of t.
func (t *Type) DerivesFrom(base *Type) bool {
	seen := make(map[*Type]bool)
	for cur := t; cur != nil && !seen[cur]; cur = cur.Base {
		if cur == base {
			return true
		}
		seen[cur] = true
	}
	return false
}

// Implements reports whether iface is among the interfaces of t or of its
// bases, including inherited interfaces.
func (t *Type) Implements(iface *Type) bool {
	seen := make(map[*Type]bool)
	var visit func(*Type) bool
	visit = func(cur *Type) bool {
		if cur == nil || seen[cur] {
			return false
		}
		seen[cur] = true
		if cur == iface {
			return true
		}
		for _, item := range cur.Interfaces {
			if visit(item) {
				return true
			}
		}
		return visit(cur.Base)
	}
	return visit(t)
}

// EnclosedBy reports whether t is outer itself or nested within it.
func (t *Type) EnclosedBy(outer *Type) bool {
	for cur := t; cur != nil; cur = cur.Outer {
		if cur == outer {
			return true
		}
	}
	return false
}

// AddMember appends m to the member table of t.
func (t *Type) AddMember(m *Member) {
	m.Owner = t
	t.Members[m.Name] = append(t.Members[m.Name], m)
	t.Order = append(t.Order, m)
}

// ErrorType stands in for a type reference that failed to resolve so that
// later checks can continue without nil checks.
var ErrorType = &Type{Name: "?", Kind: ast.KindClass, Namespace: &Namespace{}, Nested: map[Key]*Type{}, Members: map[string][]*Member{}}

// TypeParam is a generic type parameter of a type or method. The constraint
// fields are written once, when the constraint clauses are resolved.
type TypeParam struct {
	Name     string
	Ordinal  int
	Owner    Symbol
	Decl     *ast.TypeParameter
	Variance string

	ReferenceType bool
	ValueType     bool
	Constructor   bool
	ClassType     *Type
	Interfaces    []*Type
	TypeParams    []*TypeParam
	State         State
}

// FullName implements Symbol.
func (p *TypeParam) FullName() string { return p.Name }

// TypeParamScope is an ordered list of type parameters chained to the scope
// of the enclosing generic declaration.
type TypeParamScope struct {
	Params []*TypeParam
	Parent *TypeParamScope
}

// NewTypeParamScope creates a scope for params nested in parent. It returns
// parent unchanged when params is empty.
func NewTypeParamScope(params []*TypeParam, parent *TypeParamScope) *TypeParamScope {
	if len(params) == 0 {
		return parent
	}
	return &TypeParamScope{Params: params, Parent: parent}
}

// Lookup finds name walking outward through enclosing declarations.
func (s *TypeParamScope) Lookup(name string) *TypeParam {
	for cur := s; cur != nil; cur = cur.Parent {
		for _, param := range cur.Params {
			if param.Name == name {
				return param
			}
		}
	}
	return nil
}

// MemberKind classifies members.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberProperty
	MemberEvent
	MemberMethod
	MemberConstructor
	MemberIndexer
	MemberOperator
	MemberEnumValue
)

func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberProperty:
		return "property"
	case MemberEvent:
		return "event"
	case MemberMethod:
		return "method"
	case MemberConstructor:
		return "constructor"
	case MemberIndexer:
		return "indexer"
	case MemberOperator:
		return "operator"
	default:
		return "enum value"
	}
}

// Member is a field, property, event, method, constructor or enum value.
// Decl is nil for library members. For fields declaring several variables,
// one Member exists per variable and Var points at its declarator.
type Member struct {
	Name       string
	Kind       MemberKind
	Access     Accessibility
	Modifiers  ast.Modifiers
	Owner      *Type
	Decl       ast.Member
	Var        *ast.VariableDeclarator
	TypeParams []*TypeParam
}

// FullName implements Symbol.
func (m *Member) FullName() string {
	if m.Owner == nil {
		return m.Name
	}
	return m.Owner.FullName() + "." + m.Name
}

// IsStatic reports whether m belongs to the type rather than an instance.
func (m *Member) IsStatic() bool {
	return m.Modifiers.Has(ast.ModStatic) || m.Modifiers.Has(ast.ModConst) || m.Kind == MemberEnumValue
}
