package scope

import (
	"strings"

	"csresolve/pkg/ast"
	"csresolve/pkg/token"
)

// GlobalAlias names the default hierarchy.
const GlobalAlias = "global"

// Site records where one part of a type was declared: the file and the chain
// of enclosing namespace declarations, outermost first. The resolver rebuilds
// the using scopes of a part from it.
type Site struct {
	File      *ast.CompilationUnit
	Enclosing []*ast.NamespaceDecl
}

// Space is the populated declaration space of one compilation.
type Space struct {
	Source      *Unit
	Units       []*Unit
	Global      *Hierarchy
	Hierarchies map[string]*Hierarchy
	Files       []*ast.CompilationUnit

	// Types lists every source type, nested and detached ones included, in
	// declaration order.
	Types []*Type

	types     map[*ast.TypeDecl]*Type
	members   map[ast.Node]*Member
	sites     map[*Type][]Site
	wellKnown map[string]*Type
}

func newSpace() *Space {
	s := &Space{
		Hierarchies: make(map[string]*Hierarchy),
		types:       make(map[*ast.TypeDecl]*Type),
		members:     make(map[ast.Node]*Member),
		sites:       make(map[*Type][]Site),
		wellKnown:   make(map[string]*Type),
	}
	s.Global = s.hierarchy(GlobalAlias)
	return s
}

func (s *Space) hierarchy(alias string) *Hierarchy {
	if h, ok := s.Hierarchies[alias]; ok {
		return h
	}
	h := &Hierarchy{Alias: alias}
	h.Root = NewNamespace("", nil, h)
	s.Hierarchies[alias] = h
	return h
}

// Hierarchy returns the hierarchy declared under alias.
func (s *Space) Hierarchy(alias string) (*Hierarchy, bool) {
	h, ok := s.Hierarchies[alias]
	return h, ok
}

// TypeOf returns the type a source declaration contributes to.
func (s *Space) TypeOf(decl *ast.TypeDecl) *Type {
	return s.types[decl]
}

// MemberOf returns the member declared by node: a member declaration, or the
// variable declarator for fields and events.
func (s *Space) MemberOf(node ast.Node) *Member {
	return s.members[node]
}

// Sites returns the declaration sites of t, parallel to t.Parts.
func (s *Space) Sites(t *Type) []Site {
	return s.sites[t]
}

// Namespace finds the namespace with the dotted name in h.
func (s *Space) Namespace(h *Hierarchy, name string) *Namespace {
	ns := h.Root
	if name == "" {
		return ns
	}
	for _, part := range strings.Split(name, ".") {
		if ns = ns.Namespaces[part]; ns == nil {
			return nil
		}
	}
	return ns
}

// Lookup finds a top-level type of the global hierarchy by its dotted name.
func (s *Space) Lookup(fullName string, arity int) *Type {
	nsName, name := "", fullName
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		nsName, name = fullName[:i], fullName[i+1:]
	}
	ns := s.Namespace(s.Global, nsName)
	if ns == nil {
		return nil
	}
	if types := ns.Types[Key{Name: name, Arity: arity}]; len(types) > 0 {
		return types[0]
	}
	return nil
}

// System returns a well-known platform type such as "Object" or "ValueType",
// or nil when no platform library is loaded.
func (s *Space) System(name string) *Type {
	return s.wellKnown[name]
}

// Predefined returns the platform type behind a predefined type keyword.
// `dynamic` maps to object.
func (s *Space) Predefined(keyword string) *Type {
	if keyword == "dynamic" {
		return s.System("Object")
	}
	name, ok := token.PredefinedType(keyword)
	if !ok {
		return nil
	}
	return s.System(name)
}

func (s *Space) indexWellKnown() {
	system := s.Namespace(s.Global, "System")
	if system == nil {
		return
	}
	for key, types := range system.Types {
		if key.Arity == 0 && len(types) > 0 {
			s.wellKnown[key.Name] = types[0]
		}
	}
}
