// Package access computes accessibility domains and checks whether a
// reference site lies inside one. It also validates declared accessibility
// modifiers against their container.
package access

import (
	"strings"

	"csresolve/pkg/scope"
)

// ElementKind classifies one restriction of a domain.
type ElementKind int

const (
	Empty ElementKind = iota
	Universe
	Compilation
	ConcreteType
	InheritorsOf
	// CompilationOrInheritors models `protected internal`: the union of the
	// compilation and the inheritors of the type.
	CompilationOrInheritors
)

func (k ElementKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Universe:
		return "universe"
	case Compilation:
		return "compilation"
	case ConcreteType:
		return "type"
	case InheritorsOf:
		return "inheritors"
	default:
		return "compilation-or-inheritors"
	}
}

// Element is one restriction. Unit is set for the compilation kinds, Type for
// the type kinds.
type Element struct {
	Kind ElementKind
	Unit *scope.Unit
	Type *scope.Type
}

func (e Element) String() string {
	switch e.Kind {
	case Compilation:
		return "compilation(" + e.Unit.Name + ")"
	case ConcreteType, InheritorsOf, CompilationOrInheritors:
		return e.Kind.String() + "(" + e.Type.FullName() + ")"
	}
	return e.Kind.String()
}

// Site is the place a reference is made from: the compilation and the
// innermost enclosing type, nil outside any type.
type Site struct {
	Unit *scope.Unit
	Type *scope.Type
}

// Domain is a conjunction of elements; a site is inside the domain when it
// satisfies every element. The zero Domain is the universe.
type Domain []Element

// Intersect returns the conjunction of d and other, simplified.
func (d Domain) Intersect(other Domain) Domain {
	var result Domain
	for _, e := range append(append(Domain{}, d...), other...) {
		switch e.Kind {
		case Universe:
			continue
		case Empty:
			return Domain{{Kind: Empty}}
		}
		if !result.contains(e) {
			result = append(result, e)
		}
	}
	return result
}

func (d Domain) contains(e Element) bool {
	for _, item := range d {
		if item == e {
			return true
		}
	}
	return false
}

// IsUniverse reports whether d places no restriction.
func (d Domain) IsUniverse() bool {
	for _, e := range d {
		if e.Kind != Universe {
			return false
		}
	}
	return true
}

func (d Domain) String() string {
	if d.IsUniverse() {
		return "universe"
	}
	parts := make([]string, len(d))
	for i, e := range d {
		parts[i] = e.String()
	}
	return strings.Join(parts, " & ")
}

// IsAccessibleFrom reports whether site lies inside d.
func (d Domain) IsAccessibleFrom(site Site) bool {
	for _, e := range d {
		if !e.admits(site) {
			return false
		}
	}
	return true
}

func (e Element) admits(site Site) bool {
	switch e.Kind {
	case Universe:
		return true
	case Compilation:
		return site.Unit == e.Unit
	case ConcreteType:
		return site.Type != nil && site.Type.EnclosedBy(e.Type)
	case InheritorsOf:
		return inherits(site.Type, e.Type)
	case CompilationOrInheritors:
		return site.Unit == e.Unit || inherits(site.Type, e.Type)
	}
	return false
}

// inherits reports whether site, or a type enclosing it, derives from t.
func inherits(site, t *scope.Type) bool {
	for cur := site; cur != nil; cur = cur.Outer {
		if cur.DerivesFrom(t) {
			return true
		}
	}
	return false
}

// Subset reports whether every site inside d is also inside other. It is a
// sound approximation: each element of other must be implied by one element
// of d.
func (d Domain) Subset(other Domain) bool {
	for _, e := range d {
		if e.Kind == Empty {
			return true
		}
	}
	for _, want := range other {
		if want.Kind == Universe {
			continue
		}
		implied := false
		for _, have := range d {
			if have.implies(want) {
				implied = true
				break
			}
		}
		if !implied {
			return false
		}
	}
	return true
}

// implies reports whether the sites admitted by e are admitted by other.
func (e Element) implies(other Element) bool {
	switch {
	case e == other, e.Kind == Empty, other.Kind == Universe:
		return true
	}
	switch e.Kind {
	case ConcreteType:
		switch other.Kind {
		case ConcreteType:
			return e.Type.EnclosedBy(other.Type)
		case InheritorsOf:
			return inherits(e.Type, other.Type)
		case Compilation:
			return e.Type.Unit == other.Unit
		case CompilationOrInheritors:
			return e.Type.Unit == other.Unit || inherits(e.Type, other.Type)
		}
	case InheritorsOf:
		switch other.Kind {
		case InheritorsOf, CompilationOrInheritors:
			return e.Type.DerivesFrom(other.Type)
		}
	case Compilation:
		return other.Kind == CompilationOrInheritors && other.Unit == e.Unit
	case CompilationOrInheritors:
		return other.Kind == CompilationOrInheritors && other.Unit == e.Unit && e.Type.DerivesFrom(other.Type)
	}
	return false
}

// ElementsFor returns the restriction of one declared accessibility for a
// declaration in unit whose innermost containing type is container (nil for
// namespace members).
func ElementsFor(access scope.Accessibility, container *scope.Type, unit *scope.Unit) Domain {
	if container == nil {
		if access == scope.AccessPublic {
			return Domain{{Kind: Universe}}
		}
		return Domain{{Kind: Compilation, Unit: unit}}
	}
	switch access {
	case scope.AccessPublic:
		return Domain{{Kind: Universe}}
	case scope.AccessInternal:
		return Domain{{Kind: Compilation, Unit: unit}}
	case scope.AccessProtected:
		return Domain{{Kind: InheritorsOf, Type: container}}
	case scope.AccessProtectedInternal:
		return Domain{{Kind: CompilationOrInheritors, Unit: unit, Type: container}}
	case scope.AccessPrivateProtected:
		return Domain{{Kind: Compilation, Unit: unit}, {Kind: InheritorsOf, Type: container}}
	}
	return Domain{{Kind: ConcreteType, Type: container}}
}

// TypeDomain returns the accessibility domain of t: its own restriction
// intersected with the domain of every enclosing type.
func TypeDomain(t *scope.Type) Domain {
	if t == nil || t == scope.ErrorType {
		return nil
	}
	own := ElementsFor(t.Access, t.Outer, t.Unit)
	if t.Outer == nil {
		return own.Intersect(nil)
	}
	return own.Intersect(TypeDomain(t.Outer))
}

// MemberDomain returns the accessibility domain of m.
func MemberDomain(m *scope.Member) Domain {
	return ElementsFor(m.Access, m.Owner, m.Owner.Unit).Intersect(TypeDomain(m.Owner))
}

// ComputeDomain returns the domain of a resolved symbol. Namespaces, type
// parameters and locals are accessible wherever they are in scope.
func ComputeDomain(sym scope.Symbol) Domain {
	switch s := sym.(type) {
	case *scope.Type:
		return TypeDomain(s)
	case *scope.Member:
		return MemberDomain(s)
	}
	return nil
}

// IsAccessible reports whether sym can be referenced from site.
func IsAccessible(sym scope.Symbol, site Site) bool {
	return ComputeDomain(sym).IsAccessibleFrom(site)
}
