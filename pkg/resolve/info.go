// Package resolve binds every type and name reference of a compilation to
// the declaration it denotes. Results are written once per reference into a
// Session; failures become diagnostics and never stop the pass.
package resolve

import (
	"errors"
	"strings"

	"csresolve/pkg/scope"
)

var (
	// ErrNotResolved is returned (or raised by the panicking accessors) when
	// an Info does not hold exactly one item.
	ErrNotResolved = errors.New("reference is not successfully resolved")
	// ErrNilReference is returned when Resolve is handed a nil node.
	ErrNilReference = errors.New("nil reference")
)

// Target is what a reference denotes.
type Target int

const (
	TargetUnresolved Target = iota
	TargetAmbiguous
	TargetNamespace
	TargetType
	TargetTypeParameter
	TargetValue
)

func (t Target) String() string {
	switch t {
	case TargetUnresolved:
		return "unresolved"
	case TargetAmbiguous:
		return "ambiguous"
	case TargetNamespace:
		return "namespace"
	case TargetType:
		return "type"
	case TargetTypeParameter:
		return "type parameter"
	default:
		return "value"
	}
}

// Mode records where the target was found, or why resolution failed.
type Mode int

const (
	ModeUnresolved Mode = iota
	ModeCannotResolve
	ModePlatformType
	ModeSourceType
	ModeReferencedUnit
)

func (m Mode) String() string {
	switch m {
	case ModeUnresolved:
		return "unresolved"
	case ModeCannotResolve:
		return "cannot resolve"
	case ModePlatformType:
		return "platform"
	case ModeSourceType:
		return "source"
	default:
		return "referenced"
	}
}

// Item is one candidate target.
type Item struct {
	Target   Target
	Mode     Mode
	Resolver scope.Symbol
}

func (i Item) String() string {
	return i.Target.String() + " " + i.Resolver.FullName()
}

// Info is the outcome of resolving one reference: zero items when nothing
// was found, one on success, several when the reference is ambiguous.
type Info struct {
	items   []Item
	failure Mode
	// Rejected lists candidates that matched by name but were dropped, for
	// instance because they are inaccessible.
	Rejected []scope.Symbol
	// Code is the diagnostic code reported for a failed reference.
	Code string
}

func resolved(item Item) *Info { return &Info{items: []Item{item}} }

func failed(mode Mode, code string, rejected ...scope.Symbol) *Info {
	return &Info{failure: mode, Code: code, Rejected: rejected}
}

func ambiguous(code string, items []Item) *Info {
	return &Info{items: items, failure: ModeUnresolved, Code: code}
}

// Items returns a copy of the candidates.
func (i *Info) Items() []Item {
	return append([]Item(nil), i.items...)
}

func (i *Info) IsResolved() bool           { return len(i.items) >= 1 }
func (i *Info) IsAmbiguous() bool          { return len(i.items) > 1 }
func (i *Info) SuccessfullyResolved() bool { return len(i.items) == 1 }

// Item returns the single candidate.
func (i *Info) Item() (Item, error) {
	if !i.SuccessfullyResolved() {
		return Item{}, ErrNotResolved
	}
	return i.items[0], nil
}

func (i *Info) must() Item {
	item, err := i.Item()
	if err != nil {
		panic(err)
	}
	return item
}

// Target, Mode and Resolver panic with ErrNotResolved unless the info is
// successfully resolved.
func (i *Info) Target() Target         { return i.must().Target }
func (i *Info) Mode() Mode             { return i.must().Mode }
func (i *Info) Resolver() scope.Symbol { return i.must().Resolver }

// Kind never fails: it returns TargetUnresolved, TargetAmbiguous or the
// target of the single item.
func (i *Info) Kind() Target {
	switch len(i.items) {
	case 0:
		return TargetUnresolved
	case 1:
		return i.items[0].Target
	}
	return TargetAmbiguous
}

// Status returns the mode of the single item, or the failure mode.
func (i *Info) Status() Mode {
	if i.SuccessfullyResolved() {
		return i.items[0].Mode
	}
	return i.failure
}

// Type returns the resolved type, or scope.ErrorType when the reference does
// not denote exactly one type.
func (i *Info) Type() *scope.Type {
	if i.SuccessfullyResolved() {
		if t, ok := i.items[0].Resolver.(*scope.Type); ok {
			return t
		}
	}
	return scope.ErrorType
}

func (i *Info) String() string {
	switch len(i.items) {
	case 0:
		return "unresolved"
	case 1:
		return i.items[0].String()
	}
	names := make([]string, len(i.items))
	for j, item := range i.items {
		names[j] = item.Resolver.FullName()
	}
	return "ambiguous " + strings.Join(names, ", ")
}

// itemFor classifies a symbol found by lookup.
func itemFor(sym scope.Symbol) Item {
	switch s := sym.(type) {
	case *scope.Namespace:
		mode := ModePlatformType
		switch {
		case s.Hierarchy != nil && s.Hierarchy.Alias != scope.GlobalAlias:
			mode = ModeReferencedUnit
		case hasSource(s):
			mode = ModeSourceType
		}
		return Item{Target: TargetNamespace, Mode: mode, Resolver: s}
	case *scope.Type:
		return Item{Target: TargetType, Mode: modeOf(s.Unit), Resolver: s}
	case *scope.TypeParam:
		return Item{Target: TargetTypeParameter, Mode: ModeSourceType, Resolver: s}
	case *scope.Member:
		return Item{Target: TargetValue, Mode: modeOf(s.Owner.Unit), Resolver: s}
	}
	return Item{Target: TargetValue, Mode: ModeSourceType, Resolver: sym}
}

func modeOf(unit *scope.Unit) Mode {
	if unit == nil {
		return ModeCannotResolve
	}
	switch unit.Origin {
	case scope.OriginSource:
		return ModeSourceType
	case scope.OriginReferenced:
		return ModeReferencedUnit
	}
	return ModePlatformType
}

func hasSource(ns *scope.Namespace) bool {
	if len(ns.Fragments) > 0 {
		return true
	}
	for _, child := range ns.Namespaces {
		if hasSource(child) {
			return true
		}
	}
	return false
}
