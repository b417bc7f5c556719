package resolve

import (
	"sort"

	"csresolve/pkg/access"
	"csresolve/pkg/diag"
	"csresolve/pkg/scope"
)

// lookup collects the outcome of searching one name. found holds the
// accessible candidates of the winning tier; more than one means ambiguity.
type lookup struct {
	found        []scope.Symbol
	inaccessible []scope.Symbol
	// code is set when found is ambiguous: CS0104 between imports or aliases,
	// CS0433 between compilations declaring the same type.
	code string
}

func (l *lookup) ok() bool { return len(l.found) > 0 }

func (l *lookup) reject(sym scope.Symbol) {
	for _, item := range l.inaccessible {
		if item == sym {
			return
		}
	}
	l.inaccessible = append(l.inaccessible, sym)
}

// addDistinct appends the symbols not yet in found.
func (l *lookup) addDistinct(symbols ...scope.Symbol) {
	for _, sym := range symbols {
		if !contains(l.found, sym) {
			l.found = append(l.found, sym)
		}
	}
}

func contains(symbols []scope.Symbol, sym scope.Symbol) bool {
	for _, item := range symbols {
		if item == sym {
			return true
		}
	}
	return false
}

// lookupSimple searches an unqualified name through the tiers: type
// parameters, enclosing types with their base chains, enclosing namespaces,
// using directives and the implicitly imported namespaces. The first tier
// with a candidate wins.
func (e *Engine) lookupSimple(name string, arity int, ctx Context, values bool) lookup {
	var result lookup
	if arity == 0 {
		if param := ctx.TypeParams.Lookup(name); param != nil {
			result.found = []scope.Symbol{param}
			return result
		}
	}
	for outer := ctx.Type; outer != nil; outer = outer.Outer {
		if e.inType(outer, name, arity, ctx, values, &result); result.ok() {
			return result
		}
	}
	if ctx.Namespace != nil {
		for _, ns := range ctx.Namespace.Enclosing() {
			if e.inNamespace(ns, name, arity, ctx, &result); result.ok() {
				return result
			}
		}
	}
	for s := ctx.Usings; s != nil; s = s.Parent {
		if e.inUsings(s, name, arity, ctx, &result); result.ok() {
			return result
		}
	}
	e.inImplicit(name, arity, ctx, &result)
	return result
}

// inType searches the nested types of t, and for value lookups its members
// (generic methods by type parameter count), level by level: a class walks
// its base chain, an interface its base interfaces breadth first. The first
// level holding an accessible match wins, so an accessible type inherited
// from a base beats an inaccessible one declared closer. Two base interfaces
// at one level supplying different matches are ambiguous.
func (e *Engine) inType(t *scope.Type, name string, arity int, ctx Context, values bool, result *lookup) {
	key := scope.Key{Name: name, Arity: arity}
	seen := map[*scope.Type]bool{t: true}
	for level := []*scope.Type{t}; len(level) > 0; level = e.nextLevel(level, seen) {
		for _, cur := range level {
			e.inLevel(cur, key, ctx, values, result)
		}
		if result.ok() {
			if len(result.found) > 1 {
				result.code = diag.CodeAmbiguous
			}
			return
		}
	}
}

// inLevel adds the accessible match declared directly in t. A nested type
// hides members of the same name.
func (e *Engine) inLevel(t *scope.Type, key scope.Key, ctx Context, values bool, result *lookup) {
	if nested := t.Nested[key]; nested != nil {
		if access.IsAccessible(nested, ctx.site()) {
			result.addDistinct(nested)
			return
		}
		result.reject(nested)
	}
	if !values {
		return
	}
	for _, m := range t.Members[key.Name] {
		if m.Kind == scope.MemberConstructor || key.Arity > 0 && len(m.TypeParams) != key.Arity {
			continue
		}
		if access.IsAccessible(m, ctx.site()) {
			result.addDistinct(m)
			return
		}
		result.reject(m)
	}
}

// nextLevel returns the direct bases of the types in level not yet visited.
func (e *Engine) nextLevel(level []*scope.Type, seen map[*scope.Type]bool) []*scope.Type {
	var next []*scope.Type
	visit := func(b *scope.Type) {
		if b != nil && b != scope.ErrorType && !seen[b] {
			seen[b] = true
			next = append(next, b)
		}
	}
	for _, cur := range level {
		visit(e.baseOf(cur))
		if cur.IsInterface() {
			for _, iface := range cur.Interfaces {
				visit(iface)
			}
		}
	}
	return next
}

// inNamespace searches the members of ns: a sub-namespace first, then types.
func (e *Engine) inNamespace(ns *scope.Namespace, name string, arity int, ctx Context, result *lookup) {
	if arity == 0 {
		if child, ok := ns.Namespaces[name]; ok {
			result.found = []scope.Symbol{child}
			return
		}
	}
	e.pickTypes(ns.Lookup(scope.Key{Name: name, Arity: arity}), ctx, result)
}

// pickTypes adds the accessible types among candidates declared under one
// key. A source declaration hides referenced ones; two referenced
// declarations are ambiguous.
func (e *Engine) pickTypes(candidates []*scope.Type, ctx Context, result *lookup) {
	var accessible []*scope.Type
	for _, t := range candidates {
		if access.IsAccessible(t, ctx.site()) {
			accessible = append(accessible, t)
		} else {
			result.reject(t)
		}
	}
	if len(accessible) > 1 {
		var source []*scope.Type
		for _, t := range accessible {
			if t.Unit.Origin == scope.OriginSource {
				source = append(source, t)
			}
		}
		if len(source) > 0 {
			accessible = source
		}
	}
	before := len(result.found)
	for _, t := range accessible {
		result.addDistinct(t)
	}
	if len(result.found)-before > 1 && result.code == "" {
		result.code = diag.CodeTypeInBoth
	}
}

// inUsings applies the directives of one using scope: aliases first, then
// namespace and static imports. Distinct targets under one name are
// ambiguous.
func (e *Engine) inUsings(s *UsingScope, name string, arity int, ctx Context, result *lookup) {
	if arity == 0 {
		for _, d := range s.Directives {
			if d.Alias != name {
				continue
			}
			if sym := e.directiveTarget(d, s); sym != nil {
				result.addDistinct(sym)
			}
		}
		for _, extern := range s.Externs {
			if extern.Name != name {
				continue
			}
			if h, ok := e.space.Hierarchy(name); ok {
				result.addDistinct(h.Root)
			}
		}
		if result.ok() {
			if len(result.found) > 1 {
				result.code = diag.CodeAmbiguous
			}
			return
		}
	}
	key := scope.Key{Name: name, Arity: arity}
	for _, d := range s.Directives {
		if d.IsAlias() {
			continue
		}
		switch target := e.directiveTarget(d, s).(type) {
		case *scope.Namespace:
			if !d.Static {
				var found lookup
				e.pickTypes(target.Lookup(key), ctx, &found)
				e.merge(result, &found)
			}
		case *scope.Type:
			if d.Static {
				if nested := target.Nested[key]; nested != nil {
					if access.IsAccessible(nested, ctx.site()) {
						result.addDistinct(nested)
					} else {
						result.reject(nested)
					}
				}
			}
		}
	}
	if len(result.found) > 1 && result.code == "" {
		result.code = diag.CodeAmbiguous
	}
}

// inImplicit searches the namespaces imported into every file.
func (e *Engine) inImplicit(name string, arity int, ctx Context, result *lookup) {
	key := scope.Key{Name: name, Arity: arity}
	for _, nsName := range e.implicit {
		ns := e.space.Namespace(e.space.Global, nsName)
		if ns == nil {
			continue
		}
		var found lookup
		e.pickTypes(ns.Lookup(key), ctx, &found)
		e.merge(result, &found)
	}
	if len(result.found) > 1 && result.code == "" {
		result.code = diag.CodeAmbiguous
	}
}

// merge folds the outcome of one imported namespace into result. Candidates
// contributed by different imports are ambiguous even when one import alone
// holds a pair declared in two compilations.
func (e *Engine) merge(result, found *lookup) {
	before := len(result.found)
	result.addDistinct(found.found...)
	for _, sym := range found.inaccessible {
		result.reject(sym)
	}
	switch {
	case before > 0 && len(result.found) > before:
		result.code = diag.CodeAmbiguous
	case found.code != "" && result.code == "":
		result.code = found.code
	}
}

// lookupAlias resolves the left side of `A::M`: `global`, an extern alias or
// a using alias denoting a namespace. Ordinary namespaces are never
// consulted.
func (e *Engine) lookupAlias(alias string, ctx Context) (*scope.Namespace, string, scope.Symbol) {
	if alias == scope.GlobalAlias {
		return e.space.Global.Root, "", nil
	}
	for s := ctx.Usings; s != nil; s = s.Parent {
		var found lookup
		for _, extern := range s.Externs {
			if extern.Name == alias {
				if h, ok := e.space.Hierarchy(alias); ok {
					found.addDistinct(h.Root)
				}
			}
		}
		for _, d := range s.Directives {
			if d.Alias == alias {
				if sym := e.directiveTarget(d, s); sym != nil {
					found.addDistinct(sym)
				}
			}
		}
		switch len(found.found) {
		case 0:
			continue
		case 1:
			if ns, ok := found.found[0].(*scope.Namespace); ok {
				return ns, "", nil
			}
			return nil, diag.CodeAliasIsType, found.found[0]
		}
		return nil, diag.CodeAmbiguous, nil
	}
	return nil, diag.CodeAliasNotFound, nil
}

// memberOf resolves one qualified segment inside the symbol denoted by the
// segments before it.
func (e *Engine) memberOf(sym scope.Symbol, name string, arity int, ctx Context) lookup {
	var result lookup
	switch s := sym.(type) {
	case *scope.Namespace:
		e.inNamespace(s, name, arity, ctx, &result)
	case *scope.Type:
		e.inType(s, name, arity, ctx, false, &result)
	}
	return result
}

// otherArity finds a type with the given name but a different arity, to
// explain a failed lookup. Within one container the lowest arity wins.
func (e *Engine) otherArity(container scope.Symbol, name string, ctx Context) *scope.Type {
	first := func(types []*scope.Type) *scope.Type {
		if len(types) == 0 {
			return nil
		}
		sort.SliceStable(types, func(i, j int) bool { return types[i].Arity < types[j].Arity })
		return types[0]
	}
	switch c := container.(type) {
	case *scope.Namespace:
		return first(c.Named(name))
	case *scope.Type:
		for _, level := range c.Chain() {
			if t := first(level.NestedNamed(name)); t != nil {
				return t
			}
		}
		return nil
	}
	for outer := ctx.Type; outer != nil; outer = outer.Outer {
		if t := e.otherArity(outer, name, ctx); t != nil {
			return t
		}
	}
	if ctx.Namespace != nil {
		for _, ns := range ctx.Namespace.Enclosing() {
			if t := first(ns.Named(name)); t != nil {
				return t
			}
		}
	}
	for s := ctx.Usings; s != nil; s = s.Parent {
		for _, d := range s.Directives {
			if ns, ok := e.directiveTarget(d, s).(*scope.Namespace); ok && !d.IsAlias() && !d.Static {
				if t := first(ns.Named(name)); t != nil {
					return t
				}
			}
		}
	}
	for _, nsName := range e.implicit {
		if ns := e.space.Namespace(e.space.Global, nsName); ns != nil {
			if t := first(ns.Named(name)); t != nil {
				return t
			}
		}
	}
	return nil
}
