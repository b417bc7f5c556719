package resolve

import (
	"sort"

	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/scope"
)

// ResolveDeclarations runs the declaration phase: using directive targets,
// base clauses of every type (dependencies first) and constraint clauses. It
// must complete before references are resolved concurrently, since it writes
// the base tables. Later calls do nothing.
func (e *Engine) ResolveDeclarations() {
	e.declared.Do(e.resolveDeclarations)
}

func (e *Engine) resolveDeclarations() {
	e.resolveDirectives(e.global)
	for _, file := range e.space.Files {
		e.directivesIn(file)
	}
	for _, t := range e.space.Types {
		e.ensureBases(t)
	}
	for _, t := range e.referencedTypes() {
		e.ensureBases(t)
	}
	for _, t := range e.space.Types {
		e.ensureTypeConstraints(t)
	}
}

// directivesIn resolves the directives of a source file and of every
// namespace body inside it.
func (e *Engine) directivesIn(file *ast.CompilationUnit) {
	s := e.fileScope(file, e.space.Source, e.space.Global)
	e.resolveDirectives(s)
	var visit func(members []ast.Decl, parent *UsingScope, ns *scope.Namespace)
	visit = func(members []ast.Decl, parent *UsingScope, ns *scope.Namespace) {
		for _, member := range members {
			if decl, ok := member.(*ast.NamespaceDecl); ok {
				inner := declaredNamespace(ns, decl)
				s := e.namespaceScope(decl, parent, inner)
				e.resolveDirectives(s)
				visit(decl.Members, s, inner)
			}
		}
	}
	visit(file.Members, s, e.space.Global.Root)
}

// referencedTypes lists the types of referenced compilations in every
// hierarchy, ordered by hierarchy alias and full name.
func (e *Engine) referencedTypes() []*scope.Type {
	aliases := make([]string, 0, len(e.space.Hierarchies))
	for alias := range e.space.Hierarchies {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	var result []*scope.Type
	for _, alias := range aliases {
		var types []*scope.Type
		var collect func(t *scope.Type)
		collect = func(t *scope.Type) {
			if t.Unit.Origin != scope.OriginReferenced {
				return
			}
			types = append(types, t)
			for _, nested := range t.Nested {
				collect(nested)
			}
		}
		var walk func(ns *scope.Namespace)
		walk = func(ns *scope.Namespace) {
			for _, candidates := range ns.Types {
				for _, t := range candidates {
					collect(t)
				}
			}
			for _, child := range ns.Namespaces {
				walk(child)
			}
		}
		walk(e.space.Hierarchies[alias].Root)
		sort.SliceStable(types, func(i, j int) bool {
			if types[i].FullName() != types[j].FullName() {
				return types[i].FullName() < types[j].FullName()
			}
			return types[i].Arity < types[j].Arity
		})
		result = append(result, types...)
	}
	return result
}

// baseOf returns the base class of t, resolving its base clause first when
// needed. During a cycle it returns whatever is known so far.
func (e *Engine) baseOf(t *scope.Type) *scope.Type {
	e.ensureBases(t)
	return t.Base
}

func (e *Engine) ensureBases(t *scope.Type) {
	if t == nil || t == scope.ErrorType || t.BaseState != scope.StatePending {
		return
	}
	e.owner(t).bindBases(t)
}

// partContext is the context the base and constraint clauses of part i of t
// are resolved in: the site of the part with t's own type parameters in
// scope, but not t's members.
func (e *Engine) partContext(t *scope.Type, i int) Context {
	ctx := Context{
		Kind:       ContextTypeDeclaration,
		Unit:       t.Unit,
		Namespace:  t.Namespace,
		Type:       t.Outer,
		TypeParams: typeParamScope(t),
	}
	if sites := e.space.Sites(t); i < len(sites) {
		ctx.Usings, _ = e.siteScope(sites[i], t.Unit, t.Namespace.Hierarchy)
	}
	if ctx.Type == nil && t.Namespace.IsGlobal() {
		ctx.Kind = ContextSourceFile
	} else if ctx.Type == nil {
		ctx.Kind = ContextNamespace
	}
	return ctx
}

// bindBases resolves the base list of every part of t and fills t.Base and
// t.Interfaces.
func (e *Engine) bindBases(t *scope.Type) {
	t.BaseState = scope.StateRunning
	defer func() { t.BaseState = scope.StateDone }()

	seen := make(map[*scope.Type]bool)
	for i, part := range t.Parts {
		ctx := e.partContext(t, i).expecting(ExpectType)
		afterInterface := false
		for _, ref := range part.Bases {
			info := e.resolveType(ref, ctx)
			if t.Kind == ast.KindEnum {
				continue
			}
			b := info.Type()
			if b == scope.ErrorType {
				continue
			}
			if e.circular(t, b) {
				e.errorf(diag.CodeCircularBase, ref.Token.Pos,
					"Circular base type dependency involving '%s' and '%s'", b.FullName(), t.FullName())
				continue
			}
			if seen[b] {
				continue
			}
			seen[b] = true
			e.addBase(t, b, ref, afterInterface)
			afterInterface = afterInterface || b.IsInterface()
		}
	}
	if t.Base == nil {
		t.Base = e.defaultBase(t)
	}
}

// circular reports whether taking b as a base of t closes a cycle through the
// base or containment relation.
func (e *Engine) circular(t, b *scope.Type) bool {
	if b == t || b.BaseState == scope.StateRunning {
		return true
	}
	return b.DerivesFrom(t) || b.Implements(t) || b.EnclosedBy(t)
}

func (e *Engine) addBase(t, b *scope.Type, ref *ast.TypeReference, afterInterface bool) {
	pos := ref.Token.Pos
	if b.IsInterface() {
		t.Interfaces = append(t.Interfaces, b)
		return
	}
	switch {
	case !t.IsClass():
		e.errorf(diag.CodeBaseNotInterface, pos, "Type '%s' in interface list is not an interface", b.FullName())
	case t.Base != nil:
		e.errorf(diag.CodeMultipleBaseClasses, pos, "'%s' cannot have multiple base classes: '%s' and '%s'",
			t.FullName(), t.Base.FullName(), b.FullName())
	case afterInterface:
		e.errorf(diag.CodeBaseClassNotFirst, pos, "Base class '%s' must come before any interfaces", b.FullName())
	case b.IsStatic():
		e.errorf(diag.CodeStaticBase, pos, "'%s': cannot derive from static class '%s'", t.FullName(), b.FullName())
	case b.IsSealed():
		e.errorf(diag.CodeSealedBase, pos, "'%s': cannot derive from sealed type '%s'", t.FullName(), b.FullName())
	default:
		t.Base = b
	}
}

// defaultBase returns the implicit base class of t.
func (e *Engine) defaultBase(t *scope.Type) *scope.Type {
	var name string
	switch t.Kind {
	case ast.KindClass:
		name = "Object"
	case ast.KindStruct:
		name = "ValueType"
	case ast.KindEnum:
		name = "Enum"
	case ast.KindDelegate:
		name = "MulticastDelegate"
	default:
		return nil
	}
	if base := e.space.System(name); base != t {
		return base
	}
	return nil
}
