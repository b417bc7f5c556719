package resolve

import (
	"errors"
	"strings"
	"sync"

	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/scope"
	"csresolve/pkg/token"
)

// ErrUnsupportedReference is returned when Resolve is handed a node that is
// neither a type reference nor a simple name.
var ErrUnsupportedReference = errors.New("unsupported reference node")

// Option configures an Engine.
type Option func(e *Engine)

// WithImplicitUsings makes the types of the named namespaces visible in every
// file as the last lookup tier.
func WithImplicitUsings(namespaces ...string) Option {
	return func(e *Engine) {
		e.implicit = append(e.implicit, namespaces...)
	}
}

// Engine resolves references against a populated declaration space. One
// engine serves one compilation; declarations of referenced compilations are
// resolved by quiet companion engines, one per hierarchy, that report
// nothing and count nothing.
type Engine struct {
	space    *scope.Space
	session  *Session
	sink     diag.Sink
	implicit []string

	main  *Engine
	quiet map[*scope.Hierarchy]*Engine

	declared sync.Once

	mu      sync.Mutex
	usings  map[usingKey]*UsingScope
	global  *UsingScope
	clauses map[*scope.TypeParam]constraintSource
}

type usingKey struct {
	node      ast.Node
	hierarchy *scope.Hierarchy
}

// New creates an engine writing results into session and failures into sink.
func New(space *scope.Space, session *Session, sink diag.Sink, opts ...Option) *Engine {
	if sink == nil {
		sink = &diag.Collector{}
	}
	e := &Engine{
		space:   space,
		session: session,
		sink:    sink,
		usings:  make(map[usingKey]*UsingScope),
		clauses: make(map[*scope.TypeParam]constraintSource),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.quiet = make(map[*scope.Hierarchy]*Engine)
	e.global = e.globalUsings()
	return e
}

type discard struct{}

func (discard) Report(*diag.Diagnostic) {}

// Session returns the session results are written to.
func (e *Engine) Session() *Session { return e.session }

// Space returns the declaration space.
func (e *Engine) Space() *scope.Space { return e.space }

func (e *Engine) root() *Engine {
	if e.main != nil {
		return e.main
	}
	return e
}

// owner returns the engine responsible for the declarations of t. A
// referenced compilation visible under several aliases is resolved once per
// hierarchy, so each hierarchy gets its own slots.
func (e *Engine) owner(t *scope.Type) *Engine {
	root := e.root()
	if t.Unit == nil || t.Unit.Origin == scope.OriginSource {
		return root
	}
	h := t.Namespace.Hierarchy
	root.mu.Lock()
	defer root.mu.Unlock()
	if quiet, ok := root.quiet[h]; ok {
		return quiet
	}
	quiet := &Engine{
		space:    root.space,
		session:  NewSession(),
		sink:     discard{},
		implicit: root.implicit,
		main:     root,
		usings:   make(map[usingKey]*UsingScope),
		clauses:  make(map[*scope.TypeParam]constraintSource),
	}
	root.quiet[h] = quiet
	return quiet
}

// Resolve binds a *ast.TypeReference or *ast.NameExpr. A reference is bound
// at most once: later calls return the stored Info unchanged, whatever the
// context.
func (e *Engine) Resolve(node ast.Node, ctx Context) (*Info, error) {
	switch ref := node.(type) {
	case nil:
		return nil, ErrNilReference
	case *ast.TypeReference:
		if ref == nil {
			return nil, ErrNilReference
		}
		return e.resolveType(ref, ctx), nil
	case *ast.NameExpr:
		if ref == nil {
			return nil, ErrNilReference
		}
		return e.resolveName(ref, ctx), nil
	}
	return nil, ErrUnsupportedReference
}

func (e *Engine) resolveType(ref *ast.TypeReference, ctx Context) *Info {
	if info, ok := e.session.Info(ref); ok {
		return info
	}
	args := ctx.expecting(ExpectType)
	for _, seg := range ref.Segments {
		for _, arg := range seg.Args {
			e.resolveType(arg, args)
		}
	}
	return e.session.store(ref, e.bindType(ref, ctx), ref.Alias != "")
}

func (e *Engine) resolveName(name *ast.NameExpr, ctx Context) *Info {
	if info, ok := e.session.Info(name); ok {
		return info
	}
	args := ctx.expecting(ExpectType)
	for _, arg := range name.Args {
		e.resolveType(arg, args)
	}
	return e.session.store(name, e.bindName(name, ctx), name.Alias != "")
}

func (e *Engine) bindType(ref *ast.TypeReference, ctx Context) *Info {
	if ref.IsPredefined() {
		if t := e.space.Predefined(ref.Keyword); t != nil {
			return resolved(itemFor(t))
		}
		e.errorf(diag.CodeTypeNotFound, ref.Token.Pos,
			"The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", ref.Keyword)
		return failed(ModeUnresolved, diag.CodeTypeNotFound)
	}
	if len(ref.Segments) == 0 {
		return failed(ModeCannotResolve, "")
	}

	var sym scope.Symbol
	for i, seg := range ref.Segments {
		last := i == len(ref.Segments)-1
		names := []string{seg.Name}
		if last && ctx.Attribute && !strings.HasSuffix(seg.Name, "Attribute") {
			names = []string{seg.Name + "Attribute", seg.Name}
		}
		var result lookup
		for _, name := range names {
			switch {
			case i > 0:
				result = e.memberOf(sym, name, seg.Arity(), ctx)
			case ref.Alias != "":
				ns, code, target := e.lookupAlias(ref.Alias, ctx)
				if ns == nil {
					return e.aliasFailure(ref, code, target)
				}
				sym = ns
				result = e.memberOf(ns, name, seg.Arity(), ctx)
			default:
				result = e.lookupSimple(name, seg.Arity(), ctx, false)
			}
			if result.ok() {
				break
			}
		}
		if !result.ok() {
			return e.notFound(sym, seg, result, ctx, ExpectType)
		}
		if len(result.found) > 1 {
			return e.ambiguity(seg.Name, seg.Token.Pos, result)
		}
		if param, ok := result.found[0].(*scope.TypeParam); ok && !last {
			e.errorf(diag.CodeTypeParamMemberLookup, ref.Segments[i+1].Token.Pos,
				"Cannot do non-virtual member lookup in '%s' because it is a type parameter", param.Name)
			return failed(ModeCannotResolve, diag.CodeTypeParamMemberLookup, param)
		}
		sym = result.found[0]
	}
	return e.checkKind(ref, sym, ctx.Expect)
}

// checkKind rejects a symbol of the wrong category for the reference position.
func (e *Engine) checkKind(ref *ast.TypeReference, sym scope.Symbol, expect Expect) *Info {
	switch s := sym.(type) {
	case *scope.Namespace:
		if expect == ExpectType {
			e.errorf(diag.CodeWrongKind, ref.Token.Pos, "'%s' is a namespace but is used like a type", ref.Name())
			return failed(ModeCannotResolve, diag.CodeWrongKind, s)
		}
	case *scope.Type, *scope.TypeParam:
		if expect == ExpectNamespace {
			e.errorf(diag.CodeUsingOnType, ref.Token.Pos,
				"A 'using namespace' directive can only be applied to namespaces; '%s' is a type not a namespace. Consider a 'using static' directive instead", ref.Name())
			return failed(ModeCannotResolve, diag.CodeUsingOnType, s)
		}
	}
	return resolved(itemFor(sym))
}

func (e *Engine) bindName(name *ast.NameExpr, ctx Context) *Info {
	seg := &ast.NameSegment{Name: name.Name, Args: name.Args, Token: name.Token}
	if name.Alias != "" {
		ns, code, target := e.lookupAlias(name.Alias, ctx)
		if ns == nil {
			return e.aliasFailure(&ast.TypeReference{Alias: name.Alias, AliasToken: name.Token, Token: name.Token}, code, target)
		}
		result := e.memberOf(ns, name.Name, len(name.Args), ctx)
		if !result.ok() {
			return e.notFound(ns, seg, result, ctx, ExpectValue)
		}
		if len(result.found) > 1 {
			return e.ambiguity(name.Name, name.Token.Pos, result)
		}
		return resolved(itemFor(result.found[0]))
	}
	if len(name.Args) == 0 {
		if local := ctx.Locals.Lookup(name.Name); local != nil {
			return resolved(itemFor(local))
		}
	}
	result := e.lookupSimple(name.Name, len(name.Args), ctx, true)
	if !result.ok() {
		if name.Name == "_" {
			return resolved(itemFor(&Local{Name: "_", Decl: name}))
		}
		return e.notFound(nil, seg, result, ctx, ExpectValue)
	}
	if len(result.found) > 1 {
		return e.ambiguity(name.Name, name.Token.Pos, result)
	}
	return resolved(itemFor(result.found[0]))
}

// notFound reports a failed lookup of seg inside container (nil for an
// unqualified name). Exactly one diagnostic is reported.
func (e *Engine) notFound(container scope.Symbol, seg *ast.NameSegment, result lookup, ctx Context, expect Expect) *Info {
	pos := seg.Token.Pos
	if len(result.inaccessible) > 0 {
		e.errorf(diag.CodeInaccessible, pos, "'%s' is inaccessible due to its protection level", result.inaccessible[0].FullName())
		return failed(ModeCannotResolve, diag.CodeInaccessible, result.inaccessible...)
	}
	if other := e.otherArity(container, seg.Name, ctx); other != nil && other.Arity != seg.Arity() {
		if other.Arity == 0 {
			e.errorf(diag.CodeWrongArity, pos, "The non-generic type '%s' cannot be used with type arguments", other.FullName())
		} else {
			e.errorf(diag.CodeWrongArity, pos, "Using the generic type '%s' requires %d type arguments", other.FullName(), other.Arity)
		}
		return failed(ModeCannotResolve, diag.CodeWrongArity, other)
	}
	switch c := container.(type) {
	case *scope.Namespace:
		e.errorf(diag.CodeNamespaceMemberNotFound, pos,
			"The type or namespace name '%s' does not exist in the namespace '%s' (are you missing an assembly reference?)", seg.Name, namespaceName(c))
		return failed(ModeUnresolved, diag.CodeNamespaceMemberNotFound)
	case *scope.Type:
		e.errorf(diag.CodeNestedTypeNotFound, pos, "The type name '%s' does not exist in the type '%s'", seg.Name, c.FullName())
		return failed(ModeUnresolved, diag.CodeNestedTypeNotFound)
	}
	if expect == ExpectValue {
		e.errorf(diag.CodeNameNotFound, pos, "The name '%s' does not exist in the current context", seg.Name)
		return failed(ModeUnresolved, diag.CodeNameNotFound)
	}
	e.errorf(diag.CodeTypeNotFound, pos,
		"The type or namespace name '%s' could not be found (are you missing a using directive or an assembly reference?)", seg.Name)
	return failed(ModeUnresolved, diag.CodeTypeNotFound)
}

// ambiguity reports every candidate of an ambiguous lookup.
func (e *Engine) ambiguity(name string, pos token.Position, result lookup) *Info {
	items := make([]Item, len(result.found))
	names := make([]string, len(result.found))
	for i, sym := range result.found {
		items[i] = itemFor(sym)
		names[i] = sym.FullName()
	}
	if result.code == diag.CodeTypeInBoth {
		units := make([]string, len(result.found))
		for i, sym := range result.found {
			units[i] = sym.(*scope.Type).Unit.Name
		}
		e.errorf(diag.CodeTypeInBoth, pos, "The type '%s' exists in both '%s'", names[0], strings.Join(units, "' and '"))
		return ambiguous(diag.CodeTypeInBoth, items)
	}
	e.errorf(diag.CodeAmbiguous, pos, "'%s' is an ambiguous reference between '%s'", name, strings.Join(names, "' and '"))
	return ambiguous(diag.CodeAmbiguous, items)
}

func (e *Engine) aliasFailure(ref *ast.TypeReference, code string, target scope.Symbol) *Info {
	pos := ref.AliasToken.Pos
	switch code {
	case diag.CodeAliasIsType:
		e.errorf(code, pos, "Alias '%s' cannot be used with '::' since it denotes a type. Use '.' instead", ref.Alias)
		return failed(ModeCannotResolve, code, target)
	case diag.CodeAmbiguous:
		e.errorf(code, pos, "'%s' is an ambiguous alias", ref.Alias)
		return failed(ModeUnresolved, code)
	}
	e.errorf(diag.CodeAliasNotFound, pos, "Alias '%s' not found", ref.Alias)
	return failed(ModeUnresolved, diag.CodeAliasNotFound)
}

func (e *Engine) errorf(code string, pos token.Position, format string, args ...any) {
	e.sink.Report(diag.Errorf(code, pos, format, args...))
}

func (e *Engine) warningf(code string, pos token.Position, format string, args ...any) {
	e.sink.Report(diag.Warningf(code, pos, format, args...))
}

func namespaceName(ns *scope.Namespace) string {
	if ns.IsGlobal() {
		return ns.Hierarchy.FullName()
	}
	return ns.FullName()
}
