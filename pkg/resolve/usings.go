package resolve

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/scope"
)

// globalUsings collects the `global using` directives of every source file
// into one scope enclosing all file scopes.
func (e *Engine) globalUsings() *UsingScope {
	root := &UsingScope{Unit: e.space.Source, Namespace: e.space.Global.Root}
	for _, file := range e.space.Files {
		for _, d := range file.Usings {
			if d.Global {
				root.Directives = append(root.Directives, d)
			}
		}
	}
	if len(root.Directives) == 0 {
		return nil
	}
	return root
}

// fileScope returns the using scope of a file of unit whose declarations live
// in hierarchy h. Global usings apply to source files only.
func (e *Engine) fileScope(file *ast.CompilationUnit, unit *scope.Unit, h *scope.Hierarchy) *UsingScope {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := usingKey{node: file, hierarchy: h}
	if s, ok := e.usings[key]; ok {
		return s
	}
	s := &UsingScope{Unit: unit, Namespace: h.Root, Externs: file.Externs}
	if unit == e.space.Source {
		s.Parent = e.root().global
	}
	for _, d := range file.Usings {
		if !d.Global {
			s.Directives = append(s.Directives, d)
		}
	}
	e.usings[key] = s
	return s
}

// namespaceScope returns the using scope of a namespace body nested in parent.
func (e *Engine) namespaceScope(decl *ast.NamespaceDecl, parent *UsingScope, ns *scope.Namespace) *UsingScope {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := usingKey{node: decl, hierarchy: ns.Hierarchy}
	if s, ok := e.usings[key]; ok {
		return s
	}
	s := &UsingScope{Parent: parent, Unit: parent.Unit, Namespace: ns, Directives: decl.Usings, Externs: decl.Externs}
	e.usings[key] = s
	return s
}

// siteScope rebuilds the using scope and namespace of a declaration site of
// unit in hierarchy h.
func (e *Engine) siteScope(site scope.Site, unit *scope.Unit, h *scope.Hierarchy) (*UsingScope, *scope.Namespace) {
	ns := h.Root
	if site.File == nil {
		return nil, ns
	}
	s := e.fileScope(site.File, unit, h)
	for _, decl := range site.Enclosing {
		ns = declaredNamespace(ns, decl)
		s = e.namespaceScope(decl, s, ns)
	}
	return s, ns
}

// declaredNamespace returns the namespace a declaration nested in parent
// contributes to. The builder has created every one of them.
func declaredNamespace(parent *scope.Namespace, decl *ast.NamespaceDecl) *scope.Namespace {
	ns := parent
	for _, name := range decl.Name {
		child, ok := ns.Namespaces[name]
		if !ok {
			return ns
		}
		ns = child
	}
	return ns
}

// directiveTarget returns the symbol a using directive denotes, nil when its
// target does not resolve.
func (e *Engine) directiveTarget(d *ast.UsingDirective, s *UsingScope) scope.Symbol {
	if d.Target == nil {
		return nil
	}
	expect := ExpectNamespace
	switch {
	case d.IsAlias():
		expect = ExpectNamespaceOrType
	case d.Static:
		expect = ExpectType
	}
	ctx := Context{
		Kind:      ContextNamespace,
		Unit:      s.Unit,
		Usings:    s.directiveScope(),
		Namespace: s.Namespace,
		Expect:    expect,
	}
	if s.Parent == nil && s.Namespace != nil && s.Namespace.IsGlobal() {
		ctx.Kind = ContextSourceFile
	}
	info := e.resolveType(d.Target, ctx)
	if !info.SuccessfullyResolved() {
		return nil
	}
	return info.Resolver()
}

// resolveDirectives binds the targets of every directive of s.
func (e *Engine) resolveDirectives(s *UsingScope) {
	if s == nil {
		return
	}
	for _, d := range s.Directives {
		e.directiveTarget(d, s)
	}
}
