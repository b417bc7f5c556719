package resolve

import (
	"context"

	"golang.org/x/sync/errgroup"

	"csresolve/pkg/ast"
	"csresolve/pkg/scope"
)

// ResolveFiles resolves the references of files, up to parallelism files at
// a time (unbounded when parallelism < 1). Cancellation is checked before
// each file; a started file always completes.
func (e *Engine) ResolveFiles(ctx context.Context, files []*ast.CompilationUnit, parallelism int) error {
	e.ResolveDeclarations()
	group, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		group.SetLimit(parallelism)
	}
	for _, file := range files {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.ResolveFile(file)
			return nil
		})
	}
	return group.Wait()
}

// ResolveFile binds every reference of a source file in its lexical context.
// The declaration phase runs first if it has not yet.
func (e *Engine) ResolveFile(file *ast.CompilationUnit) {
	e.ResolveDeclarations()
	w := &walker{e: e}
	s := e.fileScope(file, e.space.Source, e.space.Global)
	ctx := Context{
		Kind:      ContextSourceFile,
		Unit:      e.space.Source,
		Usings:    s,
		Namespace: e.space.Global.Root,
	}
	for _, d := range file.Usings {
		w.directive(d, s)
	}
	w.attributes(file.Attributes, ctx)
	w.decls(file.Members, ctx)
}

// walker visits the nodes of one file in the order ast.Inspect does, binding
// each type reference and simple name it meets.
type walker struct {
	e *Engine
}

// directive binds a file level directive; global ones live in the shared
// root scope.
func (w *walker) directive(d *ast.UsingDirective, s *UsingScope) {
	if d.Global && w.e.global != nil {
		w.e.directiveTarget(d, w.e.global)
		return
	}
	w.e.directiveTarget(d, s)
}

func (w *walker) decls(members []ast.Decl, ctx Context) {
	for _, member := range members {
		switch decl := member.(type) {
		case *ast.NamespaceDecl:
			w.namespace(decl, ctx)
		case *ast.TypeDecl:
			w.typeDecl(decl, ctx)
		}
	}
}

func (w *walker) namespace(decl *ast.NamespaceDecl, ctx Context) {
	ns := declaredNamespace(ctx.Namespace, decl)
	s := w.e.namespaceScope(decl, ctx.Usings, ns)
	for _, d := range decl.Usings {
		w.e.directiveTarget(d, s)
	}
	inner := ctx
	inner.Kind = ContextNamespace
	inner.Usings = s
	inner.Namespace = ns
	w.decls(decl.Members, inner)
}

func (w *walker) typeDecl(decl *ast.TypeDecl, ctx Context) {
	t := w.e.space.TypeOf(decl)
	if t == nil {
		return
	}
	w.attributes(decl.Attributes, ctx)

	part := 0
	for i, item := range t.Parts {
		if item == decl {
			part = i
		}
	}
	header := w.e.owner(t).partContext(t, part).expecting(ExpectType)
	for _, ref := range decl.Bases {
		w.typeRef(ref, header)
	}
	for _, clause := range decl.Constraints {
		w.constraints(clause, header)
	}

	body := ctx
	body.Kind = ContextTypeDeclaration
	body.Type = t
	body.TypeParams = typeParamScope(t)
	body.Locals = nil
	w.typeRef(decl.ReturnType, body.expecting(ExpectType))
	locals := NewLocalScope(nil)
	w.params(decl.Parameters, body, locals)
	for _, item := range decl.Members {
		w.member(item, body)
	}
}

func (w *walker) constraints(clause *ast.ConstraintClause, ctx Context) {
	for _, c := range clause.Constraints {
		w.typeRef(c.Type, ctx)
	}
}

func (w *walker) member(item ast.Member, ctx Context) {
	switch m := item.(type) {
	case *ast.TypeDecl:
		w.typeDecl(m, ctx)
	case *ast.FieldDecl:
		w.attributes(m.Attributes, ctx)
		w.typeRef(m.Type, ctx.expecting(ExpectType))
		for _, v := range m.Vars {
			w.expr(v.Init, ctx)
		}
	case *ast.PropertyDecl:
		w.attributes(m.Attributes, ctx)
		w.typeRef(m.Type, ctx.expecting(ExpectType))
		w.typeRef(m.ExplicitInterface, ctx.expecting(ExpectType))
		locals := NewLocalScope(nil)
		w.params(m.Parameters, ctx, locals)
		inner := ctx
		inner.Locals = locals
		for _, accessor := range m.Accessors {
			own := NewLocalScope(locals)
			switch accessor.Kind {
			case "set", "init", "add", "remove":
				own.Declare("value", accessor, m.Type)
			}
			body := inner
			body.Locals = own
			w.block(accessor.Body, body)
			w.expr(accessor.ExprBody, body)
		}
		w.expr(m.ExprBody, inner)
		w.expr(m.Init, ctx)
	case *ast.MethodDecl:
		w.attributes(m.Attributes, ctx)
		inner := ctx
		if member := w.e.space.MemberOf(m); member != nil {
			inner.TypeParams = scope.NewTypeParamScope(member.TypeParams, ctx.TypeParams)
		}
		w.typeRef(m.ReturnType, inner.expecting(ExpectType))
		w.typeRef(m.ExplicitInterface, inner.expecting(ExpectType))
		locals := NewLocalScope(nil)
		w.params(m.Parameters, inner, locals)
		for _, clause := range m.Constraints {
			w.constraints(clause, inner.expecting(ExpectType))
		}
		inner.Locals = locals
		w.block(m.Body, inner)
		w.expr(m.ExprBody, inner)
	case *ast.ConstructorDecl:
		w.attributes(m.Attributes, ctx)
		locals := NewLocalScope(nil)
		w.params(m.Parameters, ctx, locals)
		inner := ctx
		inner.Locals = locals
		if m.Initializer != nil {
			w.args(m.Initializer.Args, inner)
		}
		w.block(m.Body, inner)
		w.expr(m.ExprBody, inner)
	case *ast.EnumMemberDecl:
		w.attributes(m.Attributes, ctx)
		w.expr(m.Value, ctx)
	}
}

// params binds the parameter types and defaults and declares each parameter
// in locals.
func (w *walker) params(params []*ast.Parameter, ctx Context, locals *LocalScope) {
	for _, p := range params {
		w.attributes(p.Attributes, ctx)
		w.typeRef(p.Type, ctx.expecting(ExpectType))
		w.expr(p.Default, ctx)
		if locals != nil && p.Name != "" {
			locals.Declare(p.Name, p, p.Type)
		}
	}
}

func (w *walker) attributes(attrs []*ast.Attribute, ctx Context) {
	for _, attr := range attrs {
		w.typeRef(attr.Type, ctx.attribute())
		w.args(attr.Args, ctx.expecting(ExpectValue))
	}
}

func (w *walker) args(args []*ast.Argument, ctx Context) {
	for _, arg := range args {
		w.expr(arg.Value, ctx)
		if arg.Declares != nil {
			w.localDecl(arg.Declares, ctx)
		}
	}
}

func (w *walker) typeRef(ref *ast.TypeReference, ctx Context) {
	if ref == nil {
		return
	}
	w.e.resolveType(ref, ctx)
}

func (w *walker) expr(x ast.Expr, ctx Context) {
	if x == nil {
		return
	}
	ctx = ctx.expecting(ExpectValue)
	types := ctx.expecting(ExpectType)
	switch n := x.(type) {
	case *ast.NameExpr:
		w.e.resolveName(n, ctx)
	case *ast.PredefinedTypeExpr:
		w.typeRef(n.Type, types)
	case *ast.MemberExpr:
		w.expr(n.X, ctx)
		for _, arg := range n.Args {
			w.typeRef(arg, types)
		}
	case *ast.ParenExpr:
		w.expr(n.X, ctx)
	case *ast.BinaryExpr:
		w.expr(n.X, ctx)
		w.expr(n.Y, ctx)
	case *ast.UnaryExpr:
		w.expr(n.X, ctx)
	case *ast.AssignExpr:
		w.expr(n.Left, ctx)
		w.expr(n.Right, ctx)
	case *ast.ConditionalExpr:
		w.expr(n.Cond, ctx)
		w.expr(n.Then, ctx)
		w.expr(n.Else, ctx)
	case *ast.CallExpr:
		if !ast.IsNameof(n) {
			w.expr(n.Fun, ctx)
		}
		w.args(n.Args, ctx)
	case *ast.IndexExpr:
		w.expr(n.X, ctx)
		w.args(n.Args, ctx)
	case *ast.NewExpr:
		w.typeRef(n.Type, types)
		w.args(n.Args, ctx)
		for _, size := range n.Sizes {
			w.expr(size, ctx)
		}
		if n.Init != nil {
			w.expr(n.Init, ctx)
		}
	case *ast.InitializerExpr:
		for _, item := range n.Elements {
			w.expr(item, ctx)
		}
	case *ast.NamedInit:
		w.expr(n.Value, ctx)
	case *ast.CastExpr:
		w.typeRef(n.Type, types)
		w.expr(n.X, ctx)
	case *ast.TypeTestExpr:
		w.expr(n.X, ctx)
		w.typeRef(n.Type, types)
		if n.Binding != "" && ctx.Locals != nil {
			ctx.Locals.Declare(n.Binding, n, n.Type)
		}
	case *ast.TypeOperatorExpr:
		w.typeRef(n.Type, types)
	case *ast.LambdaExpr:
		locals := NewLocalScope(ctx.Locals)
		w.params(n.Params, ctx, locals)
		inner := ctx
		inner.Locals = locals
		switch body := n.Body.(type) {
		case *ast.Block:
			w.block(body, inner)
		case ast.Expr:
			w.expr(body, inner)
		}
	case *ast.CheckedExpr:
		w.expr(n.X, ctx)
	}
}

func (w *walker) block(b *ast.Block, ctx Context) {
	if b == nil {
		return
	}
	inner := ctx
	inner.Locals = NewLocalScope(ctx.Locals)
	for _, stmt := range b.Stmts {
		w.stmt(stmt, inner)
	}
}

// embedded walks a statement used as the body of another; a non-block body
// still gets its own local scope.
func (w *walker) embedded(s ast.Stmt, ctx Context) {
	if s == nil {
		return
	}
	if b, ok := s.(*ast.Block); ok {
		w.block(b, ctx)
		return
	}
	inner := ctx
	inner.Locals = NewLocalScope(ctx.Locals)
	w.stmt(s, inner)
}

func (w *walker) localDecl(decl *ast.LocalDecl, ctx Context) {
	w.typeRef(decl.Type, ctx.expecting(ExpectType))
	for _, v := range decl.Vars {
		if ctx.Locals != nil {
			ctx.Locals.Declare(v.Name, v, decl.Type)
		}
		w.expr(v.Init, ctx)
	}
}

func (w *walker) stmt(s ast.Stmt, ctx Context) {
	switch n := s.(type) {
	case *ast.Block:
		w.block(n, ctx)
	case *ast.LocalDecl:
		w.localDecl(n, ctx)
	case *ast.ExprStmt:
		w.expr(n.X, ctx)
	case *ast.IfStmt:
		if n == nil {
			return
		}
		w.expr(n.Cond, ctx)
		w.embedded(n.Then, ctx)
		w.embedded(n.Else, ctx)
	case *ast.WhileStmt:
		w.expr(n.Cond, ctx)
		w.embedded(n.Body, ctx)
	case *ast.DoStmt:
		w.embedded(n.Body, ctx)
		w.expr(n.Cond, ctx)
	case *ast.ForStmt:
		inner := ctx
		inner.Locals = NewLocalScope(ctx.Locals)
		for _, init := range n.Init {
			w.stmt(init, inner)
		}
		w.expr(n.Cond, inner)
		for _, post := range n.Post {
			w.expr(post, inner)
		}
		w.embedded(n.Body, inner)
	case *ast.ForeachStmt:
		w.typeRef(n.Type, ctx.expecting(ExpectType))
		w.expr(n.X, ctx)
		inner := ctx
		inner.Locals = NewLocalScope(ctx.Locals)
		inner.Locals.Declare(n.Name, n, n.Type)
		w.embedded(n.Body, inner)
	case *ast.ReturnStmt:
		w.expr(n.X, ctx)
	case *ast.TryStmt:
		w.block(n.Body, ctx)
		for _, c := range n.Catches {
			w.typeRef(c.Type, ctx.expecting(ExpectType))
			inner := ctx
			inner.Locals = NewLocalScope(ctx.Locals)
			if c.Name != "" {
				inner.Locals.Declare(c.Name, c, c.Type)
			}
			w.expr(c.Filter, inner)
			w.block(c.Body, inner)
		}
		w.block(n.Finally, ctx)
	case *ast.UsingStmt:
		inner := ctx
		if n.Body != nil {
			inner.Locals = NewLocalScope(ctx.Locals)
		}
		if n.Decl != nil {
			w.localDecl(n.Decl, inner)
		}
		w.expr(n.X, inner)
		w.embedded(n.Body, inner)
	case *ast.LockStmt:
		w.expr(n.X, ctx)
		w.embedded(n.Body, ctx)
	case *ast.SwitchStmt:
		w.expr(n.X, ctx)
		inner := ctx
		inner.Locals = NewLocalScope(ctx.Locals)
		for _, section := range n.Sections {
			for _, label := range section.Labels {
				w.expr(label, inner)
			}
			for _, item := range section.Stmts {
				w.stmt(item, inner)
			}
		}
	case *ast.CheckedStmt:
		w.block(n.Body, ctx)
	}
}
