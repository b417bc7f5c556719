package ast

// Inspect traverses the tree rooted at node in depth-first order. f is called
// for every node; when it returns false the children of that node are skipped.
// Type arguments of a TypeReference are visited as TypeReference children.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || isNilNode(node) {
		return
	}
	if !f(node) {
		return
	}
	switch n := node.(type) {
	case *CompilationUnit:
		for _, item := range n.Externs {
			Inspect(item, f)
		}
		for _, item := range n.Usings {
			Inspect(item, f)
		}
		inspectAttributes(n.Attributes, f)
		for _, item := range n.Members {
			Inspect(item, f)
		}
	case *ExternAlias:
	case *UsingDirective:
		inspectType(n.Target, f)
	case *NamespaceDecl:
		for _, item := range n.Externs {
			Inspect(item, f)
		}
		for _, item := range n.Usings {
			Inspect(item, f)
		}
		for _, item := range n.Members {
			Inspect(item, f)
		}
	case *TypeDecl:
		inspectAttributes(n.Attributes, f)
		for _, item := range n.TypeParams {
			Inspect(item, f)
		}
		for _, item := range n.Bases {
			inspectType(item, f)
		}
		inspectConstraints(n.Constraints, f)
		inspectType(n.ReturnType, f)
		inspectParams(n.Parameters, f)
		for _, item := range n.Members {
			Inspect(item, f)
		}
	case *TypeParameter:
	case *ConstraintClause:
		for _, item := range n.Constraints {
			Inspect(item, f)
		}
	case *Constraint:
		inspectType(n.Type, f)
	case *Attribute:
		inspectType(n.Type, f)
		inspectArgs(n.Args, f)
	case *FieldDecl:
		inspectAttributes(n.Attributes, f)
		inspectType(n.Type, f)
		for _, item := range n.Vars {
			Inspect(item, f)
		}
	case *VariableDeclarator:
		inspectExpr(n.Init, f)
	case *PropertyDecl:
		inspectAttributes(n.Attributes, f)
		inspectType(n.Type, f)
		inspectType(n.ExplicitInterface, f)
		inspectParams(n.Parameters, f)
		for _, item := range n.Accessors {
			Inspect(item, f)
		}
		inspectExpr(n.ExprBody, f)
		inspectExpr(n.Init, f)
	case *AccessorDecl:
		inspectBlock(n.Body, f)
		inspectExpr(n.ExprBody, f)
	case *MethodDecl:
		inspectAttributes(n.Attributes, f)
		inspectType(n.ReturnType, f)
		inspectType(n.ExplicitInterface, f)
		for _, item := range n.TypeParams {
			Inspect(item, f)
		}
		inspectParams(n.Parameters, f)
		inspectConstraints(n.Constraints, f)
		inspectBlock(n.Body, f)
		inspectExpr(n.ExprBody, f)
	case *ConstructorDecl:
		inspectAttributes(n.Attributes, f)
		inspectParams(n.Parameters, f)
		if n.Initializer != nil {
			inspectArgs(n.Initializer.Args, f)
		}
		inspectBlock(n.Body, f)
		inspectExpr(n.ExprBody, f)
	case *EnumMemberDecl:
		inspectAttributes(n.Attributes, f)
		inspectExpr(n.Value, f)
	case *Parameter:
		inspectAttributes(n.Attributes, f)
		inspectType(n.Type, f)
		inspectExpr(n.Default, f)
	case *TypeReference:
		for _, seg := range n.Segments {
			for _, arg := range seg.Args {
				inspectType(arg, f)
			}
		}
	case *Argument:
		inspectExpr(n.Value, f)
		if n.Declares != nil {
			Inspect(n.Declares, f)
		}

	case *Literal, *ThisExpr, *BaseExpr:
	case *NameExpr:
		for _, arg := range n.Args {
			inspectType(arg, f)
		}
	case *PredefinedTypeExpr:
		inspectType(n.Type, f)
	case *MemberExpr:
		inspectExpr(n.X, f)
		for _, arg := range n.Args {
			inspectType(arg, f)
		}
	case *ParenExpr:
		inspectExpr(n.X, f)
	case *BinaryExpr:
		inspectExpr(n.X, f)
		inspectExpr(n.Y, f)
	case *UnaryExpr:
		inspectExpr(n.X, f)
	case *AssignExpr:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *ConditionalExpr:
		inspectExpr(n.Cond, f)
		inspectExpr(n.Then, f)
		inspectExpr(n.Else, f)
	case *CallExpr:
		if !IsNameof(n) {
			inspectExpr(n.Fun, f)
		}
		inspectArgs(n.Args, f)
	case *IndexExpr:
		inspectExpr(n.X, f)
		inspectArgs(n.Args, f)
	case *NewExpr:
		inspectType(n.Type, f)
		inspectArgs(n.Args, f)
		for _, item := range n.Sizes {
			inspectExpr(item, f)
		}
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *InitializerExpr:
		for _, item := range n.Elements {
			inspectExpr(item, f)
		}
	case *NamedInit:
		inspectExpr(n.Value, f)
	case *CastExpr:
		inspectType(n.Type, f)
		inspectExpr(n.X, f)
	case *TypeTestExpr:
		inspectExpr(n.X, f)
		inspectType(n.Type, f)
	case *TypeOperatorExpr:
		inspectType(n.Type, f)
	case *LambdaExpr:
		inspectParams(n.Params, f)
		Inspect(n.Body, f)
	case *CheckedExpr:
		inspectExpr(n.X, f)

	case *Block:
		for _, item := range n.Stmts {
			Inspect(item, f)
		}
	case *LocalDecl:
		inspectType(n.Type, f)
		for _, item := range n.Vars {
			Inspect(item, f)
		}
	case *ExprStmt:
		inspectExpr(n.X, f)
	case *EmptyStmt, *JumpStmt:
	case *IfStmt:
		inspectExpr(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *WhileStmt:
		inspectExpr(n.Cond, f)
		Inspect(n.Body, f)
	case *DoStmt:
		Inspect(n.Body, f)
		inspectExpr(n.Cond, f)
	case *ForStmt:
		for _, item := range n.Init {
			Inspect(item, f)
		}
		inspectExpr(n.Cond, f)
		for _, item := range n.Post {
			inspectExpr(item, f)
		}
		Inspect(n.Body, f)
	case *ForeachStmt:
		inspectType(n.Type, f)
		inspectExpr(n.X, f)
		Inspect(n.Body, f)
	case *ReturnStmt:
		inspectExpr(n.X, f)
	case *TryStmt:
		inspectBlock(n.Body, f)
		for _, item := range n.Catches {
			Inspect(item, f)
		}
		inspectBlock(n.Finally, f)
	case *CatchClause:
		inspectType(n.Type, f)
		inspectExpr(n.Filter, f)
		inspectBlock(n.Body, f)
	case *UsingStmt:
		if n.Decl != nil {
			Inspect(n.Decl, f)
		}
		inspectExpr(n.X, f)
		Inspect(n.Body, f)
	case *LockStmt:
		inspectExpr(n.X, f)
		Inspect(n.Body, f)
	case *SwitchStmt:
		inspectExpr(n.X, f)
		for _, item := range n.Sections {
			Inspect(item, f)
		}
	case *SwitchSection:
		for _, item := range n.Labels {
			inspectExpr(item, f)
		}
		for _, item := range n.Stmts {
			Inspect(item, f)
		}
	case *CheckedStmt:
		inspectBlock(n.Body, f)
	}
}

// isNilNode catches typed nil pointers stored in interfaces.
func isNilNode(node Node) bool {
	switch n := node.(type) {
	case *Block:
		return n == nil
	case *TypeReference:
		return n == nil
	case *IfStmt:
		return n == nil
	}
	return false
}

func inspectType(ref *TypeReference, f func(Node) bool) {
	if ref != nil {
		Inspect(ref, f)
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectBlock(b *Block, f func(Node) bool) {
	if b != nil {
		Inspect(b, f)
	}
}

func inspectParams(params []*Parameter, f func(Node) bool) {
	for _, item := range params {
		Inspect(item, f)
	}
}

func inspectArgs(args []*Argument, f func(Node) bool) {
	for _, item := range args {
		Inspect(item, f)
	}
}

func inspectAttributes(attrs []*Attribute, f func(Node) bool) {
	for _, item := range attrs {
		Inspect(item, f)
	}
}

func inspectConstraints(clauses []*ConstraintClause, f func(Node) bool) {
	for _, item := range clauses {
		Inspect(item, f)
	}
}

// References returns every node that the resolver binds: type references and
// simple names, in source order.
func References(node Node) []Node {
	var result []Node
	Inspect(node, func(n Node) bool {
		switch n.(type) {
		case *TypeReference, *NameExpr:
			result = append(result, n)
		}
		return true
	})
	return result
}
