package ast

import (
	"fmt"
	"strings"

	"csresolve/pkg/token"
)

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Literal is a numeric, string, character, boolean or null literal.
type Literal struct {
	Kind  token.Kind
	Value string
	Token token.Token
}

// NameExpr is a simple name in expression context, optionally with type
// arguments (`M<int>`) or an alias qualifier (`global::System`).
type NameExpr struct {
	Alias string
	Name  string
	Args  []*TypeReference
	Token token.Token
}

// PredefinedTypeExpr is a predefined type keyword used as an expression
// (`int.Parse`, `string.Empty`).
type PredefinedTypeExpr struct {
	Type *TypeReference
}

// MemberExpr is `X.Name<Args>`.
type MemberExpr struct {
	X     Expr
	Name  string
	Args  []*TypeReference
	Token token.Token
}

type ThisExpr struct {
	Token token.Token
}

type BaseExpr struct {
	Token token.Token
}

type ParenExpr struct {
	X     Expr
	Token token.Token
}

// BinaryExpr is a binary operator application, including `??`.
type BinaryExpr struct {
	Op    string
	X     Expr
	Y     Expr
	Token token.Token
}

// UnaryExpr is a prefix or postfix unary operator application.
type UnaryExpr struct {
	Op      string
	X       Expr
	Postfix bool
	Token   token.Token
}

// AssignExpr is a simple or compound assignment.
type AssignExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Token token.Token
}

type ConditionalExpr struct {
	Cond  Expr
	Then  Expr
	Else  Expr
	Token token.Token
}

// Argument is one call argument. Declares holds `out var x` style
// declarations, in which case Value is nil.
type Argument struct {
	Name     string
	Modifier string
	Value    Expr
	Declares *LocalDecl
}

func (a *Argument) Pos() token.Position {
	if a.Declares != nil {
		return a.Declares.Pos()
	}
	return a.Value.Pos()
}

type CallExpr struct {
	Fun   Expr
	Args  []*Argument
	Token token.Token
}

type IndexExpr struct {
	X     Expr
	Args  []*Argument
	Token token.Token
}

// NewExpr is object, array or anonymous-object creation. Type is nil for
// `new { ... }` and for implicitly typed arrays `new[] { ... }`.
type NewExpr struct {
	Type  *TypeReference
	Args  []*Argument
	Sizes []Expr
	Init  *InitializerExpr
	Token token.Token
}

// InitializerExpr is a brace-delimited object, collection or array initializer.
type InitializerExpr struct {
	Elements []Expr
	Token    token.Token
}

// NamedInit is `Name = value` inside an object initializer. Name denotes a
// member of the created type, never a name in the enclosing scope.
type NamedInit struct {
	Name  string
	Value Expr
	Token token.Token
}

type CastExpr struct {
	Type  *TypeReference
	X     Expr
	Token token.Token
}

// TypeTestExpr is `x is T`, `x is T name` or `x as T`.
type TypeTestExpr struct {
	Op      string
	X       Expr
	Type    *TypeReference
	Binding string
	Token   token.Token
}

// TypeOperatorExpr is `typeof(T)`, `sizeof(T)` or `default(T)`. Type is nil
// for the `default` literal.
type TypeOperatorExpr struct {
	Op    string
	Type  *TypeReference
	Token token.Token
}

// LambdaExpr is `(params) => body`; Body is an Expr or a *Block.
type LambdaExpr struct {
	Params []*Parameter
	Body   Node
	Async  bool
	Token  token.Token
}

// CheckedExpr is `checked(x)` or `unchecked(x)`.
type CheckedExpr struct {
	Op    string
	X     Expr
	Token token.Token
}

func (e *Literal) Pos() token.Position            { return e.Token.Pos }
func (e *NameExpr) Pos() token.Position           { return e.Token.Pos }
func (e *PredefinedTypeExpr) Pos() token.Position { return e.Type.Pos() }
func (e *MemberExpr) Pos() token.Position         { return e.X.Pos() }
func (e *ThisExpr) Pos() token.Position           { return e.Token.Pos }
func (e *BaseExpr) Pos() token.Position           { return e.Token.Pos }
func (e *ParenExpr) Pos() token.Position          { return e.Token.Pos }
func (e *BinaryExpr) Pos() token.Position         { return e.X.Pos() }
func (e *UnaryExpr) Pos() token.Position          { return e.Token.Pos }
func (e *AssignExpr) Pos() token.Position         { return e.Left.Pos() }
func (e *ConditionalExpr) Pos() token.Position    { return e.Cond.Pos() }
func (e *CallExpr) Pos() token.Position           { return e.Fun.Pos() }
func (e *IndexExpr) Pos() token.Position          { return e.X.Pos() }
func (e *NewExpr) Pos() token.Position            { return e.Token.Pos }
func (e *InitializerExpr) Pos() token.Position    { return e.Token.Pos }
func (e *NamedInit) Pos() token.Position          { return e.Token.Pos }
func (e *CastExpr) Pos() token.Position           { return e.Token.Pos }
func (e *TypeTestExpr) Pos() token.Position       { return e.X.Pos() }
func (e *TypeOperatorExpr) Pos() token.Position   { return e.Token.Pos }
func (e *LambdaExpr) Pos() token.Position         { return e.Token.Pos }
func (e *CheckedExpr) Pos() token.Position        { return e.Token.Pos }

func (*Literal) exprNode()            {}
func (*NameExpr) exprNode()           {}
func (*PredefinedTypeExpr) exprNode() {}
func (*MemberExpr) exprNode()         {}
func (*ThisExpr) exprNode()           {}
func (*BaseExpr) exprNode()           {}
func (*ParenExpr) exprNode()          {}
func (*BinaryExpr) exprNode()         {}
func (*UnaryExpr) exprNode()          {}
func (*AssignExpr) exprNode()         {}
func (*ConditionalExpr) exprNode()    {}
func (*CallExpr) exprNode()           {}
func (*IndexExpr) exprNode()          {}
func (*NewExpr) exprNode()            {}
func (*InitializerExpr) exprNode()    {}
func (*NamedInit) exprNode()          {}
func (*CastExpr) exprNode()           {}
func (*TypeTestExpr) exprNode()       {}
func (*TypeOperatorExpr) exprNode()   {}
func (*LambdaExpr) exprNode()         {}
func (*CheckedExpr) exprNode()        {}

// IsNameof reports whether call is `nameof(x)`. The callee of such a call is
// an operator, not a name to resolve.
func IsNameof(call *CallExpr) bool {
	name, ok := call.Fun.(*NameExpr)
	return ok && name.Name == "nameof" && name.Alias == "" && len(name.Args) == 0 && len(call.Args) == 1
}

// Format renders an expression fully parenthesised, which makes operator
// grouping visible: `2 + 3 * 4` becomes `(2 + (3 * 4))`.
func Format(e Expr) string {
	switch n := e.(type) {
	case nil:
		return ""
	case *Literal:
		return n.Value
	case *NameExpr:
		name := n.Name
		if n.Alias != "" {
			name = n.Alias + "::" + name
		}
		return name + formatArgs(n.Args)
	case *PredefinedTypeExpr:
		return n.Type.String()
	case *MemberExpr:
		return Format(n.X) + "." + n.Name + formatArgs(n.Args)
	case *ThisExpr:
		return "this"
	case *BaseExpr:
		return "base"
	case *ParenExpr:
		return Format(n.X)
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", Format(n.X), n.Op, Format(n.Y))
	case *UnaryExpr:
		if n.Postfix {
			return fmt.Sprintf("(%s%s)", Format(n.X), n.Op)
		}
		return fmt.Sprintf("(%s%s)", n.Op, Format(n.X))
	case *AssignExpr:
		return fmt.Sprintf("(%s %s %s)", Format(n.Left), n.Op, Format(n.Right))
	case *ConditionalExpr:
		return fmt.Sprintf("(%s ? %s : %s)", Format(n.Cond), Format(n.Then), Format(n.Else))
	case *CallExpr:
		return Format(n.Fun) + "(" + formatArguments(n.Args) + ")"
	case *IndexExpr:
		return Format(n.X) + "[" + formatArguments(n.Args) + "]"
	case *NewExpr:
		text := "new"
		if n.Type != nil {
			text += " " + n.Type.String()
		}
		return text + "(" + formatArguments(n.Args) + ")"
	case *InitializerExpr:
		parts := make([]string, len(n.Elements))
		for i, element := range n.Elements {
			parts[i] = Format(element)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *NamedInit:
		return n.Name + " = " + Format(n.Value)
	case *CastExpr:
		return fmt.Sprintf("((%s)%s)", n.Type, Format(n.X))
	case *TypeTestExpr:
		return fmt.Sprintf("(%s %s %s)", Format(n.X), n.Op, n.Type)
	case *TypeOperatorExpr:
		if n.Type == nil {
			return n.Op
		}
		return fmt.Sprintf("%s(%s)", n.Op, n.Type)
	case *LambdaExpr:
		return "lambda"
	case *CheckedExpr:
		return fmt.Sprintf("%s(%s)", n.Op, Format(n.X))
	}
	return "?"
}

func formatArgs(args []*TypeReference) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func formatArguments(args []*Argument) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = Format(arg.Value)
	}
	return strings.Join(parts, ", ")
}
