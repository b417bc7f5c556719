package ast

import "csresolve/pkg/token"

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Block is a brace-delimited statement list; it opens a local scope.
type Block struct {
	Stmts []Stmt
	Token token.Token
	End   token.Position
}

// LocalDecl declares locals. Type is nil for `var`.
type LocalDecl struct {
	Const bool
	Type  *TypeReference
	Vars  []*VariableDeclarator
	Token token.Token
}

type ExprStmt struct {
	X Expr
}

type EmptyStmt struct {
	Token token.Token
}

type IfStmt struct {
	Cond  Expr
	Then  Stmt
	Else  Stmt
	Token token.Token
}

type WhileStmt struct {
	Cond  Expr
	Body  Stmt
	Token token.Token
}

type DoStmt struct {
	Body  Stmt
	Cond  Expr
	Token token.Token
}

type ForStmt struct {
	Init  []Stmt
	Cond  Expr
	Post  []Expr
	Body  Stmt
	Token token.Token
}

// ForeachStmt iterates X binding Name; Type is nil for `var`.
type ForeachStmt struct {
	Type      *TypeReference
	Name      string
	NameToken token.Token
	X         Expr
	Body      Stmt
	Token     token.Token
}

// ReturnStmt is `return x;`, `yield return x;` or `throw x;`.
type ReturnStmt struct {
	Keyword string
	X       Expr
	Token   token.Token
}

// JumpStmt is `break;`, `continue;` or `yield break;`.
type JumpStmt struct {
	Keyword string
	Token   token.Token
}

type CatchClause struct {
	Type      *TypeReference
	Name      string
	NameToken token.Token
	Filter    Expr
	Body      *Block
	Token     token.Token
}

type TryStmt struct {
	Body    *Block
	Catches []*CatchClause
	Finally *Block
	Token   token.Token
}

// UsingStmt is `using (decl-or-expr) body` or the declaration form `using var x = ...;`.
type UsingStmt struct {
	Decl  *LocalDecl
	X     Expr
	Body  Stmt
	Token token.Token
}

type LockStmt struct {
	X     Expr
	Body  Stmt
	Token token.Token
}

// SwitchSection groups case labels with their statements; a nil label is `default`.
type SwitchSection struct {
	Labels []Expr
	Stmts  []Stmt
	Token  token.Token
}

type SwitchStmt struct {
	X        Expr
	Sections []*SwitchSection
	Token    token.Token
}

// CheckedStmt is `checked { }`, `unchecked { }` or `unsafe { }`.
type CheckedStmt struct {
	Keyword string
	Body    *Block
	Token   token.Token
}

func (s *Block) Pos() token.Position       { return s.Token.Pos }
func (s *LocalDecl) Pos() token.Position   { return s.Token.Pos }
func (s *ExprStmt) Pos() token.Position    { return s.X.Pos() }
func (s *EmptyStmt) Pos() token.Position   { return s.Token.Pos }
func (s *IfStmt) Pos() token.Position      { return s.Token.Pos }
func (s *WhileStmt) Pos() token.Position   { return s.Token.Pos }
func (s *DoStmt) Pos() token.Position      { return s.Token.Pos }
func (s *ForStmt) Pos() token.Position     { return s.Token.Pos }
func (s *ForeachStmt) Pos() token.Position { return s.Token.Pos }
func (s *ReturnStmt) Pos() token.Position  { return s.Token.Pos }
func (s *JumpStmt) Pos() token.Position    { return s.Token.Pos }
func (s *TryStmt) Pos() token.Position     { return s.Token.Pos }
func (s *UsingStmt) Pos() token.Position   { return s.Token.Pos }
func (s *LockStmt) Pos() token.Position    { return s.Token.Pos }
func (s *SwitchStmt) Pos() token.Position  { return s.Token.Pos }
func (s *CheckedStmt) Pos() token.Position { return s.Token.Pos }

func (*Block) stmtNode()       {}
func (*LocalDecl) stmtNode()   {}
func (*ExprStmt) stmtNode()    {}
func (*EmptyStmt) stmtNode()   {}
func (*IfStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()   {}
func (*DoStmt) stmtNode()      {}
func (*ForStmt) stmtNode()     {}
func (*ForeachStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()  {}
func (*JumpStmt) stmtNode()    {}
func (*TryStmt) stmtNode()     {}
func (*UsingStmt) stmtNode()   {}
func (*LockStmt) stmtNode()    {}
func (*SwitchStmt) stmtNode()  {}
func (*CheckedStmt) stmtNode() {}

func (c *CatchClause) Pos() token.Position   { return c.Token.Pos }
func (s *SwitchSection) Pos() token.Position { return s.Token.Pos }
