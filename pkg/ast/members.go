package ast

import "csresolve/pkg/token"

// FieldDecl declares one or more fields, constants or field-like events.
type FieldDecl struct {
	Modifiers  Modifiers
	ModToken   token.Token
	Attributes []*Attribute
	Event      bool
	Type       *TypeReference
	Vars       []*VariableDeclarator
	Token      token.Token
}

func (f *FieldDecl) Pos() token.Position { return f.Token.Pos }
func (f *FieldDecl) memberNode() {}

// VariableDeclarator is `name = init` inside a field or local declaration.
type VariableDeclarator struct {
	Name  string
	Token token.Token
	Init  Expr
}

func (v *VariableDeclarator) Pos() token.Position { return v.Token.Pos }

// AccessorDecl is a get/set/add/remove/init accessor.
type AccessorDecl struct {
	Kind      string
	Modifiers Modifiers
	Body      *Block
	ExprBody  Expr
	Token     token.Token
}

func (a *AccessorDecl) Pos() token.Position { return a.Token.Pos }

// PropertyDecl covers properties, indexers (Indexer set, Name "this") and
// events with accessors.
type PropertyDecl struct {
	Modifiers         Modifiers
	ModToken          token.Token
	Attributes        []*Attribute
	Event             bool
	Indexer           bool
	Type              *TypeReference
	ExplicitInterface *TypeReference
	Name              string
	NameToken         token.Token
	Parameters        []*Parameter
	Accessors         []*AccessorDecl
	ExprBody          Expr
	Init              Expr
	Token             token.Token
}

func (p *PropertyDecl) Pos() token.Position { return p.Token.Pos }
func (p *PropertyDecl) memberNode() {}

// MethodDecl covers methods and user-defined operators. Operators are named
// "operator +", "implicit operator" and so on.
type MethodDecl struct {
	Modifiers         Modifiers
	ModToken          token.Token
	Attributes        []*Attribute
	ReturnType        *TypeReference
	ExplicitInterface *TypeReference
	Name              string
	NameToken         token.Token
	TypeParams        []*TypeParameter
	Parameters        []*Parameter
	Constraints       []*ConstraintClause
	Body              *Block
	ExprBody          Expr
	Operator          bool
	Token             token.Token
}

func (m *MethodDecl) Pos() token.Position { return m.Token.Pos }
func (m *MethodDecl) memberNode() {}

// Arity returns the number of method type parameters.
func (m *MethodDecl) Arity() int { return len(m.TypeParams) }

// ConstructorDecl covers instance and static constructors and destructors.
type ConstructorDecl struct {
	Modifiers   Modifiers
	ModToken    token.Token
	Attributes  []*Attribute
	Name        string
	Destructor  bool
	Parameters  []*Parameter
	Initializer *ConstructorInitializer
	Body        *Block
	ExprBody    Expr
	Token       token.Token
}

func (c *ConstructorDecl) Pos() token.Position { return c.Token.Pos }
func (c *ConstructorDecl) memberNode() {}

// ConstructorInitializer is `: base(...)` or `: this(...)`.
type ConstructorInitializer struct {
	Base  bool
	Args  []*Argument
	Token token.Token
}

// EnumMemberDecl is one enum constant.
type EnumMemberDecl struct {
	Attributes []*Attribute
	Name       string
	Value      Expr
	Token      token.Token
}

func (e *EnumMemberDecl) Pos() token.Position { return e.Token.Pos }
func (e *EnumMemberDecl) memberNode() {}

// Parameter is a formal parameter of a method, constructor, indexer, delegate or lambda.
type Parameter struct {
	Attributes []*Attribute
	Modifier   string
	Type       *TypeReference
	Name       string
	Default    Expr
	Token      token.Token
}

func (p *Parameter) Pos() token.Position { return p.Token.Pos }
