package parser

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/token"
)

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, "??=": true,
}

// Binary operator precedence, higher binds tighter. All binary operators
// handled here are left-associative.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7, "is": 7, "as": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *Parser) expression() ast.Expr {
	left := p.conditional()
	tok := p.cur()
	op, width := p.assignOp()
	if width == 0 {
		return left
	}
	for i := 0; i < width; i++ {
		p.next()
	}
	return &ast.AssignExpr{Op: op, Left: left, Right: p.expression(), Token: tok}
}

func (p *Parser) assignOp() (string, int) {
	tok := p.cur()
	if tok.Is(">") && p.peek(1).Is(">=") && p.adjacent(1) {
		return ">>=", 2
	}
	if tok.Kind == token.Punct && assignOps[tok.Text] {
		return tok.Text, 1
	}
	return "", 0
}

func (p *Parser) conditional() ast.Expr {
	cond := p.coalesce()
	if !p.is("?") {
		return cond
	}
	tok := p.next()
	then := p.expression()
	p.expect(":")
	return &ast.ConditionalExpr{Cond: cond, Then: then, Else: p.expression(), Token: tok}
}

// coalesce parses the right-associative `??` operator.
func (p *Parser) coalesce() ast.Expr {
	left := p.binary(1)
	if !p.is("??") {
		return left
	}
	tok := p.next()
	return &ast.BinaryExpr{Op: "??", X: left, Y: p.coalesce(), Token: tok}
}

func (p *Parser) binaryOp() (string, int) {
	tok := p.cur()
	if tok.Is(">") {
		if p.peek(1).Is(">") && p.adjacent(1) {
			if p.peek(2).Is("=") && p.adjacent(2) {
				return "", 0
			}
			return ">>", 2
		}
		if p.peek(1).Is(">=") && p.adjacent(1) {
			return "", 0
		}
	}
	if tok.Kind != token.Punct && !tok.Is("is") && !tok.Is("as") {
		return "", 0
	}
	if _, ok := precedence[tok.Text]; ok {
		return tok.Text, 1
	}
	return "", 0
}

// binary implements precedence climbing; the right operand is parsed with a
// strictly higher minimum precedence, which makes operators left-associative.
func (p *Parser) binary(minPrec int) ast.Expr {
	left := p.unary()
	for {
		op, width := p.binaryOp()
		if width == 0 || precedence[op] < minPrec {
			return left
		}
		tok := p.cur()
		for i := 0; i < width; i++ {
			p.next()
		}
		if op == "is" || op == "as" {
			left = p.typeTest(op, left, tok)
			continue
		}
		right := p.binary(precedence[op] + 1)
		left = &ast.BinaryExpr{Op: op, X: left, Y: right, Token: tok}
	}
}

func (p *Parser) typeTest(op string, x ast.Expr, tok token.Token) ast.Expr {
	if op == "is" {
		if p.isWord("not") {
			notTok := p.next()
			return &ast.UnaryExpr{Op: "not", X: p.typeTest(op, x, tok), Token: notTok}
		}
		if p.is("null") || p.cur().Kind == token.IntLiteral || p.cur().Kind == token.StringLiteral ||
			p.cur().Kind == token.CharLiteral || p.cur().Kind == token.RealLiteral || p.is("true") || p.is("false") {
			return &ast.BinaryExpr{Op: "is", X: x, Y: p.unary(), Token: tok}
		}
	}
	test := &ast.TypeTestExpr{Op: op, X: x, Type: p.typeRef(true), Token: tok}
	if op == "is" && p.isIdent() && !p.isWord("when") {
		test.Binding = p.next().Text
	}
	return test
}

func (p *Parser) unary() ast.Expr {
	tok := p.cur()
	switch {
	case tok.Kind == token.Punct && (tok.Text == "+" || tok.Text == "-" || tok.Text == "!" || tok.Text == "~" ||
		tok.Text == "++" || tok.Text == "--" || tok.Text == "&" || tok.Text == "*"):
		p.next()
		return &ast.UnaryExpr{Op: tok.Text, X: p.unary(), Token: tok}
	case p.isWord("await") && p.startsOperand(1):
		p.next()
		return &ast.UnaryExpr{Op: "await", X: p.unary(), Token: tok}
	case p.isWord("async") && (p.peek(1).Is("(") || p.peek(1).Kind == token.Identifier || p.peek(1).Is("delegate")):
		if lambda := p.tryLambda(1); lambda != nil {
			lambda.Async = true
			return lambda
		}
	case p.is("("):
		if lambda := p.tryLambda(0); lambda != nil {
			return lambda
		}
		if cast := p.tryCast(); cast != nil {
			return cast
		}
	case p.isIdent() && p.peek(1).Is("=>"):
		return p.tryLambda(0)
	}
	return p.postfix(p.primary())
}

// startsOperand reports whether the token at offset n can begin an operand.
func (p *Parser) startsOperand(n int) bool {
	tok := p.peek(n)
	switch tok.Kind {
	case token.Identifier, token.IntLiteral, token.RealLiteral, token.StringLiteral, token.CharLiteral:
		return true
	case token.Keyword:
		switch tok.Text {
		case "this", "base", "new", "typeof", "default", "null", "true", "false", "checked", "unchecked", "sizeof", "delegate":
			return true
		}
		_, ok := token.PredefinedType(tok.Text)
		return ok
	case token.Punct:
		return tok.Text == "(" || tok.Text == "!" || tok.Text == "~"
	}
	return false
}

// tryCast parses `(T)x` when the parenthesised tokens form a type and the
// following token can only start an operand.
func (p *Parser) tryCast() ast.Expr {
	tok := p.cur()
	var typ *ast.TypeReference
	ok := p.try(func() bool {
		p.next()
		typ = p.typeRef(false)
		if typ == nil || !p.is(")") {
			return false
		}
		p.next()
		if typ.IsPredefined() || typ.Nullable || len(typ.ArrayRanks) > 0 {
			return p.startsOperand(0) || p.is("-") || p.is("+")
		}
		return p.startsOperand(0)
	})
	if !ok {
		return nil
	}
	return &ast.CastExpr{Type: typ, X: p.unary(), Token: tok}
}

// tryLambda parses a lambda starting skip tokens ahead (after `async`).
func (p *Parser) tryLambda(skip int) *ast.LambdaExpr {
	start := p.pos
	for i := 0; i < skip; i++ {
		p.next()
	}
	tok := p.cur()
	var params []*ast.Parameter
	switch {
	case p.isIdent() && p.peek(1).Is("=>"):
		name := p.next()
		params = append(params, &ast.Parameter{Name: name.Text, Token: name})
	case p.is("delegate"):
		p.next()
		if p.is("(") {
			params = p.parameters("(", ")")
		}
		return &ast.LambdaExpr{Params: params, Body: p.block(), Token: tok}
	case p.is("("):
		ok := p.try(func() bool {
			params = p.lambdaParameters()
			return p.is("=>")
		})
		if !ok {
			p.pos = start
			return nil
		}
	default:
		p.pos = start
		return nil
	}
	p.expect("=>")
	lambda := &ast.LambdaExpr{Params: params, Token: tok}
	if p.is("{") {
		lambda.Body = p.block()
	} else {
		lambda.Body = p.expression()
	}
	return lambda
}

// lambdaParameters accepts both implicitly typed `(a, b)` and explicitly typed
// `(int a, ref T b)` parameter lists.
func (p *Parser) lambdaParameters() []*ast.Parameter {
	p.expect("(")
	var params []*ast.Parameter
	for !p.atEOF() && !p.is(")") {
		param := &ast.Parameter{Token: p.cur()}
		if p.is("ref") || p.is("out") || p.is("in") {
			param.Modifier = p.next().Text
		}
		if p.isIdent() && (p.peek(1).Is(",") || p.peek(1).Is(")")) {
			param.Name = p.next().Text
		} else {
			param.Type = p.typeRef(true)
			param.Name = p.ident().Text
		}
		params = append(params, param)
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return params
}

func (p *Parser) primary() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case token.IntLiteral, token.RealLiteral, token.StringLiteral, token.CharLiteral:
		p.next()
		return &ast.Literal{Kind: tok.Kind, Value: tok.Text, Token: tok}
	case token.Identifier:
		p.next()
		name := &ast.NameExpr{Name: tok.Text, Token: tok}
		if p.is("::") {
			p.next()
			name.Alias = tok.Text
			name.Token = p.ident()
			name.Name = name.Token.Text
		}
		if p.is("<") {
			if args, ok := p.tryTypeArguments(); ok {
				name.Args = args
			}
		}
		return name
	case token.Keyword:
		switch tok.Text {
		case "true", "false", "null":
			p.next()
			return &ast.Literal{Kind: token.Keyword, Value: tok.Text, Token: tok}
		case "this":
			p.next()
			return &ast.ThisExpr{Token: tok}
		case "base":
			p.next()
			return &ast.BaseExpr{Token: tok}
		case "new":
			return p.newExpr()
		case "typeof", "sizeof":
			p.next()
			p.expect("(")
			typ := p.typeRef(true)
			p.expect(")")
			return &ast.TypeOperatorExpr{Op: tok.Text, Type: typ, Token: tok}
		case "default":
			p.next()
			expr := &ast.TypeOperatorExpr{Op: "default", Token: tok}
			if p.accept("(") {
				expr.Type = p.typeRef(true)
				p.expect(")")
			}
			return expr
		case "checked", "unchecked":
			p.next()
			p.expect("(")
			x := p.expression()
			p.expect(")")
			return &ast.CheckedExpr{Op: tok.Text, X: x, Token: tok}
		case "delegate":
			if lambda := p.tryLambda(0); lambda != nil {
				return lambda
			}
		}
		if _, ok := token.PredefinedType(tok.Text); ok {
			p.next()
			return &ast.PredefinedTypeExpr{Type: &ast.TypeReference{Keyword: tok.Text, Token: tok}}
		}
	case token.Punct:
		if tok.Text == "(" {
			p.next()
			x := p.expression()
			p.expect(")")
			return &ast.ParenExpr{X: x, Token: tok}
		}
	}
	p.errorf(diag.CodeInvalidExpression, tok.Pos, "Invalid expression term '%s'", tok.Text)
	if !p.atEOF() && !p.is(";") && !p.is("}") && !p.is(")") {
		p.next()
	}
	return &ast.Literal{Kind: token.Invalid, Value: tok.Text, Token: tok}
}

func (p *Parser) postfix(x ast.Expr) ast.Expr {
	for {
		tok := p.cur()
		switch {
		case p.is(".") || p.is("->") || (p.is("?") && p.peek(1).Is(".") && p.adjacent(1)):
			if p.is("?") {
				p.next()
			}
			p.next()
			name := p.ident()
			member := &ast.MemberExpr{X: x, Name: name.Text, Token: name}
			if p.is("<") {
				if args, ok := p.tryTypeArguments(); ok {
					member.Args = args
				}
			}
			x = member
		case p.is("("):
			x = &ast.CallExpr{Fun: x, Args: p.arguments("(", ")"), Token: tok}
		case p.is("[") || (p.is("?") && p.peek(1).Is("[") && p.adjacent(1)):
			if p.is("?") {
				p.next()
			}
			x = &ast.IndexExpr{X: x, Args: p.arguments("[", "]"), Token: tok}
		case p.is("++") || p.is("--"):
			p.next()
			x = &ast.UnaryExpr{Op: tok.Text, X: x, Postfix: true, Token: tok}
		case p.is("!") && p.adjacent(0) && !p.peek(1).Is("="):
			p.next()
		default:
			return x
		}
	}
}

func (p *Parser) arguments(open, close string) []*ast.Argument {
	p.expect(open)
	var args []*ast.Argument
	for !p.atEOF() && !p.is(close) {
		arg := &ast.Argument{}
		if p.isIdent() && p.peek(1).Is(":") && !p.peek(1).Is("::") {
			arg.Name = p.next().Text
			p.next()
		}
		if p.is("ref") || p.is("out") || p.is("in") {
			arg.Modifier = p.next().Text
		}
		if arg.Modifier == "out" {
			arg.Declares = p.outDeclaration()
		}
		if arg.Declares == nil {
			arg.Value = p.expression()
		}
		args = append(args, arg)
		if !p.accept(",") {
			break
		}
	}
	p.expect(close)
	return args
}

// outDeclaration parses `out var x` or `out T x`.
func (p *Parser) outDeclaration() *ast.LocalDecl {
	tok := p.cur()
	if p.isWord("var") && p.peek(1).Kind == token.Identifier {
		p.next()
		name := p.next()
		return &ast.LocalDecl{Vars: []*ast.VariableDeclarator{{Name: name.Text, Token: name}}, Token: tok}
	}
	var decl *ast.LocalDecl
	p.try(func() bool {
		typ := p.typeRef(false)
		if typ == nil || !p.isIdent() || !(p.peek(1).Is(",") || p.peek(1).Is(")")) {
			return false
		}
		name := p.next()
		decl = &ast.LocalDecl{Type: typ, Vars: []*ast.VariableDeclarator{{Name: name.Text, Token: name}}, Token: tok}
		return true
	})
	return decl
}

func (p *Parser) newExpr() ast.Expr {
	expr := &ast.NewExpr{Token: p.next()}
	switch {
	case p.is("{"):
		expr.Init = p.initializer()
		return expr
	case p.is("[") && (p.peek(1).Is("]") || p.peek(1).Is(",")):
		for p.is("[") {
			p.next()
			for p.accept(",") {
			}
			p.expect("]")
		}
		expr.Init = p.initializer()
		return expr
	}
	expr.Type = p.typeRef(true)
	if expr.Type == nil {
		return expr
	}
	if p.is("[") {
		p.next()
		for !p.atEOF() && !p.is("]") {
			expr.Sizes = append(expr.Sizes, p.expression())
			if !p.accept(",") {
				break
			}
		}
		p.expect("]")
		rank := len(expr.Sizes)
		if rank == 0 {
			rank = 1
		}
		expr.Type.ArrayRanks = append([]int{rank}, expr.Type.ArrayRanks...)
		for p.is("[") && (p.peek(1).Is("]") || p.peek(1).Is(",")) {
			p.next()
			more := 1
			for p.accept(",") {
				more++
			}
			p.expect("]")
			expr.Type.ArrayRanks = append(expr.Type.ArrayRanks, more)
		}
	} else if p.is("(") {
		expr.Args = p.arguments("(", ")")
	}
	if p.is("{") {
		expr.Init = p.initializer()
	}
	return expr
}

// initializer parses `{ a, b }`, `{ X = 1, Y = { ... } }` or `{ { k, v } }`.
func (p *Parser) initializer() *ast.InitializerExpr {
	init := &ast.InitializerExpr{Token: p.expect("{")}
	for !p.atEOF() && !p.is("}") {
		switch {
		case p.isIdent() && p.peek(1).Is("="):
			name := p.next()
			p.next()
			named := &ast.NamedInit{Name: name.Text, Token: name}
			named.Value = p.variableInitializer()
			init.Elements = append(init.Elements, named)
		case p.is("{"):
			init.Elements = append(init.Elements, p.initializer())
		default:
			init.Elements = append(init.Elements, p.expression())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	return init
}
