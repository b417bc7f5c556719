package parser

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/token"
)

func (p *Parser) compilationUnit() *ast.CompilationUnit {
	unit := &ast.CompilationUnit{Path: p.path}
	p.directives(&unit.Externs, &unit.Usings)
	for p.is("[") && p.peek(2).Is(":") && (p.peek(1).Text == "assembly" || p.peek(1).Text == "module") {
		unit.Attributes = append(unit.Attributes, p.attributeSection()...)
	}
	unit.Members = p.namespaceMembers()
	for !p.atEOF() {
		p.errorf(diag.CodeSyntaxError, p.cur().Pos, "Type or namespace definition, or end-of-file expected")
		p.next()
		unit.Members = append(unit.Members, p.namespaceMembers()...)
	}
	unit.EOF = p.cur().Pos
	return unit
}

// directives parses the extern alias and using directives heading a
// compilation unit or namespace body.
func (p *Parser) directives(externs *[]*ast.ExternAlias, usings *[]*ast.UsingDirective) {
	for {
		switch {
		case p.is("extern") && p.peek(1).Text == "alias":
			tok := p.next()
			p.next()
			name := p.ident()
			p.expect(";")
			*externs = append(*externs, &ast.ExternAlias{Name: name.Text, Token: tok})
		case p.isWord("global") && p.peek(1).Is("using"):
			p.next()
			*usings = append(*usings, p.usingDirective(true))
		case p.is("using") && !p.peek(1).Is("("):
			*usings = append(*usings, p.usingDirective(false))
		default:
			return
		}
	}
}

func (p *Parser) usingDirective(global bool) *ast.UsingDirective {
	directive := &ast.UsingDirective{Token: p.next(), Global: global}
	if p.accept("static") {
		directive.Static = true
	}
	if p.isIdent() && p.peek(1).Is("=") {
		directive.Alias = p.next().Text
		p.next()
	}
	directive.Target = p.namedType(true)
	p.expect(";")
	return directive
}

func (p *Parser) namespaceMembers() []ast.Decl {
	var members []ast.Decl
	for !p.atEOF() && !p.is("}") {
		start := p.pos
		if p.is("namespace") {
			members = append(members, p.namespaceDecl())
			continue
		}
		if p.is("using") || p.is("extern") {
			p.errorf(diag.CodeSyntaxError, p.cur().Pos, "A using clause must precede all other elements defined in the namespace except extern alias declarations")
			var externs []*ast.ExternAlias
			var usings []*ast.UsingDirective
			p.directives(&externs, &usings)
			continue
		}
		attrs := p.attributes()
		mods, modTok := p.modifiers()
		if p.isTypeKeyword() {
			members = append(members, p.typeDecl(attrs, mods, modTok))
			continue
		}
		p.errorf(diag.CodeNamespaceMemberError, p.cur().Pos, "A namespace cannot directly contain members such as fields, methods or statements")
		p.skipTo(";", "}")
		if p.pos == start {
			p.next()
		}
	}
	return members
}

func (p *Parser) namespaceDecl() *ast.NamespaceDecl {
	decl := &ast.NamespaceDecl{Token: p.next()}
	decl.NameToken = p.ident()
	decl.Name = append(decl.Name, decl.NameToken.Text)
	for p.accept(".") {
		decl.Name = append(decl.Name, p.ident().Text)
	}
	if p.accept(";") {
		decl.FileScoped = true
		p.directives(&decl.Externs, &decl.Usings)
		decl.Members = p.namespaceMembers()
		decl.CloseBrace = p.cur().Pos
		return decl
	}
	p.expect("{")
	p.directives(&decl.Externs, &decl.Usings)
	decl.Members = p.namespaceMembers()
	decl.CloseBrace = p.cur().Pos
	p.expect("}")
	p.accept(";")
	return decl
}

func (p *Parser) isTypeKeyword() bool {
	switch {
	case p.is("class"), p.is("struct"), p.is("interface"), p.is("enum"):
		return true
	case p.is("delegate"):
		return !p.peek(1).Is("(") && !p.peek(1).Is("{")
	}
	return false
}

// attributes parses any number of attribute sections.
func (p *Parser) attributes() []*ast.Attribute {
	var result []*ast.Attribute
	for p.is("[") {
		result = append(result, p.attributeSection()...)
	}
	return result
}

func (p *Parser) attributeSection() []*ast.Attribute {
	p.expect("[")
	target := ""
	if (p.isIdent() || p.cur().Kind == token.Keyword) && p.peek(1).Is(":") {
		target = p.next().Text
		p.next()
	}
	var result []*ast.Attribute
	for !p.atEOF() && !p.is("]") {
		attr := &ast.Attribute{Target: target, Type: p.namedType(false)}
		if attr.Type == nil {
			p.skipTo("]")
			break
		}
		if p.is("(") {
			attr.Args = p.arguments("(", ")")
		}
		result = append(result, attr)
		if !p.accept(",") {
			break
		}
	}
	p.expect("]")
	return result
}

func (p *Parser) modifiers() (ast.Modifiers, token.Token) {
	var mods ast.Modifiers
	first := p.cur()
	for {
		tok := p.cur()
		if tok.Kind == token.Identifier {
			switch {
			case tok.Text == "partial" && (p.peek(1).Is("class") || p.peek(1).Is("struct") || p.peek(1).Is("interface") || p.peek(1).Is("void")):
			case tok.Text == "async" && (p.peek(1).Kind == token.Identifier || p.peek(1).Kind == token.Keyword) && !p.peek(1).Is("("):
			default:
				return mods, first
			}
		} else if tok.Kind != token.Keyword || !token.IsModifier(tok.Text) {
			return mods, first
		}
		mod, _ := ast.ModifierFor(tok.Text)
		if mods&mod != 0 {
			p.errorf(diag.CodeSyntaxError, tok.Pos, "Duplicate '%s' modifier", tok.Text)
		}
		mods |= mod
		p.next()
	}
}

func (p *Parser) typeDecl(attrs []*ast.Attribute, mods ast.Modifiers, modTok token.Token) *ast.TypeDecl {
	kw := p.next()
	decl := &ast.TypeDecl{Attributes: attrs, Modifiers: mods, ModToken: modTok, Token: kw}
	switch kw.Text {
	case "class":
		decl.Kind = ast.KindClass
	case "struct":
		decl.Kind = ast.KindStruct
	case "interface":
		decl.Kind = ast.KindInterface
	case "enum":
		decl.Kind = ast.KindEnum
	case "delegate":
		decl.Kind = ast.KindDelegate
		decl.ReturnType = p.typeRef(true)
	}
	decl.NameToken = p.ident()
	decl.Name = decl.NameToken.Text
	decl.TypeParams = p.typeParameterList()
	if decl.Kind == ast.KindDelegate {
		decl.Parameters = p.parameters("(", ")")
		decl.Constraints = p.constraintClauses()
		p.expect(";")
		return decl
	}
	if p.accept(":") {
		for {
			if base := p.namedOrPredefined(); base != nil {
				decl.Bases = append(decl.Bases, base)
			}
			if !p.accept(",") {
				break
			}
		}
	}
	decl.Constraints = p.constraintClauses()
	p.expect("{")
	if decl.Kind == ast.KindEnum {
		decl.Members = p.enumMembers()
	} else {
		decl.Members = p.typeMembers(decl.Name)
	}
	p.expect("}")
	p.accept(";")
	return decl
}

func (p *Parser) namedOrPredefined() *ast.TypeReference {
	if p.cur().Kind == token.Keyword {
		if _, ok := token.PredefinedType(p.cur().Text); ok {
			return p.typeRef(true)
		}
	}
	return p.namedType(true)
}

func (p *Parser) typeParameterList() []*ast.TypeParameter {
	if !p.is("<") {
		return nil
	}
	p.next()
	var params []*ast.TypeParameter
	for {
		p.attributes()
		param := &ast.TypeParameter{}
		if p.is("in") || p.is("out") {
			param.Variance = p.next().Text
		}
		param.Token = p.ident()
		param.Name = param.Token.Text
		params = append(params, param)
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return params
}

func (p *Parser) constraintClauses() []*ast.ConstraintClause {
	var clauses []*ast.ConstraintClause
	for p.isWord("where") {
		p.next()
		clause := &ast.ConstraintClause{Token: p.ident()}
		clause.Name = clause.Token.Text
		p.expect(":")
		for {
			tok := p.cur()
			switch {
			case p.is("class"):
				p.next()
				p.accept("?")
				clause.Constraints = append(clause.Constraints, &ast.Constraint{Kind: ast.ConstraintClass, Token: tok})
			case p.is("struct"):
				p.next()
				clause.Constraints = append(clause.Constraints, &ast.Constraint{Kind: ast.ConstraintStruct, Token: tok})
			case p.is("new"):
				p.next()
				p.expect("(")
				p.expect(")")
				clause.Constraints = append(clause.Constraints, &ast.Constraint{Kind: ast.ConstraintNew, Token: tok})
			default:
				if ref := p.typeRef(true); ref != nil {
					clause.Constraints = append(clause.Constraints, &ast.Constraint{Kind: ast.ConstraintType, Type: ref, Token: tok})
				}
			}
			if !p.accept(",") {
				break
			}
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

func (p *Parser) enumMembers() []ast.Member {
	var members []ast.Member
	for !p.atEOF() && !p.is("}") {
		attrs := p.attributes()
		member := &ast.EnumMemberDecl{Attributes: attrs, Token: p.ident()}
		member.Name = member.Token.Text
		if member.Token.Kind == token.Invalid {
			p.skipTo(",", "}")
		}
		if p.accept("=") {
			member.Value = p.expression()
		}
		members = append(members, member)
		if !p.accept(",") {
			break
		}
	}
	return members
}

func (p *Parser) typeMembers(typeName string) []ast.Member {
	var members []ast.Member
	for !p.atEOF() && !p.is("}") {
		start := p.pos
		if member := p.member(typeName); member != nil {
			members = append(members, member)
		}
		if p.pos == start {
			p.errorf(diag.CodeInvalidMemberToken, p.cur().Pos, "Invalid token '%s' in class, struct, or interface member declaration", p.cur().Text)
			p.next()
		}
	}
	return members
}

func (p *Parser) member(typeName string) ast.Member {
	attrs := p.attributes()
	mods, modTok := p.modifiers()
	start := p.cur()
	switch {
	case p.isTypeKeyword():
		return p.typeDecl(attrs, mods, modTok)
	case p.is("~"):
		p.next()
		ctor := &ast.ConstructorDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Destructor: true, Token: start}
		ctor.Name = p.ident().Text
		ctor.Parameters = p.parameters("(", ")")
		ctor.Body, ctor.ExprBody = p.body()
		return ctor
	case p.isIdent() && p.cur().Text == typeName && p.peek(1).Is("("):
		return p.constructor(attrs, mods, modTok)
	case p.is("event"):
		return p.event(attrs, mods, modTok)
	case p.is("implicit") || p.is("explicit"):
		kw := p.next()
		p.expect("operator")
		method := &ast.MethodDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Operator: true, Token: start, NameToken: kw}
		method.Name = kw.Text + " operator"
		method.ReturnType = p.typeRef(true)
		method.Parameters = p.parameters("(", ")")
		method.Body, method.ExprBody = p.body()
		return method
	}
	typ := p.typeRef(false)
	if typ == nil {
		p.errorf(diag.CodeInvalidMemberToken, p.cur().Pos, "Invalid token '%s' in class, struct, or interface member declaration", p.cur().Text)
		p.skipTo(";", "}")
		return nil
	}
	if p.is("operator") {
		p.next()
		method := &ast.MethodDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, ReturnType: typ, Operator: true, Token: start}
		method.NameToken = p.cur()
		method.Name = "operator " + p.operatorSymbol()
		method.Parameters = p.parameters("(", ")")
		method.Body, method.ExprBody = p.body()
		return method
	}
	if p.is("this") {
		return p.indexer(attrs, mods, modTok, typ, nil, start)
	}
	explicit, nameTok, typeArgs := p.memberName()
	if explicit != nil && p.is(".") && p.peek(1).Is("this") {
		p.next()
		return p.indexer(attrs, mods, modTok, typ, explicit, start)
	}
	switch {
	case p.is("(") || p.is("<") || len(typeArgs) > 0:
		method := &ast.MethodDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, ReturnType: typ,
			ExplicitInterface: explicit, Name: nameTok.Text, NameToken: nameTok, Token: start}
		method.TypeParams = p.typeParamsFromArgs(typeArgs)
		if len(typeArgs) == 0 {
			method.TypeParams = p.typeParameterList()
		}
		method.Parameters = p.parameters("(", ")")
		method.Constraints = p.constraintClauses()
		method.Body, method.ExprBody = p.body()
		return method
	case p.is("{") || p.is("=>"):
		prop := &ast.PropertyDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Type: typ,
			ExplicitInterface: explicit, Name: nameTok.Text, NameToken: nameTok, Token: start}
		p.propertyBody(prop)
		return prop
	}
	field := &ast.FieldDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Type: typ, Token: start}
	if explicit != nil {
		p.errorf(diag.CodeSyntaxError, nameTok.Pos, "Explicit interface declaration can only be declared in a class, struct or interface")
	}
	field.Vars = p.declaratorsFrom(nameTok)
	p.expect(";")
	return field
}

// memberName parses `Name`, `Name<T>` or an explicit interface member name
// `IFace<X>.Name<T>`. Type arguments on the final segment become the method's
// type parameters.
func (p *Parser) memberName() (*ast.TypeReference, token.Token, []*ast.TypeReference) {
	ref := p.namedType(false)
	if ref == nil || len(ref.Segments) == 0 {
		p.errorf(diag.CodeIdentifierExpected, p.cur().Pos, "Identifier expected")
		return nil, token.Token{Kind: token.Invalid, Pos: p.cur().Pos}, nil
	}
	last := ref.Last()
	var explicit *ast.TypeReference
	if len(ref.Segments) > 1 || ref.Alias != "" {
		explicit = &ast.TypeReference{Alias: ref.Alias, AliasToken: ref.AliasToken, Segments: ref.Segments[:len(ref.Segments)-1], Token: ref.Token}
		if len(explicit.Segments) == 0 {
			explicit = nil
		}
	}
	if p.is(".") && p.peek(1).Is("this") {
		return ref, last.Token, nil
	}
	return explicit, last.Token, last.Args
}

func (p *Parser) typeParamsFromArgs(args []*ast.TypeReference) []*ast.TypeParameter {
	var params []*ast.TypeParameter
	for _, arg := range args {
		if !arg.IsSimple() || len(arg.Segments[0].Args) > 0 || arg.Nullable || arg.Pointer > 0 || len(arg.ArrayRanks) > 0 {
			p.errorf(diag.CodeIdentifierExpected, arg.Pos(), "Type parameter declaration must be an identifier not a type")
			continue
		}
		params = append(params, &ast.TypeParameter{Name: arg.Segments[0].Name, Token: arg.Segments[0].Token})
	}
	return params
}

func (p *Parser) operatorSymbol() string {
	tok := p.next()
	switch {
	case tok.Is(">") && p.is(">") && p.adjacent(0):
		p.next()
		return ">>"
	case tok.Kind == token.Punct || tok.Is("true") || tok.Is("false"):
		return tok.Text
	}
	p.errorf(diag.CodeSyntaxError, tok.Pos, "Overloadable operator expected")
	return tok.Text
}

func (p *Parser) constructor(attrs []*ast.Attribute, mods ast.Modifiers, modTok token.Token) *ast.ConstructorDecl {
	ctor := &ast.ConstructorDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Token: p.cur()}
	ctor.Name = p.next().Text
	ctor.Parameters = p.parameters("(", ")")
	if p.accept(":") {
		init := &ast.ConstructorInitializer{Token: p.cur()}
		switch {
		case p.accept("base"):
			init.Base = true
		case p.accept("this"):
		default:
			p.errorf(diag.CodeSyntaxError, p.cur().Pos, "Keyword 'this' or 'base' expected")
		}
		init.Args = p.arguments("(", ")")
		ctor.Initializer = init
	}
	ctor.Body, ctor.ExprBody = p.body()
	return ctor
}

func (p *Parser) event(attrs []*ast.Attribute, mods ast.Modifiers, modTok token.Token) ast.Member {
	start := p.next()
	typ := p.typeRef(true)
	explicit, nameTok, _ := p.memberName()
	if p.is("{") {
		prop := &ast.PropertyDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Event: true, Type: typ,
			ExplicitInterface: explicit, Name: nameTok.Text, NameToken: nameTok, Token: start}
		p.propertyBody(prop)
		return prop
	}
	field := &ast.FieldDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Event: true, Type: typ, Token: start}
	field.Vars = p.declaratorsFrom(nameTok)
	p.expect(";")
	return field
}

func (p *Parser) indexer(attrs []*ast.Attribute, mods ast.Modifiers, modTok token.Token, typ, explicit *ast.TypeReference, start token.Token) *ast.PropertyDecl {
	prop := &ast.PropertyDecl{Modifiers: mods, ModToken: modTok, Attributes: attrs, Indexer: true, Type: typ,
		ExplicitInterface: explicit, Name: "this", NameToken: p.next(), Token: start}
	prop.Parameters = p.parameters("[", "]")
	p.propertyBody(prop)
	return prop
}

func (p *Parser) propertyBody(prop *ast.PropertyDecl) {
	if p.accept("=>") {
		prop.ExprBody = p.expression()
		p.expect(";")
		return
	}
	p.expect("{")
	for !p.atEOF() && !p.is("}") {
		p.attributes()
		mods, _ := p.modifiers()
		tok := p.cur()
		if !p.isIdent() {
			p.errorf(diag.CodeSyntaxError, tok.Pos, "A get or set accessor expected")
			p.skipTo(";", "}")
			continue
		}
		p.next()
		accessor := &ast.AccessorDecl{Kind: tok.Text, Modifiers: mods, Token: tok}
		accessor.Body, accessor.ExprBody = p.body()
		prop.Accessors = append(prop.Accessors, accessor)
	}
	p.expect("}")
	if p.accept("=") {
		prop.Init = p.variableInitializer()
		p.expect(";")
	}
}

// body parses a block, an expression body `=> expr;` or a bare `;`.
func (p *Parser) body() (*ast.Block, ast.Expr) {
	switch {
	case p.is("{"):
		return p.block(), nil
	case p.accept("=>"):
		expr := p.expression()
		p.expect(";")
		return nil, expr
	}
	p.expect(";")
	return nil, nil
}

func (p *Parser) parameters(open, close string) []*ast.Parameter {
	p.expect(open)
	var params []*ast.Parameter
	for !p.atEOF() && !p.is(close) {
		param := &ast.Parameter{Attributes: p.attributes(), Token: p.cur()}
		if p.is("ref") || p.is("out") || p.is("in") || p.is("params") || p.is("this") {
			param.Modifier = p.next().Text
		}
		param.Type = p.typeRef(true)
		if param.Type == nil {
			p.skipTo(",", close)
		} else {
			param.Name = p.ident().Text
		}
		if p.accept("=") {
			param.Default = p.expression()
		}
		params = append(params, param)
		if !p.accept(",") {
			break
		}
	}
	p.expect(close)
	return params
}

func (p *Parser) declaratorsFrom(first token.Token) []*ast.VariableDeclarator {
	vars := []*ast.VariableDeclarator{{Name: first.Text, Token: first}}
	for {
		last := vars[len(vars)-1]
		if p.accept("=") {
			last.Init = p.variableInitializer()
		}
		if !p.accept(",") {
			return vars
		}
		tok := p.ident()
		vars = append(vars, &ast.VariableDeclarator{Name: tok.Text, Token: tok})
	}
}

func (p *Parser) variableInitializer() ast.Expr {
	if p.is("{") {
		return p.initializer()
	}
	return p.expression()
}
