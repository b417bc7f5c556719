package parser

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/token"
)

func (p *Parser) block() *ast.Block {
	block := &ast.Block{Token: p.expect("{")}
	for !p.atEOF() && !p.is("}") {
		start := p.pos
		if stmt := p.statement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if p.pos == start {
			p.next()
		}
	}
	block.End = p.cur().Pos
	p.expect("}")
	return block
}

// embedded parses the body of if/while/for and friends.
func (p *Parser) embedded() ast.Stmt {
	if stmt := p.statement(); stmt != nil {
		return stmt
	}
	return &ast.EmptyStmt{Token: p.cur()}
}

func (p *Parser) statement() ast.Stmt {
	tok := p.cur()
	switch {
	case p.is("{"):
		return p.block()
	case p.is(";"):
		p.next()
		return &ast.EmptyStmt{Token: tok}
	case p.is("if"):
		p.next()
		stmt := &ast.IfStmt{Cond: p.parenExpr(), Token: tok}
		stmt.Then = p.embedded()
		if p.accept("else") {
			stmt.Else = p.embedded()
		}
		return stmt
	case p.is("while"):
		p.next()
		stmt := &ast.WhileStmt{Cond: p.parenExpr(), Token: tok}
		stmt.Body = p.embedded()
		return stmt
	case p.is("do"):
		p.next()
		stmt := &ast.DoStmt{Body: p.embedded(), Token: tok}
		p.expect("while")
		stmt.Cond = p.parenExpr()
		p.expect(";")
		return stmt
	case p.is("for"):
		return p.forStmt()
	case p.is("foreach"):
		return p.foreachStmt()
	case p.is("return"), p.is("throw"):
		p.next()
		stmt := &ast.ReturnStmt{Keyword: tok.Text, Token: tok}
		if !p.is(";") {
			stmt.X = p.expression()
		}
		p.expect(";")
		return stmt
	case p.is("break"), p.is("continue"):
		p.next()
		p.expect(";")
		return &ast.JumpStmt{Keyword: tok.Text, Token: tok}
	case p.is("goto"):
		p.next()
		for !p.atEOF() && !p.is(";") && !p.is("}") {
			p.next()
		}
		p.expect(";")
		return &ast.JumpStmt{Keyword: "goto", Token: tok}
	case p.isWord("yield") && (p.peek(1).Is("return") || p.peek(1).Is("break")):
		p.next()
		if p.accept("break") {
			p.expect(";")
			return &ast.JumpStmt{Keyword: "yield break", Token: tok}
		}
		p.next()
		stmt := &ast.ReturnStmt{Keyword: "yield return", X: p.expression(), Token: tok}
		p.expect(";")
		return stmt
	case p.is("try"):
		return p.tryStmt()
	case p.is("using"):
		return p.usingStmt()
	case p.is("lock"):
		p.next()
		stmt := &ast.LockStmt{X: p.parenExpr(), Token: tok}
		stmt.Body = p.embedded()
		return stmt
	case p.is("switch"):
		return p.switchStmt()
	case (p.is("checked") || p.is("unchecked") || p.is("unsafe")) && p.peek(1).Is("{"):
		p.next()
		return &ast.CheckedStmt{Keyword: tok.Text, Body: p.block(), Token: tok}
	case p.is("const"):
		p.next()
		decl := p.localDecl(tok)
		decl.Const = true
		p.expect(";")
		return decl
	case p.isIdent() && p.peek(1).Is(":"):
		p.next()
		p.next()
		return p.embedded()
	}
	if decl := p.tryLocalDecl(); decl != nil {
		p.expect(";")
		return decl
	}
	x := p.expression()
	if lit, ok := x.(*ast.Literal); ok && lit.Kind == token.Invalid {
		p.skipTo(";", "}")
		return nil
	}
	p.expect(";")
	return &ast.ExprStmt{X: x}
}

func (p *Parser) parenExpr() ast.Expr {
	p.expect("(")
	x := p.expression()
	p.expect(")")
	return x
}

// tryLocalDecl recognises `T name = ...`, `T name;` and `var name = ...`.
func (p *Parser) tryLocalDecl() *ast.LocalDecl {
	tok := p.cur()
	if p.isWord("var") && p.peek(1).Kind == token.Identifier && !p.peek(1).Is("=>") {
		next := p.peek(2)
		if next.Is("=") || next.Is(";") || next.Is(",") {
			p.next()
			return p.declarators(&ast.LocalDecl{Token: tok})
		}
	}
	var decl *ast.LocalDecl
	p.try(func() bool {
		typ := p.typeRef(false)
		if typ == nil || !p.isIdent() {
			return false
		}
		next := p.peek(1)
		if !(next.Is("=") || next.Is(";") || next.Is(",")) {
			return false
		}
		decl = &ast.LocalDecl{Type: typ, Token: tok}
		return true
	})
	if decl == nil {
		return nil
	}
	return p.declarators(decl)
}

func (p *Parser) localDecl(tok token.Token) *ast.LocalDecl {
	decl := &ast.LocalDecl{Token: tok}
	if !(p.isWord("var") && p.peek(1).Kind == token.Identifier) {
		decl.Type = p.typeRef(true)
	} else {
		p.next()
	}
	return p.declarators(decl)
}

func (p *Parser) declarators(decl *ast.LocalDecl) *ast.LocalDecl {
	decl.Vars = p.declaratorsFrom(p.ident())
	return decl
}

func (p *Parser) forStmt() ast.Stmt {
	stmt := &ast.ForStmt{Token: p.next()}
	p.expect("(")
	if !p.is(";") {
		if decl := p.tryLocalDecl(); decl != nil {
			stmt.Init = append(stmt.Init, decl)
		} else {
			for {
				stmt.Init = append(stmt.Init, &ast.ExprStmt{X: p.expression()})
				if !p.accept(",") {
					break
				}
			}
		}
	}
	p.expect(";")
	if !p.is(";") {
		stmt.Cond = p.expression()
	}
	p.expect(";")
	for !p.atEOF() && !p.is(")") {
		stmt.Post = append(stmt.Post, p.expression())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	stmt.Body = p.embedded()
	return stmt
}

func (p *Parser) foreachStmt() ast.Stmt {
	stmt := &ast.ForeachStmt{Token: p.next()}
	p.expect("(")
	if p.isWord("var") && p.peek(1).Kind == token.Identifier {
		p.next()
	} else {
		stmt.Type = p.typeRef(true)
	}
	stmt.NameToken = p.ident()
	stmt.Name = stmt.NameToken.Text
	p.expect("in")
	stmt.X = p.expression()
	p.expect(")")
	stmt.Body = p.embedded()
	return stmt
}

func (p *Parser) tryStmt() ast.Stmt {
	stmt := &ast.TryStmt{Token: p.next()}
	stmt.Body = p.block()
	for p.is("catch") {
		clause := &ast.CatchClause{Token: p.next()}
		if p.accept("(") {
			clause.Type = p.typeRef(true)
			if p.isIdent() {
				clause.NameToken = p.next()
				clause.Name = clause.NameToken.Text
			}
			p.expect(")")
		}
		if p.isWord("when") {
			p.next()
			clause.Filter = p.parenExpr()
		}
		clause.Body = p.block()
		stmt.Catches = append(stmt.Catches, clause)
	}
	if p.accept("finally") {
		stmt.Finally = p.block()
	}
	if len(stmt.Catches) == 0 && stmt.Finally == nil {
		p.errorf(diag.CodeSyntaxError, p.cur().Pos, "Expected catch or finally")
	}
	return stmt
}

func (p *Parser) usingStmt() ast.Stmt {
	stmt := &ast.UsingStmt{Token: p.next()}
	if !p.is("(") {
		stmt.Decl = p.localDecl(p.cur())
		p.expect(";")
		return stmt
	}
	p.next()
	if decl := p.tryLocalDecl(); decl != nil {
		stmt.Decl = decl
	} else {
		stmt.X = p.expression()
	}
	p.expect(")")
	stmt.Body = p.embedded()
	return stmt
}

func (p *Parser) switchStmt() ast.Stmt {
	stmt := &ast.SwitchStmt{Token: p.next()}
	stmt.X = p.parenExpr()
	p.expect("{")
	for !p.atEOF() && !p.is("}") {
		section := &ast.SwitchSection{Token: p.cur()}
		for p.is("case") || p.is("default") {
			if p.accept("default") {
				section.Labels = append(section.Labels, nil)
			} else {
				p.next()
				section.Labels = append(section.Labels, p.expression())
				if p.isWord("when") {
					p.next()
					p.expression()
				}
			}
			p.expect(":")
		}
		if len(section.Labels) == 0 {
			p.errorf(diag.CodeSyntaxError, p.cur().Pos, "Syntax error, 'case' expected")
			p.skipTo(";", "}")
			continue
		}
		for !p.atEOF() && !p.is("}") && !p.is("case") && !p.is("default") {
			start := p.pos
			if s := p.statement(); s != nil {
				section.Stmts = append(section.Stmts, s)
			}
			if p.pos == start {
				p.next()
			}
		}
		stmt.Sections = append(stmt.Sections, section)
	}
	p.expect("}")
	return stmt
}
