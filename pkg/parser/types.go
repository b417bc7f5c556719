package parser

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/token"
)

// typeRef parses a full type: a predefined keyword or a named type followed
// by nullable, pointer and array rank suffixes. When required is false a
// missing type yields nil without a diagnostic.
func (p *Parser) typeRef(required bool) *ast.TypeReference {
	var ref *ast.TypeReference
	tok := p.cur()
	if tok.Kind == token.Keyword {
		if _, ok := token.PredefinedType(tok.Text); ok {
			p.next()
			ref = &ast.TypeReference{Keyword: tok.Text, Token: tok}
		}
	}
	if ref == nil {
		ref = p.namedType(false)
	}
	if ref == nil {
		if required {
			p.errorf(diag.CodeTypeExpected, tok.Pos, "Type expected")
		}
		return nil
	}
	if p.is("?") && !p.startsExpressionAfterQuestion() {
		p.next()
		ref.Nullable = true
	}
	for p.is("*") {
		p.next()
		ref.Pointer++
	}
	for p.is("[") && (p.peek(1).Is("]") || p.peek(1).Is(",")) {
		p.next()
		rank := 1
		for p.accept(",") {
			rank++
		}
		p.expect("]")
		ref.ArrayRanks = append(ref.ArrayRanks, rank)
	}
	return ref
}

// startsExpressionAfterQuestion distinguishes `T? x` from `a ? b : c` when a
// type is parsed speculatively inside an expression.
func (p *Parser) startsExpressionAfterQuestion() bool {
	if p.quiet == 0 {
		return false
	}
	next := p.peek(1)
	switch {
	case next.Kind == token.Identifier:
		after := p.peek(2)
		return !(after.Is("=") || after.Is(";") || after.Is(",") || after.Is(")") || after.Is("in"))
	case next.Is(")") || next.Is(">") || next.Is(",") || next.Is("[") || next.Is("]"):
		return false
	}
	return true
}

// namedType parses `Alias::A.B<T>.C` without suffixes.
func (p *Parser) namedType(required bool) *ast.TypeReference {
	tok := p.cur()
	if !p.isIdent() {
		if required {
			p.errorf(diag.CodeTypeExpected, tok.Pos, "Type expected")
		}
		return nil
	}
	ref := &ast.TypeReference{Token: tok}
	if p.peek(1).Is("::") {
		ref.AliasToken = p.next()
		ref.Alias = ref.AliasToken.Text
		p.next()
	}
	ref.Segments = append(ref.Segments, p.nameSegment())
	for p.is(".") && p.peek(1).Kind == token.Identifier {
		p.next()
		ref.Segments = append(ref.Segments, p.nameSegment())
	}
	return ref
}

func (p *Parser) nameSegment() *ast.NameSegment {
	tok := p.ident()
	seg := &ast.NameSegment{Name: tok.Text, Token: tok}
	if p.is("<") {
		seg.Args = p.typeArgumentList()
	}
	return seg
}

func (p *Parser) typeArgumentList() []*ast.TypeReference {
	p.expect("<")
	var args []*ast.TypeReference
	for {
		arg := p.typeRef(true)
		if arg == nil {
			break
		}
		args = append(args, arg)
		if !p.accept(",") {
			break
		}
	}
	p.expect(">")
	return args
}

// genericFollows lists the tokens that may follow a type argument list in an
// expression, which decides `F<A>(x)` versus `a < b`.
func (p *Parser) genericFollows() bool {
	tok := p.cur()
	if tok.Kind == token.EOF {
		return true
	}
	for _, text := range []string{"(", ")", "]", "}", ":", ";", ",", ".", "?", "==", "!=", "|", "^", "&&", "||", "&", "["} {
		if tok.Is(text) {
			return true
		}
	}
	return false
}

// tryTypeArguments speculatively parses `<...>` in expression context.
func (p *Parser) tryTypeArguments() ([]*ast.TypeReference, bool) {
	var args []*ast.TypeReference
	ok := p.try(func() bool {
		args = p.typeArgumentList()
		return len(args) > 0 && p.genericFollows()
	})
	return args, ok
}
