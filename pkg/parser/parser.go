// Package parser is a recursive-descent parser for the C# subset handled by
// csresolve. It never fails: syntax errors are reported to the diagnostic sink
// and the parser resynchronises so the rest of the file still yields a tree.
package parser

import (
	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
	"csresolve/pkg/lexer"
	"csresolve/pkg/token"
)

// Parser holds the token stream of one file.
type Parser struct {
	path      string
	tokens    []token.Token
	pos       int
	sink      diag.Sink
	quiet     int
	failed    bool
	lastError int
}

// ParseFile tokenizes and parses one source file.
func ParseFile(path string, src []byte, defines []string, sink diag.Sink) *ast.CompilationUnit {
	if sink == nil {
		sink = &diag.Collector{}
	}
	p := newParser(path, lexer.Tokenize(path, src, defines, sink), sink)
	return p.compilationUnit()
}

// ParseExpression parses a standalone expression; trailing tokens are reported.
func ParseExpression(path string, src string, sink diag.Sink) ast.Expr {
	if sink == nil {
		sink = &diag.Collector{}
	}
	p := newParser(path, lexer.Tokenize(path, []byte(src), nil, sink), sink)
	expr := p.expression()
	if !p.atEOF() {
		p.errorf(diag.CodeSyntaxError, p.cur().Pos, "Syntax error, unexpected '%s'", p.cur().Text)
	}
	return expr
}

func newParser(path string, tokens []token.Token, sink diag.Sink) *Parser {
	return &Parser{path: path, tokens: tokens, sink: sink, lastError: -1}
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) token.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) next() token.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

// is reports whether the current token is the punctuator or keyword text.
func (p *Parser) is(text string) bool {
	return p.cur().Is(text)
}

func (p *Parser) isIdent() bool {
	return p.cur().Kind == token.Identifier
}

// isWord reports whether the current token is the contextual keyword word.
func (p *Parser) isWord(word string) bool {
	tok := p.cur()
	return tok.Kind == token.Identifier && tok.Text == word
}

func (p *Parser) accept(text string) bool {
	if p.is(text) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(text string) token.Token {
	if p.is(text) {
		return p.next()
	}
	code := diag.CodeSyntaxError
	switch text {
	case ";":
		code = diag.CodeSemicolonExpected
	case "}":
		code = diag.CodeCloseBraceExpected
	case "{":
		code = diag.CodeOpenBraceExpected
	}
	p.errorf(code, p.errorPos(), "'%s' expected", text)
	return token.Token{Kind: token.Invalid, Text: text, Pos: p.cur().Pos}
}

func (p *Parser) ident() token.Token {
	if p.isIdent() {
		return p.next()
	}
	p.errorf(diag.CodeIdentifierExpected, p.cur().Pos, "Identifier expected")
	return token.Token{Kind: token.Invalid, Pos: p.cur().Pos}
}

// errorPos places "x expected" errors right after the previous token, the way
// compilers point at a missing terminator.
func (p *Parser) errorPos() token.Position {
	if p.pos == 0 {
		return p.cur().Pos
	}
	prev := p.tokens[p.pos-1]
	pos := prev.Pos
	pos.Column += len(prev.Text)
	pos.Offset += len(prev.Text)
	return pos
}

func (p *Parser) errorf(code string, pos token.Position, format string, args ...any) {
	if p.quiet > 0 {
		p.failed = true
		return
	}
	if pos.Offset == p.lastError {
		return
	}
	p.lastError = pos.Offset
	p.sink.Report(diag.Errorf(code, pos, format, args...))
}

// try runs fn speculatively: diagnostics are suppressed and the position is
// restored unless fn succeeds without errors.
func (p *Parser) try(fn func() bool) bool {
	start := p.pos
	failed := p.failed
	p.failed = false
	p.quiet++
	ok := fn() && !p.failed
	p.quiet--
	p.failed = failed
	if !ok {
		p.pos = start
	}
	return ok
}

// adjacent reports whether the token at offset n starts right where the
// current one ends, used to join '>' '>' into a shift.
func (p *Parser) adjacent(n int) bool {
	prev := p.peek(n - 1)
	return p.peek(n).Pos.Offset == prev.Pos.Offset+len(prev.Text)
}

// skipTo advances to one of the stop tokens, skipping balanced braces.
// A ';' stop token is consumed.
func (p *Parser) skipTo(stops ...string) {
	depth := 0
	for !p.atEOF() {
		if depth == 0 {
			for _, stop := range stops {
				if p.is(stop) {
					if stop == ";" {
						p.next()
					}
					return
				}
			}
		}
		switch {
		case p.is("{"):
			depth++
		case p.is("}"):
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}
