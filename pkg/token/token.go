// Package token defines the lexical token model shared by the lexer, parser and
// diagnostics: token kinds, source positions and keyword tables.
package token

import "fmt"

// Kind classifies a lexical token.
type Kind int

const (
	Invalid Kind = iota
	EOF
	Identifier
	Keyword
	IntLiteral
	RealLiteral
	StringLiteral
	CharLiteral
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case IntLiteral:
		return "integer literal"
	case RealLiteral:
		return "real literal"
	case StringLiteral:
		return "string literal"
	case CharLiteral:
		return "character literal"
	case Punct:
		return "punctuation"
	default:
		return "invalid"
	}
}

// Position identifies a point in a source file. Line and Column are 1-based,
// Offset is the 0-based byte offset.
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Before reports whether p precedes other in the same file.
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// Token is an immutable lexeme with its kind and start position.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

// Is reports whether the token is the punctuation or keyword text.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Keyword) && t.Text == text
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of file"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
