// Package preproc evaluates conditional-compilation expressions (#if/#elif)
// against a set of defined symbols.
package preproc

import (
	"fmt"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota
	orToken
	andToken
	equalToken
	notEqualToken
	notToken
	openToken
	closeToken
	identifierToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var orMatcher = parsly.NewToken(orToken, "||", matcher.NewFragment("||"))
var andMatcher = parsly.NewToken(andToken, "&&", matcher.NewFragment("&&"))
var equalMatcher = parsly.NewToken(equalToken, "==", matcher.NewFragment("=="))
var notEqualMatcher = parsly.NewToken(notEqualToken, "!=", matcher.NewFragment("!="))
var notMatcher = parsly.NewToken(notToken, "!", matcher.NewByte('!'))
var openMatcher = parsly.NewToken(openToken, "(", matcher.NewByte('('))
var closeMatcher = parsly.NewToken(closeToken, ")", matcher.NewByte(')'))
var identifierMatcher = parsly.NewToken(identifierToken, "Identifier", &identifierMatch{})

type identifierMatch struct{}

func (i *identifierMatch) Match(cursor *parsly.Cursor) int {
	pos := cursor.Pos
	for pos < cursor.InputSize && isSymbolChar(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

func isSymbolChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b >= 0x80
}

// Symbols is the set of conditional-compilation symbols currently defined.
type Symbols map[string]bool

// NewSymbols builds a symbol set from a list of names.
func NewSymbols(names ...string) Symbols {
	result := Symbols{}
	for _, name := range names {
		if name != "" {
			result[name] = true
		}
	}
	return result
}

// Clone returns an independent copy of the set.
func (s Symbols) Clone() Symbols {
	result := make(Symbols, len(s))
	for k, v := range s {
		result[k] = v
	}
	return result
}

// Evaluate computes the boolean value of a preprocessing expression such as
// `DEBUG && !(TRACE || false)`. Undefined symbols are false.
func Evaluate(expr string, symbols Symbols) (bool, error) {
	e := &evaluator{cursor: parsly.NewCursor("", []byte(expr), 0), symbols: symbols}
	value, err := e.or()
	if err != nil {
		return false, err
	}
	e.cursor.MatchOne(whitespaceMatcher)
	if e.cursor.Pos < e.cursor.InputSize {
		return false, fmt.Errorf("unexpected %q at offset %d", string(e.cursor.Input[e.cursor.Pos:]), e.cursor.Pos)
	}
	return value, nil
}

type evaluator struct {
	cursor  *parsly.Cursor
	symbols Symbols
}

// accept consumes the candidate token when it is next, otherwise leaves the cursor untouched.
func (e *evaluator) accept(candidate *parsly.Token) bool {
	pos := e.cursor.Pos
	matched := e.cursor.MatchAfterOptional(whitespaceMatcher, candidate)
	if matched.Code == candidate.Code {
		return true
	}
	e.cursor.Pos = pos
	return false
}

func (e *evaluator) or() (bool, error) {
	left, err := e.and()
	if err != nil {
		return false, err
	}
	for e.accept(orMatcher) {
		right, err := e.and()
		if err != nil {
			return false, err
		}
		left = left || right
	}
	return left, nil
}

func (e *evaluator) and() (bool, error) {
	left, err := e.equality()
	if err != nil {
		return false, err
	}
	for e.accept(andMatcher) {
		right, err := e.equality()
		if err != nil {
			return false, err
		}
		left = left && right
	}
	return left, nil
}

func (e *evaluator) equality() (bool, error) {
	left, err := e.unary()
	if err != nil {
		return false, err
	}
	for {
		switch {
		case e.accept(equalMatcher):
			right, err := e.unary()
			if err != nil {
				return false, err
			}
			left = left == right
		case e.accept(notEqualMatcher):
			right, err := e.unary()
			if err != nil {
				return false, err
			}
			left = left != right
		default:
			return left, nil
		}
	}
}

func (e *evaluator) unary() (bool, error) {
	if e.accept(notMatcher) {
		value, err := e.unary()
		return !value, err
	}
	return e.primary()
}

func (e *evaluator) primary() (bool, error) {
	if e.accept(openMatcher) {
		value, err := e.or()
		if err != nil {
			return false, err
		}
		if !e.accept(closeMatcher) {
			return false, fmt.Errorf("expected ')' at offset %d", e.cursor.Pos)
		}
		return value, nil
	}
	pos := e.cursor.Pos
	matched := e.cursor.MatchAfterOptional(whitespaceMatcher, identifierMatcher)
	if matched.Code != identifierToken {
		e.cursor.Pos = pos
		return false, fmt.Errorf("expected symbol at offset %d", pos)
	}
	switch name := matched.Text(e.cursor); name {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return e.symbols[name], nil
	}
}
