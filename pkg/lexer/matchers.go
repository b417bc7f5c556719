package lexer

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota
	lineCommentToken
	blockCommentToken
	directiveToken
	verbatimStringToken
	interpolatedStringToken
	stringToken
	charToken
	numberToken
	identifierToken
	punctToken
	anyToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var lineCommentMatcher = parsly.NewToken(lineCommentToken, "LineComment", &lineCommentMatch{})
var blockCommentMatcher = parsly.NewToken(blockCommentToken, "BlockComment", &blockCommentMatch{})
var directiveMatcher = parsly.NewToken(directiveToken, "Directive", &directiveMatch{})
var verbatimStringMatcher = parsly.NewToken(verbatimStringToken, "VerbatimString", &verbatimStringMatch{})
var interpolatedStringMatcher = parsly.NewToken(interpolatedStringToken, "InterpolatedString", &interpolatedStringMatch{})
var stringMatcher = parsly.NewToken(stringToken, "String", &quotedMatch{quote: '"'})
var charMatcher = parsly.NewToken(charToken, "Char", &quotedMatch{quote: '\''})
var numberMatcher = parsly.NewToken(numberToken, "Number", &numberMatch{})
var identifierMatcher = parsly.NewToken(identifierToken, "Identifier", &identifierMatch{})
var punctMatcher = parsly.NewToken(punctToken, "Punct", &punctMatch{})
var anyMatcher = parsly.NewToken(anyToken, "Any", &anyMatch{})

// ">>" and ">>=" are deliberately absent: the parser joins adjacent '>' tokens so
// that nested type argument lists close correctly.
var punctuators = []string{
	"<<=", "??=", "...",
	"::", "++", "--", "&&", "||", "->", "==", "!=", "<=", ">=", "+=", "-=", "*=",
	"/=", "%=", "&=", "|=", "^=", "<<", "=>", "??",
	"{", "}", "[", "]", "(", ")", ".", ",", ":", ";", "+", "-", "*", "/", "%",
	"&", "|", "^", "!", "~", "=", "<", ">", "?",
}

type lineCommentMatch struct{}

func (m *lineCommentMatch) Match(cursor *parsly.Cursor) int {
	if !hasPrefix(cursor, "//") {
		return 0
	}
	pos := cursor.Pos + 2
	for pos < cursor.InputSize && !isNewline(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

// blockCommentMatch consumes the rest of the input when the comment is not closed;
// the lexer reports the missing terminator.
type blockCommentMatch struct{}

func (m *blockCommentMatch) Match(cursor *parsly.Cursor) int {
	if !hasPrefix(cursor, "/*") {
		return 0
	}
	pos := cursor.Pos + 2
	for pos < cursor.InputSize {
		if cursor.Input[pos] == '*' && pos+1 < cursor.InputSize && cursor.Input[pos+1] == '/' {
			return pos + 2 - cursor.Pos
		}
		pos++
	}
	return cursor.InputSize - cursor.Pos
}

type directiveMatch struct{}

func (m *directiveMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize || cursor.Input[cursor.Pos] != '#' {
		return 0
	}
	pos := cursor.Pos + 1
	for pos < cursor.InputSize && !isNewline(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

type verbatimStringMatch struct{}

func (m *verbatimStringMatch) Match(cursor *parsly.Cursor) int {
	start := cursor.Pos
	switch {
	case hasPrefix(cursor, `@"`):
		start += 2
	case hasPrefix(cursor, `$@"`), hasPrefix(cursor, `@$"`):
		start += 3
	default:
		return 0
	}
	pos := start
	for pos < cursor.InputSize {
		if cursor.Input[pos] == '"' {
			if pos+1 < cursor.InputSize && cursor.Input[pos+1] == '"' {
				pos += 2
				continue
			}
			return pos + 1 - cursor.Pos
		}
		pos++
	}
	return cursor.InputSize - cursor.Pos
}

// interpolatedStringMatch matches $"..." keeping track of {...} holes so that
// quotes inside a hole do not terminate the literal.
type interpolatedStringMatch struct{}

func (m *interpolatedStringMatch) Match(cursor *parsly.Cursor) int {
	if !hasPrefix(cursor, `$"`) {
		return 0
	}
	pos := cursor.Pos + 2
	depth := 0
	for pos < cursor.InputSize {
		b := cursor.Input[pos]
		switch {
		case isNewline(b) && depth == 0:
			return pos - cursor.Pos
		case b == '\\' && depth == 0:
			pos += 2
			continue
		case b == '{':
			if depth == 0 && pos+1 < cursor.InputSize && cursor.Input[pos+1] == '{' {
				pos += 2
				continue
			}
			depth++
		case b == '}' && depth > 0:
			depth--
		case b == '"' && depth > 0:
			pos = skipQuoted(cursor, pos, '"')
			continue
		case b == '"':
			return pos + 1 - cursor.Pos
		}
		pos++
	}
	return cursor.InputSize - cursor.Pos
}

func skipQuoted(cursor *parsly.Cursor, pos int, quote byte) int {
	pos++
	for pos < cursor.InputSize {
		switch cursor.Input[pos] {
		case '\\':
			pos += 2
			continue
		case quote:
			return pos + 1
		}
		if isNewline(cursor.Input[pos]) {
			return pos
		}
		pos++
	}
	return pos
}

// quotedMatch matches a regular string or character literal up to the closing
// quote or, when unterminated, up to the end of the line.
type quotedMatch struct {
	quote byte
}

func (m *quotedMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos >= cursor.InputSize || cursor.Input[cursor.Pos] != m.quote {
		return 0
	}
	return skipQuoted(cursor, cursor.Pos, m.quote) - cursor.Pos
}

type numberMatch struct{}

func (m *numberMatch) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize {
		return 0
	}
	if input[pos] == '.' {
		if pos+1 >= cursor.InputSize || !isDigit(input[pos+1]) {
			return 0
		}
	} else if !isDigit(input[pos]) {
		return 0
	}
	if input[pos] == '0' && pos+1 < cursor.InputSize && (input[pos+1] == 'x' || input[pos+1] == 'X' || input[pos+1] == 'b' || input[pos+1] == 'B') {
		pos += 2
		for pos < cursor.InputSize && (isHexDigit(input[pos]) || input[pos] == '_') {
			pos++
		}
		return skipSuffix(cursor, pos) - cursor.Pos
	}
	for pos < cursor.InputSize && (isDigit(input[pos]) || input[pos] == '_') {
		pos++
	}
	if pos+1 < cursor.InputSize && input[pos] == '.' && isDigit(input[pos+1]) {
		pos++
		for pos < cursor.InputSize && (isDigit(input[pos]) || input[pos] == '_') {
			pos++
		}
	}
	if pos < cursor.InputSize && (input[pos] == 'e' || input[pos] == 'E') {
		next := pos + 1
		if next < cursor.InputSize && (input[next] == '+' || input[next] == '-') {
			next++
		}
		if next < cursor.InputSize && isDigit(input[next]) {
			pos = next
			for pos < cursor.InputSize && isDigit(input[pos]) {
				pos++
			}
		}
	}
	return skipSuffix(cursor, pos) - cursor.Pos
}

func skipSuffix(cursor *parsly.Cursor, pos int) int {
	for pos < cursor.InputSize {
		switch cursor.Input[pos] {
		case 'u', 'U', 'l', 'L', 'f', 'F', 'd', 'D', 'm', 'M':
			pos++
		default:
			return pos
		}
	}
	return pos
}

type identifierMatch struct{}

func (m *identifierMatch) Match(cursor *parsly.Cursor) int {
	pos := cursor.Pos
	if pos < cursor.InputSize && cursor.Input[pos] == '@' {
		pos++
	}
	if pos >= cursor.InputSize || !isIdentifierStart(cursor.Input[pos]) {
		return 0
	}
	pos++
	for pos < cursor.InputSize && isIdentifierPart(cursor.Input[pos]) {
		pos++
	}
	return pos - cursor.Pos
}

type punctMatch struct{}

func (m *punctMatch) Match(cursor *parsly.Cursor) int {
	for _, candidate := range punctuators {
		if hasPrefix(cursor, candidate) {
			return len(candidate)
		}
	}
	return 0
}

type anyMatch struct{}

func (a *anyMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos < cursor.InputSize {
		return 1
	}
	return 0
}

func hasPrefix(cursor *parsly.Cursor, prefix string) bool {
	if cursor.Pos+len(prefix) > cursor.InputSize {
		return false
	}
	return string(cursor.Input[cursor.Pos:cursor.Pos+len(prefix)]) == prefix
}

func isNewline(b byte) bool {
	return b == '\n' || b == '\r'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentifierStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b >= 0x80
}

func isIdentifierPart(b byte) bool {
	return isIdentifierStart(b) || isDigit(b)
}
