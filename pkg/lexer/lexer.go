// Package lexer turns C# source text into the token stream consumed by the
// parser, applying conditional-compilation sections on the way.
package lexer

import (
	"sort"
	"strings"

	"github.com/viant/parsly"

	"csresolve/pkg/diag"
	"csresolve/pkg/preproc"
	"csresolve/pkg/token"
)

// Lexer scans one source file.
type Lexer struct {
	path       string
	cursor     *parsly.Cursor
	lineStarts []int
	sink       diag.Sink
	symbols    preproc.Symbols
	conditions []condition
	tokens     []token.Token
}

type condition struct {
	active       bool
	taken        bool
	parentActive bool
	elseSeen     bool
	pos          token.Position
}

// Tokenize scans src and returns its tokens terminated by an EOF token.
// defines seeds the conditional-compilation symbols; #define/#undef in the file
// only affect this file.
func Tokenize(path string, src []byte, defines []string, sink diag.Sink) []token.Token {
	l := New(path, src, defines, sink)
	return l.Run()
}

func New(path string, src []byte, defines []string, sink diag.Sink) *Lexer {
	if sink == nil {
		sink = &diag.Collector{}
	}
	return &Lexer{
		path:       path,
		cursor:     parsly.NewCursor(path, src, 0),
		lineStarts: lineStarts(src),
		sink:       sink,
		symbols:    preproc.NewSymbols(defines...),
	}
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Position converts a byte offset into a file position.
func (l *Lexer) Position(offset int) token.Position {
	line := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return token.Position{
		File:   l.path,
		Line:   line + 1,
		Column: offset - l.lineStarts[line] + 1,
		Offset: offset,
	}
}

func (l *Lexer) active() bool {
	return len(l.conditions) == 0 || l.conditions[len(l.conditions)-1].active
}

// Run scans the whole input.
func (l *Lexer) Run() []token.Token {
	cursor := l.cursor
	for cursor.Pos < cursor.InputSize {
		if !l.active() {
			l.skipInactiveLine()
			continue
		}
		matched := cursor.MatchAfterOptional(whitespaceMatcher,
			lineCommentMatcher,
			blockCommentMatcher,
			directiveMatcher,
			verbatimStringMatcher,
			interpolatedStringMatcher,
			stringMatcher,
			charMatcher,
			numberMatcher,
			identifierMatcher,
			punctMatcher,
			anyMatcher,
		)
		if matched.Code == parsly.EOF || matched.Code == parsly.Invalid {
			break
		}
		text := matched.Text(cursor)
		pos := l.Position(matched.Offset)
		switch matched.Code {
		case lineCommentToken:
		case blockCommentToken:
			if len(text) < 4 || !strings.HasSuffix(text, "*/") {
				l.sink.Report(diag.Errorf(diag.CodeUnterminatedComment, pos, "End-of-file found, '*/' expected"))
			}
		case directiveToken:
			if !l.atLineStart(matched.Offset) {
				l.sink.Report(diag.Errorf(diag.CodeUnexpectedDirective, pos, "Preprocessor directives must appear as the first non-whitespace character on a line"))
				continue
			}
			l.directive(text, pos)
		case verbatimStringToken, interpolatedStringToken, stringToken:
			if !closedLiteral(text, '"') {
				l.sink.Report(diag.Errorf(diag.CodeNewlineInConstant, pos, "Newline in constant"))
			}
			l.emit(token.StringLiteral, text, pos)
		case charToken:
			if !closedLiteral(text, '\'') {
				l.sink.Report(diag.Errorf(diag.CodeNewlineInConstant, pos, "Newline in constant"))
			} else if charLength(text) > 1 {
				l.sink.Report(diag.Errorf(diag.CodeTooManyCharsInChar, pos, "Too many characters in character literal"))
			}
			l.emit(token.CharLiteral, text, pos)
		case numberToken:
			l.emit(numberKind(text), text, pos)
		case identifierToken:
			if strings.HasPrefix(text, "@") {
				l.emit(token.Identifier, text[1:], pos)
			} else if token.IsKeyword(text) {
				l.emit(token.Keyword, text, pos)
			} else {
				l.emit(token.Identifier, text, pos)
			}
		case punctToken:
			l.emit(token.Punct, text, pos)
		default:
			l.sink.Report(diag.Errorf(diag.CodeUnexpectedCharacter, pos, "Unexpected character '%s'", text))
		}
	}
	end := l.Position(cursor.InputSize)
	if len(l.conditions) > 0 {
		l.sink.Report(diag.Errorf(diag.CodeEndifExpected, end, "#endif directive expected"))
	}
	l.tokens = append(l.tokens, token.Token{Kind: token.EOF, Pos: end})
	return l.tokens
}

func (l *Lexer) emit(kind token.Kind, text string, pos token.Position) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Text: text, Pos: pos})
}

func (l *Lexer) atLineStart(offset int) bool {
	start := l.Position(offset).Column - 1
	for i := offset - start; i < offset; i++ {
		if b := l.cursor.Input[i]; b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

// skipInactiveLine consumes one line of a skipped conditional section, handing
// directives back to the directive processor.
func (l *Lexer) skipInactiveLine() {
	cursor := l.cursor
	pos := cursor.Pos
	for pos < cursor.InputSize && (cursor.Input[pos] == ' ' || cursor.Input[pos] == '\t') {
		pos++
	}
	end := pos
	for end < cursor.InputSize && !isNewline(cursor.Input[end]) {
		end++
	}
	if pos < cursor.InputSize && cursor.Input[pos] == '#' {
		l.directive(string(cursor.Input[pos:end]), l.Position(pos))
	}
	if end < cursor.InputSize {
		if cursor.Input[end] == '\r' && end+1 < cursor.InputSize && cursor.Input[end+1] == '\n' {
			end++
		}
		end++
	}
	cursor.Pos = end
}

func (l *Lexer) directive(text string, pos token.Position) {
	body := strings.TrimSpace(strings.TrimPrefix(text, "#"))
	if idx := strings.Index(body, "//"); idx >= 0 {
		body = strings.TrimSpace(body[:idx])
	}
	name, rest := body, ""
	if idx := strings.IndexAny(body, " \t"); idx >= 0 {
		name, rest = body[:idx], strings.TrimSpace(body[idx+1:])
	}
	active := l.active()
	switch name {
	case "if":
		c := condition{parentActive: active, pos: pos}
		if active {
			c.active = l.evaluate(rest, pos)
			c.taken = c.active
		}
		l.conditions = append(l.conditions, c)
	case "elif":
		c := l.top(pos, name)
		if c == nil {
			return
		}
		if c.elseSeen {
			l.sink.Report(diag.Errorf(diag.CodeUnexpectedDirective, pos, "Unexpected preprocessor directive"))
		}
		c.active = false
		if c.parentActive && !c.taken {
			c.active = l.evaluate(rest, pos)
			c.taken = c.active
		}
	case "else":
		c := l.top(pos, name)
		if c == nil {
			return
		}
		if c.elseSeen {
			l.sink.Report(diag.Errorf(diag.CodeUnexpectedDirective, pos, "Unexpected preprocessor directive"))
		}
		c.elseSeen = true
		c.active = c.parentActive && !c.taken
		c.taken = true
	case "endif":
		if l.top(pos, name) == nil {
			return
		}
		l.conditions = l.conditions[:len(l.conditions)-1]
	case "define", "undef":
		if !active {
			return
		}
		if rest == "" {
			l.sink.Report(diag.Errorf(diag.CodeIdentifierExpected, pos, "Identifier expected"))
			return
		}
		l.symbols[rest] = name == "define"
	case "error":
		if active {
			l.sink.Report(diag.Errorf(diag.CodeUserError, pos, "#error: '%s'", rest))
		}
	case "warning":
		if active {
			l.sink.Report(diag.Warningf(diag.CodeUserWarning, pos, "#warning: '%s'", rest))
		}
	case "region", "endregion", "pragma", "nullable", "line":
	default:
		if active {
			l.sink.Report(diag.Errorf(diag.CodeUnexpectedDirective, pos, "Preprocessor directive expected"))
		}
	}
}

func (l *Lexer) top(pos token.Position, name string) *condition {
	if len(l.conditions) == 0 {
		l.sink.Report(diag.Errorf(diag.CodeUnexpectedDirective, pos, "Unexpected preprocessor directive #%s", name))
		return nil
	}
	return &l.conditions[len(l.conditions)-1]
}

func (l *Lexer) evaluate(expr string, pos token.Position) bool {
	value, err := preproc.Evaluate(expr, l.symbols)
	if err != nil {
		l.sink.Report(diag.Errorf(diag.CodeInvalidPreprocessor, pos, "Invalid preprocessor expression: %v", err))
		return false
	}
	return value
}

func closedLiteral(text string, quote byte) bool {
	body := strings.TrimLeft(text, "@$")
	if len(body) < 2 || body[len(body)-1] != quote {
		return false
	}
	if strings.HasPrefix(text, "@") || strings.HasPrefix(text, "$@") {
		return true
	}
	escapes := 0
	for i := len(body) - 2; i > 0 && body[i] == '\\'; i-- {
		escapes++
	}
	return escapes%2 == 0
}

func charLength(text string) int {
	body := text[1 : len(text)-1]
	if strings.HasPrefix(body, `\`) {
		switch {
		case strings.HasPrefix(body, `\u`), strings.HasPrefix(body, `\x`):
			return 1
		default:
			return len([]rune(body)) - 1
		}
	}
	return len([]rune(body))
}

func numberKind(text string) token.Kind {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") {
		return token.IntLiteral
	}
	if strings.ContainsAny(lower, ".e") || strings.HasSuffix(lower, "f") || strings.HasSuffix(lower, "d") || strings.HasSuffix(lower, "m") {
		return token.RealLiteral
	}
	return token.IntLiteral
}
