package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csresolve/pkg/diag"
	"csresolve/pkg/token"
)

func texts(tokens []token.Token) []string {
	var result []string
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			continue
		}
		result = append(result, tok.Text)
	}
	return result
}

func TestTokenize_Basic(t *testing.T) {
	sink := &diag.Collector{}
	tokens := Tokenize("a.cs", []byte("namespace N.M { class A<T> : B { int x = 0x1F; } }"), nil, sink)
	require.Empty(t, *sink)
	assert.Equal(t, []string{"namespace", "N", ".", "M", "{", "class", "A", "<", "T", ">", ":", "B", "{", "int", "x", "=", "0x1F", ";", "}", "}"}, texts(tokens))
	assert.Equal(t, token.Keyword, tokens[0].Kind)
	assert.Equal(t, token.Identifier, tokens[1].Kind)
	assert.Equal(t, token.IntLiteral, tokens[16].Kind)
	assert.Equal(t, token.EOF, tokens[len(tokens)-1].Kind)
}

func TestTokenize_NestedGenericsKeepSeparateClosers(t *testing.T) {
	tokens := Tokenize("a.cs", []byte("List<List<int>> x;"), nil, nil)
	assert.Equal(t, []string{"List", "<", "List", "<", "int", ">", ">", "x", ";"}, texts(tokens))
}

func TestTokenize_Positions(t *testing.T) {
	tokens := Tokenize("p.cs", []byte("class A\n{\r\n  B b;\n}"), nil, nil)
	require.True(t, len(tokens) > 4)
	b := tokens[3]
	assert.Equal(t, "B", b.Text)
	assert.Equal(t, token.Position{File: "p.cs", Line: 3, Column: 3, Offset: 14}, b.Pos)
}

func TestTokenize_LiteralsAndComments(t *testing.T) {
	src := "// line\n/* block\n comment */ var s = @\"a\"\"b\"; var c = '\\''; var d = 1.5e3f; var i = $\"{x} \\\"q\\\"\"; var @class = 1;"
	sink := &diag.Collector{}
	tokens := Tokenize("a.cs", []byte(src), nil, sink)
	require.Empty(t, *sink)
	kinds := map[string]token.Kind{}
	for _, tok := range tokens {
		kinds[tok.Text] = tok.Kind
	}
	assert.Equal(t, token.StringLiteral, kinds[`@"a""b"`])
	assert.Equal(t, token.CharLiteral, kinds[`'\''`])
	assert.Equal(t, token.RealLiteral, kinds["1.5e3f"])
	assert.Equal(t, token.Identifier, kinds["class"])
	assert.Equal(t, token.Identifier, kinds["var"])
}

func TestTokenize_Diagnostics(t *testing.T) {
	var testCases = []struct {
		description string
		src         string
		code        string
	}{
		{description: "unterminated string", src: "var s = \"abc\n;", code: diag.CodeNewlineInConstant},
		{description: "unterminated comment", src: "class A {} /* open", code: diag.CodeUnterminatedComment},
		{description: "unexpected character", src: "class A { ` }", code: diag.CodeUnexpectedCharacter},
		{description: "too many chars", src: "var c = 'ab';", code: diag.CodeTooManyCharsInChar},
		{description: "missing endif", src: "#if DEBUG\nclass A {}", code: diag.CodeEndifExpected},
		{description: "stray endif", src: "#endif\nclass A {}", code: diag.CodeUnexpectedDirective},
		{description: "bad expression", src: "#if (DEBUG\n#endif", code: diag.CodeInvalidPreprocessor},
		{description: "error directive", src: "#error stop here", code: diag.CodeUserError},
	}
	for _, testCase := range testCases {
		sink := &diag.Collector{}
		Tokenize("a.cs", []byte(testCase.src), nil, sink)
		require.NotEmpty(t, *sink, testCase.description)
		assert.Equal(t, testCase.code, (*sink)[0].Code, testCase.description)
	}
}

func TestTokenize_ConditionalSections(t *testing.T) {
	src := `#define LOCAL
#if DEBUG
class Debug {}
#elif LOCAL && !TRACE
class Local {}
#else
class Release { "unterminated
#endif
#undef LOCAL
#if LOCAL
class Never {}
#endif`
	sink := &diag.Collector{}
	tokens := Tokenize("a.cs", []byte(src), nil, sink)
	require.Empty(t, *sink)
	assert.Equal(t, []string{"class", "Local", "{", "}"}, texts(tokens))

	tokens = Tokenize("a.cs", []byte(src), []string{"DEBUG"}, nil)
	assert.Equal(t, []string{"class", "Debug", "{", "}"}, texts(tokens))
}

func TestTokenize_NestedConditionInInactiveSection(t *testing.T) {
	src := "#if A\n#if B\nclass X {}\n#else\nclass Y {}\n#endif\n#endif\nclass Z {}"
	tokens := Tokenize("a.cs", []byte(src), nil, nil)
	assert.Equal(t, []string{"class", "Z", "{", "}"}, texts(tokens))
}
