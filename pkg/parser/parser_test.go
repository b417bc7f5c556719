package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csresolve/pkg/ast"
	"csresolve/pkg/diag"
)

func parse(t *testing.T, src string) (*ast.CompilationUnit, []*diag.Diagnostic) {
	t.Helper()
	sink := &diag.Collector{}
	unit := ParseFile("test.cs", []byte(src), nil, sink)
	require.NotNil(t, unit)
	return unit, *sink
}

func TestParseExpression_Grouping(t *testing.T) {
	var testCases = []struct {
		description string
		src         string
		expect      string
	}{
		{description: "additive is left-associative around multiplication", src: "2 + 3 * 4 + 5", expect: "((2 + (3 * 4)) + 5)"},
		{description: "subtraction chain", src: "a - b - c", expect: "((a - b) - c)"},
		{description: "logical precedence", src: "a || b && c", expect: "(a || (b && c))"},
		{description: "comparison below shift", src: "a << 1 < b", expect: "((a << 1) < b)"},
		{description: "shift right joins adjacent closers", src: "x >> 2", expect: "(x >> 2)"},
		{description: "assignment is right-associative", src: "a = b = c", expect: "(a = (b = c))"},
		{description: "coalesce is right-associative", src: "a ?? b ?? c", expect: "(a ?? (b ?? c))"},
		{description: "conditional", src: "a ? b : c + 1", expect: "(a ? b : (c + 1))"},
		{description: "unary binds tighter", src: "-a * !b", expect: "((-a) * (!b))"},
		{description: "parentheses", src: "(2 + 3) * 4", expect: "((2 + 3) * 4)"},
		{description: "cast", src: "(int)x + 1", expect: "(((int)x) + 1)"},
		{description: "parenthesised name is not a cast", src: "(a) - b", expect: "(a - b)"},
		{description: "generic call", src: "F<int>(x)", expect: "F<int>(x)"},
		{description: "less than is not generic", src: "a < b", expect: "(a < b)"},
		{description: "member chain", src: "System.Console.WriteLine(\"hi\")", expect: "System.Console.WriteLine(\"hi\")"},
		{description: "type test", src: "x is string && y as A != null", expect: "((x is string) && ((y as A) != null))"},
	}
	for _, testCase := range testCases {
		sink := &diag.Collector{}
		expr := ParseExpression("expr.cs", testCase.src, sink)
		require.Empty(t, *sink, testCase.description)
		assert.Equal(t, testCase.expect, ast.Format(expr), testCase.description)
	}
}

func TestParseExpression_TreeShape(t *testing.T) {
	expr := ParseExpression("expr.cs", "2 + 3 * 4 + 5", nil)
	outer, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", outer.Op)
	assert.Equal(t, "5", outer.Y.(*ast.Literal).Value)

	inner, ok := outer.X.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", inner.Op)
	assert.Equal(t, "2", inner.X.(*ast.Literal).Value)

	product, ok := inner.Y.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", product.Op)
	assert.Equal(t, "3", product.X.(*ast.Literal).Value)
	assert.Equal(t, "4", product.Y.(*ast.Literal).Value)
}

func TestParseFile_Declarations(t *testing.T) {
	src := `extern alias Lib;
using System;
using static System.Math;
using Map = System.Collections.Generic.Dictionary<string, int>;

namespace Acme.Tools
{
    using Inner;

    [Serializable]
    public partial class Box<T> : Base<T>, IComparable<Box<T>> where T : class, new()
    {
        private int count = 0, total;
        public T Value { get; private set; }
        public event EventHandler Changed;
        public Box(T value) : base(value) { Value = value; }
        ~Box() { }
        public static Box<T> operator +(Box<T> a, Box<T> b) => a;
        public U Convert<U>(Func<T, U> f) where U : struct { return f(Value); }
        int IComparable<Box<T>>.CompareTo(Box<T> other) { return 0; }
        public T this[int index] { get { return Value; } }
        internal enum Mode : byte { A = 1, B, }
        delegate void Handler(object sender);
    }
}
`
	unit, diags := parse(t, src)
	require.Empty(t, diags)
	require.Len(t, unit.Externs, 1)
	assert.Equal(t, "Lib", unit.Externs[0].Name)
	require.Len(t, unit.Usings, 3)
	assert.True(t, unit.Usings[1].Static)
	assert.Equal(t, "Map", unit.Usings[2].Alias)
	assert.Equal(t, "System.Collections.Generic.Dictionary<string, int>", unit.Usings[2].Target.String())

	ns := unit.Members[0].(*ast.NamespaceDecl)
	assert.Equal(t, "Acme.Tools", ns.FullName())
	require.Len(t, ns.Usings, 1)

	box := ns.Members[0].(*ast.TypeDecl)
	assert.Equal(t, "Box", box.Name)
	assert.Equal(t, 1, box.Arity())
	assert.True(t, box.Modifiers.Has(ast.ModPublic|ast.ModPartial))
	require.Len(t, box.Attributes, 1)
	require.Len(t, box.Bases, 2)
	assert.Equal(t, "IComparable<Box<T>>", box.Bases[1].String())
	require.Len(t, box.Constraints, 1)
	assert.Equal(t, ast.ConstraintClass, box.Constraints[0].Constraints[0].Kind)
	assert.Equal(t, ast.ConstraintNew, box.Constraints[0].Constraints[1].Kind)
	require.Len(t, box.Members, 11)

	field := box.Members[0].(*ast.FieldDecl)
	assert.Len(t, field.Vars, 2)
	assert.Equal(t, "Value", box.Members[1].(*ast.PropertyDecl).Name)
	assert.True(t, box.Members[2].(*ast.FieldDecl).Event)
	ctor := box.Members[3].(*ast.ConstructorDecl)
	require.NotNil(t, ctor.Initializer)
	assert.True(t, ctor.Initializer.Base)
	assert.True(t, box.Members[4].(*ast.ConstructorDecl).Destructor)
	assert.Equal(t, "operator +", box.Members[5].(*ast.MethodDecl).Name)

	convert := box.Members[6].(*ast.MethodDecl)
	assert.Equal(t, "Convert", convert.Name)
	require.Len(t, convert.TypeParams, 1)
	assert.Equal(t, "U", convert.TypeParams[0].Name)
	require.Len(t, convert.Constraints, 1)

	explicit := box.Members[7].(*ast.MethodDecl)
	require.NotNil(t, explicit.ExplicitInterface)
	assert.Equal(t, "IComparable<Box<T>>", explicit.ExplicitInterface.String())
	assert.Equal(t, "CompareTo", explicit.Name)

	assert.True(t, box.Members[8].(*ast.PropertyDecl).Indexer)
	mode := box.Members[9].(*ast.TypeDecl)
	assert.Equal(t, ast.KindEnum, mode.Kind)
	assert.Len(t, mode.Members, 2)
	assert.Equal(t, ast.KindDelegate, box.Members[10].(*ast.TypeDecl).Kind)
}

func TestParseFile_Statements(t *testing.T) {
	src := `class C {
    void M(int[] items, out int found) {
        var total = 0;
        List<int> seen = new List<int> { 1, 2 };
        int? maybe = null;
        for (int i = 0; i < items.Length; i++) { total += items[i]; }
        foreach (var item in items) if (item > 0) continue; else break;
        try { throw new Exception("x"); } catch (Exception e) when (e != null) { } finally { }
        using (var stream = Open()) { }
        switch (total) { case 1: case 2: break; default: return; }
        found = items.Length > 0 ? items[0] : -1;
        Func<int, int> twice = x => x * 2;
        Action<int, int> both = (a, b) => { };
        TryGet(out var value);
        label: total++;
    }
}`
	unit, diags := parse(t, src)
	require.Empty(t, diags)
	class := unit.Members[0].(*ast.TypeDecl)
	method := class.Members[0].(*ast.MethodDecl)
	require.NotNil(t, method.Body)
	stmts := method.Body.Stmts
	require.Len(t, stmts, 13)

	assert.Nil(t, stmts[0].(*ast.LocalDecl).Type)
	seen := stmts[1].(*ast.LocalDecl)
	assert.Equal(t, "List<int>", seen.Type.String())
	assert.True(t, stmts[2].(*ast.LocalDecl).Type.Nullable)
	assert.IsType(t, &ast.ForStmt{}, stmts[3])
	assert.IsType(t, &ast.ForeachStmt{}, stmts[4])
	try := stmts[5].(*ast.TryStmt)
	require.Len(t, try.Catches, 1)
	assert.Equal(t, "e", try.Catches[0].Name)
	assert.NotNil(t, try.Catches[0].Filter)
	assert.NotNil(t, stmts[6].(*ast.UsingStmt).Decl)
	assert.Len(t, stmts[7].(*ast.SwitchStmt).Sections, 2)
	assert.IsType(t, &ast.LambdaExpr{}, stmts[9].(*ast.LocalDecl).Vars[0].Init)
	call := stmts[11].(*ast.ExprStmt).X.(*ast.CallExpr)
	require.NotNil(t, call.Args[0].Declares)
	assert.Equal(t, "value", call.Args[0].Declares.Vars[0].Name)
}

func TestParseFile_GenericClosers(t *testing.T) {
	unit, diags := parse(t, "class C { Dictionary<string, List<int>> map; int Shift(int x) { return x >> 1; } }")
	require.Empty(t, diags)
	class := unit.Members[0].(*ast.TypeDecl)
	field := class.Members[0].(*ast.FieldDecl)
	assert.Equal(t, "Dictionary<string, List<int>>", field.Type.String())
}

func TestParseFile_FileScopedNamespace(t *testing.T) {
	unit, diags := parse(t, "namespace A.B;\nusing X;\nclass C {}\ninterface I {}")
	require.Empty(t, diags)
	ns := unit.Members[0].(*ast.NamespaceDecl)
	assert.True(t, ns.FileScoped)
	assert.Len(t, ns.Usings, 1)
	assert.Len(t, ns.Members, 2)
}

func TestParseFile_Recovery(t *testing.T) {
	var testCases = []struct {
		description string
		src         string
		code        string
		types       int
	}{
		{description: "missing semicolon", src: "class A { int x }\nclass B {}", code: diag.CodeSemicolonExpected, types: 2},
		{description: "missing close brace", src: "class A { void M() { }", code: diag.CodeCloseBraceExpected, types: 1},
		{description: "member in namespace", src: "namespace N { int x; class B {} }", code: diag.CodeNamespaceMemberError, types: 1},
		{description: "invalid member token", src: "class A { ) int y; }", code: diag.CodeInvalidMemberToken, types: 1},
		{description: "invalid expression term", src: "class A { void M() { x = ); } }", code: diag.CodeInvalidExpression, types: 1},
		{description: "missing identifier", src: "class { }", code: diag.CodeIdentifierExpected, types: 1},
	}
	for _, testCase := range testCases {
		unit, diags := parse(t, testCase.src)
		require.NotEmpty(t, diags, testCase.description)
		assert.Equal(t, testCase.code, diags[0].Code, testCase.description)
		count := 0
		ast.Inspect(unit, func(n ast.Node) bool {
			if _, ok := n.(*ast.TypeDecl); ok {
				count++
			}
			return true
		})
		assert.Equal(t, testCase.types, count, testCase.description)
	}
}

func TestReferences(t *testing.T) {
	unit, diags := parse(t, "class C : B<int> { T f; void M() { var x = nameof(f); G<string>(y); } }")
	require.Empty(t, diags)
	var names []string
	for _, node := range ast.References(unit) {
		switch n := node.(type) {
		case *ast.TypeReference:
			names = append(names, "type:"+n.String())
		case *ast.NameExpr:
			names = append(names, "name:"+n.Name)
		}
	}
	assert.Equal(t, []string{"type:B<int>", "type:int", "type:T", "type:void", "name:f", "name:G", "type:string", "name:y"}, names)
}
