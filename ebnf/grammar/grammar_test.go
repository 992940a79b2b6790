package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/packrat/ast"
	"github.com/dhamidi/packrat/lexer"
	"github.com/dhamidi/packrat/parser"
)

func load(t *testing.T, source string, opts ...Option) *Grammar {
	t.Helper()
	g, err := Load("test.ebnf", strings.NewReader(source), opts...)
	require.NoError(t, err)
	return g
}

func rule(t *testing.T, g *Grammar, name string) *parser.Rule {
	t.Helper()
	r, ok := g.Rule(name)
	require.True(t, ok, "rule %s", name)
	return r
}

func TestJavaGrammar(t *testing.T) {
	g, err := LoadFile("testdata/java.ebnf", WithSkipped("Modifier"))
	require.NoError(t, err)

	source := "package com.example;\n" +
		"import java.util.*;\n" +
		"import java.io.File;\n" +
		"public abstract class MyClass {\n" +
		"   public abstract void run();\n" +
		"   int size();\n" +
		"}\n"
	node, err := parser.Parse(rule(t, g, "CompilationUnit"), lexer.Lex(source, "MyClass.java"))
	require.NoError(t, err)

	methods := node.FindDescendants(rule(t, g, "MethodDeclaration").Type())
	require.Len(t, methods, 2)
	require.Equal(t, "public", methods[0].TokenValue())
	require.Equal(t, "int", methods[1].TokenValue())

	imports := node.FindDirectChildren(rule(t, g, "ImportDeclaration").Type())
	require.Len(t, imports, 2)

	require.Nil(t, node.FindFirstDescendant(rule(t, g, "Modifier").Type()))
	class := node.FindFirstDirectChild(rule(t, g, "ClassDeclaration").Type())
	require.NotNil(t, class)
	require.Equal(t, []string{"public", "abstract", "class", "MyClass"}, tokenValues(class.Children[:4]))
}

func TestJavaGrammarFailure(t *testing.T) {
	g, err := LoadFile("testdata/java.ebnf")
	require.NoError(t, err)

	source := "package com.test;\n" +
		"import java.util.*;\n" +
		"public abstract clas MyClass {\n" +
		"   public abstract void run();\n" +
		"}\n"
	_, err = parser.Parse(rule(t, g, "CompilationUnit"), lexer.Lex(source, "Test.java"))

	var failure *parser.RecognitionFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, 14, failure.Index)
	require.Equal(t, 3, failure.Line)
	require.Equal(t, "clas", failure.Token.Value)
}

func tokenValues(nodes []*ast.Node) []string {
	var values []string
	for _, n := range nodes {
		values = append(values, n.TokenValue())
	}
	return values
}

func TestRuleNames(t *testing.T) {
	g := load(t, `B = "b" . A = B | "a" . c = "c" .`)
	require.Equal(t, []string{"A", "B"}, g.RuleNames())
	_, ok := g.Rule("c")
	require.False(t, ok)
	typ, ok := g.TokenType("c")
	require.True(t, ok)
	require.Equal(t, "c", typ.Name)
	require.Equal(t, []string{"a", "b"}, g.Literals())
	require.False(t, g.HasLexical(), "c is never used by a rule")
}

func TestEmptyProduction(t *testing.T) {
	g := load(t, `A = "x" B "y" . B = .`)
	node, err := parser.Parse(rule(t, g, "A"), lexer.Lex("x y", "test"))
	require.NoError(t, err)
	require.Equal(t, 2, node.ToIndex)
}

func TestExpressions(t *testing.T) {
	g := load(t, `S = ( "a" | "b" ) [ "c" ] { "d" } EOF .`)
	s := rule(t, g, "S")

	tests := []struct {
		input string
		ok    bool
	}{
		{"a", true},
		{"b c", true},
		{"a d d d", true},
		{"b c d", true},
		{"c", false},
		{"a c c", false},
		{"a d c", false},
	}
	for _, tt := range tests {
		_, err := parser.Parse(s, lexer.Lex(tt.input, "test"))
		require.Equal(t, tt.ok, err == nil, "%q: %v", tt.input, err)
	}
}

func TestTokenTypes(t *testing.T) {
	custom := &ast.NodeType{Name: "CUSTOM"}
	g := load(t, `S = IDENTIFIER INTEGER STRING CUSTOM .`, WithTokenType("CUSTOM", custom))
	tokens := lexer.Lex(`x 42 "s" y`, "test")
	tokens[3].Type = custom
	_, err := parser.Parse(rule(t, g, "S"), tokens)
	require.NoError(t, err)
}

func TestSkipped(t *testing.T) {
	g := load(t, `S = Pair Pair . Pair = IDENTIFIER "=" IDENTIFIER .`, WithSkipped("Pair"))
	node, err := parser.Parse(rule(t, g, "S"), lexer.Lex("a = b c = d", "test"))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a", "=", "b", "c", "=", "d"}, tokenValues(node.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Load("test.ebnf", strings.NewReader(`S = Missing Other .`))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUndefinedName))
	require.Contains(t, err.Error(), "Missing")
	require.Contains(t, err.Error(), "Other")

	_, err = Load("test.ebnf", strings.NewReader(`S = "a" … "z" .`))
	require.ErrorIs(t, err, ErrUnsupportedExpression)

	_, err = Load("test.ebnf", strings.NewReader(`S = "a"`))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUndefinedName))
}

func TestVerify(t *testing.T) {
	g := load(t, `S = "a" b . b = "b" .`)
	require.NoError(t, g.Verify("S"))

	g, err := LoadFile("testdata/java.ebnf")
	require.NoError(t, err)
	require.Error(t, g.Verify("CompilationUnit"), "IDENTIFIER has no production")
}

func TestIsLexical(t *testing.T) {
	require.True(t, IsLexical("digit"))
	require.True(t, IsLexical("_x"))
	require.False(t, IsLexical("Expr"))
	require.False(t, IsLexical("EOF"))
	require.False(t, IsLexical(""))
}
