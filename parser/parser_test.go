package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/packrat/ast"
)

func TestParseBuildsTree(t *testing.T) {
	g := newJavaGrammar()
	node, err := Parse(g.compilationUnit, lex("package a;\nimport b.c;\npublic abstract class"))
	require.NoError(t, err)

	want := `compilationUnit package
  packageDeclaration package
    IDENTIFIER package
    IDENTIFIER a
    PUNCTUATOR ;
  importDeclaration import
    IDENTIFIER import
    IDENTIFIER b
    PUNCTUATOR .
    IDENTIFIER c
    PUNCTUATOR ;
  classBlock public
    classDeclaration public
      IDENTIFIER public
      IDENTIFIER abstract
      IDENTIFIER class
`
	require.Equal(t, want, node.StringTree())

	decl := node.FindFirstDescendant(g.classDeclaration.Type())
	require.NotNil(t, decl)
	require.True(t, decl.HasAncestor(g.compilationUnit.Type()))
	require.Equal(t, 8, decl.FromIndex)
	require.Equal(t, 11, decl.ToIndex)
	require.Equal(t, "class", decl.LastToken().Value)
}

func TestParseCompleteInput(t *testing.T) {
	r := NewRule("r").Is(Value("a"))
	tokens := lex("a b")

	node, err := Parse(r, tokens)
	require.NoError(t, err)
	require.Equal(t, 1, node.ToIndex)

	node, err = Parse(r, tokens, WithCompleteInput())
	require.Nil(t, node)
	var failure *RecognitionFailure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, 1, failure.Index)
	require.Equal(t, "b", failure.Token.Value)
	require.Equal(t, "EOF", failure.Matcher.String())
}

func TestParseSkippedStartRule(t *testing.T) {
	r := NewRule("r").SkipFromTree().Is(Value("a"), Value("b"))
	node, err := Parse(r, lex("a b"))
	require.NoError(t, err)
	require.Same(t, r.Type(), node.Type)
	require.Equal(t, 2, node.NumChildren())
}

func TestParseRelinksMemoizedNodes(t *testing.T) {
	a := NewRule("A").Is(Value("q"))
	r := NewRule("R").Is(Value("p"), a)
	top := NewRule("top").Is(FirstOf(
		Sequence(r, Value("x")),
		Sequence(Value("p"), a, Value("y")),
		r,
	))

	s, node, err := New(top).ParseState(lex("p q"))
	require.NoError(t, err)
	require.Equal(t, 2, s.Stats().MemoHits)
	require.Equal(t, "top p\n  R p\n    IDENTIFIER p\n    A q\n      IDENTIFIER q\n", node.StringTree())

	rn := node.Child(0)
	an := rn.FindFirstDirectChild(a.Type())
	require.NotNil(t, an)
	require.Same(t, node, rn.Parent())
	require.Same(t, rn, an.Parent())
	require.Same(t, rn.Child(0), an.PreviousSibling())
	require.True(t, an.HasAncestor(top.Type()))
}

func TestParseRepeatedEmptyMatchesAreDistinct(t *testing.T) {
	e := NewRule("E").Is(Optional(Value("z")))
	top := NewRule("top").Is(e, e, Value("a"))

	node, err := Parse(top, lex("a"))
	require.NoError(t, err)
	require.Equal(t, 3, node.NumChildren())
	first, second := node.Child(0), node.Child(1)
	require.NotSame(t, first, second)
	require.Same(t, second, first.NextSibling())
	require.Same(t, node.Child(2), second.NextSibling())
	require.Same(t, first, second.PreviousSibling())
}

func TestListeners(t *testing.T) {
	var fromOption, fromState []*RecognitionFailure
	r := NewRule("r").Is(Value("a"))

	p := New(r, WithListener(ListenerFunc(func(f *RecognitionFailure) {
		fromOption = append(fromOption, f)
	})))

	_, err := p.Parse(lex("a"))
	require.NoError(t, err)
	require.Empty(t, fromOption)

	_, err = p.Parse(lex("b"))
	require.Error(t, err)
	require.Len(t, fromOption, 1)
	require.Same(t, err, error(fromOption[0]))

	_, err = p.Parse(lex("c"))
	require.Error(t, err)
	require.Len(t, fromOption, 2)

	s := NewState(lex("b"))
	s.AddListener(ListenerFunc(func(f *RecognitionFailure) {
		fromState = append(fromState, f)
	}))
	require.False(t, r.Match(s).Ok)
	require.Empty(t, fromState, "listeners only hear about top-level failures")
}

func TestParserIsReusable(t *testing.T) {
	p := New(newJavaGrammar().compilationUnit)
	for i := 0; i < 3; i++ {
		_, err := p.Parse(lex("package a;\nimport b;\npublic abstract class"))
		require.NoError(t, err)
		_, err = p.Parse(lex("package a;"))
		require.Error(t, err)
	}
}

func TestStateTokenAccess(t *testing.T) {
	tokens := lex("a b")
	s := NewState(tokens)
	require.Equal(t, 2, s.Len())
	require.Equal(t, tokens, s.Tokens())
	require.Equal(t, "b", s.Token(1).Value)
	require.Nil(t, s.Token(2))
	require.Nil(t, s.Token(-1))

	index, m := s.Outpost()
	require.Equal(t, -1, index)
	require.Nil(t, m)
	require.Nil(t, s.OutpostToken())

	tok, ok := s.PeekAt(1, AnyToken())
	require.True(t, ok)
	require.Equal(t, "b", tok.Value)
	index, _ = s.Outpost()
	require.Equal(t, 1, index)
	require.Equal(t, 0, s.Cursor())
}

func TestNodeTypesAreDistinctPerRule(t *testing.T) {
	a := NewRule("same")
	b := NewRule("same")
	require.NotSame(t, a.Type(), b.Type())

	shared := &ast.NodeType{Name: "shared"}
	require.Same(t, shared, NewRuleOfType(shared).Type())
}
