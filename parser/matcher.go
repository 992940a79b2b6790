package parser

import (
	"strconv"
	"strings"

	"github.com/dhamidi/packrat/ast"
)

// Matcher is a grammar node. Match must leave the cursor unchanged when it
// fails. String describes the matcher in diagnostics.
type Matcher interface {
	Match(s *State) Result
	String() string
}

// Result is the outcome of Match. Node may be nil on success.
type Result struct {
	Node *ast.Node
	End  int
	Ok   bool
}

// Failed is the result of a matcher that does not apply.
var Failed = Result{}

// Value matches a token whose value is exactly value.
func Value(value string) Matcher {
	return &valueMatcher{value: value}
}

type valueMatcher struct {
	value string
}

func (m *valueMatcher) Match(s *State) Result {
	tok, ok := s.Peek(m)
	if !ok || tok.Value != m.value {
		return Failed
	}
	return s.Consume()
}

func (m *valueMatcher) String() string {
	return `"` + m.value + `"`
}

// OneOfValues matches a token whose value is any of values.
func OneOfValues(values ...string) Matcher {
	m := &oneOfValuesMatcher{values: make(map[string]bool, len(values)), names: values}
	for _, v := range values {
		m.values[v] = true
	}
	return m
}

type oneOfValuesMatcher struct {
	values map[string]bool
	names  []string
}

func (m *oneOfValuesMatcher) Match(s *State) Result {
	tok, ok := s.Peek(m)
	if !ok || !m.values[tok.Value] {
		return Failed
	}
	return s.Consume()
}

func (m *oneOfValuesMatcher) String() string {
	quoted := make([]string, len(m.names))
	for i, name := range m.names {
		quoted[i] = strconv.Quote(name)
	}
	return "oneOf(" + strings.Join(quoted, ", ") + ")"
}

// Type matches a token of the given type.
func Type(typ *ast.NodeType) Matcher {
	return &typeMatcher{typ: typ}
}

type typeMatcher struct {
	typ *ast.NodeType
}

func (m *typeMatcher) Match(s *State) Result {
	tok, ok := s.Peek(m)
	if !ok || tok.Type != m.typ {
		return Failed
	}
	return s.Consume()
}

func (m *typeMatcher) String() string {
	return m.typ.String()
}

// AnyToken matches any single token.
func AnyToken() Matcher {
	return anyToken
}

var anyToken = &anyTokenMatcher{}

type anyTokenMatcher struct{}

func (m *anyTokenMatcher) Match(s *State) Result {
	if _, ok := s.Peek(m); !ok {
		return Failed
	}
	return s.Consume()
}

func (m *anyTokenMatcher) String() string {
	return "anyToken"
}

// EndOfInput matches, without consuming anything, when every token has been
// consumed.
func EndOfInput() Matcher {
	return endOfInput
}

var endOfInput = &endOfInputMatcher{}

type endOfInputMatcher struct{}

func (m *endOfInputMatcher) Match(s *State) Result {
	if _, ok := s.Peek(m); ok {
		return Failed
	}
	return Result{End: s.cursor, Ok: true}
}

func (m *endOfInputMatcher) String() string {
	return "EOF"
}
