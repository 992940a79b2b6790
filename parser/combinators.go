package parser

import (
	"fmt"
	"strings"

	"github.com/dhamidi/packrat/ast"
)

func describe(name string, ms []Matcher) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func anonymous(start, end int) *ast.Node {
	node := ast.NewNode(ast.Anonymous, ast.Anonymous.Name, nil)
	node.FromIndex, node.ToIndex = start, end
	return node
}

// Sequence matches ms one after the other. If any of them fails the cursor
// goes back to where the sequence started.
func Sequence(ms ...Matcher) Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return &sequenceMatcher{ms: ms}
}

type sequenceMatcher struct {
	ms []Matcher
}

func (m *sequenceMatcher) Match(s *State) Result {
	start := s.cursor
	var node *ast.Node
	for _, sub := range m.ms {
		r := sub.Match(s)
		if !r.Ok {
			s.cursor = start
			return Failed
		}
		if r.Node != nil {
			if node == nil {
				node = anonymous(start, start)
			}
			node.AddChild(r.Node)
		}
	}
	if node != nil {
		node.ToIndex = s.cursor
	}
	return Result{Node: node, End: s.cursor, Ok: true}
}

func (m *sequenceMatcher) String() string {
	return describe("sequence", m.ms)
}

// FirstOf tries ms in order and returns the result of the first one that
// matches.
func FirstOf(ms ...Matcher) Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return &firstOfMatcher{ms: ms}
}

type firstOfMatcher struct {
	ms []Matcher
}

func (m *firstOfMatcher) Match(s *State) Result {
	start := s.cursor
	for _, sub := range m.ms {
		if r := sub.Match(s); r.Ok {
			return r
		}
		s.cursor = start
	}
	return Failed
}

func (m *firstOfMatcher) String() string {
	return describe("firstOf", m.ms)
}

// Not succeeds when m fails. It never consumes input nor produces a node.
func Not(m Matcher) Matcher {
	return &notMatcher{m: m}
}

type notMatcher struct {
	m Matcher
}

func (m *notMatcher) Match(s *State) Result {
	start := s.cursor
	r := m.m.Match(s)
	s.cursor = start
	if r.Ok {
		return Failed
	}
	return Result{End: start, Ok: true}
}

func (m *notMatcher) String() string {
	return "not(" + m.m.String() + ")"
}

// Next succeeds when m matches, without consuming input.
func Next(m Matcher) Matcher {
	return &nextMatcher{m: m}
}

type nextMatcher struct {
	m Matcher
}

func (m *nextMatcher) Match(s *State) Result {
	start := s.cursor
	r := m.m.Match(s)
	s.cursor = start
	if !r.Ok {
		return Failed
	}
	return Result{End: start, Ok: true}
}

func (m *nextMatcher) String() string {
	return "next(" + m.m.String() + ")"
}

// Optional matches m or nothing.
func Optional(ms ...Matcher) Matcher {
	return &optionalMatcher{m: Sequence(ms...)}
}

type optionalMatcher struct {
	m Matcher
}

func (m *optionalMatcher) Match(s *State) Result {
	if r := m.m.Match(s); r.Ok {
		return r
	}
	return Result{End: s.cursor, Ok: true}
}

func (m *optionalMatcher) String() string {
	return "opt(" + m.m.String() + ")"
}

// ZeroOrMore matches m as many times as possible. A repetition that consumes
// nothing ends the loop.
func ZeroOrMore(ms ...Matcher) Matcher {
	return &repeatMatcher{m: Sequence(ms...), min: 0}
}

// OneOrMore is ZeroOrMore requiring at least one match.
func OneOrMore(ms ...Matcher) Matcher {
	return &repeatMatcher{m: Sequence(ms...), min: 1}
}

type repeatMatcher struct {
	m   Matcher
	min int
}

func (m *repeatMatcher) Match(s *State) Result {
	start := s.cursor
	var node *ast.Node
	count := 0
	for {
		before := s.cursor
		r := m.m.Match(s)
		if !r.Ok {
			break
		}
		count++
		if r.Node != nil {
			if node == nil {
				node = anonymous(start, start)
			}
			node.AddChild(r.Node)
		}
		if s.cursor == before {
			break
		}
	}
	if count < m.min {
		s.cursor = start
		return Failed
	}
	if node != nil {
		node.ToIndex = s.cursor
	}
	return Result{Node: node, End: s.cursor, Ok: true}
}

func (m *repeatMatcher) String() string {
	if m.min == 0 {
		return "zeroOrMore(" + m.m.String() + ")"
	}
	return "oneOrMore(" + m.m.String() + ")"
}

// Till consumes tokens up to and including the first match of ms.
func Till(ms ...Matcher) Matcher {
	end := Sequence(ms...)
	return &namedMatcher{
		name: "till(" + end.String() + ")",
		m:    Sequence(ZeroOrMore(Not(end), AnyToken()), end),
	}
}

// ExclusiveTill consumes tokens up to, but not including, the first token
// where any of ms matches.
func ExclusiveTill(ms ...Matcher) Matcher {
	end := FirstOf(ms...)
	return &namedMatcher{
		name: "exclusiveTill(" + end.String() + ")",
		m:    ZeroOrMore(Not(end), AnyToken()),
	}
}

type namedMatcher struct {
	name string
	m    Matcher
}

func (m *namedMatcher) Match(s *State) Result {
	return m.m.Match(s)
}

func (m *namedMatcher) String() string {
	return m.name
}

// Operator compares a token count with a threshold.
type Operator int

const (
	Equal Operator = iota
	LessThan
	GreaterThan
)

func (o Operator) String() string {
	switch o {
	case Equal:
		return "EQUAL"
	case LessThan:
		return "LESS_THAN"
	case GreaterThan:
		return "GREATER_THAN"
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

func (o Operator) holds(count, n int) bool {
	switch o {
	case Equal:
		return count == n
	case LessThan:
		return count < n
	case GreaterThan:
		return count > n
	}
	return false
}

// TokenCount matches ms and then checks the number of tokens they consumed
// against n. TokenCount(Equal, 2, Till(Value("b"))) matches "a b".
func TokenCount(op Operator, n int, ms ...Matcher) Matcher {
	return &tokenCountMatcher{op: op, n: n, m: Sequence(ms...)}
}

type tokenCountMatcher struct {
	op Operator
	n  int
	m  Matcher
}

func (m *tokenCountMatcher) Match(s *State) Result {
	start := s.cursor
	r := m.m.Match(s)
	if !r.Ok {
		return Failed
	}
	if !m.op.holds(s.cursor-start, m.n) {
		s.cursor = start
		return Failed
	}
	return r
}

func (m *tokenCountMatcher) String() string {
	return fmt.Sprintf("tokenCount(%s, %d)", m.op, m.n)
}

// Predicate succeeds, without consuming input, when fn returns true. Its
// answer may depend on anything, so rules that contain one should be
// wrapped in Fresh.
func Predicate(description string, fn func(s *State) bool) Matcher {
	return &predicateMatcher{description: description, fn: fn}
}

type predicateMatcher struct {
	description string
	fn          func(s *State) bool
}

func (m *predicateMatcher) Match(s *State) Result {
	if !m.fn(s) {
		return Failed
	}
	return Result{End: s.cursor, Ok: true}
}

func (m *predicateMatcher) String() string {
	return m.description
}

// Fresh purges memoized results from the cursor on before matching ms, so
// that results recorded under an earlier context are never reused.
func Fresh(ms ...Matcher) Matcher {
	return &freshMatcher{m: Sequence(ms...)}
}

type freshMatcher struct {
	m Matcher
}

func (m *freshMatcher) Match(s *State) Result {
	s.DeleteFrom(s.cursor)
	return m.m.Match(s)
}

func (m *freshMatcher) String() string {
	return "fresh(" + m.m.String() + ")"
}
