package parser

import (
	"fmt"

	"github.com/dhamidi/packrat/ast"
)

// Rule is a named, memoized matcher. Rules are declared first and given a
// body later with Is, which allows recursive grammars:
//
//	expr := NewRule("expr")
//	expr.Is(FirstOf(Sequence(Value("("), expr, Value(")")), Type(ast.Identifier)))
type Rule struct {
	typ  *ast.NodeType
	body Matcher
}

// NewRule creates a rule whose nodes have a fresh node type called name.
func NewRule(name string) *Rule {
	return &Rule{typ: &ast.NodeType{Name: name}}
}

// NewRuleOfType creates a rule producing nodes of typ. Rules sharing a type
// are still memoized separately.
func NewRuleOfType(typ *ast.NodeType) *Rule {
	return &Rule{typ: typ}
}

// Is sets the body of the rule. Several matchers form a sequence.
func (r *Rule) Is(ms ...Matcher) *Rule {
	if r.body != nil {
		panic(fmt.Sprintf("parser: rule %s is already defined", r.typ.Name))
	}
	if len(ms) == 0 {
		panic(fmt.Sprintf("parser: rule %s has an empty body", r.typ.Name))
	}
	r.body = Sequence(ms...)
	return r
}

// SkipFromTree makes the rule's nodes disappear from the tree; their
// children take their place.
func (r *Rule) SkipFromTree() *Rule {
	r.typ.SkipFromTree = true
	return r
}

func (r *Rule) Type() *ast.NodeType {
	return r.typ
}

func (r *Rule) Name() string {
	return r.typ.Name
}

func (r *Rule) String() string {
	return r.typ.Name
}

// Defined reports whether Is has been called.
func (r *Rule) Defined() bool {
	return r.body != nil
}

func (r *Rule) Match(s *State) Result {
	if r.body == nil {
		panic(fmt.Sprintf("parser: rule %s has no body", r.typ.Name))
	}
	start := s.cursor

	if node, end, hit := s.lookup(r, start); hit {
		if end < 0 {
			s.stats.NegativeMemoHits++
			return Failed
		}
		s.stats.MemoHits++
		s.cursor = end
		if end == start {
			// an empty match can be attached several times at one position
			node = node.Clone()
		}
		return Result{Node: node, End: end, Ok: true}
	}

	s.stats.RuleAttempts++
	s.enter(r, start)
	res := r.body.Match(s)
	s.leave()

	if !res.Ok {
		s.cursor = start
		s.memoizeFailure(r, start)
		return Failed
	}

	var first *ast.Token
	if res.End > start {
		first = s.Token(start)
	}
	node := ast.NewNode(r.typ, r.typ.Name, first)
	node.FromIndex = start
	node.ToIndex = res.End
	node.AddChild(res.Node)
	s.memoize(r, start, node, res.End)
	return Result{Node: node, End: res.End, Ok: true}
}
