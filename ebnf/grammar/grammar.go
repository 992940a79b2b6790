// Package grammar turns EBNF grammars (in the notation of
// golang.org/x/exp/ebnf) into parser rules.
//
// Productions whose names start with an upper case letter become
// *parser.Rule values. Productions whose names start with a lower case letter
// are lexical: they describe tokens, are recognized by Scanner, and are
// referenced from syntactic productions as token types. A name without a
// production refers to one of the predefined token types of the ast package
// (IDENTIFIER, STRING, ...) or to EOF, the end of input.
//
//	CompilationUnit = PackageDeclaration { ImportDeclaration } EOF .
//	PackageDeclaration = "package" QualifiedName ";" .
//	QualifiedName = IDENTIFIER { "." IDENTIFIER } .
package grammar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/packrat/ast"
	"github.com/dhamidi/packrat/parser"
)

var log = commonlog.GetLogger("packrat.grammar")

var (
	// ErrUndefinedName is returned for a name that is neither a production
	// nor a known token type.
	ErrUndefinedName = errors.New("undefined name")
	// ErrUnsupportedExpression is returned for expressions that have no
	// meaning over tokens, such as character ranges in syntactic productions.
	ErrUnsupportedExpression = errors.New("unsupported expression")
)

// EOF is the name that matches the end of input.
const EOF = "EOF"

// Grammar is a compiled EBNF grammar.
type Grammar struct {
	source     ebnf.Grammar
	rules      map[string]*parser.Rule
	tokenTypes map[string]*ast.NodeType
	lexical    []string // lexical productions used as tokens
	literals   []string
}

type Option func(*compiler)

// WithSkipped marks the named productions as skipped from the tree.
func WithSkipped(names ...string) Option {
	return func(c *compiler) {
		for _, name := range names {
			c.skipped[name] = true
		}
	}
}

// WithTokenType makes name refer to typ wherever the grammar has no
// production called name.
func WithTokenType(name string, typ *ast.NodeType) Option {
	return func(c *compiler) {
		c.tokenTypes[name] = typ
	}
}

type compiler struct {
	source     ebnf.Grammar
	skipped    map[string]bool
	tokenTypes map[string]*ast.NodeType
	rules      map[string]*parser.Rule
	literals   map[string]bool
	used       map[string]bool
	errs       []error
}

// Load parses an EBNF grammar from r and compiles it.
func Load(filename string, r io.Reader, opts ...Option) (*Grammar, error) {
	source, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return Compile(source, opts...)
}

// LoadFile is Load for the file at path.
func LoadFile(path string, opts ...Option) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Load(path, f, opts...)
}

// Compile builds a rule for every syntactic production of source. All
// problems are reported together.
func Compile(source ebnf.Grammar, opts ...Option) (*Grammar, error) {
	c := &compiler{
		source:     source,
		skipped:    make(map[string]bool),
		tokenTypes: make(map[string]*ast.NodeType),
		rules:      make(map[string]*parser.Rule),
		literals:   make(map[string]bool),
		used:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	names := sortedNames(source)
	for _, name := range names {
		if IsLexical(name) {
			c.tokenTypes[name] = &ast.NodeType{Name: name}
			continue
		}
		r := parser.NewRule(name)
		if c.skipped[name] {
			r.SkipFromTree()
		}
		c.rules[name] = r
	}

	for _, name := range names {
		if IsLexical(name) {
			continue
		}
		prod := source[name]
		body := parser.Sequence()
		if prod.Expr != nil {
			body = c.compile(prod.Expr)
		}
		c.rules[name].Is(body)
	}

	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}

	g := &Grammar{
		source:     source,
		rules:      c.rules,
		tokenTypes: c.tokenTypes,
	}
	for _, name := range names {
		if c.used[name] && source[name].Expr != nil {
			g.lexical = append(g.lexical, name)
		}
	}
	for lit := range c.literals {
		g.literals = append(g.literals, lit)
	}
	sort.Strings(g.literals)
	log.Debugf("compiled %d rules and %d token types", len(g.rules), len(g.tokenTypes))
	return g, nil
}

func (c *compiler) compile(expr ebnf.Expression) parser.Matcher {
	switch e := expr.(type) {
	case ebnf.Alternative:
		return parser.FirstOf(c.compileAll(e)...)
	case ebnf.Sequence:
		return parser.Sequence(c.compileAll(e)...)
	case *ebnf.Group:
		return c.compile(e.Body)
	case *ebnf.Option:
		return parser.Optional(c.compile(e.Body))
	case *ebnf.Repetition:
		return parser.ZeroOrMore(c.compile(e.Body))
	case *ebnf.Token:
		c.literals[e.String] = true
		return parser.Value(e.String)
	case *ebnf.Name:
		return c.name(e)
	case *ebnf.Range:
		c.errs = append(c.errs, fmt.Errorf("%s: %w: range %q ... %q outside a lexical production",
			e.Pos(), ErrUnsupportedExpression, e.Begin.String, e.End.String))
	default:
		c.errs = append(c.errs, fmt.Errorf("%s: %w: %T", expr.Pos(), ErrUnsupportedExpression, expr))
	}
	return parser.Sequence()
}

func (c *compiler) compileAll(exprs []ebnf.Expression) []parser.Matcher {
	ms := make([]parser.Matcher, len(exprs))
	for i, expr := range exprs {
		ms[i] = c.compile(expr)
	}
	return ms
}

func (c *compiler) name(n *ebnf.Name) parser.Matcher {
	if r, ok := c.rules[n.String]; ok {
		return r
	}
	if typ, ok := c.tokenTypes[n.String]; ok {
		if _, ok := c.source[n.String]; ok {
			c.used[n.String] = true
		}
		return parser.Type(typ)
	}
	if n.String == EOF {
		return parser.EndOfInput()
	}
	if typ, ok := ast.LookupTokenType(n.String); ok {
		return parser.Type(typ)
	}
	c.errs = append(c.errs, fmt.Errorf("%s: %w %s", n.Pos(), ErrUndefinedName, n.String))
	return parser.Sequence()
}

// IsLexical reports whether name denotes a lexical production.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return ch != utf8.RuneError && !unicode.IsUpper(ch)
}

func sortedNames(source ebnf.Grammar) []string {
	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rule returns the rule compiled from the named production.
func (g *Grammar) Rule(name string) (*parser.Rule, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// RuleNames returns the names of all compiled rules in sorted order.
func (g *Grammar) RuleNames() []string {
	names := make([]string, 0, len(g.rules))
	for name := range g.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TokenType returns the node type of the named lexical production.
func (g *Grammar) TokenType(name string) (*ast.NodeType, bool) {
	typ, ok := g.tokenTypes[name]
	return typ, ok
}

// HasLexical reports whether the grammar has lexical productions, in which
// case its own Scanner should produce the tokens.
func (g *Grammar) HasLexical() bool {
	return len(g.lexical) > 0
}

// Literals returns the quoted strings of the syntactic productions.
func (g *Grammar) Literals() []string {
	return g.literals
}

// Verify checks that every production is reachable from start and every
// name is defined, using ebnf.Verify.
func (g *Grammar) Verify(start string) error {
	return ebnf.Verify(g.source, start)
}
