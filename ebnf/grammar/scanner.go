package grammar

import (
	"bytes"
	"slices"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/packrat/ast"
)

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// Scanner tokenizes input with the lexical productions that the syntactic
// productions of a grammar refer to, and with their literals. At every
// position the longest match wins; on a tie literals win over lexical
// productions, and lexical productions are tried in name order.
type Scanner struct {
	g        *Grammar
	input    []byte
	uri      string
	pos      int
	line     int
	column   int
	ignored  map[string]bool
	tokens   []string
	memo     map[memoKey]int  // match length, -1 = no match
	visiting map[memoKey]bool // left recursion guard
}

type ScanOption func(*Scanner)

// WithIgnored drops tokens of the named lexical productions, typically
// comments.
func WithIgnored(names ...string) ScanOption {
	return func(s *Scanner) {
		for _, name := range names {
			s.ignored[name] = true
		}
	}
}

func (g *Grammar) NewScanner(input []byte, uri string, opts ...ScanOption) *Scanner {
	s := &Scanner{
		g:        g,
		input:    input,
		uri:      uri,
		line:     1,
		ignored:  make(map[string]bool),
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tokens = append(s.tokens, g.lexical...)
	for _, name := range sortedKeys(s.ignored) {
		if prod, ok := g.source[name]; ok && prod.Expr != nil && !slices.Contains(s.tokens, name) {
			s.tokens = append(s.tokens, name)
		}
	}
	return s
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scan tokenizes input completely.
func (g *Grammar) Scan(input []byte, uri string, opts ...ScanOption) []*ast.Token {
	return g.NewScanner(input, uri, opts...).Tokenize()
}

func (s *Scanner) advance() {
	if s.pos >= len(s.input) {
		return
	}
	r, size := utf8.DecodeRune(s.input[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.column = 0
	} else {
		s.column += size
	}
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.input) {
		r, _ := utf8.DecodeRune(s.input[s.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		s.advance()
	}
}

// NextToken returns the next token, or nil at end of input. Input that no
// production matches comes back one character at a time as UNKNOWN_CHAR.
func (s *Scanner) NextToken() *ast.Token {
	for {
		s.skipSpace()
		if s.pos >= len(s.input) {
			return nil
		}
		tok := s.scanOne()
		if s.ignored[tok.Type.Name] {
			continue
		}
		return tok
	}
}

func (s *Scanner) scanOne() *ast.Token {
	start := s.pos
	line, column := s.line, s.column

	// positions of the previous token are never revisited
	clear(s.memo)

	bestLen := 0
	var bestType *ast.NodeType
	for _, lit := range s.g.literals {
		if len(lit) > bestLen && bytes.HasPrefix(s.input[start:], []byte(lit)) {
			bestLen = len(lit)
			bestType = literalType(lit)
		}
	}
	for _, name := range s.tokens {
		clear(s.visiting)
		if n := s.match(s.g.source[name].Expr, start); n > bestLen {
			bestLen = n
			bestType = s.tokenType(name)
		}
	}

	if bestLen == 0 {
		_, size := utf8.DecodeRune(s.input[start:])
		bestLen = size
		bestType = ast.UnknownChar
	}
	for s.pos < start+bestLen {
		s.advance()
	}
	value := string(s.input[start : start+bestLen])
	return &ast.Token{
		Type:          bestType,
		Value:         value,
		OriginalValue: value,
		Line:          line,
		Column:        column,
		URI:           s.uri,
	}
}

func (s *Scanner) tokenType(name string) *ast.NodeType {
	if typ, ok := s.g.tokenTypes[name]; ok {
		return typ
	}
	return &ast.NodeType{Name: name}
}

func literalType(lit string) *ast.NodeType {
	r, _ := utf8.DecodeRuneInString(lit)
	if unicode.IsLetter(r) {
		return ast.Keyword
	}
	return ast.Punctuator
}

// Tokenize reads all tokens from input.
func (s *Scanner) Tokenize() []*ast.Token {
	var tokens []*ast.Token
	for tok := s.NextToken(); tok != nil; tok = s.NextToken() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// match returns the length of the longest match of expr at offset; 0 means
// no match.
func (s *Scanner) match(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		if bytes.HasPrefix(s.input[offset:], []byte(e.String)) {
			return len(e.String)
		}
		return 0

	case *ebnf.Range:
		return s.matchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := s.match(item, offset+total)
			if n == 0 && !nullable(item) {
				return 0
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := 0
		for _, alt := range e {
			if n := s.match(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := s.match(e.Body, offset+total)
			if n == 0 {
				break
			}
			total += n
		}
		return total

	case *ebnf.Option:
		return s.match(e.Body, offset)

	case *ebnf.Group:
		return s.match(e.Body, offset)

	case *ebnf.Name:
		return s.matchName(e.String, offset)
	}
	return 0
}

// nullable reports whether expr may match nothing, so that a zero length
// match of it does not fail the enclosing sequence.
func nullable(expr ebnf.Expression) bool {
	switch e := expr.(type) {
	case *ebnf.Option, *ebnf.Repetition:
		return true
	case *ebnf.Group:
		return nullable(e.Body)
	}
	return false
}

func (s *Scanner) matchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}
	if n, ok := s.memo[key]; ok {
		if n == -1 {
			return 0
		}
		return n
	}
	if s.visiting[key] {
		return 0
	}

	prod, ok := s.g.source[name]
	if !ok || prod.Expr == nil {
		s.memo[key] = -1
		return 0
	}

	s.visiting[key] = true
	n := s.match(prod.Expr, offset)
	delete(s.visiting, key)

	if n == 0 {
		s.memo[key] = -1
	} else {
		s.memo[key] = n
	}
	return n
}

func (s *Scanner) matchRange(begin, end string, offset int) int {
	if offset >= len(s.input) {
		return 0
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	r, size := utf8.DecodeRune(s.input[offset:])
	if r >= lo && r <= hi {
		return size
	}
	return 0
}
