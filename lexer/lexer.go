// Package lexer turns source text into the token sequence consumed by the
// parser package. It understands C-family lexical structure: identifiers,
// numbers, string and character literals, line and block comments and a
// configurable set of punctuators and keywords.
package lexer

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/packrat/ast"
)

const bom = "\uFEFF"

// DefaultPunctuators are the Java operators and separators.
var DefaultPunctuators = []string{
	"(", ")", "{", "}", "[", "]", ";", ",", ".", "...", "@", "::",
	"=", "==", "!=", "<", "<=", ">", ">=", "&&", "||", "!",
	"&", "|", "^", "~", "<<", ">>", ">>>",
	"+", "-", "*", "/", "%", "++", "--", "?", ":", "->",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=", ">>>=",
}

// JavaKeywords is a ready-made keyword set for WithKeywords.
var JavaKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while",
}

type Option func(*Lexer)

// WithKeywords makes the given identifiers lex as ast.Keyword tokens.
func WithKeywords(words ...string) Option {
	return func(l *Lexer) {
		for _, w := range words {
			l.keywords[w] = true
		}
	}
}

// WithPunctuators replaces the punctuator set.
func WithPunctuators(punctuators ...string) Option {
	return func(l *Lexer) {
		l.punctuators = append([]string(nil), punctuators...)
	}
}

// WithStartLine sets the line number of the first input line.
func WithStartLine(line int) Option {
	return func(l *Lexer) {
		l.line = line
	}
}

type Lexer struct {
	input       []byte
	uri         string
	pos         int
	line        int
	column      int
	keywords    map[string]bool
	punctuators []string
}

func New(input []byte, uri string, opts ...Option) *Lexer {
	l := &Lexer{
		input:       input,
		uri:         uri,
		line:        1,
		keywords:    make(map[string]bool),
		punctuators: DefaultPunctuators,
	}
	for _, opt := range opts {
		opt(l)
	}
	// Longest punctuators first so scanPunctuator finds the longest match.
	l.punctuators = append([]string(nil), l.punctuators...)
	sort.SliceStable(l.punctuators, func(i, j int) bool {
		return len(l.punctuators[i]) > len(l.punctuators[j])
	})
	if strings.HasPrefix(string(input), bom) {
		l.pos = len(bom)
	}
	return l
}

// Lex is a convenience wrapper around New and Tokenize.
func Lex(source, uri string, opts ...Option) []*ast.Token {
	return New([]byte(source), uri, opts...).Tokenize()
}

// Tokenize returns every remaining token. Whitespace and comments are
// dropped; the sequence does not end with an EOF token.
func (l *Lexer) Tokenize() []*ast.Token {
	var tokens []*ast.Token
	for {
		tok := l.NextToken()
		if tok == nil {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// NextToken returns the next significant token, or nil at end of input.
func (l *Lexer) NextToken() *ast.Token {
	for l.skipTrivia() {
	}
	if l.pos >= len(l.input) {
		return nil
	}

	line, column, start := l.line, l.column, l.pos
	typ := l.scan()
	literal := string(l.input[start:l.pos])
	return &ast.Token{
		Type:          typ,
		Value:         literal,
		OriginalValue: literal,
		Line:          line,
		Column:        column,
		URI:           l.uri,
	}
}

func (l *Lexer) scan() *ast.NodeType {
	ch := l.peek()
	switch {
	case isLetter(ch):
		return l.scanIdentOrKeyword()
	case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber()
	case ch == '\'':
		l.scanQuoted('\'')
		return ast.CharacterLiteral
	case ch == '"':
		l.scanQuoted('"')
		return ast.StringLiteral
	}
	if l.scanPunctuator() {
		return ast.Punctuator
	}
	_, size := utf8.DecodeRune(l.input[l.pos:])
	l.advanceN(size)
	return ast.UnknownChar
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// skipTrivia consumes one run of whitespace or one comment.
func (l *Lexer) skipTrivia() bool {
	ch := l.peek()
	switch {
	case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f':
		for {
			ch = l.peek()
			if ch != ' ' && ch != '\t' && ch != '\r' && ch != '\n' && ch != '\f' {
				return true
			}
			l.advance()
		}
	case ch == '/' && l.peekN(1) == '/':
		for l.peek() != 0 && l.peek() != '\n' {
			l.advance()
		}
		return true
	case ch == '/' && l.peekN(1) == '*':
		l.advanceN(2)
		for l.pos < len(l.input) {
			if l.peek() == '*' && l.peekN(1) == '/' {
				l.advanceN(2)
				break
			}
			l.advance()
		}
		return true
	}
	return false
}

func (l *Lexer) scanIdentOrKeyword() *ast.NodeType {
	start := l.pos
	for isLetterOrDigit(l.peek()) {
		l.advance()
	}
	if l.keywords[string(l.input[start:l.pos])] {
		return ast.Keyword
	}
	return ast.Identifier
}

func (l *Lexer) scanNumber() *ast.NodeType {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		if l.peek() == 'l' || l.peek() == 'L' {
			l.advance()
		}
		return ast.IntegerLiteral
	}

	isFloat := false
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	switch l.peek() {
	case 'f', 'F', 'd', 'D':
		isFloat = true
		l.advance()
	case 'l', 'L':
		l.advance()
	}
	if isFloat {
		return ast.FloatLiteral
	}
	return ast.IntegerLiteral
}

// scanQuoted consumes a quoted literal, stopping at the closing quote or the
// end of the line.
func (l *Lexer) scanQuoted(quote byte) {
	l.advance()
	for l.peek() != 0 && l.peek() != quote && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.peek() == quote {
		l.advance()
	}
}

func (l *Lexer) scanPunctuator() bool {
	rest := l.input[l.pos:]
	for _, p := range l.punctuators {
		if len(p) <= len(rest) && string(rest[:len(p)]) == p {
			l.advanceN(len(p))
			return true
		}
	}
	return false
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// isLetter accepts every non-ASCII byte so that multi-byte identifiers stay
// in one token.
func isLetter(ch byte) bool {
	if ch >= utf8.RuneSelf {
		return true
	}
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isLetterOrDigit(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}
