package ast

import "fmt"

// NodeType identifies a grammar rule or a token kind. Types are compared by
// pointer identity; Name is only used for display.
type NodeType struct {
	Name string

	// SkipFromTree makes AddChild splice the node's children into the parent
	// instead of the node itself.
	SkipFromTree bool
}

func (t *NodeType) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

// Anonymous is the type of nodes produced by combinators (sequences,
// repetitions, ...). It never survives into a parent's children.
var Anonymous = &NodeType{Name: "anonymous", SkipFromTree: true}

// Token types produced by the lexer package.
var (
	Identifier       = &NodeType{Name: "IDENTIFIER"}
	Keyword          = &NodeType{Name: "KEYWORD"}
	IntegerLiteral   = &NodeType{Name: "INTEGER"}
	FloatLiteral     = &NodeType{Name: "FLOAT"}
	StringLiteral    = &NodeType{Name: "STRING"}
	CharacterLiteral = &NodeType{Name: "CHARACTER"}
	Punctuator       = &NodeType{Name: "PUNCTUATOR"}
	UnknownChar      = &NodeType{Name: "UNKNOWN_CHAR"}
)

var tokenTypes = map[string]*NodeType{
	Identifier.Name:       Identifier,
	Keyword.Name:          Keyword,
	IntegerLiteral.Name:   IntegerLiteral,
	FloatLiteral.Name:     FloatLiteral,
	StringLiteral.Name:    StringLiteral,
	CharacterLiteral.Name: CharacterLiteral,
	Punctuator.Name:       Punctuator,
	UnknownChar.Name:      UnknownChar,
}

// LookupTokenType returns the predefined token type with the given name.
func LookupTokenType(name string) (*NodeType, bool) {
	t, ok := tokenTypes[name]
	return t, ok
}

// Token is a lexical token. Line is 1-based, Column is 0-based.
type Token struct {
	Type          *NodeType
	Value         string
	OriginalValue string
	Line          int
	Column        int
	URI           string

	// Set when the token was expanded from an included fragment.
	CopyBookFile string
	CopyBookLine int

	GeneratedCode bool
}

func (t *Token) IsCopyBook() bool {
	return t.CopyBookFile != ""
}

// Description renders the token as diagnostics show it: value [TYPE].
func (t *Token) Description() string {
	return fmt.Sprintf("%s [%s]", t.Value, t.Type)
}

func (t *Token) String() string {
	return fmt.Sprintf("%s:%d:%d %s", t.URI, t.Line, t.Column, t.Description())
}
