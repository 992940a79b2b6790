package ast

import (
	"fmt"
	"strings"
)

// Node is a node of the abstract syntax tree. A node owns its children; the
// parent link and child index are only kept for navigation.
type Node struct {
	Type      *NodeType
	Name      string
	Token     *Token
	Children  []*Node
	FromIndex int
	ToIndex   int

	parent     *Node
	childIndex int
}

// NewNode creates a composite node. tok may be nil.
func NewNode(typ *NodeType, name string, tok *Token) *Node {
	return &Node{Type: typ, Name: name, Token: tok, childIndex: -1}
}

// NewTokenNode creates a leaf node typed and named after its token.
func NewTokenNode(tok *Token) *Node {
	return NewNode(tok.Type, tok.Type.String(), tok)
}

func (n *Node) Parent() *Node {
	return n.parent
}

// SkippedFromTree reports whether the node is replaced by its children when
// attached to a parent. Nodes without a type are always skipped.
func (n *Node) SkippedFromTree() bool {
	return n.Type == nil || n.Type.SkipFromTree
}

// AddChild attaches child. A nil child is ignored and a skipped child is
// replaced by its own children, which were already flattened when it was
// built.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	if child.SkippedFromTree() {
		for _, sub := range child.Children {
			n.appendChild(sub)
		}
		return
	}
	n.appendChild(child)
}

// Relink points the parent link and child index of every node below n at
// the node that holds it. A subtree reused from several places keeps the
// links of the place it was attached to last.
func (n *Node) Relink() {
	for i, child := range n.Children {
		child.parent = n
		child.childIndex = i
		child.Relink()
	}
}

// Clone returns a deep copy of n that is not attached to a parent. Tokens
// are shared.
func (n *Node) Clone() *Node {
	c := *n
	c.parent = nil
	c.childIndex = -1
	c.Children = nil
	for _, child := range n.Children {
		c.appendChild(child.Clone())
	}
	return &c
}

func (n *Node) appendChild(child *Node) {
	n.Children = append(n.Children, child)
	child.childIndex = len(n.Children) - 1
	child.parent = n
}

func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

func (n *Node) NumChildren() int {
	return len(n.Children)
}

// Child returns the child at index and panics when there is none.
func (n *Node) Child(index int) *Node {
	if index < 0 || index >= len(n.Children) {
		panic(fmt.Sprintf("ast: node %q has only %d children, requested child index is wrong: %d", n.Name, len(n.Children), index))
	}
	return n.Children[index]
}

func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

func (n *Node) NextSibling() *Node {
	if n.parent == nil || n.childIndex+1 >= len(n.parent.Children) {
		return nil
	}
	return n.parent.Children[n.childIndex+1]
}

func (n *Node) PreviousSibling() *Node {
	if n.parent == nil || n.childIndex <= 0 {
		return nil
	}
	return n.parent.Children[n.childIndex-1]
}

// NextAstNode returns the next sibling, or the next AST node of the closest
// ancestor that has one.
func (n *Node) NextAstNode() *Node {
	if next := n.NextSibling(); next != nil {
		return next
	}
	if n.parent != nil {
		return n.parent.NextAstNode()
	}
	return nil
}

// PreviousAstNode mirrors NextAstNode.
func (n *Node) PreviousAstNode() *Node {
	if prev := n.PreviousSibling(); prev != nil {
		return prev
	}
	if n.parent != nil {
		return n.parent.PreviousAstNode()
	}
	return nil
}

func (n *Node) Is(types ...*NodeType) bool {
	for _, t := range types {
		if n.Type == t {
			return true
		}
	}
	return false
}

func (n *Node) IsNot(types ...*NodeType) bool {
	return !n.Is(types...)
}

func (n *Node) FindFirstDirectChild(types ...*NodeType) *Node {
	for _, child := range n.Children {
		if child.Is(types...) {
			return child
		}
	}
	return nil
}

func (n *Node) FindDirectChildren(types ...*NodeType) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Is(types...) {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) HasDirectChildren(types ...*NodeType) bool {
	return n.FindFirstDirectChild(types...) != nil
}

// FindFirstDescendant searches depth first, in document order, excluding n.
func (n *Node) FindFirstDescendant(types ...*NodeType) *Node {
	for _, child := range n.Children {
		if child.Is(types...) {
			return child
		}
		if found := child.FindFirstDescendant(types...); found != nil {
			return found
		}
	}
	return nil
}

// FindDescendants returns every descendant of one of types in document
// order. Like FindFirstDescendant it does not consider n itself.
func (n *Node) FindDescendants(types ...*NodeType) []*Node {
	var result []*Node
	for _, child := range n.Children {
		child.walk(func(node *Node) {
			if node.Is(types...) {
				result = append(result, node)
			}
		})
	}
	return result
}

func (n *Node) HasDescendant(types ...*NodeType) bool {
	return n.FindFirstDescendant(types...) != nil
}

func (n *Node) FindFirstAncestor(typ *NodeType) *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.Type == typ {
			return p
		}
	}
	return nil
}

func (n *Node) HasAncestor(typ *NodeType) bool {
	return n.FindFirstAncestor(typ) != nil
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.walk(fn)
	}
}

// Tokens returns the tokens of the leaves under n.
func (n *Node) Tokens() []*Token {
	var tokens []*Token
	n.walk(func(node *Node) {
		if !node.HasChildren() && node.Token != nil {
			tokens = append(tokens, node.Token)
		}
	})
	return tokens
}

func (n *Node) LastToken() *Token {
	last := n
	for last.LastChild() != nil {
		last = last.LastChild()
	}
	return last.Token
}

func (n *Node) HasToken() bool {
	return n.Token != nil
}

func (n *Node) TokenValue() string {
	if n.Token == nil {
		return ""
	}
	return n.Token.Value
}

func (n *Node) TokenOriginalValue() string {
	if n.Token == nil {
		return ""
	}
	return n.Token.OriginalValue
}

// TokenLine panics when the node has no token.
func (n *Node) TokenLine() int {
	if n.Token == nil {
		panic(fmt.Sprintf("ast: node %q has no token", n.Name))
	}
	return n.Token.Line
}

func (n *Node) IsCopyBookOrGenerated() bool {
	if n.Token == nil {
		return false
	}
	return n.Token.IsCopyBook() || n.Token.GeneratedCode
}

func (n *Node) String() string {
	var sb strings.Builder
	sb.WriteString(n.Name)
	if n.Token != nil {
		fmt.Fprintf(&sb, " token='%s' line=%d column=%d uri='%s'", n.Token.Value, n.Token.Line, n.Token.Column, n.Token.URI)
	}
	return sb.String()
}

// StringTree renders n and its descendants, one node per line.
func (n *Node) StringTree() string {
	var sb strings.Builder
	n.writeTree(&sb, 0)
	return sb.String()
}

func (n *Node) writeTree(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Name)
	if n.Token != nil {
		sb.WriteString(" ")
		sb.WriteString(n.Token.Value)
	}
	sb.WriteString("\n")
	for _, child := range n.Children {
		child.writeTree(sb, indent+1)
	}
}
