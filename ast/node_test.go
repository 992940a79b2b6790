package ast

import (
	"encoding/json"
	"strings"
	"testing"
)

func newType(skip bool) *NodeType {
	return &NodeType{Name: "type", SkipFromTree: skip}
}

func TestNodeAddChild(t *testing.T) {
	expr := NewNode(newType(false), "expr", nil)
	stat := NewNode(newType(false), "stat", nil)
	assign := NewNode(newType(false), "assign", nil)

	expr.AddChild(stat)
	expr.AddChild(assign)
	expr.AddChild(nil)

	if len(expr.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(expr.Children))
	}
	if expr.Child(0) != stat || expr.Child(1) != assign {
		t.Error("Children mismatch")
	}
	if stat.Parent() != expr || assign.Parent() != expr {
		t.Error("Parent not set")
	}
}

func TestNodeAddSkippedChild(t *testing.T) {
	expr := NewNode(newType(false), "expr", nil)
	all := NewNode(newType(true), "all", nil)
	stat := NewNode(newType(false), "stat", nil)
	all.AddChild(stat)
	expr.AddChild(all)

	many := NewNode(newType(true), "many", nil)
	printNode := NewNode(newType(false), "print", nil)
	many.AddChild(printNode)
	expr.AddChild(many)

	if len(expr.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(expr.Children))
	}
	if expr.Children[0] != stat || expr.Children[1] != printNode {
		t.Errorf("Expected [stat print], got %v", expr.Children)
	}
	if stat.Parent() != expr {
		t.Error("Spliced child should point to its new parent")
	}
	if printNode.PreviousSibling() != stat {
		t.Error("Spliced children should be siblings")
	}
}

func TestNodeAddNestedSkippedChildren(t *testing.T) {
	parent := NewNode(newType(false), "parent", nil)
	outer := NewNode(newType(true), "outer", nil)
	inner := NewNode(newType(true), "inner", nil)
	c1 := NewNode(newType(false), "c1", nil)
	c2 := NewNode(newType(false), "c2", nil)
	c3 := NewNode(newType(false), "c3", nil)

	inner.AddChild(c1)
	inner.AddChild(c2)
	outer.AddChild(inner)
	outer.AddChild(c3)
	parent.AddChild(outer)

	var names []string
	for _, child := range parent.Children {
		names = append(names, child.Name)
	}
	if got := strings.Join(names, " "); got != "c1 c2 c3" {
		t.Errorf("Children = %q, want %q", got, "c1 c2 c3")
	}
}

func TestNodeAddSkippedChildWithoutChildren(t *testing.T) {
	expr := NewNode(newType(false), "expr", nil)
	expr.AddChild(NewNode(newType(true), "all", nil))
	expr.AddChild(NewNode(nil, "untyped", nil))

	if expr.HasChildren() {
		t.Errorf("Expected no children, got %d", expr.NumChildren())
	}
}

func TestNodeSiblings(t *testing.T) {
	statement := NewNode(newType(false), "statement", nil)
	expr1 := NewNode(newType(false), "expr1", nil)
	expr2 := NewNode(newType(false), "expr2", nil)
	expr3 := NewNode(newType(false), "expr3", nil)
	statement.AddChild(expr1)
	statement.AddChild(expr2)
	statement.AddChild(expr3)

	tests := []struct {
		node       *Node
		prev, next *Node
	}{
		{expr1, nil, expr2},
		{expr2, expr1, expr3},
		{expr3, expr2, nil},
		{statement, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.node.Name, func(t *testing.T) {
			if got := tt.node.PreviousSibling(); got != tt.prev {
				t.Errorf("PreviousSibling() = %v, want %v", got, tt.prev)
			}
			if got := tt.node.NextSibling(); got != tt.next {
				t.Errorf("NextSibling() = %v, want %v", got, tt.next)
			}
		})
	}
}

func TestNodeNextAndPreviousAstNode(t *testing.T) {
	root := NewNode(newType(false), "root", nil)
	a := NewNode(newType(false), "a", nil)
	b := NewNode(newType(false), "b", nil)
	a1 := NewNode(newType(false), "a1", nil)
	b1 := NewNode(newType(false), "b1", nil)
	a.AddChild(a1)
	b.AddChild(b1)
	root.AddChild(a)
	root.AddChild(b)

	if got := a1.NextAstNode(); got != b {
		t.Errorf("a1.NextAstNode() = %v, want b", got)
	}
	if got := b1.PreviousAstNode(); got != a {
		t.Errorf("b1.PreviousAstNode() = %v, want a", got)
	}
	if got := b1.NextAstNode(); got != nil {
		t.Errorf("b1.NextAstNode() = %v, want nil", got)
	}
	if got := root.PreviousAstNode(); got != nil {
		t.Errorf("root.PreviousAstNode() = %v, want nil", got)
	}
}

func TestNodeFind(t *testing.T) {
	exprType := newType(false)
	statType := newType(false)
	identType := newType(false)

	expr := NewNode(exprType, "expr", nil)
	stat := NewNode(statType, "stat", nil)
	nested := NewNode(identType, "nested", nil)
	ident := NewNode(identType, "ident", nil)
	stat.AddChild(nested)
	expr.AddChild(stat)
	expr.AddChild(ident)

	if got := expr.FindFirstDirectChild(identType); got != ident {
		t.Errorf("FindFirstDirectChild = %v, want ident", got)
	}
	if got := expr.FindFirstDescendant(identType); got != nested {
		t.Errorf("FindFirstDescendant = %v, want nested", got)
	}
	if got := expr.FindDirectChildren(identType, statType); len(got) != 2 {
		t.Errorf("FindDirectChildren returned %d nodes, want 2", len(got))
	}
	if got := expr.FindDescendants(identType, exprType); len(got) != 2 || got[0] != nested || got[1] != ident {
		t.Errorf("FindDescendants = %v, want [nested ident]", got)
	}
	if got := stat.FindDescendants(statType); len(got) != 0 {
		t.Errorf("FindDescendants included the node itself: %v", got)
	}
	if !expr.HasDescendant(identType) || expr.HasDescendant(newType(false)) {
		t.Error("HasDescendant mismatch")
	}
	if !expr.HasDirectChildren(statType) {
		t.Error("HasDirectChildren mismatch")
	}
	if got := nested.FindFirstAncestor(exprType); got != expr {
		t.Errorf("FindFirstAncestor = %v, want expr", got)
	}
	if nested.HasAncestor(identType) {
		t.Error("nested should not have an ident ancestor")
	}
	if got := expr.LastChild(); got != ident {
		t.Errorf("LastChild = %v, want ident", got)
	}
}

func TestNodeRelink(t *testing.T) {
	shared := NewNode(newType(false), "shared", nil)
	leaf := NewNode(newType(false), "leaf", nil)
	shared.AddChild(leaf)

	kept := NewNode(newType(false), "kept", nil)
	kept.AddChild(shared)
	abandoned := NewNode(newType(false), "abandoned", nil)
	abandoned.AddChild(NewNode(newType(false), "other", nil))
	abandoned.AddChild(shared)

	if shared.Parent() != abandoned {
		t.Fatal("the last attachment should own the links")
	}
	kept.Relink()
	if shared.Parent() != kept || shared.PreviousSibling() != nil {
		t.Errorf("shared.Parent() = %v, want kept", shared.Parent())
	}
	if leaf.Parent() != shared {
		t.Errorf("leaf.Parent() = %v, want shared", leaf.Parent())
	}
}

func TestNodeClone(t *testing.T) {
	tok := &Token{Type: Identifier, Value: "a"}
	root := NewNode(newType(false), "root", nil)
	child := NewTokenNode(tok)
	root.AddChild(child)
	parent := NewNode(newType(false), "parent", nil)
	parent.AddChild(root)

	c := root.Clone()
	if c == root || c.Parent() != nil {
		t.Fatal("clone should be a new, detached node")
	}
	if c.NumChildren() != 1 || c.Child(0) == child {
		t.Fatal("children should be copied")
	}
	if c.Child(0).Parent() != c || c.Child(0).Token != tok {
		t.Error("copied child should point at the clone and share the token")
	}
	if child.Parent() != root || root.Parent() != parent {
		t.Error("cloning changed the original")
	}
}

func TestNodeTokens(t *testing.T) {
	a := &Token{Type: Identifier, Value: "a", Line: 1}
	b := &Token{Type: Identifier, Value: "b", Line: 2}
	root := NewNode(newType(false), "root", nil)
	root.AddChild(NewTokenNode(a))
	inner := NewNode(newType(false), "inner", nil)
	inner.AddChild(NewTokenNode(b))
	root.AddChild(inner)

	tokens := root.Tokens()
	if len(tokens) != 2 || tokens[0] != a || tokens[1] != b {
		t.Errorf("Tokens() = %v", tokens)
	}
	if root.LastToken() != b {
		t.Error("LastToken mismatch")
	}
	if got := root.Child(0).TokenLine(); got != 1 {
		t.Errorf("TokenLine() = %d, want 1", got)
	}
	if got := root.Child(0).Name; got != "IDENTIFIER" {
		t.Errorf("token node name = %q, want IDENTIFIER", got)
	}
}

func TestNodeMisuse(t *testing.T) {
	node := NewNode(newType(false), "node", nil)

	assertPanics(t, "Child", func() { node.Child(0) })
	assertPanics(t, "TokenLine", func() { node.TokenLine() })
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestNodeMarshalJSON(t *testing.T) {
	ruleType := &NodeType{Name: "packageDecl"}
	root := NewNode(ruleType, "packageDecl", nil)
	root.FromIndex, root.ToIndex = 0, 1
	root.AddChild(NewTokenNode(&Token{Type: Keyword, Value: "package", Line: 1}))

	data, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"type":"packageDecl","range":{"from":0,"to":1},"children":[{"type":"KEYWORD","token":{"value":"package","line":1,"column":0}}]}`
	if string(data) != want {
		t.Errorf("JSON = %s\nwant   %s", data, want)
	}
}
