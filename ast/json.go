package ast

import "encoding/json"

type jsonNode struct {
	Type     string      `json:"type"`
	Name     string      `json:"name,omitempty"`
	Range    *jsonRange  `json:"range,omitempty"`
	Token    *jsonToken  `json:"token,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type jsonToken struct {
	Value    string `json:"value"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	CopyBook string `json:"copyBook,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{
		Type: n.Type.String(),
	}
	if n.Name != jn.Type {
		jn.Name = n.Name
	}
	if n.ToIndex > n.FromIndex {
		jn.Range = &jsonRange{From: n.FromIndex, To: n.ToIndex}
	}
	if n.Token != nil {
		jn.Token = &jsonToken{
			Value:    n.Token.Value,
			Line:     n.Token.Line,
			Column:   n.Token.Column,
			CopyBook: n.Token.CopyBookFile,
		}
	}
	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON()
		}
	}
	return jn
}
