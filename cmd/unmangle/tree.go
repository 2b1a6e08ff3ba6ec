package main

import (
	"github.com/skdltmxn/unmangle-go/demangle"
)

// treeNode is the JSON form of a component tree node.
type treeNode struct {
	Kind     string     `json:"kind"`
	Text     string     `json:"text"`
	Children []treeNode `json:"children,omitempty"`
}

func newTreeNode(n demangle.Node) treeNode {
	t := treeNode{Kind: n.Kind().String(), Text: n.String()}
	for _, child := range children(n) {
		if child != nil {
			t.Children = append(t.Children, newTreeNode(child))
		}
	}
	return t
}

func children(n demangle.Node) []demangle.Node {
	switch n := n.(type) {
	case *demangle.Named:
		return n.Parts
	case *demangle.Template:
		return append([]demangle.Node{n.Base}, n.Args...)
	case *demangle.Operator:
		return []demangle.Node{n.Target}
	case *demangle.LocalName:
		return []demangle.Node{n.Function, n.Entity}
	case *demangle.ABITagged:
		return []demangle.Node{n.Name}
	case *demangle.Qualified:
		return []demangle.Node{n.Inner}
	case *demangle.Pointer:
		return []demangle.Node{n.Inner}
	case *demangle.Reference:
		return []demangle.Node{n.Inner}
	case *demangle.Array:
		return []demangle.Node{n.Bound, n.Elem}
	case *demangle.FunctionType:
		return append([]demangle.Node{n.Return}, n.Params...)
	case *demangle.PointerToMember:
		return []demangle.Node{n.Class, n.Member}
	case *demangle.Literal:
		return []demangle.Node{n.Type, n.Name}
	case *demangle.ArgPack:
		return n.Args
	case *demangle.Encoding:
		if n.Signature == nil {
			return []demangle.Node{n.Name}
		}
		return []demangle.Node{n.Name, n.Signature}
	case *demangle.SpecialForm:
		return []demangle.Node{n.Operand}
	case *demangle.Clone:
		return []demangle.Node{n.Symbol}
	}
	return nil
}
