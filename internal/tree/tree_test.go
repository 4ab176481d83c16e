package tree

import (
	"reflect"
	"testing"
)

func sample() *Tree {
	t := &Tree{}
	root := t.Add(Node{Kind: "program", RawKind: "program", Parent: -1})
	expr := t.Add(Node{Kind: "binary_expression:+", RawKind: "binary_expression", Parent: root})
	t.Add(Node{Kind: "identifier", RawKind: "identifier", Parent: expr, Leaf: true, Text: "a"})
	t.Add(Node{Kind: "identifier", RawKind: "identifier", Parent: expr, ChildID: 1, Leaf: true, Text: "b"})
	return t
}

func TestAncestors(t *testing.T) {
	tr := sample()
	got := tr.Ancestors(3)
	want := []int{3, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ancestors(3) = %v, want %v", got, want)
	}
	if got := tr.Ancestors(0); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("Ancestors(root) = %v", got)
	}
}

func TestDepthAndParentKind(t *testing.T) {
	tr := sample()
	if d := tr.Depth(2); d != 2 {
		t.Errorf("Depth(2) = %d, want 2", d)
	}
	if k := tr.ParentKind(2); k != "binary_expression" {
		t.Errorf("ParentKind(2) = %q", k)
	}
	if k := tr.ParentKind(0); k != "" {
		t.Errorf("ParentKind(root) = %q, want empty", k)
	}
}
