// Package tree holds the arena form of a parsed file: nodes live in one slice
// and refer to each other by index, so common-ancestor checks are integer
// comparisons and no node outlives the task that built it.
package tree

// Node is one arena element.
type Node struct {
	// Kind is the path label type: RawKind, plus ":<op>" for operator kinds.
	Kind string
	// RawKind is the grammar node kind.
	RawKind string
	// ChildID is the ordinal among the parent's named, non-comment children.
	ChildID int
	// Parent is the parent's index, or -1 for the root.
	Parent int

	Leaf bool
	// Text is the raw source text of a leaf.
	Text string
	// Name is the leaf's name as it appears in feature records.
	Name string
	// Declares marks a variable or parameter declaration site.
	Declares bool
	// IsMethodName marks the declared name of a method.
	IsMethodName bool
}

// Tree is an arena of nodes. Index 0 is the root once Add has been called.
type Tree struct {
	Nodes []Node
}

// Add appends n and returns its index.
func (t *Tree) Add(n Node) int {
	t.Nodes = append(t.Nodes, n)
	return len(t.Nodes) - 1
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.Nodes) }

// At returns a pointer to the node at index i.
func (t *Tree) At(i int) *Node { return &t.Nodes[i] }

// Ancestors returns the indices from i up to the root, leaf first.
func (t *Tree) Ancestors(i int) []int {
	var out []int
	for i >= 0 {
		out = append(out, i)
		i = t.Nodes[i].Parent
	}
	return out
}

// Depth returns the number of edges between i and the root.
func (t *Tree) Depth(i int) int {
	d := 0
	for t.Nodes[i].Parent >= 0 {
		i = t.Nodes[i].Parent
		d++
	}
	return d
}

// ParentKind returns the raw kind of i's parent, or "" at the root.
func (t *Tree) ParentKind(i int) string {
	p := t.Nodes[i].Parent
	if p < 0 {
		return ""
	}
	return t.Nodes[p].RawKind
}
