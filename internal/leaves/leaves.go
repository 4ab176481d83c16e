// Package leaves turns a tree-sitter tree into an arena and the per-method
// leaf sequences that paths are built from.
package leaves

import (
	"context"
	"strings"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/pathminer/internal/lang"
	"github.com/DeusData/pathminer/internal/naming"
	"github.com/DeusData/pathminer/internal/parser"
	"github.com/DeusData/pathminer/internal/tree"
)

// MethodUnit is one method's view of the arena.
type MethodUnit struct {
	Tree *tree.Tree
	// Leaves holds arena indices in source order.
	Leaves []int
	// Name is the declared method name as written.
	Name string
	// Ordinal is the method's position among the file's methods.
	Ordinal int
	// Length is the method text length in characters.
	Length int
	// Node is the arena index of the method node.
	Node int
}

// Collector builds arenas for one language. It is safe for concurrent use.
type Collector struct {
	syn *parser.Syntax
}

// New returns a Collector for spec.
func New(spec *lang.LanguageSpec) *Collector {
	return &Collector{syn: parser.NewSyntax(spec)}
}

type walker struct {
	ctx      context.Context
	syn      *parser.Syntax
	source   []byte
	arena    *tree.Tree
	declared map[uintptr]bool
	names    map[uintptr]bool
	open     []*MethodUnit
	units    []*MethodUnit
}

// Collect walks root once and returns the arena together with a MethodUnit
// per method, in source order. A nested method gets its own unit and its
// leaves also stay in the enclosing one.
func (c *Collector) Collect(ctx context.Context, root *tree_sitter.Node, source []byte) (*tree.Tree, []*MethodUnit, error) {
	w := &walker{
		ctx:      ctx,
		syn:      c.syn,
		source:   source,
		arena:    &tree.Tree{},
		declared: c.syn.DeclaredIdentifiers(root),
		names:    make(map[uintptr]bool),
	}
	if err := w.visit(root, -1, 0); err != nil {
		return nil, nil, err
	}
	return w.arena, w.units, nil
}

func (w *walker) visit(n *tree_sitter.Node, parent, childID int) error {
	kind := n.Kind()
	label := kind
	if w.syn.Operators[kind] {
		if op := parser.Operator(n, w.source); op != "" {
			label = kind + ":" + op
		}
	}
	idx := w.arena.Add(tree.Node{Kind: label, RawKind: kind, ChildID: childID, Parent: parent})

	isMethod := w.syn.Methods[kind]
	if isMethod {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		text := parser.NodeText(n, w.source)
		unit := &MethodUnit{
			Tree:    w.arena,
			Ordinal: len(w.units),
			Length:  utf8.RuneCountInString(text),
			Node:    idx,
		}
		if nameNode := n.ChildByFieldName(w.syn.Spec.NameField); nameNode != nil {
			unit.Name = parser.NodeText(nameNode, w.source)
			w.names[nameNode.Id()] = true
		}
		w.units = append(w.units, unit)
		w.open = append(w.open, unit)
	}

	children := w.children(n)
	if w.syn.Literals[kind] || len(children) == 0 {
		w.leaf(n, idx)
	} else {
		for i, c := range children {
			if err := w.visit(c, idx, i); err != nil {
				return err
			}
		}
	}

	if isMethod {
		w.open = w.open[:len(w.open)-1]
	}
	return nil
}

// children returns the named children that take part in the arena.
func (w *walker) children(n *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || w.syn.Ignored(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (w *walker) leaf(n *tree_sitter.Node, idx int) {
	text := parser.NodeText(n, w.source)
	if strings.TrimSpace(text) == "" {
		return
	}
	node := w.arena.At(idx)
	node.Leaf = true
	node.Text = text
	node.Declares = w.declared[n.Id()]
	node.IsMethodName = w.names[n.Id()]
	node.Name = LeafName(text, node.IsMethodName)

	for _, u := range w.open {
		u.Leaves = append(u.Leaves, idx)
	}
}

// LeafName is the name a leaf carries into feature records.
func LeafName(text string, isMethodName bool) string {
	if isMethodName {
		return naming.MethodName
	}
	if naming.IsPlaceholder(text) {
		return text
	}
	name := naming.NormalizeName(text, naming.Blank)
	if utf8.RuneCountInString(name) > naming.MaxLeafNameLength {
		name = string([]rune(name)[:naming.MaxLeafNameLength])
	}
	return name
}
