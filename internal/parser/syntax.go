package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/pathminer/internal/lang"
)

// Syntax wraps a LanguageSpec with precomputed kind sets for the lookups the
// collector and obfuscator do on every node.
type Syntax struct {
	Spec           *lang.LanguageSpec
	Methods        lang.Set
	Literals       lang.Set
	NullLiterals   lang.Set
	Comments       lang.Set
	Skip           lang.Set
	Identifiers    lang.Set
	Operators      lang.Set
	Disambiguation lang.Set
	declLists      lang.Set
	paramLists     lang.Set
}

// NewSyntax builds the kind sets for spec.
func NewSyntax(spec *lang.LanguageSpec) *Syntax {
	return &Syntax{
		Spec:           spec,
		Methods:        lang.NewSet(spec.MethodNodeTypes),
		Literals:       lang.NewSet(spec.LiteralNodeTypes),
		NullLiterals:   lang.NewSet(spec.NullLiteralTypes),
		Comments:       lang.NewSet(spec.CommentNodeTypes),
		Skip:           lang.NewSet(spec.SkipNodeTypes),
		Identifiers:    lang.NewSet(spec.IdentifierTypes),
		Operators:      lang.NewSet(spec.OperatorNodeTypes),
		Disambiguation: lang.NewSet(spec.DisambiguationNodeTypes),
		declLists:      lang.NewSet(spec.DeclaratorListTypes),
		paramLists:     lang.NewSet(spec.ParameterListTypes),
	}
}

// Ignored reports whether a node takes no part in the arena at all.
func (s *Syntax) Ignored(n *tree_sitter.Node) bool {
	if !n.IsNamed() {
		return true
	}
	kind := n.Kind()
	return s.Comments[kind] || s.Skip[kind]
}

// DeclaredIdentifiers returns the ids of identifier nodes under root that sit
// at a declaration site: locals, parameters, catch and loop variables.
func (s *Syntax) DeclaredIdentifiers(root *tree_sitter.Node) map[uintptr]bool {
	declared := make(map[uintptr]bool)
	Walk(root, func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		if s.paramLists[kind] {
			s.markIdentChildren(n, declared)
		}
		field, ok := s.Spec.DeclaratorFields[kind]
		if !ok {
			return true
		}
		if field == "" {
			for i := uint(0); i < n.NamedChildCount(); i++ {
				c := n.NamedChild(i)
				if c != nil && s.Identifiers[c.Kind()] {
					declared[c.Id()] = true
					break
				}
			}
			return true
		}
		for _, c := range ChildrenByField(n, field) {
			s.markDeclTarget(c, declared)
		}
		return true
	})
	return declared
}

func (s *Syntax) markDeclTarget(n *tree_sitter.Node, declared map[uintptr]bool) {
	kind := n.Kind()
	switch {
	case s.Identifiers[kind]:
		declared[n.Id()] = true
	case s.declLists[kind] || s.paramLists[kind]:
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if c := n.NamedChild(i); c != nil {
				s.markDeclTarget(c, declared)
			}
		}
	}
}

func (s *Syntax) markIdentChildren(n *tree_sitter.Node, declared map[uintptr]bool) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c != nil && s.Identifiers[c.Kind()] {
			declared[c.Id()] = true
		}
	}
}

// CalleeName returns the identifier naming the function called by n, or nil
// when n is not a call or its callee is not a plain name. For member calls
// (obj.f(), pkg.F()) the member identifier is returned.
func (s *Syntax) CalleeName(n *tree_sitter.Node) *tree_sitter.Node {
	field, ok := s.Spec.CallNameFields[n.Kind()]
	if !ok {
		return nil
	}
	callee := n.ChildByFieldName(field)
	if callee == nil {
		return nil
	}
	if s.Identifiers[callee.Kind()] {
		return callee
	}
	if member := s.MemberName(callee); member != nil {
		return member
	}
	return nil
}

// MemberName returns the member identifier of a field-access node, or nil.
func (s *Syntax) MemberName(n *tree_sitter.Node) *tree_sitter.Node {
	field, ok := s.Spec.MemberFields[n.Kind()]
	if !ok {
		return nil
	}
	return n.ChildByFieldName(field)
}

// ChildrenByField returns every child of n attached under field, in order.
// Go parameter declarations carry several names under one field.
func ChildrenByField(n *tree_sitter.Node, field string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.FieldNameForChild(uint32(i)) != field {
			continue
		}
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Operator returns the operator token of an operator-bearing node: the text
// of its "operator" field, or the first anonymous child that is not a
// parenthesis. Multi-word operators such as Python's "not in" come back
// joined with underscores, and commas are dropped, so the token is safe in a
// path label.
func Operator(n *tree_sitter.Node, source []byte) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return operatorToken(NodeText(op, source))
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil || c.IsNamed() {
			continue
		}
		switch k := c.Kind(); k {
		case "(", ")":
			continue
		default:
			return operatorToken(k)
		}
	}
	return ""
}

func operatorToken(op string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(op, ",", "")), "_")
}
