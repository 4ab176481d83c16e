// Package obfuscate rewrites method bodies so that local names, called
// functions, member names and most literals no longer reveal what the method
// does. The renames are recorded so names can be mapped back later.
package obfuscate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/pathminer/internal/lang"
	"github.com/DeusData/pathminer/internal/naming"
	"github.com/DeusData/pathminer/internal/parser"
)

// PoolSize is the number of placeholder slots per category and method.
const PoolSize = 50

// ErrPoolExhausted is returned when a method has more distinct names in one
// category than PoolSize.
var ErrPoolExhausted = errors.New("obfuscation pool exhausted")

// keptLiterals pass through unchanged.
var keptLiterals = map[string]bool{
	"0":          true,
	"1":          true,
	"2147483647": true,
	"NaN":        true,
}

// MethodNames is the rename table of one method.
type MethodNames struct {
	Name string
	// Placeholders maps VAR_k / FUNC_k to the name it replaced.
	Placeholders map[string]string
}

// NameMap holds the rename tables of one file keyed by method ordinal.
type NameMap map[int]*MethodNames

// Original returns the source name behind placeholder in method.
func (m NameMap) Original(method int, placeholder string) (string, bool) {
	names, ok := m[method]
	if !ok {
		return "", false
	}
	orig, ok := names.Placeholders[placeholder]
	return orig, ok
}

// Obfuscator renames one file. It draws placeholder slots from its own random
// source and is not safe for concurrent use.
type Obfuscator struct {
	syn *parser.Syntax
	rng *rand.Rand
}

// New returns an Obfuscator for spec drawing slots from rng.
func New(spec *lang.LanguageSpec, rng *rand.Rand) *Obfuscator {
	return &Obfuscator{syn: parser.NewSyntax(spec), rng: rng}
}

// NewSeeded returns an Obfuscator whose draws depend only on seed and stream.
func NewSeeded(spec *lang.LanguageSpec, seed, stream uint64) *Obfuscator {
	return New(spec, rand.New(rand.NewPCG(seed, stream)))
}

type edit struct {
	start, end uint
	text       string
}

// Obfuscate returns the rewritten source and the rename table of every method
// in root. Methods are numbered in the same pre-order the leaf collector uses.
func (o *Obfuscator) Obfuscate(ctx context.Context, root *tree_sitter.Node, source []byte) ([]byte, NameMap, error) {
	var methods []*tree_sitter.Node
	parser.Walk(root, func(n *tree_sitter.Node) bool {
		if o.syn.Ignored(n) {
			return false
		}
		if o.syn.Methods[n.Kind()] {
			methods = append(methods, n)
		}
		return !o.syn.Literals[n.Kind()]
	})

	names := make(NameMap, len(methods))
	var edits []edit
	for ordinal, m := range methods {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		table, es, err := o.method(m, source)
		if err != nil {
			return nil, nil, fmt.Errorf("method %s: %w", table.Name, err)
		}
		names[ordinal] = table
		edits = append(edits, es...)
	}
	return apply(source, edits), names, nil
}

// method renames inside m, leaving nested methods to their own pass.
func (o *Obfuscator) method(m *tree_sitter.Node, source []byte) (*MethodNames, []edit, error) {
	table := &MethodNames{Placeholders: make(map[string]string)}
	var nameID uintptr
	if nameNode := m.ChildByFieldName(o.syn.Spec.NameField); nameNode != nil {
		table.Name = parser.NodeText(nameNode, source)
		nameID = nameNode.Id()
	}

	declared := o.syn.DeclaredIdentifiers(m)
	callees := make(map[uintptr]bool)
	members := make(map[uintptr]bool)
	var body []*tree_sitter.Node
	parser.Walk(m, func(n *tree_sitter.Node) bool {
		if n != m && o.syn.Methods[n.Kind()] {
			return false
		}
		if c := o.syn.CalleeName(n); c != nil {
			callees[c.Id()] = true
		}
		if f := o.syn.MemberName(n); f != nil {
			members[f.Id()] = true
		}
		if n.IsNamed() {
			body = append(body, n)
		}
		return !o.syn.Literals[n.Kind()]
	})

	vars := newPool(naming.VarPrefix, o.rng)
	funcs := newPool(naming.FuncPrefix, o.rng)
	varNames := make(map[string]string)
	funcNames := make(map[string]string)
	for _, n := range body {
		if n.Id() == nameID || !declared[n.Id()] {
			continue
		}
		text := parser.NodeText(n, source)
		if _, ok := varNames[text]; ok {
			continue
		}
		p, err := vars.draw()
		if err != nil {
			return table, nil, err
		}
		varNames[text] = p
		table.Placeholders[p] = text
	}

	var edits []edit
	for _, n := range body {
		id := n.Id()
		if id == nameID {
			continue
		}
		text := parser.NodeText(n, source)
		switch {
		case callees[id]:
			p, ok := funcNames[text]
			if !ok {
				var err error
				if p, err = funcs.draw(); err != nil {
					return table, nil, err
				}
				funcNames[text] = p
				table.Placeholders[p] = text
			}
			edits = append(edits, edit{n.StartByte(), n.EndByte(), p})
		case members[id]:
			edits = append(edits, edit{n.StartByte(), n.EndByte(), naming.ClassField})
		case o.syn.Identifiers[n.Kind()]:
			if p, ok := varNames[text]; ok {
				edits = append(edits, edit{n.StartByte(), n.EndByte(), p})
			}
		case o.syn.Literals[n.Kind()]:
			if !o.keepLiteral(n, text) {
				edits = append(edits, edit{n.StartByte(), n.EndByte(), naming.Constant})
			}
		}
	}
	return table, edits, nil
}

func (o *Obfuscator) keepLiteral(n *tree_sitter.Node, text string) bool {
	if o.syn.NullLiterals[n.Kind()] || keptLiterals[text] {
		return true
	}
	return len(text) >= 2 && strings.Trim(text, "\"'`") == ""
}

type pool struct {
	prefix string
	free   []int
	rng    *rand.Rand
}

func newPool(prefix string, rng *rand.Rand) *pool {
	free := make([]int, PoolSize)
	for i := range free {
		free[i] = i
	}
	return &pool{prefix: prefix, free: free, rng: rng}
}

// draw picks a slot uniformly among the unused ones.
func (p *pool) draw() (string, error) {
	if len(p.free) == 0 {
		return "", fmt.Errorf("%w: more than %d %s names", ErrPoolExhausted, PoolSize, strings.TrimSuffix(p.prefix, "_"))
	}
	i := p.rng.IntN(len(p.free))
	slot := p.free[i]
	p.free = append(p.free[:i], p.free[i+1:]...)
	return p.prefix + strconv.Itoa(slot), nil
}

func apply(source []byte, edits []edit) []byte {
	if len(edits) == 0 {
		return source
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	out := make([]byte, 0, len(source))
	var pos uint
	for _, e := range edits {
		if e.start < pos {
			continue
		}
		out = append(out, source[pos:e.start]...)
		out = append(out, e.text...)
		pos = e.end
	}
	return append(out, source[pos:]...)
}
