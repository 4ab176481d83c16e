package parser

import (
	"errors"
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/DeusData/pathminer/internal/lang"
)

// ErrUnparsable is returned when the source and every fallback wrapping of it
// still contain syntax errors.
var ErrUnparsable = errors.New("source unparsable")

var (
	languagesOnce sync.Once
	languages     map[lang.Language]*tree_sitter.Language
	parserPools   map[lang.Language]*sync.Pool
)

func initLanguages() {
	languagesOnce.Do(func() {
		languages = map[lang.Language]*tree_sitter.Language{
			lang.Java:       tree_sitter.NewLanguage(tree_sitter_java.Language()),
			lang.Python:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			lang.Go:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			lang.JavaScript: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		}

		parserPools = make(map[lang.Language]*sync.Pool, len(languages))
		for l, tsLang := range languages {
			tsLang := tsLang
			parserPools[l] = &sync.Pool{
				New: func() any {
					p := tree_sitter.NewParser()
					if err := p.SetLanguage(tsLang); err != nil {
						panic(fmt.Sprintf("set language: %v", err))
					}
					return p
				},
			}
		}
	})
}

// GetLanguage returns the tree-sitter Language for a lang.Language.
func GetLanguage(l lang.Language) (*tree_sitter.Language, error) {
	initLanguages()
	tsLang, ok := languages[l]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}
	return tsLang, nil
}

// Parse parses source code into a tree-sitter AST Tree.
// The caller must call tree.Close() when done.
// Parsers are pooled per language via sync.Pool to avoid per-file allocation.
func Parse(l lang.Language, source []byte) (*tree_sitter.Tree, error) {
	initLanguages()

	pool, ok := parserPools[l]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}

	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get parser for language %s", l)
	}
	tree := p.Parse(source, nil)
	pool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("parse failed for language %s", l)
	}

	return tree, nil
}

// Parsed is a syntax tree together with the exact text it was parsed from.
// Source differs from the input when a fallback wrapper was applied.
type Parsed struct {
	Tree    *tree_sitter.Tree
	Source  []byte
	Wrapped bool
}

// Close releases the tree.
func (p *Parsed) Close() {
	if p.Tree != nil {
		p.Tree.Close()
		p.Tree = nil
	}
}

// ParseWithFallback parses source as-is and, if that yields syntax errors,
// retries with each of the language's wrappers in order. The first error-free
// tree wins. ErrUnparsable is returned once all strategies are exhausted.
func ParseWithFallback(l lang.Language, source []byte) (*Parsed, error) {
	spec := lang.ForLanguage(l)
	if spec == nil {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}

	candidates := make([][]byte, 0, 1+len(spec.Wrappers))
	candidates = append(candidates, source)
	for _, w := range spec.Wrappers {
		wrapped := make([]byte, 0, len(w.Prefix)+len(source)+len(w.Suffix))
		wrapped = append(wrapped, w.Prefix...)
		wrapped = append(wrapped, source...)
		wrapped = append(wrapped, w.Suffix...)
		candidates = append(candidates, wrapped)
	}

	for i, src := range candidates {
		tree, err := Parse(l, src)
		if err != nil {
			return nil, err
		}
		if !tree.RootNode().HasError() {
			return &Parsed{Tree: tree, Source: src, Wrapped: i > 0}, nil
		}
		tree.Close()
	}
	return nil, fmt.Errorf("%w: %d strategies tried", ErrUnparsable, len(candidates))
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the text content of a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
