// Package paths encodes the syntactic path between two leaves of an arena.
package paths

import (
	"math"
	"strconv"
	"strings"

	"github.com/DeusData/pathminer/internal/lang"
	"github.com/DeusData/pathminer/internal/tree"
)

const (
	upSymbol   = "^"
	downSymbol = "_"
	startParen = "("
	endParen   = ")"
)

// Limits bounds which leaf pairs produce a path.
type Limits struct {
	MaxPathLength int
	MaxPathWidth  int
	MaxChildID    int
}

// DefaultLimits returns the stock pruning limits.
func DefaultLimits() Limits {
	return Limits{MaxPathLength: 8, MaxPathWidth: 2, MaxChildID: math.MaxInt32}
}

// Encoder serializes leaf-to-leaf paths. The zero value is not usable; build
// one with NewEncoder. Encoders hold no per-call state.
type Encoder struct {
	limits         Limits
	disambiguation lang.Set
	hasher         Hasher
}

// NewEncoder returns an Encoder. disambiguation lists the raw kinds whose
// children keep their child id in labels.
func NewEncoder(limits Limits, disambiguation []string, hasher Hasher) *Encoder {
	if hasher == nil {
		hasher = Raw{}
	}
	return &Encoder{
		limits:         limits,
		disambiguation: lang.NewSet(disambiguation),
		hasher:         hasher,
	}
}

// Hasher returns the encoder's hasher.
func (e *Encoder) Hasher() Hasher { return e.hasher }

// CommonPrefix counts the shared entries of two leaf-to-root stacks, walking
// from the root end.
func CommonPrefix(src, dst []int) int {
	n := 0
	i, j := len(src)-1, len(dst)-1
	for i >= 0 && j >= 0 && src[i] == dst[j] {
		n++
		i--
		j--
	}
	return n
}

// Encode returns the hashed path token between leaves src and dst. ok is
// false when the pair is pruned or src == dst.
func (e *Encoder) Encode(t *tree.Tree, src, dst int) (string, bool) {
	return e.EncodeStacks(t, t.Ancestors(src), t.Ancestors(dst))
}

// EncodeStacks is Encode with precomputed ancestor stacks.
func (e *Encoder) EncodeStacks(t *tree.Tree, srcStack, dstStack []int) (string, bool) {
	raw, ok := e.Serialize(t, srcStack, dstStack)
	if !ok {
		return "", false
	}
	return e.hasher.Hash(raw), true
}

// Serialize builds the unhashed path label for two ancestor stacks.
func (e *Encoder) Serialize(t *tree.Tree, srcStack, dstStack []int) (string, bool) {
	if len(srcStack) == 0 || len(dstStack) == 0 || srcStack[0] == dstStack[0] {
		return "", false
	}
	common := CommonPrefix(srcStack, dstStack)
	if common == 0 {
		return "", false
	}
	srcBelow := len(srcStack) - common
	dstBelow := len(dstStack) - common

	pathLength := srcBelow + dstBelow
	if pathLength > e.limits.MaxPathLength {
		return "", false
	}
	if srcBelow > 0 && dstBelow > 0 {
		width := t.At(dstStack[dstBelow-1]).ChildID - t.At(srcStack[srcBelow-1]).ChildID
		if width > e.limits.MaxPathWidth {
			return "", false
		}
	}

	var b strings.Builder
	for i := 0; i < srcBelow; i++ {
		idx := srcStack[i]
		b.WriteString(startParen)
		b.WriteString(e.label(t, idx, i == 0 || e.disambiguation[t.ParentKind(idx)]))
		b.WriteString(endParen)
		b.WriteString(upSymbol)
	}

	lca := srcStack[srcBelow]
	b.WriteString(startParen)
	b.WriteString(e.label(t, lca, e.disambiguation[t.ParentKind(lca)]))
	b.WriteString(endParen)

	for i := dstBelow - 1; i >= 0; i-- {
		idx := dstStack[i]
		b.WriteString(downSymbol)
		b.WriteString(startParen)
		b.WriteString(e.label(t, idx, i == 0 || e.disambiguation[t.At(idx).RawKind]))
		b.WriteString(endParen)
	}
	return b.String(), true
}

func (e *Encoder) label(t *tree.Tree, idx int, withChildID bool) string {
	n := t.At(idx)
	if !withChildID {
		return n.Kind
	}
	return n.Kind + strconv.Itoa(e.childID(n.ChildID))
}

func (e *Encoder) childID(id int) int {
	return min(id, e.limits.MaxChildID)
}
