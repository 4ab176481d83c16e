// Package features pairs the leaves of each method and assembles the encoded
// paths into per-method or per-variable records.
package features

import (
	"context"
	"strings"

	"github.com/DeusData/pathminer/internal/leaves"
	"github.com/DeusData/pathminer/internal/naming"
	"github.com/DeusData/pathminer/internal/paths"
)

// Record is one source,path,target context.
type Record struct {
	Source string
	Path   string
	Target string
}

func (r Record) String() string {
	return r.Source + "," + r.Path + "," + r.Target
}

// Feature is a named bag of records: a method in method mode, a variable in
// variable mode.
type Feature struct {
	Name    string
	Records []Record
	// Method is the ordinal of the method the feature was built from.
	Method int
}

// Format renders the feature as one output line, or as an indented block
// when pretty is set.
func (f Feature) Format(pretty bool) string {
	var b strings.Builder
	b.WriteString(f.Name)
	for _, r := range f.Records {
		b.WriteByte(' ')
		b.WriteString(r.String())
	}
	if pretty {
		return strings.ReplaceAll(b.String(), " ", "\n\t")
	}
	return b.String()
}

// Options select the mode and the method-length window.
type Options struct {
	OnlyVars      bool
	MinCodeLength int
	MaxCodeLength int
}

// Originals maps an obfuscated name in a method back to its source name.
type Originals interface {
	Original(method int, name string) (string, bool)
}

// Aggregator turns method units into features. It holds no per-call state.
type Aggregator struct {
	enc  *paths.Encoder
	opts Options
}

// NewAggregator returns an Aggregator encoding paths with enc.
func NewAggregator(enc *paths.Encoder, opts Options) *Aggregator {
	return &Aggregator{enc: enc, opts: opts}
}

// Generate builds the features of every unit that passes the length window.
// originals may be nil when the source was not obfuscated. Features without
// records are dropped.
func (a *Aggregator) Generate(ctx context.Context, units []*leaves.MethodUnit, originals Originals) ([]Feature, error) {
	var out []Feature
	for _, u := range units {
		if u.Length < a.opts.MinCodeLength || u.Length > a.opts.MaxCodeLength {
			continue
		}
		if a.opts.OnlyVars {
			fs, err := a.Variables(ctx, u, originals)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
			continue
		}
		f, err := a.Method(ctx, u)
		if err != nil {
			return nil, err
		}
		if len(f.Records) > 0 {
			out = append(out, f)
		}
	}
	return out, nil
}

// Method pairs every two leaves of u, i before j.
func (a *Aggregator) Method(ctx context.Context, u *leaves.MethodUnit) (Feature, error) {
	f := Feature{Name: naming.JoinSubtokens(u.Name), Method: u.Ordinal}
	stacks := ancestorStacks(u)
	for i := range u.Leaves {
		if err := ctx.Err(); err != nil {
			return Feature{}, err
		}
		for j := i + 1; j < len(u.Leaves); j++ {
			path, ok := a.enc.EncodeStacks(u.Tree, stacks[i], stacks[j])
			if !ok {
				continue
			}
			f.Records = append(f.Records, Record{
				Source: u.Tree.At(u.Leaves[i]).Name,
				Path:   path,
				Target: u.Tree.At(u.Leaves[j]).Name,
			})
		}
	}
	return f, nil
}

// Variables builds one feature per distinct declared name in u from the pairs
// that touch an occurrence of it. The variable's own name is replaced by
// VARIABLE_NAME in its records, and the method's own name by METHOD_NAME so
// recursive calls do not leak it.
func (a *Aggregator) Variables(ctx context.Context, u *leaves.MethodUnit, originals Originals) ([]Feature, error) {
	stacks := ancestorStacks(u)
	methodName := leaves.LeafName(u.Name, false)
	seen := make(map[string]bool)
	var out []Feature
	for _, v := range u.Leaves {
		decl := u.Tree.At(v)
		if !decl.Declares || seen[decl.Text] {
			continue
		}
		seen[decl.Text] = true

		varName := decl.Text
		hidden := decl.Name
		f := Feature{Method: u.Ordinal}
		for i := range u.Leaves {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			src := u.Tree.At(u.Leaves[i])
			for j := i + 1; j < len(u.Leaves); j++ {
				dst := u.Tree.At(u.Leaves[j])
				if src.Text != varName && dst.Text != varName {
					continue
				}
				path, ok := a.enc.EncodeStacks(u.Tree, stacks[i], stacks[j])
				if !ok {
					continue
				}
				f.Records = append(f.Records, Record{
					Source: hide(src.Name, hidden, methodName),
					Path:   path,
					Target: hide(dst.Name, hidden, methodName),
				})
			}
		}
		if len(f.Records) == 0 {
			continue
		}

		name := varName
		if originals != nil {
			if orig, ok := originals.Original(u.Ordinal, varName); ok {
				name = orig
			}
		}
		f.Name = naming.JoinSubtokens(name)
		out = append(out, f)
	}
	return out, nil
}

func hide(name, hidden, method string) string {
	switch name {
	case hidden:
		return naming.VariableName
	case method:
		return naming.MethodName
	}
	return name
}

func ancestorStacks(u *leaves.MethodUnit) [][]int {
	stacks := make([][]int, len(u.Leaves))
	for i, idx := range u.Leaves {
		stacks[i] = u.Tree.Ancestors(idx)
	}
	return stacks
}
