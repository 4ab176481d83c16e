// Package extract runs the per-file pipeline: read, optionally obfuscate,
// parse, collect leaves, encode paths and format the output block.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/DeusData/pathminer/internal/features"
	"github.com/DeusData/pathminer/internal/lang"
	"github.com/DeusData/pathminer/internal/leaves"
	"github.com/DeusData/pathminer/internal/obfuscate"
	"github.com/DeusData/pathminer/internal/parser"
	"github.com/DeusData/pathminer/internal/paths"
)

var (
	// ErrIO marks a source that could not be read.
	ErrIO = errors.New("read source")
	// ErrUnsupported marks a file whose language is not registered.
	ErrUnsupported = errors.New("unsupported language")
)

// State is where a task stopped.
type State int

const (
	StateLoaded State = iota
	StateObfuscated
	StateParsed
	StateLeavesCollected
	StateFeaturesGenerated
	StateEmitted
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateObfuscated:
		return "obfuscated"
	case StateParsed:
		return "parsed"
	case StateLeavesCollected:
		return "leaves_collected"
	case StateFeaturesGenerated:
		return "features_generated"
	case StateEmitted:
		return "emitted"
	case StateSkipped:
		return "skipped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options is the read-only snapshot every task of a run shares.
type Options struct {
	Limits      paths.Limits
	Features    features.Options
	Hasher      paths.Hasher
	Obfuscate   bool
	Seed        uint64
	PrettyPrint bool
}

// Result is what one task produced.
type Result struct {
	Path     string
	State    State
	Features []features.Feature
	Names    obfuscate.NameMap
	// Output is the formatted block, one line per feature, without a
	// trailing newline. Empty when nothing was extracted.
	Output string
	// Reason is set when State is StateSkipped.
	Reason error
}

type languageKit struct {
	spec       *lang.LanguageSpec
	collector  *leaves.Collector
	aggregator *features.Aggregator
}

// Extractor builds tasks. It is safe for concurrent use.
type Extractor struct {
	opts Options
	kits map[lang.Language]*languageKit
}

// New returns an Extractor for every registered language.
func New(opts Options) *Extractor {
	if opts.Hasher == nil {
		opts.Hasher = paths.XXH3{}
	}
	e := &Extractor{opts: opts, kits: make(map[lang.Language]*languageKit)}
	for _, l := range lang.AllLanguages() {
		spec := lang.ForLanguage(l)
		if spec == nil {
			continue
		}
		enc := paths.NewEncoder(opts.Limits, spec.DisambiguationNodeTypes, opts.Hasher)
		e.kits[l] = &languageKit{
			spec:       spec,
			collector:  leaves.New(spec),
			aggregator: features.NewAggregator(enc, opts.Features),
		}
	}
	return e
}

// Options returns the snapshot the extractor was built with.
func (e *Extractor) Options() Options { return e.opts }

// Task is the pipeline for one file. Run always starts over from Loaded.
type Task struct {
	Path string
	Lang lang.Language

	e      *Extractor
	source []byte
}

// File returns a task reading path, with the language taken from its extension.
func (e *Extractor) File(path string) *Task {
	l, _ := lang.LanguageForExtension(strings.ToLower(filepath.Ext(path)))
	return &Task{Path: path, Lang: l, e: e}
}

// Snippet returns a task over in-memory source.
func (e *Extractor) Snippet(l lang.Language, source []byte) *Task {
	if source == nil {
		source = []byte{}
	}
	return &Task{Path: "<snippet>", Lang: l, e: e, source: source}
}

// Run executes the pipeline. The returned error is the skip reason and is
// also recorded in the Result; it wraps ErrIO, ErrUnsupported,
// parser.ErrUnparsable, obfuscate.ErrPoolExhausted or the context error.
func (t *Task) Run(ctx context.Context) (*Result, error) {
	res := &Result{Path: t.Path, State: StateLoaded}
	skip := func(err error) (*Result, error) {
		res.State = StateSkipped
		res.Reason = err
		res.Features = nil
		res.Output = ""
		return res, err
	}

	kit, ok := t.e.kits[t.Lang]
	if !ok {
		return skip(fmt.Errorf("%w: %s", ErrUnsupported, t.Path))
	}
	source := t.source
	if source == nil {
		data, err := os.ReadFile(t.Path)
		if err != nil {
			return skip(fmt.Errorf("%w: %v", ErrIO, err))
		}
		source = data
	}
	if err := ctx.Err(); err != nil {
		return skip(err)
	}

	parsed, err := parser.ParseWithFallback(t.Lang, source)
	if err != nil {
		return skip(err)
	}

	if t.e.opts.Obfuscate {
		obf := obfuscate.NewSeeded(kit.spec, t.e.opts.Seed, xxh3.HashString(t.Path))
		rewritten, names, err := obf.Obfuscate(ctx, parsed.Tree.RootNode(), parsed.Source)
		parsed.Close()
		if err != nil {
			return skip(err)
		}
		res.Names = names
		res.State = StateObfuscated

		parsed, err = parser.ParseWithFallback(t.Lang, rewritten)
		if err != nil {
			return skip(err)
		}
	}
	defer parsed.Close()
	res.State = StateParsed

	_, units, err := kit.collector.Collect(ctx, parsed.Tree.RootNode(), parsed.Source)
	if err != nil {
		return skip(err)
	}
	res.State = StateLeavesCollected

	var originals features.Originals
	if res.Names != nil {
		originals = res.Names
	}
	fs, err := kit.aggregator.Generate(ctx, units, originals)
	if err != nil {
		return skip(err)
	}
	res.Features = fs
	res.State = StateFeaturesGenerated

	if len(fs) > 0 {
		lines := make([]string, len(fs))
		for i, f := range fs {
			lines[i] = f.Format(t.e.opts.PrettyPrint)
		}
		res.Output = strings.Join(lines, "\n")
		res.State = StateEmitted
	}
	return res, nil
}

// Run extracts the file at path. It lets an Extractor serve as a batch runner.
func (e *Extractor) Run(ctx context.Context, path string) (*Result, error) {
	return e.File(path).Run(ctx)
}
