// Package config loads the extraction settings from a yaml file and lets
// command-line flags override them.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/DeusData/pathminer/internal/extract"
	"github.com/DeusData/pathminer/internal/features"
	"github.com/DeusData/pathminer/internal/lang"
	"github.com/DeusData/pathminer/internal/paths"
)

// FileName is looked up in the working directory when no path is given.
const FileName = ".pathminer.yaml"

// ErrInvalidConfig is returned when validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tunable of an extraction run.
type Config struct {
	MaxPathLength int `yaml:"max_path_length"`
	MaxPathWidth  int `yaml:"max_path_width"`
	MaxChildID    int `yaml:"max_child_id"`
	MinCodeLength int `yaml:"min_code_length"`
	MaxCodeLength int `yaml:"max_code_length"`

	NumThreads int `yaml:"num_threads"`
	Backlog    int `yaml:"backlog"`
	// TimeoutMinutes is the per-file deadline. Zero disables it.
	TimeoutMinutes int `yaml:"timeout_minutes"`

	NoHash      bool   `yaml:"no_hash"`
	HashFunc    string `yaml:"hash_func"`
	OnlyVars    bool   `yaml:"only_vars"`
	Obfuscate   bool   `yaml:"obfuscate"`
	Seed        uint64 `yaml:"seed"`
	PrettyPrint bool   `yaml:"pretty_print"`

	Languages []string `yaml:"languages"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		MaxPathLength:  8,
		MaxPathWidth:   2,
		MaxChildID:     math.MaxInt32,
		MinCodeLength:  1,
		MaxCodeLength:  10000,
		NumThreads:     runtime.NumCPU(),
		Backlog:        8,
		TimeoutMinutes: 60,
		HashFunc:       paths.HashXXH3,
		Languages:      []string{string(lang.Java)},
	}
}

// Load reads path over the defaults. An empty path means FileName in the
// working directory, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxPathLength < 1 {
		errs = append(errs, fmt.Errorf("max_path_length must be positive, got %d", c.MaxPathLength))
	}
	if c.MaxPathWidth < 0 {
		errs = append(errs, fmt.Errorf("max_path_width must not be negative, got %d", c.MaxPathWidth))
	}
	if c.MaxChildID < 0 {
		errs = append(errs, fmt.Errorf("max_child_id must not be negative, got %d", c.MaxChildID))
	}
	if c.MinCodeLength < 0 || c.MaxCodeLength < c.MinCodeLength {
		errs = append(errs, fmt.Errorf("code length window [%d, %d] is empty", c.MinCodeLength, c.MaxCodeLength))
	}
	if c.NumThreads < 1 {
		errs = append(errs, fmt.Errorf("num_threads must be at least 1, got %d", c.NumThreads))
	}
	if c.Backlog < 0 {
		errs = append(errs, fmt.Errorf("backlog must not be negative, got %d", c.Backlog))
	}
	if c.TimeoutMinutes < 0 {
		errs = append(errs, fmt.Errorf("timeout_minutes must not be negative, got %d", c.TimeoutMinutes))
	}
	if _, err := paths.NewHasher(c.HashFunc, false); err != nil {
		errs = append(errs, err)
	}
	if len(c.Languages) == 0 {
		errs = append(errs, errors.New("languages must not be empty"))
	}
	for _, name := range c.Languages {
		if _, ok := lang.Parse(name); !ok {
			errs = append(errs, fmt.Errorf("unknown language %q", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Timeout returns the per-file deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// LanguageList returns the parsed language names, skipping unknown ones.
func (c *Config) LanguageList() []lang.Language {
	out := make([]lang.Language, 0, len(c.Languages))
	for _, name := range c.Languages {
		if l, ok := lang.Parse(name); ok {
			out = append(out, l)
		}
	}
	return out
}

// ExtractOptions snapshots the settings for an extractor. A zero seed is
// replaced with one taken from the clock.
func (c *Config) ExtractOptions() (extract.Options, error) {
	hasher, err := paths.NewHasher(c.HashFunc, c.NoHash)
	if err != nil {
		return extract.Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	seed := c.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return extract.Options{
		Limits: paths.Limits{
			MaxPathLength: c.MaxPathLength,
			MaxPathWidth:  c.MaxPathWidth,
			MaxChildID:    c.MaxChildID,
		},
		Features: features.Options{
			OnlyVars:      c.OnlyVars,
			MinCodeLength: c.MinCodeLength,
			MaxCodeLength: c.MaxCodeLength,
		},
		Hasher:      hasher,
		Obfuscate:   c.Obfuscate,
		Seed:        seed,
		PrettyPrint: c.PrettyPrint,
	}, nil
}

// Flags binds the extraction flags of a command. Values parsed into the
// set are only applied by Apply, and only for flags the user changed.
type Flags struct {
	fs  *pflag.FlagSet
	val Config
}

// BindFlags registers the extraction flags on fs with the built-in defaults.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()
	v := &f.val
	fs.IntVar(&v.MaxPathLength, "max-path-length", d.MaxPathLength, "maximum number of up and down steps in a path")
	fs.IntVar(&v.MaxPathWidth, "max-path-width", d.MaxPathWidth, "maximum sibling distance at the top of a path")
	fs.IntVar(&v.MaxChildID, "max-child-id", d.MaxChildID, "clamp for child indices written into path labels")
	fs.IntVar(&v.MinCodeLength, "min-code-len", d.MinCodeLength, "skip methods shorter than this many characters")
	fs.IntVar(&v.MaxCodeLength, "max-code-len", d.MaxCodeLength, "skip methods longer than this many characters")
	fs.IntVar(&v.NumThreads, "num-threads", d.NumThreads, "number of files extracted in parallel")
	fs.IntVar(&v.Backlog, "backlog", d.Backlog, "capacity of the submission queue")
	fs.IntVar(&v.TimeoutMinutes, "timeout", d.TimeoutMinutes, "per-file deadline in minutes, 0 disables it")
	fs.BoolVar(&v.NoHash, "no-hash", d.NoHash, "write raw path strings instead of hashes")
	fs.StringVar(&v.HashFunc, "hash", d.HashFunc, "path hash function: xxh3, java or highway")
	fs.BoolVar(&v.OnlyVars, "variables", d.OnlyVars, "emit one feature per local variable instead of per method")
	fs.BoolVar(&v.Obfuscate, "obfuscate", d.Obfuscate, "rename identifiers and canonicalize literals before extraction")
	fs.Uint64Var(&v.Seed, "seed", d.Seed, "seed for the obfuscator, 0 picks one from the clock")
	fs.BoolVar(&v.PrettyPrint, "pretty-print", d.PrettyPrint, "write one record per line")
	fs.StringSliceVar(&v.Languages, "lang", d.Languages, "languages to extract: java, python, go, javascript")
	return f
}

var flagFields = map[string]func(dst, src *Config){
	"max-path-length": func(dst, src *Config) { dst.MaxPathLength = src.MaxPathLength },
	"max-path-width":  func(dst, src *Config) { dst.MaxPathWidth = src.MaxPathWidth },
	"max-child-id":    func(dst, src *Config) { dst.MaxChildID = src.MaxChildID },
	"min-code-len":    func(dst, src *Config) { dst.MinCodeLength = src.MinCodeLength },
	"max-code-len":    func(dst, src *Config) { dst.MaxCodeLength = src.MaxCodeLength },
	"num-threads":     func(dst, src *Config) { dst.NumThreads = src.NumThreads },
	"backlog":         func(dst, src *Config) { dst.Backlog = src.Backlog },
	"timeout":         func(dst, src *Config) { dst.TimeoutMinutes = src.TimeoutMinutes },
	"no-hash":         func(dst, src *Config) { dst.NoHash = src.NoHash },
	"hash":            func(dst, src *Config) { dst.HashFunc = src.HashFunc },
	"variables":       func(dst, src *Config) { dst.OnlyVars = src.OnlyVars },
	"obfuscate":       func(dst, src *Config) { dst.Obfuscate = src.Obfuscate },
	"seed":            func(dst, src *Config) { dst.Seed = src.Seed },
	"pretty-print":    func(dst, src *Config) { dst.PrettyPrint = src.PrettyPrint },
	"lang":            func(dst, src *Config) { dst.Languages = append([]string(nil), src.Languages...) },
}

// Apply copies every changed flag into cfg and validates the result.
func (f *Flags) Apply(cfg *Config) error {
	f.fs.Visit(func(fl *pflag.Flag) {
		if set, ok := flagFields[fl.Name]; ok {
			set(cfg, &f.val)
		}
	})
	return cfg.Validate()
}
