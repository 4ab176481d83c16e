package discover

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/DeusData/pathminer/internal/lang"
)

// IgnoreFileName is read from the corpus root when Options.IgnoreFile is unset.
const IgnoreFileName = ".pathminerignore"

// ignoredDirs are directory names never descended into.
var ignoredDirs = map[string]bool{
	".cache": true, ".eclipse": true, ".git": true, ".gradle": true,
	".hg": true, ".idea": true, ".maven": true, ".mypy_cache": true,
	".npm": true, ".pytest_cache": true, ".svn": true, ".tox": true,
	".venv": true, ".vscode": true, ".yarn": true, "__pycache__": true,
	"bin": true, "bower_components": true, "build": true, "dist": true,
	"node_modules": true, "obj": true, "out": true, "site-packages": true,
	"target": true, "vendor": true, "venv": true,
}

// generatedSuffixes mark files that are compiled, minified or generated.
var generatedSuffixes = []string{
	".min.js", ".bundle.js", "_pb2.py", ".pb.go", "_generated.go", "~",
}

// FileInfo represents a discovered source file.
type FileInfo struct {
	Path     string        // absolute path
	RelPath  string        // relative to the corpus root, slash separated
	Language lang.Language // detected language
}

// Options configures file discovery.
type Options struct {
	// IgnoreFile holds extra glob patterns, one per line.
	IgnoreFile string
	// Languages restricts discovery; empty means every registered language.
	Languages []lang.Language
}

func (o *Options) accepts(l lang.Language) bool {
	if o == nil || len(o.Languages) == 0 {
		return true
	}
	for _, want := range o.Languages {
		if want == l {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, name, rel string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// Discover walks root and returns every source file of an accepted language
// in lexical order. The list is complete before it is returned.
func Discover(ctx context.Context, root string, opts *Options) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ignorePath := filepath.Join(root, IgnoreFileName)
	if opts != nil && opts.IgnoreFile != "" {
		ignorePath = opts.IgnoreFile
	}
	patterns, _ := loadIgnoreFile(ignorePath)

	var files []FileInfo
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path != root && (ignoredDirs[d.Name()] || matchesAny(patterns, d.Name(), rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matchesAny(patterns, d.Name(), rel) {
			return nil
		}
		for _, suffix := range generatedSuffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				return nil
			}
		}

		l, ok := lang.LanguageForExtension(strings.ToLower(filepath.Ext(path)))
		if !ok || !opts.accepts(l) {
			return nil
		}
		files = append(files, FileInfo{Path: path, RelPath: rel, Language: l})
		return nil
	})
	return files, err
}

// Paths returns the absolute paths of files.
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}
