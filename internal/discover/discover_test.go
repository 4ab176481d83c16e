package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/DeusData/pathminer/internal/lang"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func relPaths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestDiscoverBasic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "Main.java"), "class Main {}\n")
	writeFile(t, filepath.Join(dir, "app.py"), "def main(): pass\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# readme\n")

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got, want := relPaths(files), []string{"app.py", "src/Main.java"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("Path %q is not absolute", f.Path)
		}
	}
	if files[1].Language != lang.Java {
		t.Errorf("Main.java language = %s", files[1].Language)
	}
}

func TestDiscoverLanguageFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "A.java"), "class A {}\n")
	writeFile(t, filepath.Join(dir, "b.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "c.go"), "package c\n")

	files, err := Discover(context.Background(), dir, &Options{Languages: []lang.Language{lang.Java}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := relPaths(files); !reflect.DeepEqual(got, []string{"A.java"}) {
		t.Errorf("files = %v, want [A.java]", got)
	}
}

func TestDiscoverIgnores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Keep.java"), "class Keep {}\n")
	writeFile(t, filepath.Join(dir, "node_modules", "lib.js"), "function f() {}\n")
	writeFile(t, filepath.Join(dir, "target", "Gen.java"), "class Gen {}\n")
	writeFile(t, filepath.Join(dir, "web", "app.min.js"), "function f(){}\n")
	writeFile(t, filepath.Join(dir, "fixtures", "Big.java"), "class Big {}\n")
	writeFile(t, filepath.Join(dir, "SkipMe.java"), "class SkipMe {}\n")
	writeFile(t, filepath.Join(dir, IgnoreFileName), "# test data\nfixtures\nSkip*.java\n")

	files, err := Discover(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got := relPaths(files); !reflect.DeepEqual(got, []string{"Keep.java"}) {
		t.Errorf("files = %v, want [Keep.java]", got)
	}
}

func TestDiscoverCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Main.java"), "class Main {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Discover(ctx, dir, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPaths(t *testing.T) {
	files := []FileInfo{{Path: "/a/X.java"}, {Path: "/a/Y.java"}}
	if got := Paths(files); !reflect.DeepEqual(got, []string{"/a/X.java", "/a/Y.java"}) {
		t.Errorf("Paths = %v", got)
	}
}
