package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/DeusData/pathminer/internal/lang"
	"github.com/DeusData/pathminer/internal/leaves"
	"github.com/DeusData/pathminer/internal/parser"
	"github.com/DeusData/pathminer/internal/tree"
)

const sample = `class Sample {
  int add(int a, int b) {
    int sum = a + b;
    return sum;
  }
}
`

func printArena(t *tree.Tree) {
	for i := range t.Nodes {
		n := t.At(i)
		prefix := strings.Repeat("  ", t.Depth(i))
		line := fmt.Sprintf("%s[%d] %s child=%d", prefix, i, n.Kind, n.ChildID)
		if n.Leaf {
			line += fmt.Sprintf(" leaf=%q name=%q", n.Text, n.Name)
		}
		if n.Declares {
			line += " declares"
		}
		if n.IsMethodName {
			line += " method-name"
		}
		fmt.Println(line)
	}
}

func main() {
	langName := pflag.String("lang", "", "language (default: from the file extension, or java)")
	pflag.Parse()

	l := lang.Java
	source := []byte(sample)
	if pflag.NArg() > 0 {
		path := pflag.Arg(0)
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		source = data
		if detected, ok := lang.LanguageForExtension(strings.ToLower(filepath.Ext(path))); ok {
			l = detected
		}
	}
	if *langName != "" {
		parsed, ok := lang.Parse(*langName)
		if !ok {
			fmt.Fprintln(os.Stderr, "unknown language:", *langName)
			os.Exit(1)
		}
		l = parsed
	}

	parsed, err := parser.ParseWithFallback(l, source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer parsed.Close()
	if parsed.Wrapped {
		fmt.Printf("=== wrapped source ===\n%s\n", parsed.Source)
	}

	arena, units, err := leaves.New(lang.ForLanguage(l)).Collect(context.Background(), parsed.Tree.RootNode(), parsed.Source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("=== %s arena (%d nodes) ===\n", strings.ToUpper(string(l)), arena.Len())
	printArena(arena)

	for _, u := range units {
		names := make([]string, len(u.Leaves))
		for i, idx := range u.Leaves {
			names[i] = arena.At(idx).Name
		}
		fmt.Printf("\n=== method %d %s (length %d, %d leaves) ===\n%s\n",
			u.Ordinal, u.Name, u.Length, len(u.Leaves), strings.Join(names, " "))
	}
}
