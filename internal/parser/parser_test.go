package parser

import (
	"errors"
	"sort"
	"strings"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/pathminer/internal/lang"
)

func TestParseGo(t *testing.T) {
	source := []byte(`package main

func Hello() string {
	return "hello"
}

func Add(a, b int) int {
	return a + b
}
`)
	tree, err := Parse(lang.Go, source)
	if err != nil {
		t.Fatalf("Parse Go: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		t.Fatal("root node is nil")
	}

	var funcCount int
	Walk(root, func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			funcCount++
		}
		return true
	})
	if funcCount != 2 {
		t.Errorf("expected 2 function_declarations, got %d", funcCount)
	}
}

func TestParsePython(t *testing.T) {
	source := []byte(`def greet(name):
    return f"Hello, {name}"

class MyClass:
    def method(self):
        pass
`)
	tree, err := Parse(lang.Python, source)
	if err != nil {
		t.Fatalf("Parse Python: %v", err)
	}
	defer tree.Close()

	var funcCount, classCount int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			funcCount++
		case "class_definition":
			classCount++
		}
		return true
	})
	if funcCount != 2 {
		t.Errorf("expected 2 function_definitions, got %d", funcCount)
	}
	if classCount != 1 {
		t.Errorf("expected 1 class_definition, got %d", classCount)
	}
}

func TestParseUnsupported(t *testing.T) {
	if _, err := Parse(lang.Language("cobol"), []byte("x")); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestParseWithFallbackRawClass(t *testing.T) {
	src := []byte(`class A { int f(int x) { return x + 1; } }`)
	p, err := ParseWithFallback(lang.Java, src)
	if err != nil {
		t.Fatalf("ParseWithFallback: %v", err)
	}
	defer p.Close()
	if p.Wrapped {
		t.Error("complete class should parse without wrapping")
	}
	if string(p.Source) != string(src) {
		t.Errorf("source changed: %q", p.Source)
	}
}

func TestParseWithFallbackStatements(t *testing.T) {
	src := []byte(`int a = 1; int b = a + 2;`)
	p, err := ParseWithFallback(lang.Java, src)
	if err != nil {
		t.Fatalf("ParseWithFallback: %v", err)
	}
	defer p.Close()
	if p.Tree.RootNode().HasError() {
		t.Error("tree has errors")
	}
	if !strings.Contains(string(p.Source), string(src)) {
		t.Errorf("source lost: %q", p.Source)
	}
}

func TestParseWithFallbackConstructor(t *testing.T) {
	// Only valid as a class member; the method-body wrapper must fail first.
	src := []byte(`Test() { super(); }`)
	p, err := ParseWithFallback(lang.Java, src)
	if err != nil {
		t.Fatalf("ParseWithFallback: %v", err)
	}
	defer p.Close()
	if !p.Wrapped {
		t.Fatal("constructor snippet should need a wrapper")
	}
	if string(p.Source) != "public class Test {Test() { super(); }}" {
		t.Errorf("expected class-only wrapper, got %q", p.Source)
	}
}

func TestParseWithFallbackUnparsable(t *testing.T) {
	_, err := ParseWithFallback(lang.Java, []byte(`class { ( ( ( `))
	if !errors.Is(err, ErrUnparsable) {
		t.Fatalf("expected ErrUnparsable, got %v", err)
	}
}

func declaredNames(t *testing.T, l lang.Language, src string) []string {
	t.Helper()
	p, err := ParseWithFallback(l, []byte(src))
	if err != nil {
		t.Fatalf("ParseWithFallback %s: %v", l, err)
	}
	defer p.Close()

	syn := NewSyntax(lang.ForLanguage(l))
	ids := syn.DeclaredIdentifiers(p.Tree.RootNode())
	var names []string
	Walk(p.Tree.RootNode(), func(n *tree_sitter.Node) bool {
		if ids[n.Id()] {
			names = append(names, NodeText(n, p.Source))
		}
		return true
	})
	sort.Strings(names)
	return names
}

func TestDeclaredIdentifiers(t *testing.T) {
	tests := []struct {
		lang lang.Language
		src  string
		want string
	}{
		{lang.Java, `class A { int f(int x, String y) { int z = x; for (String s : list) {} try {} catch (Exception e) {} return z; } }`, "e,s,x,y,z"},
		{lang.Java, `class A { void f() { run(v -> v + 1); } }`, "v"},
		{lang.Python, "def f(a, b=1, *rest):\n    c, d = a, b\n    for i in rest:\n        pass\n", "a,b,c,d,i,rest"},
		{lang.Go, "package p\nfunc f(a, b int) { c := a; var d = b; for i := range c {} }\n", "a,b,c,d,i"},
		{lang.JavaScript, "function f(a, b = 2) { let c = a; try {} catch (e) {} }\n", "a,b,c,e"},
	}
	for _, tt := range tests {
		got := strings.Join(declaredNames(t, tt.lang, tt.src), ",")
		if got != tt.want {
			t.Errorf("%s declared = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestCalleeAndMember(t *testing.T) {
	src := []byte(`class A { void f() { foo(1); this.bar(); int y = obj.field; } }`)
	p, err := ParseWithFallback(lang.Java, src)
	if err != nil {
		t.Fatalf("ParseWithFallback: %v", err)
	}
	defer p.Close()

	syn := NewSyntax(lang.ForLanguage(lang.Java))
	var callees, members []string
	Walk(p.Tree.RootNode(), func(n *tree_sitter.Node) bool {
		if c := syn.CalleeName(n); c != nil {
			callees = append(callees, NodeText(c, p.Source))
		}
		if m := syn.MemberName(n); m != nil {
			members = append(members, NodeText(m, p.Source))
		}
		return true
	})
	if strings.Join(callees, ",") != "foo,bar" {
		t.Errorf("callees = %v", callees)
	}
	if strings.Join(members, ",") != "field" {
		t.Errorf("members = %v", members)
	}
}

func TestOperator(t *testing.T) {
	src := []byte(`class A { int f(int a, int b) { return a + b; } }`)
	p, err := ParseWithFallback(lang.Java, src)
	if err != nil {
		t.Fatalf("ParseWithFallback: %v", err)
	}
	defer p.Close()

	var op string
	Walk(p.Tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "binary_expression" {
			op = Operator(n, p.Source)
		}
		return true
	})
	if op != "+" {
		t.Errorf("operator = %q, want +", op)
	}
}
