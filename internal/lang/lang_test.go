package lang

import "testing"

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		lang Language
	}{
		{".java", Java},
		{".py", Python},
		{".go", Go},
		{".js", JavaScript},
		{".mjs", JavaScript},
	}
	for _, tt := range tests {
		spec := ForExtension(tt.ext)
		if spec == nil {
			t.Errorf("ForExtension(%q) = nil, want %s", tt.ext, tt.lang)
			continue
		}
		if spec.Language != tt.lang {
			t.Errorf("ForExtension(%q).Language = %s, want %s", tt.ext, spec.Language, tt.lang)
		}
	}
}

func TestForLanguage(t *testing.T) {
	for _, lang := range AllLanguages() {
		spec := ForLanguage(lang)
		if spec == nil {
			t.Errorf("ForLanguage(%s) = nil", lang)
			continue
		}
		if len(spec.MethodNodeTypes) == 0 {
			t.Errorf("%s: no method node types", lang)
		}
		if len(spec.DisambiguationNodeTypes) != 4 {
			t.Errorf("%s: disambiguation set has %d kinds, want 4", lang, len(spec.DisambiguationNodeTypes))
		}
	}
}

func TestUnknownExtension(t *testing.T) {
	if spec := ForExtension(".xyz"); spec != nil {
		t.Errorf("ForExtension(.xyz) should be nil, got %v", spec)
	}
}

func TestJavaDisambiguationSet(t *testing.T) {
	spec := ForLanguage(Java)
	if spec == nil {
		t.Fatal("Java spec not registered")
	}
	set := NewSet(spec.DisambiguationNodeTypes)
	for _, kind := range []string{"assignment_expression", "array_access", "field_access", "method_invocation"} {
		if !set[kind] {
			t.Errorf("Java disambiguation set missing %s", kind)
		}
	}
	if len(spec.Wrappers) != 2 {
		t.Errorf("Java wrappers: got %d, want 2", len(spec.Wrappers))
	}
}

func TestParse(t *testing.T) {
	if l, ok := Parse("py"); !ok || l != Python {
		t.Errorf("Parse(py) = %s, %v", l, ok)
	}
	if _, ok := Parse("cobol"); ok {
		t.Error("Parse(cobol) should fail")
	}
}
