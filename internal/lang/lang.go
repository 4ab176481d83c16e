package lang

// Language represents a supported programming language.
type Language string

const (
	Java       Language = "java"
	Python     Language = "python"
	Go         Language = "go"
	JavaScript Language = "javascript"
)

// AllLanguages returns all supported languages.
func AllLanguages() []Language {
	return []Language{Java, Python, Go, JavaScript}
}

// Wrapper is a fallback wrapping strategy for partial snippets: the source is
// retried as Prefix + source + Suffix when it does not parse on its own.
type Wrapper struct {
	Prefix string
	Suffix string
}

// LanguageSpec defines the tree-sitter node types that drive leaf collection,
// path labels and obfuscation for a language.
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	// MethodNodeTypes open a method unit.
	MethodNodeTypes []string
	// NameField is the field holding a method's declared name.
	NameField string

	// LiteralNodeTypes are atomic leaves; collection does not descend into them.
	LiteralNodeTypes []string
	// NullLiteralTypes are literal kinds that always pass through obfuscation.
	NullLiteralTypes []string
	// CommentNodeTypes are ignored entirely and do not take a child id.
	CommentNodeTypes []string
	// SkipNodeTypes are pruned with their subtree (e.g. Java modifiers).
	SkipNodeTypes []string
	// IdentifierTypes are renameable identifier leaves.
	IdentifierTypes []string

	// OperatorNodeTypes carry their operator in the type label (binary_expression:+).
	OperatorNodeTypes []string
	// DisambiguationNodeTypes are kinds whose children are not interchangeable;
	// path labels keep the child id around them.
	DisambiguationNodeTypes []string

	// DeclaratorFields maps a declaring node kind to the field holding the
	// declared identifier(s). An empty field means the first identifier child.
	DeclaratorFields map[string]string
	// DeclaratorListTypes are containers reached through a declarator field whose
	// identifier children are all declared (pattern_list, expression_list).
	DeclaratorListTypes []string
	// ParameterListTypes are kinds whose direct identifier children are parameters.
	ParameterListTypes []string

	// CallNameFields maps a call kind to the field holding the callee.
	CallNameFields map[string]string
	// MemberFields maps a member-access kind to the field holding the member name.
	MemberFields map[string]string

	// Wrappers are tried in order when the raw source has syntax errors.
	Wrappers []Wrapper
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".java").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == lang {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}

// Parse maps a user-supplied language name to a Language.
func Parse(name string) (Language, bool) {
	switch name {
	case "java":
		return Java, true
	case "python", "py":
		return Python, true
	case "go", "golang":
		return Go, true
	case "javascript", "js":
		return JavaScript, true
	}
	return "", false
}

// Set is a string set built from one of the spec's kind lists.
type Set map[string]bool

// NewSet builds a Set from kinds.
func NewSet(kinds []string) Set {
	s := make(Set, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}
