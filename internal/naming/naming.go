// Package naming normalizes identifier text into the name vocabulary used by
// feature records.
package naming

import (
	"strings"
	"unicode"
)

const (
	// Blank is the fallback for names that normalize to nothing.
	Blank = "BLANK"
	// Separator joins sub-tokens of a method or variable name.
	Separator = "|"
	// MaxLeafNameLength caps normalized leaf names.
	MaxLeafNameLength = 50

	MethodName   = "METHOD_NAME"
	VariableName = "VARIABLE_NAME"
)

// NormalizeName lowercases s and strips escapes, whitespace, quotes,
// apostrophes, commas and non-printables, then keeps ASCII letters only. If no
// letters remain, the stripped text with spaces as underscores is used; if that
// is empty too, def is returned.
func NormalizeName(s, def string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, `\n`, "")
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) && r != ' ':
		case r == '"' || r == '\'' || r == ',':
		case !unicode.IsPrint(r):
		default:
			b.WriteRune(r)
		}
	}
	careful := strings.TrimSpace(b.String())

	var letters strings.Builder
	for _, r := range careful {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters.WriteRune(r)
		}
	}
	if letters.Len() > 0 {
		return letters.String()
	}
	careful = strings.Join(strings.Fields(careful), "_")
	if careful != "" {
		return careful
	}
	return def
}

// SplitSubtokens splits s at camelCase boundaries, underscores, digits and
// whitespace, normalizes each part and drops empty parts.
func SplitSubtokens(s string) []string {
	var parts []string
	for _, raw := range splitRaw(strings.TrimSpace(s)) {
		if n := NormalizeName(raw, ""); n != "" {
			parts = append(parts, n)
		}
	}
	return parts
}

// JoinSubtokens returns the sub-tokens of s joined by Separator, or s itself
// when it has none.
func JoinSubtokens(s string) string {
	parts := SplitSubtokens(s)
	if len(parts) == 0 {
		return s
	}
	return strings.Join(parts, Separator)
}

// splitRaw cuts between a lower and an upper letter, before the last capital
// of an acronym followed by a lowercase letter (HTTPServer -> HTTP Server),
// and on '_', digits and whitespace (which are consumed).
func splitRaw(s string) []string {
	rs := []rune(s)
	var out []string
	start := 0
	flush := func(end int) {
		if end > start {
			out = append(out, string(rs[start:end]))
		}
	}
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '_' || unicode.IsDigit(r) || unicode.IsSpace(r) {
			flush(i)
			start = i + 1
			continue
		}
		if i == start {
			continue
		}
		prev := rs[i-1]
		if unicode.IsLower(prev) && unicode.IsUpper(r) {
			flush(i)
			start = i
			continue
		}
		if unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(rs) && unicode.IsLower(rs[i+1]) {
			flush(i)
			start = i
		}
	}
	flush(len(rs))
	return out
}

// Obfuscation placeholders. Leaves carrying one keep it verbatim.
const (
	VarPrefix  = "VAR_"
	FuncPrefix = "FUNC_"
	Constant   = "CONSTANT"
	ClassField = "CLASS_FIELD"
)

// IsPlaceholder reports whether s is an obfuscation placeholder.
func IsPlaceholder(s string) bool {
	switch s {
	case Constant, ClassField:
		return true
	}
	for _, p := range []string{VarPrefix, FuncPrefix} {
		if rest, ok := strings.CutPrefix(s, p); ok && rest != "" && allDigits(rest) {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
