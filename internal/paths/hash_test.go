package paths

import "testing"

func TestJavaStringHash(t *testing.T) {
	tests := map[string]string{
		"":      "0",
		"a":     "97",
		"hello": "99162322",
	}
	for in, want := range tests {
		if got := (JavaString{}).Hash(in); got != want {
			t.Errorf("JavaString(%q) = %s, want %s", in, got, want)
		}
	}
	// Wraps like a Java int.
	if got := (JavaString{}).Hash("polygenelubricants"); got != "-2147483648" {
		t.Errorf("JavaString overflow = %s", got)
	}
}

func TestNewHasher(t *testing.T) {
	tests := []struct {
		name   string
		noHash bool
		want   Hasher
	}{
		{"", false, XXH3{}},
		{"xxh3", false, XXH3{}},
		{"java", false, JavaString{}},
		{"java", true, Raw{}},
	}
	for _, tt := range tests {
		h, err := NewHasher(tt.name, tt.noHash)
		if err != nil {
			t.Fatalf("NewHasher(%q): %v", tt.name, err)
		}
		if h != tt.want {
			t.Errorf("NewHasher(%q, %v) = %T, want %T", tt.name, tt.noHash, h, tt.want)
		}
	}
	if _, err := NewHasher("md5", false); err == nil {
		t.Error("expected error for unknown hash")
	}
}

func TestHighway(t *testing.T) {
	h, err := NewHasher("highway", false)
	if err != nil {
		t.Fatalf("NewHasher highway: %v", err)
	}
	a, b := h.Hash("(identifier0)^(block)"), h.Hash("(identifier0)^(block)")
	if a != b {
		t.Errorf("highway not deterministic: %s vs %s", a, b)
	}
	other, err := NewHighway([]byte("0123456789ABCDEF0123456789ABCDEF"))
	if err != nil {
		t.Fatalf("NewHighway: %v", err)
	}
	if other.Hash("(identifier0)^(block)") == a {
		t.Error("different keys produced the same hash")
	}
	if _, err := NewHighway([]byte("short")); err == nil {
		t.Error("expected error for short key")
	}
}
