package paths

import (
	"fmt"
	"strconv"
	"unicode/utf16"

	"github.com/minio/highwayhash"
	"github.com/zeebo/xxh3"
)

// Hasher turns a serialized path into the token written to the output.
type Hasher interface {
	Hash(path string) string
}

// Hash function names accepted by NewHasher.
const (
	HashXXH3    = "xxh3"
	HashJava    = "java"
	HashHighway = "highway"
)

// NewHasher returns the named hasher, or Raw when noHash is set.
func NewHasher(name string, noHash bool) (Hasher, error) {
	if noHash {
		return Raw{}, nil
	}
	switch name {
	case "", HashXXH3:
		return XXH3{}, nil
	case HashJava:
		return JavaString{}, nil
	case HashHighway:
		h, err := NewHighway(defaultHighwayKey)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	return nil, fmt.Errorf("unknown hash function %q", name)
}

// Raw keeps paths unhashed.
type Raw struct{}

func (Raw) Hash(path string) string { return path }

// XXH3 hashes with 64-bit XXH3 and prints the value in decimal.
type XXH3 struct{}

func (XXH3) Hash(path string) string {
	return strconv.FormatUint(xxh3.HashString(path), 10)
}

// JavaString reproduces java.lang.String#hashCode so path vocabularies built
// by older Java extractors stay usable.
type JavaString struct{}

func (JavaString) Hash(path string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(path)) {
		h = 31*h + int32(u)
	}
	return strconv.FormatInt(int64(h), 10)
}

var defaultHighwayKey = []byte("pathminer-highwayhash-key-32byte")

// Highway hashes with keyed HighwayHash-64.
type Highway struct {
	key []byte
}

// NewHighway returns a Highway hasher. key must be 32 bytes.
func NewHighway(key []byte) (*Highway, error) {
	if _, err := highwayhash.New64(key); err != nil {
		return nil, fmt.Errorf("highwayhash key: %w", err)
	}
	return &Highway{key: key}, nil
}

func (h *Highway) Hash(path string) string {
	return strconv.FormatUint(highwayhash.Sum64([]byte(path), h.key), 10)
}
