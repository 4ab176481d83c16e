package namestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusData/pathminer/internal/obfuscate"
)

func sampleNames() obfuscate.NameMap {
	return obfuscate.NameMap{
		0: {Name: "add", Placeholders: map[string]string{"VAR_3": "a", "VAR_17": "b"}},
		1: {Name: "run", Placeholders: map[string]string{"FUNC_9": "execute"}},
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestSaveNamesRequiresRun(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	err = s.SaveNames(context.Background(), "A.java", sampleNames())
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	run, err := s.BeginRun(ctx, "obfuscate=true")
	require.NoError(t, err)
	assert.Equal(t, run, s.RunID())
	require.NoError(t, s.SaveNames(ctx, "A.java", sampleNames()))

	entries, err := s.Lookup(ctx, run, "A.java")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{RunID: run, File: "A.java", MethodOrdinal: 0, Method: "add", Placeholder: "VAR_17", Original: "b"}, entries[0])
	assert.Equal(t, "VAR_3", entries[1].Placeholder)
	assert.Equal(t, "execute", entries[2].Original)

	m := NameMap(entries)
	orig, ok := m.Original(0, "VAR_3")
	assert.True(t, ok)
	assert.Equal(t, "a", orig)
	assert.Equal(t, "run", m[1].Name)
}

func TestSaveNamesReplaces(t *testing.T) {
	ctx := context.Background()
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	run, err := s.BeginRun(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.SaveNames(ctx, "A.java", sampleNames()))
	require.NoError(t, s.SaveNames(ctx, "A.java", obfuscate.NameMap{
		0: {Name: "sub", Placeholders: map[string]string{"VAR_1": "x"}},
	}))

	entries, err := s.Lookup(ctx, run, "A.java")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sub", entries[0].Method)
}

func TestLookupLatestRun(t *testing.T) {
	ctx := context.Background()
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	first, err := s.BeginRun(ctx, "first")
	require.NoError(t, err)
	require.NoError(t, s.SaveNames(ctx, "A.java", sampleNames()))
	second, err := s.BeginRun(ctx, "second")
	require.NoError(t, err)
	require.NoError(t, s.SaveNames(ctx, "A.java", obfuscate.NameMap{
		0: {Name: "mul", Placeholders: map[string]string{"VAR_2": "y"}},
	}))
	require.NotEqual(t, first, second)

	entries, err := s.Lookup(ctx, "", "A.java")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second, entries[0].RunID)

	entries, err = s.Lookup(ctx, "", "Missing.java")
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, "first", runs[1].Config)
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "names.db")

	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.BeginRun(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.SaveNames(ctx, "A.java", sampleNames()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())
	entries, err := s.Lookup(ctx, run, "A.java")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
