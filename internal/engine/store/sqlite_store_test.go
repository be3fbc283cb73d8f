package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"javaindex/internal/engine/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "index.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(repo, file string, score int, types ...index.TypeUsage) index.FileRecord {
	return index.FileRecord{RepoID: repo, File: file, Package: "com.acme", Types: types, Score: score}
}

func TestSQLiteStore_PutAndLookup(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	list := index.TypeUsage{TypeName: "java.util.List", Lines: []int{3, 9}, Properties: []string{"add"}}
	str := index.TypeUsage{TypeName: "java.lang.String", Lines: []int{4}}

	require.NoError(t, s.PutFile(ctx, record("r1", "A.java", 2, list), "h1"))
	require.NoError(t, s.PutFile(ctx, record("r1", "B.java", 7, list, str), "h2"))
	require.NoError(t, s.PutFile(ctx, record("r2", "C.java", 4, list), "h3"))

	got, err := s.LookupType(ctx, "java.util.List", 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"B.java", "C.java", "A.java"}, []string{got[0].File, got[1].File, got[2].File})
	assert.Equal(t, []int{3, 9}, got[0].Lines)
	assert.Equal(t, []string{"add"}, got[0].Properties)
	assert.Equal(t, "com.acme", got[0].Package)

	top, err := s.LookupType(ctx, "java.util.List", 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "B.java", top[0].File)

	strs, err := s.LookupType(ctx, "java.lang.String", 0)
	require.NoError(t, err)
	require.Len(t, strs, 1)
	assert.Empty(t, strs[0].Properties)

	none, err := s.LookupType(ctx, "  ", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_PutReplacesFile(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	list := index.TypeUsage{TypeName: "java.util.List", Lines: []int{1}}
	set := index.TypeUsage{TypeName: "java.util.Set", Lines: []int{2}}

	require.NoError(t, s.PutFile(ctx, record("r1", "A.java", 1, list), "h1"))
	// Populate the lookup cache, then make sure a write invalidates it.
	got, err := s.LookupType(ctx, "java.util.List", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.PutFile(ctx, record("r1", "A.java", 1, set), "h2"))

	got, err = s.LookupType(ctx, "java.util.List", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	hash, ok, err := s.FileHash(ctx, "r1", "A.java")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "h2", hash)
}

func TestSQLiteStore_LookupResultsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	list := index.TypeUsage{TypeName: "java.util.List", Lines: []int{3, 9}, Properties: []string{"add"}}
	require.NoError(t, s.PutFile(ctx, record("r1", "A.java", 2, list), "h1"))
	require.NoError(t, s.PutFile(ctx, record("r1", "B.java", 1, list), "h2"))

	first, err := s.LookupType(ctx, "java.util.List", 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	first[0].File = "Mutated.java"
	first[0].Lines[0] = 100
	first[0].Properties[0] = "clear"
	_ = append(first[:1], Usage{File: "Injected.java"})

	again, err := s.LookupType(ctx, "java.util.List", 0)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, "A.java", again[0].File)
	assert.Equal(t, []int{3, 9}, again[0].Lines)
	assert.Equal(t, []string{"add"}, again[0].Properties)
	assert.Equal(t, "B.java", again[1].File)
}

func TestSQLiteStore_WritesAdvanceCacheGeneration(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	list := index.TypeUsage{TypeName: "java.util.List", Lines: []int{1}}
	require.NoError(t, s.PutFile(ctx, record("r1", "A.java", 1, list), "h1"))

	// Fills compare against the generation read before querying.
	s.cacheMu.Lock()
	gen := s.gen
	s.cacheMu.Unlock()
	require.NoError(t, s.DeleteFile(ctx, "r1", "A.java"))
	assert.NotEqual(t, gen, s.gen)

	got, err := s.LookupType(ctx, "java.util.List", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, cached := s.cache.Get("java.util.List")
	assert.True(t, cached)

	require.NoError(t, s.PutFile(ctx, record("r1", "B.java", 1, list), "h2"))
	_, cached = s.cache.Get("java.util.List")
	assert.False(t, cached)
}

func TestSQLiteStore_DeleteAndPrune(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	list := index.TypeUsage{TypeName: "java.util.List", Lines: []int{1}}

	for _, f := range []string{"A.java", "B.java", "C.java"} {
		require.NoError(t, s.PutFile(ctx, record("r1", f, 1, list), f))
	}
	require.NoError(t, s.PutFile(ctx, record("r2", "A.java", 1, list), "x"))

	require.NoError(t, s.DeleteFile(ctx, "r1", "A.java"))
	_, ok, err := s.FileHash(ctx, "r1", "A.java")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := s.PruneRepo(ctx, "r1", []string{"C.java"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	files, err := s.Files(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C.java"}, files)

	files, err = s.Files(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, []string{"A.java"}, files)
}

func TestSQLiteStore_RunsAndStats(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.LastRun)

	require.NoError(t, s.BeginRun(ctx, "run-1"))
	require.NoError(t, s.PutFile(ctx, record("r1", "A.java", 3,
		index.TypeUsage{TypeName: "java.util.List", Lines: []int{1}},
		index.TypeUsage{TypeName: "java.util.Map", Lines: []int{2}},
	), "h"))
	require.NoError(t, s.FinishRun(ctx, Run{ID: "run-1", Indexed: 1, Skipped: 2, Failed: 1}))

	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Runs)
	assert.Equal(t, 1, st.Files)
	assert.Equal(t, 2, st.Types)
	assert.Equal(t, 2, st.Usages)
	require.NotNil(t, st.LastRun)
	assert.Equal(t, "run-1", st.LastRun.ID)
	assert.Equal(t, 2, st.LastRun.Skipped)
	assert.False(t, st.LastRun.FinishedAt.IsZero())

	assert.Error(t, s.FinishRun(ctx, Run{ID: "missing"}))
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open("  ", 0)
	assert.Error(t, err)

	dir := t.TempDir()
	_, err = Open(dir, 0)
	assert.Error(t, err)

	path := filepath.Join(dir, "reopen.db")
	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.PutFile(context.Background(), record("r", "A.java", 1), "h"))
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	s, err = Open(path, 0)
	require.NoError(t, err)
	defer s.Close()
	files, err := s.Files(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, []string{"A.java"}, files)
}
