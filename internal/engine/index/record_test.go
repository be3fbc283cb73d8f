package index

import (
	"testing"

	"javaindex/internal/engine/parser"
	"javaindex/internal/engine/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartSource = `package com.acme;
import java.util.List;
class Cart {
    List<String> items;
    void add(String item) {
        items.add(item);
        items.size();
        int n = item.length();
    }
}
enum Mode { FAST }
`

func resolveSource(t *testing.T, src string) *resolver.Result {
	t.Helper()
	file, err := parser.NewParser(parser.DefaultJavaSpec()).ParseFile("Cart.java", []byte(src))
	require.NoError(t, err)
	res, err := resolver.New().Resolve(file.Root)
	require.NoError(t, err)
	return res
}

func TestBuild_CollectsUsagesAndProperties(t *testing.T) {
	rec := Build("repo-1", "src/Cart.java", resolveSource(t, cartSource), Options{})

	assert.Equal(t, "repo-1", rec.RepoID)
	assert.Equal(t, "src/Cart.java", rec.File)
	assert.Equal(t, "com.acme", rec.Package)
	assert.Equal(t, []TypeUsage{
		{TypeName: "java.lang.String", Lines: []int{4, 5, 6, 8}, Properties: []string{"length"}},
		{TypeName: "java.util.List", Lines: []int{4, 6, 7}, Properties: []string{"add", "size"}},
	}, rec.Types)
	assert.Equal(t, 6, rec.Score)
}

func TestBuild_IgnoreAndTestFlag(t *testing.T) {
	rec := Build("repo-1", "src/CartTest.java", resolveSource(t, cartSource), Options{
		Ignore: []string{"java.lang.String"},
		Test:   true,
	})
	require.Len(t, rec.Types, 1)
	assert.Equal(t, "java.util.List", rec.Types[0].TypeName)
	assert.True(t, rec.Test)
	assert.Equal(t, Score(1, 3), rec.Score)
}

func TestBuild_NilResult(t *testing.T) {
	rec := Build("r", "A.java", nil, Options{})
	assert.Empty(t, rec.Types)
	assert.Zero(t, rec.Score)
}

func TestBuild_PrimitivesOnly(t *testing.T) {
	rec := Build("r", "A.java", resolveSource(t, "class A { int x; void m(long y) { x = 1; } }"), Options{})
	assert.Empty(t, rec.Types)
	assert.Zero(t, rec.Score)
}

func TestScore(t *testing.T) {
	cases := []struct {
		types, lines, want int
	}{
		{0, 10, 0},
		{1, 0, 0},
		{1, 1, 1},
		{2, 7, 6},
		{3, 15, 12},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Score(tc.types, tc.lines), "types=%d lines=%d", tc.types, tc.lines)
	}
}

func TestRawName(t *testing.T) {
	assert.Equal(t, "java.util.Map", RawName("java.util.Map<java.lang.String,java.util.List>"))
	assert.Equal(t, "java.lang.String", RawName("java.lang.String"))
	assert.Equal(t, "", RawName(""))
}
