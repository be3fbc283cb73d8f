package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"javaindex/internal/core/config"
	"javaindex/internal/core/errors"
	"javaindex/internal/engine/parser"
	"javaindex/internal/engine/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartJava = `package com.shop;

import java.util.List;

class Cart {
    List<String> items;

    int size() {
        return items.size();
    }
}
`

const orderJava = `package com.shop;

class Order {
    Cart cart;
    String id;
}
`

type failingParser struct {
	*parser.Parser
	fail string
}

func (p failingParser) ParseFile(path string, content []byte) (*parser.File, error) {
	if strings.HasSuffix(path, p.fail) {
		return nil, errors.New(errors.CodeParseError, "boom")
	}
	return p.Parser.ParseFile(path, content)
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newTestIndexer(t *testing.T, root string, codeParser *failingParser) (*Indexer, *store.SQLiteStore) {
	t.Helper()
	cfg := config.Default(root)
	cfg.Repos[0].ID = "shop"
	cfg.Index.Workers = 2
	cfg.Exclude.Files = []string{"*Generated.java"}

	s, err := store.Open(filepath.Join(t.TempDir(), "index.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	p := failingParser{Parser: parser.NewParser(parser.DefaultJavaSpec())}
	if codeParser != nil {
		p = *codeParser
	}
	ix, err := New(cfg, p, s)
	require.NoError(t, err)
	return ix, s
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}

func TestIndexer_IndexRepos(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/com/shop/Cart.java", cartJava)
	writeFile(t, root, "src/com/shop/Order.java", orderJava)
	writeFile(t, root, "src/com/shop/CartTest.java", cartJava)
	writeFile(t, root, "src/com/shop/CartGenerated.java", cartJava)
	writeFile(t, root, "target/classes/Copy.java", cartJava)
	writeFile(t, root, "README.md", "# shop")

	ix, s := newTestIndexer(t, root, nil)
	ctx := context.Background()

	summary, err := ix.IndexRepos(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.Indexed)
	assert.Zero(t, summary.Failed)

	usages, err := s.LookupType(ctx, "java.util.List", 0)
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, "shop", usages[0].RepoID)
	assert.Equal(t, "src/com/shop/Cart.java", usages[0].File)
	assert.Equal(t, "com.shop", usages[0].Package)
	assert.Equal(t, []string{"size"}, usages[0].Properties)

	carts, err := ix.Query(ctx, "com.shop.Cart", 0)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.Equal(t, "src/com/shop/Order.java", carts[0].File)

	again, err := ix.IndexRepos(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Indexed)
	assert.Equal(t, 2, again.Unchanged)

	stats, err := ix.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Runs)
	assert.Equal(t, 2, stats.Files)
}

func TestIndexer_UnchangedSurvivesRestart(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Cart.java", cartJava)
	ix, s := newTestIndexer(t, root, nil)
	ctx := context.Background()

	_, err := ix.IndexRepos(ctx)
	require.NoError(t, err)

	fresh, err := New(ix.Config(), ix.codeParser, s)
	require.NoError(t, err)
	summary, err := fresh.IndexRepos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Zero(t, summary.Indexed)
}

func TestIndexer_FailingFileIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Cart.java", cartJava)
	writeFile(t, root, "Order.java", orderJava)

	ix, s := newTestIndexer(t, root, &failingParser{
		Parser: parser.NewParser(parser.DefaultJavaSpec()),
		fail:   "Order.java",
	})
	ctx := context.Background()

	summary, err := ix.IndexRepos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 1, summary.Failed)

	files, err := s.Files(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cart.java"}, files)
}

func TestIndexer_PrunesDeletedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Cart.java", cartJava)
	order := writeFile(t, root, "Order.java", orderJava)

	ix, s := newTestIndexer(t, root, nil)
	ctx := context.Background()
	_, err := ix.IndexRepos(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(order))
	summary, err := ix.IndexRepos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Removed)

	files, err := s.Files(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cart.java"}, files)
}

func TestIndexer_IndexFiles(t *testing.T) {
	root := t.TempDir()
	cart := writeFile(t, root, "Cart.java", cartJava)
	order := writeFile(t, root, "Order.java", orderJava)

	ix, s := newTestIndexer(t, root, nil)
	ctx := context.Background()
	repo := ix.Config().Repos[0]

	summary, err := ix.IndexFiles(ctx, repo, []string{cart, "Order.java", "../outside/X.java", "notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Indexed)

	require.NoError(t, os.Remove(order))
	writeFile(t, root, "Cart.java", strings.Replace(cartJava, "List<String>", "java.util.Set<String>", 1))

	summary, err = ix.IndexFiles(ctx, repo, []string{cart, order})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 1, summary.Removed)

	files, err := s.Files(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cart.java"}, files)

	sets, err := s.LookupType(ctx, "java.util.Set", 0)
	require.NoError(t, err)
	assert.Len(t, sets, 1)
}

func TestIndexer_HandleChanges(t *testing.T) {
	root := t.TempDir()
	cart := writeFile(t, root, "Cart.java", cartJava)

	ix, s := newTestIndexer(t, root, nil)
	ctx := context.Background()
	ix.HandleChanges(ctx, []string{cart, "/elsewhere/Other.java"})

	files, err := s.Files(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cart.java"}, files)
}

func TestIndexer_ScanRepo(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/Small.java", orderJava)
	writeFile(t, root, "a/Big.java", orderJava+strings.Repeat("// pad\n", 200))
	writeFile(t, root, "a/SmallTest.java", orderJava)
	writeFile(t, root, "build/Out.java", orderJava)

	ix, _ := newTestIndexer(t, root, nil)
	cfg := *ix.Config()
	cfg.Index.MaxFileBytes = 512
	require.NoError(t, ix.Reconfigure(&cfg))

	files, skipped, err := ix.ScanRepo(cfg.Repos[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"a/Small.java"}, files)
	assert.Equal(t, 1, skipped)

	cfg.Index.IncludeTests = true
	require.NoError(t, ix.Reconfigure(&cfg))
	files, _, err = ix.ScanRepo(cfg.Repos[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"a/Small.java", "a/SmallTest.java"}, files)
}

func TestIndexer_ReconfigureRejectsBadPattern(t *testing.T) {
	ix, _ := newTestIndexer(t, t.TempDir(), nil)
	cfg := *ix.Config()
	cfg.Exclude.Dirs = []string{"[oops"}
	assert.Error(t, ix.Reconfigure(&cfg))
}

func TestIndexer_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Cart.java", cartJava)
	ix, _ := newTestIndexer(t, root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ix.IndexRepos(ctx)
	assert.Error(t, err)
}

func TestResolveFile(t *testing.T) {
	root := t.TempDir()
	cart := writeFile(t, root, "Cart.java", cartJava)

	report, err := ResolveFile(parser.NewParser(parser.DefaultJavaSpec()), cart, nil)
	require.NoError(t, err)
	assert.Equal(t, "com.shop", report.Package)
	assert.Equal(t, "java.util.List", report.Imports["List"])
	require.Len(t, report.Bindings, 1)
	assert.Equal(t, "items", report.Bindings[0].Name)
	assert.Equal(t, "java.util.List<java.lang.String>", report.Bindings[0].DeclaredType)
	assert.Equal(t, 6, report.Bindings[0].Line)
	assert.Equal(t, []int{6, 9}, report.Bindings[0].References)
	var line6 []string
	for _, tn := range report.TypeNames {
		if tn.Line == 6 {
			line6 = append(line6, tn.Name)
		}
	}
	assert.Contains(t, line6, "java.lang.String")
	assert.Equal(t, 4, report.Record.Score)

	_, err = ResolveFile(parser.NewParser(parser.DefaultJavaSpec()), filepath.Join(root, "Missing.java"), nil)
	assert.Error(t, err)
}

func TestHealthService_Check(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Cart.java", cartJava)
	ix, s := newTestIndexer(t, root, nil)
	_, err := ix.IndexRepos(context.Background())
	require.NoError(t, err)

	status := NewHealthService(ix).Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "ok (1 files, 2 types)", status.Components["store"])
	assert.Contains(t, status.Components, "last_run")
	assert.Equal(t, "ok (0 leased)", status.Components["parser"])

	require.NoError(t, s.Close())
	status = NewHealthService(ix).Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
}
