package app

import (
	"context"

	"javaindex/internal/core/watcher"
)

// StartWatcher watches every repo root and re-indexes changed files with
// ctx until the returned watcher is closed.
func (ix *Indexer) StartWatcher(ctx context.Context) (*watcher.Watcher, error) {
	cfg := ix.Config()
	w, err := watcher.NewWatcher(
		cfg.Watch.Debounce,
		cfg.Exclude.Dirs,
		cfg.Exclude.Files,
		func(paths []string) { ix.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return nil, err
	}

	var testSuffixes []string
	if !cfg.Index.IncludeTests {
		testSuffixes = ix.codeParser.TestFileSuffixes()
	}
	w.SetLanguageFilters(ix.codeParser.SupportedExtensions(), testSuffixes)

	roots := make([]string, 0, len(cfg.Repos))
	for _, repo := range cfg.Repos {
		roots = append(roots, repo.Root)
	}
	if err := w.Watch(roots); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}
