package app

import (
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"

	"javaindex/internal/core/config"
	"javaindex/internal/shared/observability"
)

// ScanRepo lists the repo's indexable sources as slash-separated paths
// relative to its root. Files over the size limit are counted as skipped.
func (ix *Indexer) ScanRepo(repo config.Repo) ([]string, int, error) {
	return ix.scanRepo(ix.snapshot(), repo)
}

func (ix *Indexer) scanRepo(st runState, repo config.Repo) ([]string, int, error) {
	var files []string
	skipped := 0

	err := filepath.WalkDir(repo.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(repo.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && st.matcher.ExcludeDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !ix.admit(st, rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("failed to stat file", "path", p, "error", err)
			return nil
		}
		if info.Size() > st.cfg.Index.MaxFileBytes {
			slog.Debug("skipping oversized file", "path", p, "bytes", info.Size())
			observability.FilesProcessedTotal.WithLabelValues(repo.ID, observability.OutcomeSkipped).Inc()
			skipped++
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return files, skipped, nil
}

// admit reports whether a repo-relative file path is indexed under st.
func (ix *Indexer) admit(st runState, rel string) bool {
	if !ix.codeParser.IsSupportedPath(rel) {
		return false
	}
	if !st.cfg.Index.IncludeTests && ix.codeParser.IsTestFile(rel) {
		return false
	}
	if st.matcher.ExcludeFile(rel) {
		return false
	}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if st.matcher.ExcludeDir(dir) {
			return false
		}
	}
	return true
}
