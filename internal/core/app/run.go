package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"javaindex/internal/core/config"
	"javaindex/internal/core/ports"
	"javaindex/internal/engine/store"
	"javaindex/internal/shared/observability"
	"javaindex/internal/shared/util"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// IndexRepos indexes every configured repo and prunes stored files that no
// longer exist on disk.
func (ix *Indexer) IndexRepos(ctx context.Context) (ports.RunSummary, error) {
	st := ix.snapshot()
	return ix.withRun(ctx, func(summary *ports.RunSummary) error {
		for _, repo := range st.cfg.Repos {
			paths, skipped, err := ix.scanRepo(st, repo)
			if err != nil {
				return fmt.Errorf("scan repo %s: %w", repo.ID, err)
			}
			summary.Skipped += skipped

			if err := ix.indexPaths(ctx, st, repo, paths, summary); err != nil {
				return err
			}

			removed, err := ix.store.PruneRepo(ctx, repo.ID, paths)
			if err != nil {
				return fmt.Errorf("prune repo %s: %w", repo.ID, err)
			}
			summary.Removed += removed
		}
		return nil
	})
}

// IndexFiles re-indexes the given files of one repo. Paths may be absolute
// or relative to the repo root; files that no longer exist are removed from
// the store.
func (ix *Indexer) IndexFiles(ctx context.Context, repo config.Repo, paths []string) (ports.RunSummary, error) {
	st := ix.snapshot()
	return ix.withRun(ctx, func(summary *ports.RunSummary) error {
		var present []string
		for _, p := range paths {
			rel, ok := relativeTo(repo.Root, p)
			if !ok || !ix.admit(st, rel) {
				continue
			}
			abs := filepath.Join(repo.Root, filepath.FromSlash(rel))
			info, err := os.Stat(abs)
			switch {
			case errors.Is(err, os.ErrNotExist):
				if err := ix.store.DeleteFile(ctx, repo.ID, rel); err != nil {
					return fmt.Errorf("delete %s: %w", rel, err)
				}
				ix.hashes.Remove(hashKey(repo.ID, rel))
				summary.Removed++
			case err != nil:
				slog.Warn("failed to stat changed file", "path", abs, "error", err)
			case info.IsDir():
			case info.Size() > st.cfg.Index.MaxFileBytes:
				summary.Skipped++
			default:
				present = append(present, rel)
			}
		}
		return ix.indexPaths(ctx, st, repo, present, summary)
	})
}

// HandleChanges maps watcher events onto repos and re-indexes them.
func (ix *Indexer) HandleChanges(ctx context.Context, paths []string) {
	cfg := ix.Config()
	byRepo := make(map[int][]string)
	for _, p := range paths {
		for i, repo := range cfg.Repos {
			if util.HasPathPrefix(filepath.ToSlash(p), filepath.ToSlash(repo.Root)) {
				byRepo[i] = append(byRepo[i], p)
				break
			}
		}
	}
	for i, repo := range cfg.Repos {
		changed, ok := byRepo[i]
		if !ok {
			continue
		}
		summary, err := ix.IndexFiles(ctx, repo, changed)
		if err != nil {
			slog.Error("incremental index failed", "repo", repo.ID, "error", err)
			continue
		}
		slog.Info("re-indexed changes", "repo", repo.ID, "indexed", summary.Indexed, "removed", summary.Removed, "failed", summary.Failed)
	}
}

func (ix *Indexer) withRun(ctx context.Context, body func(*ports.RunSummary) error) (ports.RunSummary, error) {
	started := time.Now()
	summary := ports.RunSummary{RunID: uuid.NewString()}
	if err := ix.store.BeginRun(ctx, summary.RunID); err != nil {
		return summary, fmt.Errorf("begin run: %w", err)
	}

	runErr := body(&summary)

	finishErr := ix.store.FinishRun(context.WithoutCancel(ctx), store.Run{
		ID:         summary.RunID,
		FinishedAt: time.Now(),
		Indexed:    summary.Indexed,
		Skipped:    summary.Skipped + summary.Unchanged,
		Failed:     summary.Failed,
	})
	elapsed := time.Since(started)
	observability.IndexRunDuration.Observe(elapsed.Seconds())

	if runErr != nil {
		return summary, runErr
	}
	if finishErr != nil {
		return summary, fmt.Errorf("finish run: %w", finishErr)
	}
	slog.Info("index run complete",
		"run", summary.RunID,
		"indexed", summary.Indexed,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"removed", summary.Removed,
		"duration", elapsed.Round(time.Millisecond),
		"heap_mb", util.GetHeapAllocMB(),
	)
	return summary, nil
}

func (ix *Indexer) indexPaths(ctx context.Context, st runState, repo config.Repo, paths []string, summary *ports.RunSummary) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(st.cfg.Index.Workers)

	var mu sync.Mutex
	for _, rel := range paths {
		if err := st.limiter.Wait(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			outcome, err := ix.processFile(gctx, st.cfg, repo, rel)
			if err != nil {
				return err
			}
			observability.FilesProcessedTotal.WithLabelValues(repo.ID, outcome).Inc()

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case observability.OutcomeIndexed:
				summary.Indexed++
			case observability.OutcomeUnchanged:
				summary.Unchanged++
			case observability.OutcomeFailed:
				summary.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// relativeTo returns p as a slash path relative to root, and false when p
// lies outside root.
func relativeTo(root, p string) (string, bool) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
