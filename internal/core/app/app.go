package app

import (
	"context"
	"fmt"
	"sync"

	"javaindex/internal/core/config"
	"javaindex/internal/core/ports"
	"javaindex/internal/engine/store"
	"javaindex/internal/shared/util"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Indexer drives parsing, resolution and persistence of Java repositories.
type Indexer struct {
	mu      sync.RWMutex
	cfg     *config.Config
	matcher *util.PathMatcher
	limiter *util.Limiter

	codeParser ports.CodeParser
	store      ports.UsageStore

	// Content hashes of files already persisted, keyed by repo and path.
	hashes *lru.Cache[string, string]
}

func New(cfg *config.Config, codeParser ports.CodeParser, usageStore ports.UsageStore) (*Indexer, error) {
	if cfg == nil || codeParser == nil || usageStore == nil {
		return nil, fmt.Errorf("indexer requires config, parser and store")
	}
	hashes, err := lru.New[string, string](cfg.Index.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create hash cache: %w", err)
	}
	ix := &Indexer{
		codeParser: codeParser,
		store:      usageStore,
		hashes:     hashes,
	}
	if err := ix.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return ix, nil
}

// Reconfigure swaps in a new configuration. Runs already in flight keep the
// settings they started with.
func (ix *Indexer) Reconfigure(cfg *config.Config) error {
	matcher, err := util.NewPathMatcher(cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return err
	}
	limiter := util.NewLimiter(cfg.Index.RateLimit, cfg.Index.Burst)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.cfg = cfg
	ix.matcher = matcher
	ix.limiter = limiter
	ix.hashes.Resize(cfg.Index.CacheSize)
	return nil
}

func (ix *Indexer) Config() *config.Config {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.cfg
}

// runState is the configuration one run operates on.
type runState struct {
	cfg     *config.Config
	matcher *util.PathMatcher
	limiter *util.Limiter
}

func (ix *Indexer) snapshot() runState {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return runState{cfg: ix.cfg, matcher: ix.matcher, limiter: ix.limiter}
}

// Query lists files using typeName, best score first.
func (ix *Indexer) Query(ctx context.Context, typeName string, limit int) ([]store.Usage, error) {
	return ix.store.LookupType(ctx, typeName, limit)
}

func (ix *Indexer) Stats(ctx context.Context) (store.Stats, error) {
	return ix.store.Stats(ctx)
}

func hashKey(repoID, rel string) string {
	return repoID + "\x00" + rel
}
