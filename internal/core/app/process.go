package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"javaindex/internal/core/config"
	"javaindex/internal/core/errors"
	"javaindex/internal/core/ports"
	"javaindex/internal/engine/index"
	"javaindex/internal/engine/parser"
	"javaindex/internal/engine/resolver"
	"javaindex/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Analyze parses and resolves one compilation unit.
func Analyze(codeParser ports.CodeParser, path string, content []byte) (*parser.File, *resolver.Result, error) {
	start := time.Now()
	file, err := codeParser.ParseFile(path, content)
	observability.ParsingDuration.WithLabelValues(parser.LanguageJava).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, nil, err
	}
	if file.ErrorCount > 0 {
		slog.Debug("parsed with syntax errors", "path", path, "errors", file.ErrorCount)
	}

	start = time.Now()
	res, err := resolver.New().Resolve(file.Root)
	observability.ResolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return file, nil, errors.AddContext(err, errors.CtxPath, path)
	}
	observability.UnresolvedNamesTotal.Add(float64(res.Unresolved()))
	return file, res, nil
}

// processFile indexes one file and returns its outcome. Failures local to
// the file are logged and reported as OutcomeFailed; a returned error means
// the run cannot continue.
func (ix *Indexer) processFile(ctx context.Context, cfg *config.Config, repo config.Repo, rel string) (string, error) {
	ctx, span := observability.Tracer.Start(ctx, "index.file", trace.WithAttributes(
		attribute.String("repo", repo.ID),
		attribute.String("path", rel),
	))
	defer span.End()

	abs := filepath.Join(repo.Root, filepath.FromSlash(rel))
	content, err := os.ReadFile(abs)
	if err != nil {
		slog.Warn("failed to read file", "path", abs, "error", err)
		span.SetStatus(codes.Error, err.Error())
		return observability.OutcomeFailed, nil
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	key := hashKey(repo.ID, rel)
	if cached, ok := ix.hashes.Get(key); ok && cached == hash {
		return observability.OutcomeUnchanged, nil
	}
	stored, ok, err := ix.store.FileHash(ctx, repo.ID, rel)
	if err != nil {
		return observability.OutcomeFailed, fmt.Errorf("read stored hash for %s: %w", rel, err)
	}
	if ok && stored == hash {
		ix.hashes.Add(key, hash)
		return observability.OutcomeUnchanged, nil
	}

	_, res, err := Analyze(ix.codeParser, abs, content)
	if err != nil {
		slog.Warn("failed to process file", "path", abs, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return observability.OutcomeFailed, nil
	}

	rec := index.Build(repo.ID, rel, res, index.Options{
		Ignore: cfg.Exclude.Types,
		Test:   ix.codeParser.IsTestFile(rel),
	})
	span.SetAttributes(attribute.Int("types", len(rec.Types)), attribute.Int("score", rec.Score))

	start := time.Now()
	err = ix.store.PutFile(ctx, rec, hash)
	observability.StoreWriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return observability.OutcomeFailed, fmt.Errorf("store %s: %w", rel, err)
	}
	observability.TypeUsagesTotal.Add(float64(len(rec.Types)))
	ix.hashes.Add(key, hash)
	return observability.OutcomeIndexed, nil
}
