package ports

import (
	"context"

	"javaindex/internal/engine/index"
	"javaindex/internal/engine/parser"
	"javaindex/internal/engine/store"
)

// CodeParser abstracts source parsing and source-file support checks.
type CodeParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
	IsSupportedPath(filePath string) bool
	IsTestFile(path string) bool
	SupportedExtensions() []string
	TestFileSuffixes() []string
	Leased() int
}

// UsageStore persists per-file type usages and indexing runs.
type UsageStore interface {
	BeginRun(ctx context.Context, runID string) error
	FinishRun(ctx context.Context, run store.Run) error
	PutFile(ctx context.Context, rec index.FileRecord, contentHash string) error
	DeleteFile(ctx context.Context, repoID, path string) error
	PruneRepo(ctx context.Context, repoID string, keep []string) (int, error)
	FileHash(ctx context.Context, repoID, path string) (string, bool, error)
	LookupType(ctx context.Context, typeName string, limit int) ([]store.Usage, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// RunSummary reports what one indexing pass did.
type RunSummary struct {
	RunID     string
	Indexed   int
	Unchanged int
	Skipped   int
	Failed    int
	Removed   int
}
