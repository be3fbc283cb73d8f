package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"javaindex/internal/engine/index"
	"javaindex/internal/shared/util"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

const (
	sqliteDriverName   = "sqlite"
	defaultBusyTimeout = 5 * time.Second
	lookupCacheSize    = 256
)

// Usage is one file's use of a looked-up type.
type Usage struct {
	RepoID     string   `json:"repo_id" yaml:"repo_id"`
	File       string   `json:"file" yaml:"file"`
	Package    string   `json:"package" yaml:"package"`
	Test       bool     `json:"test,omitempty" yaml:"test,omitempty"`
	Score      int      `json:"score" yaml:"score"`
	Lines      []int    `json:"lines" yaml:"lines"`
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Run describes one indexing pass.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Indexed    int
	Skipped    int
	Failed     int
}

type Stats struct {
	Runs    int
	Files   int
	Types   int
	Usages  int
	LastRun *Run
}

// SQLiteStore persists per-file type usages and answers "where is T used".
type SQLiteStore struct {
	db         *sql.DB
	lookupStmt *sql.Stmt
	cache      *lru.Cache[string, []Usage]

	// cacheMu orders cache fills against invalidation; gen counts writes.
	cacheMu sync.Mutex
	gen     uint64
}

func Open(path string, busyTimeout time.Duration) (*SQLiteStore, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path %q is a directory, expected file", cleanPath)
	}

	if err := util.EnsureParentDir(cleanPath); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}

	if err := migrateSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	lookupStmt, err := db.Prepare(`SELECT
  u.repo_id,
  u.file_path,
  f.package,
  f.is_test,
  f.score,
  u.lines,
  u.properties
FROM type_usages u
JOIN files f ON f.repo_id = u.repo_id AND f.file_path = u.file_path
WHERE u.type_name = ?
ORDER BY f.score DESC, u.repo_id, u.file_path`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare lookup stmt: %w", err)
	}

	cache, err := lru.New[string, []Usage](lookupCacheSize)
	if err != nil {
		_ = lookupStmt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}

	return &SQLiteStore{db: db, lookupStmt: lookupStmt, cache: cache}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.lookupStmt != nil {
		_ = s.lookupStmt.Close()
	}
	return s.db.Close()
}

func (s *SQLiteStore) BeginRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (id, started_at) VALUES (?, ?)`, runID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("begin run %s: %w", runID, err)
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, run Run) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, indexed = ?, skipped = ?, failed = ? WHERE id = ?`,
		finished.UnixMilli(), run.Indexed, run.Skipped, run.Failed, run.ID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: run not started", run.ID)
	}
	return nil
}

// PutFile replaces everything stored for the record's file.
func (s *SQLiteStore) PutFile(ctx context.Context, rec index.FileRecord, contentHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put tx: %w", err)
	}
	if err := deleteFileRows(ctx, tx, rec.RepoID, rec.File); err != nil {
		_ = tx.Rollback()
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO files (repo_id, file_path, package, content_hash, is_test, score, indexed_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RepoID, rec.File, rec.Package, contentHash, rec.Test, rec.Score, time.Now().UnixMilli())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert file %s: %w", rec.File, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO type_usages (repo_id, file_path, type_name, lines, properties) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare usage insert: %w", err)
	}
	defer stmt.Close()

	for _, tu := range rec.Types {
		lines, err := msgpack.Marshal(tu.Lines)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode lines for %s: %w", tu.TypeName, err)
		}
		props, err := msgpack.Marshal(tu.Properties)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode properties for %s: %w", tu.TypeName, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.RepoID, rec.File, tu.TypeName, lines, props); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert usage %s: %w", tu.TypeName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put tx: %w", err)
	}
	s.invalidate()
	return nil
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, repoID, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	if err := deleteFileRows(ctx, tx, repoID, path); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	s.invalidate()
	return nil
}

// PruneRepo deletes the repo's files that are not in keep and returns how
// many were removed.
func (s *SQLiteStore) PruneRepo(ctx context.Context, repoID string, keep []string) (int, error) {
	existing, err := s.Files(ctx, repoID)
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(keep))
	for _, p := range keep {
		wanted[p] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	removed := 0
	for _, p := range existing {
		if wanted[p] {
			continue
		}
		if err := deleteFileRows(ctx, tx, repoID, p); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		removed++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune tx: %w", err)
	}
	if removed > 0 {
		s.invalidate()
	}
	return removed, nil
}

// Files lists the stored paths of a repo in path order.
func (s *SQLiteStore) Files(ctx context.Context, repoID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path FROM files WHERE repo_id = ? ORDER BY file_path`, repoID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan file path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FileHash returns the content hash stored for a file, if any.
func (s *SQLiteStore) FileHash(ctx context.Context, repoID, path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT content_hash FROM files WHERE repo_id = ? AND file_path = ?`, repoID, path).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("load file hash: %w", err)
	}
	return hash, true, nil
}

// LookupType returns the files using typeName, best score first. A limit
// of zero or less returns every match.
func (s *SQLiteStore) LookupType(ctx context.Context, typeName string, limit int) ([]Usage, error) {
	key := strings.TrimSpace(typeName)
	if key == "" {
		return nil, nil
	}

	usages, ok := s.cache.Get(key)
	if !ok {
		s.cacheMu.Lock()
		gen := s.gen
		s.cacheMu.Unlock()

		var err error
		usages, err = s.lookupRows(ctx, key)
		if err != nil {
			return nil, err
		}

		s.cacheMu.Lock()
		if s.gen == gen {
			s.cache.Add(key, usages)
		}
		s.cacheMu.Unlock()
	}
	if limit > 0 && len(usages) > limit {
		usages = usages[:limit]
	}
	return cloneUsages(usages), nil
}

func cloneUsages(usages []Usage) []Usage {
	out := slices.Clone(usages)
	for i := range out {
		out[i].Lines = slices.Clone(out[i].Lines)
		out[i].Properties = slices.Clone(out[i].Properties)
	}
	return out
}

// invalidate drops cached lookups after a committed write. Fills that
// started before the write are discarded.
func (s *SQLiteStore) invalidate() {
	s.cacheMu.Lock()
	s.gen++
	s.cache.Purge()
	s.cacheMu.Unlock()
}

func (s *SQLiteStore) lookupRows(ctx context.Context, typeName string) ([]Usage, error) {
	rows, err := s.lookupStmt.QueryContext(ctx, typeName)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", typeName, err)
	}
	defer rows.Close()

	out := make([]Usage, 0)
	for rows.Next() {
		var (
			u     Usage
			lines []byte
			props []byte
		)
		if err := rows.Scan(&u.RepoID, &u.File, &u.Package, &u.Test, &u.Score, &lines, &props); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		if err := msgpack.Unmarshal(lines, &u.Lines); err != nil {
			return nil, fmt.Errorf("decode lines for %s: %w", u.File, err)
		}
		if err := msgpack.Unmarshal(props, &u.Properties); err != nil {
			return nil, fmt.Errorf("decode properties for %s: %w", u.File, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT
  (SELECT COUNT(*) FROM runs),
  (SELECT COUNT(*) FROM files),
  (SELECT COUNT(DISTINCT type_name) FROM type_usages),
  (SELECT COUNT(*) FROM type_usages)`).Scan(&st.Runs, &st.Files, &st.Types, &st.Usages)
	if err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}

	var (
		run      Run
		started  int64
		finished sql.NullInt64
	)
	err = s.db.QueryRowContext(ctx, `SELECT id, started_at, finished_at, indexed, skipped, failed
FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).Scan(&run.ID, &started, &finished, &run.Indexed, &run.Skipped, &run.Failed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return st, nil
	case err != nil:
		return Stats{}, fmt.Errorf("load last run: %w", err)
	}
	run.StartedAt = time.UnixMilli(started)
	if finished.Valid {
		run.FinishedAt = time.UnixMilli(finished.Int64)
	}
	st.LastRun = &run
	return st, nil
}

func deleteFileRows(ctx context.Context, tx *sql.Tx, repoID, path string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM type_usages WHERE repo_id = ? AND file_path = ?`, repoID, path); err != nil {
		return fmt.Errorf("delete usages of %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE repo_id = ? AND file_path = ?`, repoID, path); err != nil {
		return fmt.Errorf("delete file %s: %w", path, err)
	}
	return nil
}
