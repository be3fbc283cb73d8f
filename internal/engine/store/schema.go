// # internal/engine/store/schema.go
package store

import (
	"database/sql"
	"fmt"
)

const schemaVersion = 1

func migrateSchema(db *sql.DB) error {
	var version int
	_ = db.QueryRow(`PRAGMA user_version`).Scan(&version)

	if version >= schemaVersion {
		return nil
	}

	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id          TEXT    PRIMARY KEY,
  started_at  INTEGER NOT NULL,
  finished_at INTEGER,
  indexed     INTEGER NOT NULL DEFAULT 0,
  skipped     INTEGER NOT NULL DEFAULT 0,
  failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS files (
  repo_id      TEXT    NOT NULL,
  file_path    TEXT    NOT NULL,
  package      TEXT    NOT NULL DEFAULT '',
  content_hash TEXT    NOT NULL DEFAULT '',
  is_test      INTEGER NOT NULL DEFAULT 0,
  score        INTEGER NOT NULL DEFAULT 0,
  indexed_at   INTEGER NOT NULL,
  PRIMARY KEY (repo_id, file_path)
);

CREATE TABLE IF NOT EXISTS type_usages (
  repo_id    TEXT NOT NULL,
  file_path  TEXT NOT NULL,
  type_name  TEXT NOT NULL,
  lines      BLOB NOT NULL,
  properties BLOB NOT NULL,
  PRIMARY KEY (repo_id, file_path, type_name),
  FOREIGN KEY (repo_id, file_path) REFERENCES files(repo_id, file_path) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_type_usages_type ON type_usages(type_name);

PRAGMA user_version = 1;
`)
	if err != nil {
		return fmt.Errorf("create v%d schema: %w", schemaVersion, err)
	}
	return nil
}
