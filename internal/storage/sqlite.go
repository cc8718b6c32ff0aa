// Package storage is the sqlite-backed persistence collaborator. It
// implements the narrow contracts the workflow, tags, and bundle
// packages consume: task and bundle persistence, tag CRUD with a
// (name, tag_type) uniqueness constraint, audit actions, comments, the
// scoring ledger, and task locks.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed store. Pass ":memory:" for an in-memory
// database in tests.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and initializes the schema.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		review_status INTEGER,                 -- NULL until first review transition
		meta_review_status INTEGER,            -- NULL until first meta-review transition
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bundles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		primary_task_id INTEGER,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bundle_tasks (
		bundle_id INTEGER NOT NULL,
		task_id INTEGER NOT NULL,
		PRIMARY KEY (bundle_id, task_id),
		FOREIGN KEY (bundle_id) REFERENCES bundles(id) ON DELETE CASCADE,
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		tag_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (name, tag_type)
	);

	CREATE TABLE IF NOT EXISTS tag_associations (
		item_type TEXT NOT NULL,
		item_id INTEGER NOT NULL,
		tag_id INTEGER NOT NULL,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (item_type, item_id, tag_id),
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS actions (
		id TEXT PRIMARY KEY,
		actor_id INTEGER NOT NULL,
		item_type TEXT NOT NULL,
		item_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		actor_id INTEGER NOT NULL,
		task_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		action_id TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS user_points (
		user_id INTEGER PRIMARY KEY,
		points INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS task_locks (
		task_id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL,
		locked_at TEXT NOT NULL,
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_bundle_tasks_task ON bundle_tasks(task_id);
	CREATE INDEX IF NOT EXISTS idx_tags_type ON tags(tag_type);
	CREATE INDEX IF NOT EXISTS idx_tag_associations_item ON tag_associations(item_type, item_id);
	CREATE INDEX IF NOT EXISTS idx_actions_item ON actions(item_type, item_id);
	CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database handle for tests and tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}
