package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

// CreateBundle persists a bundle and its membership rows in one
// transaction and returns the bundle with its assigned id.
func (s *Store) CreateBundle(b models.TaskBundle) (models.TaskBundle, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return models.TaskBundle{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var primary interface{}
	if b.PrimaryTaskID != nil {
		primary = *b.PrimaryTaskID
	}
	res, err := tx.Exec(`
		INSERT INTO bundles (owner_id, name, primary_task_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, b.OwnerID, b.Name, primary, now, now)
	if err != nil {
		return models.TaskBundle{}, fmt.Errorf("insert bundle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.TaskBundle{}, fmt.Errorf("bundle id: %w", err)
	}

	for _, taskID := range b.TaskIDs {
		if _, err := tx.Exec(`
			INSERT INTO bundle_tasks (bundle_id, task_id) VALUES (?, ?)
		`, id, taskID); err != nil {
			return models.TaskBundle{}, fmt.Errorf("insert bundle member %d: %w", taskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.TaskBundle{}, fmt.Errorf("commit: %w", err)
	}

	b.ID = id
	return b, nil
}

// GetBundle loads a bundle and its member task ids.
func (s *Store) GetBundle(id int64) (*models.TaskBundle, error) {
	var b models.TaskBundle
	var primary sql.NullInt64
	err := s.db.QueryRow(`
		SELECT id, owner_id, name, primary_task_id FROM bundles WHERE id = ?
	`, id).Scan(&b.ID, &b.OwnerID, &b.Name, &primary)
	if err == sql.ErrNoRows {
		return nil, types.NewNotFoundError("bundle", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query bundle: %w", err)
	}
	if primary.Valid {
		p := primary.Int64
		b.PrimaryTaskID = &p
	}

	rows, err := s.db.Query(`
		SELECT task_id FROM bundle_tasks WHERE bundle_id = ? ORDER BY task_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query bundle members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var taskID int64
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("scan bundle member: %w", err)
		}
		b.TaskIDs = append(b.TaskIDs, taskID)
	}
	return &b, rows.Err()
}

// ListBundles returns all bundles with their membership, newest first.
func (s *Store) ListBundles() ([]models.TaskBundle, error) {
	rows, err := s.db.Query(`SELECT id FROM bundles ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query bundles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan bundle id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bundles := make([]models.TaskBundle, 0, len(ids))
	for _, id := range ids {
		b, err := s.GetBundle(id)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, *b)
	}
	return bundles, nil
}

// RemoveBundleTasks deletes the given membership rows. The primary task
// reference is cleared when it is among the removed members.
func (s *Store) RemoveBundleTasks(id int64, taskIDs []int64) error {
	if len(taskIDs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := strings.Repeat(",?", len(taskIDs)-1)
	args := make([]interface{}, 0, len(taskIDs)+1)
	args = append(args, id)
	for _, taskID := range taskIDs {
		args = append(args, taskID)
	}
	if _, err := tx.Exec(
		"DELETE FROM bundle_tasks WHERE bundle_id = ? AND task_id IN (?"+placeholders+")", args...); err != nil {
		return fmt.Errorf("remove bundle members: %w", err)
	}

	if _, err := tx.Exec(
		"UPDATE bundles SET primary_task_id = NULL WHERE id = ? AND primary_task_id IN (?"+placeholders+")", args...); err != nil {
		return fmt.Errorf("clear primary task: %w", err)
	}

	return tx.Commit()
}

// DeleteBundle removes the bundle; membership rows cascade.
func (s *Store) DeleteBundle(id int64) error {
	res, err := s.db.Exec("DELETE FROM bundles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bundle: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bundle rows affected: %w", err)
	}
	if rows == 0 {
		return types.NewNotFoundError("bundle", id)
	}
	return nil
}
