package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mapcrowd/bundlework/models"
)

// Record stores one audit action and returns its id.
func (s *Store) Record(actorID int64, itemType string, itemID int64, kind models.ActionKind, detail string) (string, error) {
	id := "a-" + uuid.New().String()[:8]
	now := time.Now().UTC()
	if _, err := s.db.Exec(`
		INSERT INTO actions (id, actor_id, item_type, item_id, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, actorID, itemType, itemID, string(kind), detail, now.Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("insert action: %w", err)
	}
	return id, nil
}

// ListActions returns the audit actions recorded against an item, oldest
// first.
func (s *Store) ListActions(itemType string, itemID int64) ([]models.Action, error) {
	rows, err := s.db.Query(`
		SELECT id, actor_id, item_type, item_id, kind, detail, created_at
		FROM actions WHERE item_type = ? AND item_id = ? ORDER BY created_at, id
	`, itemType, itemID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var actions []models.Action
	for rows.Next() {
		var a models.Action
		var detail sql.NullString
		var createdAt string
		if err := rows.Scan(&a.ID, &a.ActorID, &a.ItemType, &a.ItemID, &a.Kind, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Detail = detail.String
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// CreateComment attaches a comment to a task, optionally linked to the
// action that prompted it.
func (s *Store) CreateComment(actorID, taskID int64, text, actionID string) error {
	id := "c-" + uuid.New().String()[:8]
	now := time.Now().UTC().Format(time.RFC3339)
	var action interface{}
	if actionID != "" {
		action = actionID
	}
	if _, err := s.db.Exec(`
		INSERT INTO comments (id, actor_id, task_id, text, action_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, actorID, taskID, text, action, now); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListComments returns a task's comments, oldest first.
func (s *Store) ListComments(taskID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT id, actor_id, task_id, text, action_id, created_at
		FROM comments WHERE task_id = ? ORDER BY created_at, id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		var actionID sql.NullString
		var createdAt string
		if err := rows.Scan(&c.ID, &c.ActorID, &c.TaskID, &c.Text, &actionID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.ActionID = actionID.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
