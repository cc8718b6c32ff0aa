package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

// CreateTask persists a new task and returns it with its assigned id.
func (s *Store) CreateTask(name string, status models.TaskStatus) (models.Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO tasks (name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, name, int(status), now, now)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return models.Task{ID: id, Name: name, Status: status}, nil
}

// GetTask loads one task by id.
func (s *Store) GetTask(id int64) (*models.Task, error) {
	var t models.Task
	var review, meta sql.NullInt64
	err := s.db.QueryRow(`
		SELECT id, name, status, review_status, meta_review_status
		FROM tasks WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.Status, &review, &meta)
	if err == sql.ErrNoRows {
		return nil, types.NewNotFoundError("task", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	if review.Valid {
		rs := models.ReviewStatus(review.Int64)
		t.ReviewStatus = &rs
	}
	if meta.Valid {
		ms := models.ReviewStatus(meta.Int64)
		t.MetaReviewStatus = &ms
	}
	return &t, nil
}

// ListTasks returns all tasks ordered by id.
func (s *Store) ListTasks() ([]models.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, name, status, review_status, meta_review_status
		FROM tasks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		var review, meta sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &review, &meta); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if review.Valid {
			rs := models.ReviewStatus(review.Int64)
			t.ReviewStatus = &rs
		}
		if meta.Valid {
			ms := models.ReviewStatus(meta.Int64)
			t.MetaReviewStatus = &ms
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SaveTaskStatus persists a status change.
func (s *Store) SaveTaskStatus(id int64, status models.TaskStatus) error {
	return s.updateTaskColumn(id, "status", int64(status))
}

// SaveReviewStatus persists a review-status change.
func (s *Store) SaveReviewStatus(id int64, status models.ReviewStatus) error {
	return s.updateTaskColumn(id, "review_status", int64(status))
}

// SaveMetaReviewStatus persists a meta-review-status change.
func (s *Store) SaveMetaReviewStatus(id int64, status models.ReviewStatus) error {
	return s.updateTaskColumn(id, "meta_review_status", int64(status))
}

func (s *Store) updateTaskColumn(id int64, column string, value int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	// column is one of three fixed names, never caller input.
	res, err := s.db.Exec("UPDATE tasks SET "+column+" = ?, updated_at = ? WHERE id = ?", value, now, id)
	if err != nil {
		return fmt.Errorf("update task %s: %w", column, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %s rows affected: %w", column, err)
	}
	if rows == 0 {
		return types.NewNotFoundError("task", id)
	}
	return nil
}
