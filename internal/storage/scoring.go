package storage

import (
	"database/sql"
	"fmt"

	"github.com/mapcrowd/bundlework/models"
)

// pointsForStatus is the point schedule per task status. Fixing a task
// earns the most; statuses that only triage the task earn less.
func pointsForStatus(status models.TaskStatus) int64 {
	switch status {
	case models.StatusFixed:
		return 5
	case models.StatusFalsePositive, models.StatusAlreadyFixed:
		return 3
	case models.StatusTooHard, models.StatusSkipped:
		return 1
	default:
		return 0
	}
}

// Credit awards the user the points for the given status.
func (s *Store) Credit(userID int64, status models.TaskStatus) error {
	return s.adjustPoints(userID, pointsForStatus(status))
}

// Rollback removes a previously awarded credit for the given status.
func (s *Store) Rollback(userID int64, status models.TaskStatus) error {
	return s.adjustPoints(userID, -pointsForStatus(status))
}

// Points returns the user's current score.
func (s *Store) Points(userID int64) (int64, error) {
	var points int64
	err := s.db.QueryRow(`SELECT points FROM user_points WHERE user_id = ?`, userID).Scan(&points)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query points: %w", err)
	}
	return points, nil
}

func (s *Store) adjustPoints(userID, delta int64) error {
	if delta == 0 {
		return nil
	}
	if _, err := s.db.Exec(`
		INSERT INTO user_points (user_id, points) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET points = points + excluded.points
	`, userID, delta); err != nil {
		return fmt.Errorf("adjust points: %w", err)
	}
	return nil
}
