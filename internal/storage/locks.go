package storage

import (
	"fmt"
	"time"
)

// Lock claims a task for the user. Re-locking an already claimed task
// transfers the claim; row-level semantics are the safety net, not this
// process.
func (s *Store) Lock(userID, taskID int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(`
		INSERT INTO task_locks (task_id, user_id, locked_at) VALUES (?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET user_id = excluded.user_id, locked_at = excluded.locked_at
	`, taskID, userID, now); err != nil {
		return fmt.Errorf("lock task %d: %w", taskID, err)
	}
	return nil
}

// Unlock releases the user's claim on a task. Releasing a task the user
// does not hold is a no-op.
func (s *Store) Unlock(userID, taskID int64) error {
	if _, err := s.db.Exec(`
		DELETE FROM task_locks WHERE task_id = ? AND user_id = ?
	`, taskID, userID); err != nil {
		return fmt.Errorf("unlock task %d: %w", taskID, err)
	}
	return nil
}
