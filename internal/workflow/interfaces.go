// Package workflow applies status, review-status, and meta-review-status
// transitions to tasks, coordinating scoring, audit, comment, and tag
// side effects. Persistence, scoring, and audit are collaborators behind
// the interfaces below; the engines never construct them.
package workflow

import "github.com/mapcrowd/bundlework/models"

// TaskRepository defines the task persistence methods the engines need.
type TaskRepository interface {
	GetTask(id int64) (*models.Task, error)
	SaveTaskStatus(id int64, status models.TaskStatus) error
	SaveReviewStatus(id int64, status models.ReviewStatus) error
	SaveMetaReviewStatus(id int64, status models.ReviewStatus) error
}

// ScoringLedger credits and debits a user's score for task status
// changes. Point values per status are the ledger's concern.
type ScoringLedger interface {
	Credit(userID int64, status models.TaskStatus) error
	Rollback(userID int64, status models.TaskStatus) error
}

// ActionRecorder records audit actions and returns the action id so
// follow-up records (comments) can link to it.
type ActionRecorder interface {
	Record(actorID int64, itemType string, itemID int64, kind models.ActionKind, detail string) (string, error)
}

// CommentService attaches reviewer comments to tasks.
type CommentService interface {
	CreateComment(actorID, taskID int64, text, actionID string) error
}
