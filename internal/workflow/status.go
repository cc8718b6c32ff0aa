package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

// StatusOptions carries the optional context of a status transition.
type StatusOptions struct {
	// RequestReview also initializes the review workflow by setting the
	// review status to requested as part of the same call.
	RequestReview bool
	// Completion is an opaque payload (edit metadata and the like)
	// forwarded to the status-set action record, never interpreted here.
	Completion string
	// BundleID and PrimaryTaskID, when present, mark the change as
	// bundle-driven on the audit record.
	BundleID      *int64
	PrimaryTaskID *int64
}

// StatusEngine applies a status transition to one or many tasks. It
// operates on resolved Task values; id resolution is the caller's
// concern and a missing task surfaces as NotFound before invocation.
type StatusEngine struct {
	repo    TaskRepository
	ledger  ScoringLedger
	actions ActionRecorder
}

// NewStatusEngine creates a StatusEngine.
func NewStatusEngine(repo TaskRepository, ledger ScoringLedger, actions ActionRecorder) *StatusEngine {
	return &StatusEngine{repo: repo, ledger: ledger, actions: actions}
}

// SetStatus applies newStatus to every task, credits the actor's score
// once per task, and records one status-set action per task. Side effects
// run in task-list order; a mid-sequence collaborator failure leaves
// earlier tasks mutated and is surfaced unchanged.
func (e *StatusEngine) SetStatus(tasks []models.Task, newStatus models.TaskStatus, actorID int64, opts StatusOptions) error {
	if !models.IsValidTaskStatus(int(newStatus)) {
		return types.NewInvalidArgumentError("invalid task status code %d", int(newStatus))
	}

	for _, task := range tasks {
		if err := e.repo.SaveTaskStatus(task.ID, newStatus); err != nil {
			return fmt.Errorf("save status for task %d: %w", task.ID, err)
		}
		if opts.RequestReview {
			if err := e.repo.SaveReviewStatus(task.ID, models.ReviewRequested); err != nil {
				return fmt.Errorf("request review for task %d: %w", task.ID, err)
			}
		}
		if err := e.ledger.Credit(actorID, newStatus); err != nil {
			return fmt.Errorf("credit score for task %d: %w", task.ID, err)
		}
		detail := statusDetail(newStatus, opts)
		if _, err := e.actions.Record(actorID, models.ItemTypeTask, task.ID, models.ActionTaskStatusSet, detail); err != nil {
			return fmt.Errorf("record status action for task %d: %w", task.ID, err)
		}
	}
	return nil
}

// statusDetail renders the audit payload for a status-set action so that
// bundle-driven changes stay distinguishable from single-task ones.
func statusDetail(status models.TaskStatus, opts StatusOptions) string {
	parts := []string{"status=" + status.String()}
	if opts.BundleID != nil {
		parts = append(parts, "bundle="+strconv.FormatInt(*opts.BundleID, 10))
	}
	if opts.PrimaryTaskID != nil {
		parts = append(parts, "primary="+strconv.FormatInt(*opts.PrimaryTaskID, 10))
	}
	if opts.Completion != "" {
		parts = append(parts, "completion="+opts.Completion)
	}
	return strings.Join(parts, ";")
}
