package workflow

import (
	"fmt"

	"github.com/mapcrowd/bundlework/internal/tags"
	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

// ReviewOptions carries the optional side effects of a review transition.
type ReviewOptions struct {
	// Comment, when non-empty, is attached per task and linked to the
	// review action recorded for that task.
	Comment string
	// Tags is comma-separated raw tag input resolved through the
	// reconciler and merged onto the tag target.
	Tags string
	// NewTaskStatus turns the call into a revision: every task's current
	// score credit is rolled back and the new status applied (with its
	// own credit) before the review status is written.
	NewTaskStatus *models.TaskStatus
	// TagItemID overrides the tag association target. When set, resolved
	// tags attach once to this item instead of to each task's own id.
	// The single-id bundle path uses this to keep tags on the bundle's
	// id parameter.
	TagItemID *int64
}

// MetaReviewOptions carries the optional side effects of a meta-review
// transition. Meta-review never revises task status.
type MetaReviewOptions struct {
	Comment   string
	Tags      string
	TagItemID *int64
}

// ReviewEngine applies review-status and meta-review-status transitions
// across a set of tasks, the whole-bundle granularity being the default
// and a single task the one-element special case.
type ReviewEngine struct {
	repo    TaskRepository
	ledger  ScoringLedger
	actions ActionRecorder
	comment CommentService
	status  *StatusEngine
	tags    *tags.Reconciler
	assoc   *tags.AssociationManager
}

// NewReviewEngine creates a ReviewEngine.
func NewReviewEngine(repo TaskRepository, ledger ScoringLedger, actions ActionRecorder, comment CommentService, status *StatusEngine, reconciler *tags.Reconciler, assoc *tags.AssociationManager) *ReviewEngine {
	return &ReviewEngine{
		repo:    repo,
		ledger:  ledger,
		actions: actions,
		comment: comment,
		status:  status,
		tags:    reconciler,
		assoc:   assoc,
	}
}

// SetReviewStatus writes reviewStatus on every task, recording one
// review action per task plus the comment and tag side effects. When
// opts.NewTaskStatus is set the status revision runs first: one score
// rollback for the prior status and one credit for the new status per
// task, never more. Returns the post-mutation task records.
func (e *ReviewEngine) SetReviewStatus(tasksIn []models.Task, reviewStatus models.ReviewStatus, actorID int64, opts ReviewOptions) ([]models.Task, error) {
	if len(tasksIn) == 0 {
		return nil, types.NewInvalidBundleStateError(0, "no tasks to review")
	}
	if !models.IsValidReviewStatus(int(reviewStatus)) {
		return nil, types.NewInvalidArgumentError("invalid review status code %d", int(reviewStatus))
	}

	current := tasksIn
	if opts.NewTaskStatus != nil {
		revised, err := e.reviseStatus(current, *opts.NewTaskStatus, actorID)
		if err != nil {
			return nil, err
		}
		current = revised
	}

	tagIDs, err := e.resolveTags(opts.Tags)
	if err != nil {
		return nil, err
	}

	for _, task := range current {
		if err := e.repo.SaveReviewStatus(task.ID, reviewStatus); err != nil {
			return nil, fmt.Errorf("save review status for task %d: %w", task.ID, err)
		}
		actionID, err := e.actions.Record(actorID, models.ItemTypeTask, task.ID, models.ActionReviewStatusSet, "review-status="+reviewStatus.String())
		if err != nil {
			return nil, fmt.Errorf("record review action for task %d: %w", task.ID, err)
		}
		if opts.Comment != "" {
			if err := e.comment.CreateComment(actorID, task.ID, opts.Comment, actionID); err != nil {
				return nil, fmt.Errorf("attach comment to task %d: %w", task.ID, err)
			}
		}
		if len(tagIDs) > 0 && opts.TagItemID == nil {
			if err := e.assoc.Associate(actorID, models.ItemTypeTask, task.ID, tagIDs, tags.Merge); err != nil {
				return nil, fmt.Errorf("associate tags to task %d: %w", task.ID, err)
			}
		}
	}

	// Single-id variant: tags attach to the caller-supplied item, not to
	// each member task.
	if len(tagIDs) > 0 && opts.TagItemID != nil {
		if err := e.assoc.Associate(actorID, models.ItemTypeTask, *opts.TagItemID, tagIDs, tags.Merge); err != nil {
			return nil, fmt.Errorf("associate tags to item %d: %w", *opts.TagItemID, err)
		}
	}

	return e.refetch(current)
}

// SetMetaReviewStatus writes metaReviewStatus on every task with the same
// comment and tag side effects as SetReviewStatus, but never revises the
// task status and never touches reviewStatus. This is the terminal
// quality-control stage.
func (e *ReviewEngine) SetMetaReviewStatus(tasksIn []models.Task, metaReviewStatus models.ReviewStatus, actorID int64, opts MetaReviewOptions) ([]models.Task, error) {
	if len(tasksIn) == 0 {
		return nil, types.NewInvalidBundleStateError(0, "no tasks to meta-review")
	}
	if !models.IsValidReviewStatus(int(metaReviewStatus)) {
		return nil, types.NewInvalidArgumentError("invalid meta-review status code %d", int(metaReviewStatus))
	}

	tagIDs, err := e.resolveTags(opts.Tags)
	if err != nil {
		return nil, err
	}

	for _, task := range tasksIn {
		if err := e.repo.SaveMetaReviewStatus(task.ID, metaReviewStatus); err != nil {
			return nil, fmt.Errorf("save meta-review status for task %d: %w", task.ID, err)
		}
		actionID, err := e.actions.Record(actorID, models.ItemTypeTask, task.ID, models.ActionMetaReviewStatusSet, "meta-review-status="+metaReviewStatus.String())
		if err != nil {
			return nil, fmt.Errorf("record meta-review action for task %d: %w", task.ID, err)
		}
		if opts.Comment != "" {
			if err := e.comment.CreateComment(actorID, task.ID, opts.Comment, actionID); err != nil {
				return nil, fmt.Errorf("attach comment to task %d: %w", task.ID, err)
			}
		}
		if len(tagIDs) > 0 && opts.TagItemID == nil {
			if err := e.assoc.Associate(actorID, models.ItemTypeTask, task.ID, tagIDs, tags.Merge); err != nil {
				return nil, fmt.Errorf("associate tags to task %d: %w", task.ID, err)
			}
		}
	}

	if len(tagIDs) > 0 && opts.TagItemID != nil {
		if err := e.assoc.Associate(actorID, models.ItemTypeTask, *opts.TagItemID, tagIDs, tags.Merge); err != nil {
			return nil, fmt.Errorf("associate tags to item %d: %w", *opts.TagItemID, err)
		}
	}

	return e.refetch(tasksIn)
}

// reviseStatus rolls back the credit for each task's current status,
// applies the new status through the status engine, and re-fetches so
// every later step operates on post-revision state.
func (e *ReviewEngine) reviseStatus(current []models.Task, newStatus models.TaskStatus, actorID int64) ([]models.Task, error) {
	for _, task := range current {
		if err := e.ledger.Rollback(actorID, task.Status); err != nil {
			return nil, fmt.Errorf("rollback score for task %d: %w", task.ID, err)
		}
	}
	if err := e.status.SetStatus(current, newStatus, actorID, StatusOptions{}); err != nil {
		return nil, err
	}
	return e.refetch(current)
}

func (e *ReviewEngine) resolveTags(raw string) ([]int64, error) {
	refs := models.ParseTagRefs(raw)
	if len(refs) == 0 {
		return nil, nil
	}
	ids, err := e.tags.Resolve(refs, models.TagTypeTasks)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	return ids, nil
}

func (e *ReviewEngine) refetch(current []models.Task) ([]models.Task, error) {
	out := make([]models.Task, 0, len(current))
	for _, task := range current {
		fresh, err := e.repo.GetTask(task.ID)
		if err != nil {
			return nil, fmt.Errorf("refetch task %d: %w", task.ID, err)
		}
		out = append(out, *fresh)
	}
	return out, nil
}
