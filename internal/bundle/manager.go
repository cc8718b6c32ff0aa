// Package bundle owns task-bundle lifecycle and delegates task-level
// status and review changes to the workflow engines across every member.
package bundle

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mapcrowd/bundlework/internal/workflow"
	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

// BundleStore defines bundle persistence. GetBundle returns a
// types.NotFoundError for absent bundles.
type BundleStore interface {
	CreateBundle(b models.TaskBundle) (models.TaskBundle, error)
	GetBundle(id int64) (*models.TaskBundle, error)
	RemoveBundleTasks(id int64, taskIDs []int64) error
	DeleteBundle(id int64) error
}

// TaskLoader resolves task ids to task records.
type TaskLoader interface {
	GetTask(id int64) (*models.Task, error)
}

// TaskLocker is the external claim/lock collaborator. Bundled tasks are
// held by the bundle owner while the bundle exists.
type TaskLocker interface {
	Lock(userID, taskID int64) error
	Unlock(userID, taskID int64) error
}

// ActionRecorder records bundle lifecycle audit actions.
type ActionRecorder interface {
	Record(actorID int64, itemType string, itemID int64, kind models.ActionKind, detail string) (string, error)
}

// Manager owns bundle lifecycle and the bundle-wide workflow use cases.
type Manager struct {
	store   BundleStore
	tasks   TaskLoader
	locks   TaskLocker
	actions ActionRecorder
	status  *workflow.StatusEngine
	review  *workflow.ReviewEngine
}

// NewManager creates a Manager.
func NewManager(store BundleStore, tasks TaskLoader, locks TaskLocker, actions ActionRecorder, status *workflow.StatusEngine, review *workflow.ReviewEngine) *Manager {
	return &Manager{store: store, tasks: tasks, locks: locks, actions: actions, status: status, review: review}
}

// Create builds a new bundle owned by the actor from a non-empty task id
// list. Duplicate ids collapse to one membership. Every member must
// resolve to an existing task; members are locked to the owner. The new
// bundle has no primary task.
func (m *Manager) Create(actorID int64, name string, taskIDs []int64) (*models.TaskBundle, error) {
	if len(taskIDs) == 0 {
		return nil, types.NewInvalidArgumentError("a bundle requires at least one task id")
	}

	members := dedupeIDs(taskIDs)
	tasks := make([]models.Task, 0, len(members))
	for _, id := range members {
		task, err := m.tasks.GetTask(id)
		if err != nil {
			return nil, fmt.Errorf("resolve bundle member %d: %w", id, err)
		}
		tasks = append(tasks, *task)
	}

	created, err := m.store.CreateBundle(models.TaskBundle{
		OwnerID: actorID,
		Name:    name,
		TaskIDs: members,
	})
	if err != nil {
		return nil, fmt.Errorf("create bundle: %w", err)
	}

	for _, id := range members {
		if err := m.locks.Lock(actorID, id); err != nil {
			return nil, fmt.Errorf("lock task %d for bundle %d: %w", id, created.ID, err)
		}
	}

	detail := fmt.Sprintf("name=%s tasks=%s", name, joinIDs(members))
	if _, err := m.actions.Record(actorID, models.ItemTypeBundle, created.ID, models.ActionBundleCreated, detail); err != nil {
		return nil, fmt.Errorf("record bundle action: %w", err)
	}

	created.Tasks = tasks
	return &created, nil
}

// Get returns the bundle and its resolved member tasks.
func (m *Manager) Get(actorID, bundleID int64) (*models.TaskBundle, error) {
	b, err := m.store.GetBundle(bundleID)
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(b.TaskIDs))
	for _, id := range b.TaskIDs {
		task, err := m.tasks.GetTask(id)
		if err != nil {
			return nil, fmt.Errorf("resolve bundle member %d: %w", id, err)
		}
		tasks = append(tasks, *task)
	}
	b.Tasks = tasks
	return b, nil
}

// UnbundleTasks removes the given ids from membership and releases their
// locks. Removing the last member deletes the bundle and returns nil; a
// bundle never exists empty.
func (m *Manager) UnbundleTasks(actorID, bundleID int64, taskIDs []int64) (*models.TaskBundle, error) {
	b, err := m.store.GetBundle(bundleID)
	if err != nil {
		return nil, err
	}

	var removing []int64
	for _, id := range dedupeIDs(taskIDs) {
		if b.Contains(id) {
			removing = append(removing, id)
		}
	}
	if len(removing) == 0 {
		return m.Get(actorID, bundleID)
	}

	if err := m.store.RemoveBundleTasks(bundleID, removing); err != nil {
		return nil, fmt.Errorf("remove bundle tasks: %w", err)
	}
	for _, id := range removing {
		if err := m.locks.Unlock(b.OwnerID, id); err != nil {
			return nil, fmt.Errorf("unlock task %d: %w", id, err)
		}
	}
	if _, err := m.actions.Record(actorID, models.ItemTypeBundle, bundleID, models.ActionBundleTasksRemoved, "tasks="+joinIDs(removing)); err != nil {
		return nil, fmt.Errorf("record bundle action: %w", err)
	}

	if len(removing) == len(b.TaskIDs) {
		if err := m.store.DeleteBundle(bundleID); err != nil {
			return nil, fmt.Errorf("delete emptied bundle %d: %w", bundleID, err)
		}
		if _, err := m.actions.Record(actorID, models.ItemTypeBundle, bundleID, models.ActionBundleDeleted, "emptied"); err != nil {
			return nil, fmt.Errorf("record bundle action: %w", err)
		}
		return nil, nil
	}
	return m.Get(actorID, bundleID)
}

// Delete removes the bundle entirely and releases every member's lock.
// When primaryTaskID is supplied, that task is deliberately left to the
// external locking collaborator instead of being unlocked here.
func (m *Manager) Delete(actorID, bundleID int64, primaryTaskID *int64) error {
	b, err := m.store.GetBundle(bundleID)
	if err != nil {
		return err
	}
	for _, id := range b.TaskIDs {
		if primaryTaskID != nil && id == *primaryTaskID {
			continue
		}
		if err := m.locks.Unlock(b.OwnerID, id); err != nil {
			return fmt.Errorf("unlock task %d: %w", id, err)
		}
	}
	if err := m.store.DeleteBundle(bundleID); err != nil {
		return fmt.Errorf("delete bundle %d: %w", bundleID, err)
	}
	if _, err := m.actions.Record(actorID, models.ItemTypeBundle, bundleID, models.ActionBundleDeleted, "tasks="+joinIDs(b.TaskIDs)); err != nil {
		return fmt.Errorf("record bundle action: %w", err)
	}
	return nil
}

// SetBundleTaskStatus applies a status change to every task in the
// bundle and returns the re-fetched bundle. The re-fetch is mandatory:
// status side effects are not reflected in the pre-mutation snapshot.
func (m *Manager) SetBundleTaskStatus(actorID, bundleID, primaryTaskID int64, status models.TaskStatus, opts workflow.StatusOptions) (*models.TaskBundle, error) {
	b, err := m.Get(actorID, bundleID)
	if err != nil {
		return nil, err
	}
	if len(b.Tasks) == 0 {
		return nil, types.NewInvalidBundleStateError(bundleID, "bundle has no tasks")
	}
	opts.BundleID = &bundleID
	opts.PrimaryTaskID = &primaryTaskID
	if err := m.status.SetStatus(b.Tasks, status, actorID, opts); err != nil {
		return nil, err
	}
	return m.Get(actorID, bundleID)
}

// SetBundleTaskReviewStatus applies a review-status change (optionally a
// status revision first) to every task in the bundle. Review tags attach
// to the bundle's id, not to each member task.
func (m *Manager) SetBundleTaskReviewStatus(actorID, bundleID int64, reviewStatus models.ReviewStatus, opts workflow.ReviewOptions) (*models.TaskBundle, error) {
	b, err := m.Get(actorID, bundleID)
	if err != nil {
		return nil, err
	}
	if len(b.Tasks) == 0 {
		return nil, types.NewInvalidBundleStateError(bundleID, "bundle has no tasks")
	}
	opts.TagItemID = &bundleID
	if _, err := m.review.SetReviewStatus(b.Tasks, reviewStatus, actorID, opts); err != nil {
		return nil, err
	}
	return m.Get(actorID, bundleID)
}

// SetBundleMetaReviewStatus applies a meta-review-status change to every
// task in the bundle. Unlike the review path, tags attach to each member
// task rather than to the bundle.
func (m *Manager) SetBundleMetaReviewStatus(actorID, bundleID int64, metaReviewStatus models.ReviewStatus, opts workflow.MetaReviewOptions) (*models.TaskBundle, error) {
	b, err := m.Get(actorID, bundleID)
	if err != nil {
		return nil, err
	}
	if len(b.Tasks) == 0 {
		return nil, types.NewInvalidBundleStateError(bundleID, "bundle has no tasks")
	}
	if _, err := m.review.SetMetaReviewStatus(b.Tasks, metaReviewStatus, actorID, opts); err != nil {
		return nil, err
	}
	return m.Get(actorID, bundleID)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var out []int64
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
