package workflow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

// fakeRepo keeps tasks in memory.
type fakeRepo struct {
	tasks map[int64]*models.Task
}

func newFakeRepo(tasks ...models.Task) *fakeRepo {
	r := &fakeRepo{tasks: make(map[int64]*models.Task)}
	for _, t := range tasks {
		copied := t
		r.tasks[t.ID] = &copied
	}
	return r
}

func (r *fakeRepo) GetTask(id int64) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, types.NewNotFoundError("task", id)
	}
	copied := *t
	return &copied, nil
}

func (r *fakeRepo) SaveTaskStatus(id int64, status models.TaskStatus) error {
	t, ok := r.tasks[id]
	if !ok {
		return types.NewNotFoundError("task", id)
	}
	t.Status = status
	return nil
}

func (r *fakeRepo) SaveReviewStatus(id int64, status models.ReviewStatus) error {
	t, ok := r.tasks[id]
	if !ok {
		return types.NewNotFoundError("task", id)
	}
	t.ReviewStatus = &status
	return nil
}

func (r *fakeRepo) SaveMetaReviewStatus(id int64, status models.ReviewStatus) error {
	t, ok := r.tasks[id]
	if !ok {
		return types.NewNotFoundError("task", id)
	}
	t.MetaReviewStatus = &status
	return nil
}

// fakeLedger records every credit and rollback.
type fakeLedger struct {
	credits   []models.TaskStatus
	rollbacks []models.TaskStatus
}

func (l *fakeLedger) Credit(userID int64, status models.TaskStatus) error {
	l.credits = append(l.credits, status)
	return nil
}

func (l *fakeLedger) Rollback(userID int64, status models.TaskStatus) error {
	l.rollbacks = append(l.rollbacks, status)
	return nil
}

type recordedAction struct {
	actorID  int64
	itemType string
	itemID   int64
	kind     models.ActionKind
	detail   string
}

type fakeRecorder struct {
	actions []recordedAction
}

func (f *fakeRecorder) Record(actorID int64, itemType string, itemID int64, kind models.ActionKind, detail string) (string, error) {
	f.actions = append(f.actions, recordedAction{actorID, itemType, itemID, kind, detail})
	return fmt.Sprintf("a-%d", len(f.actions)), nil
}

func taskFixture(ids ...int64) []models.Task {
	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Task{ID: id, Name: fmt.Sprintf("task-%d", id), Status: models.StatusCreated})
	}
	return out
}

func TestSetStatus_AppliesToEveryTask(t *testing.T) {
	tasks := taskFixture(10, 20, 30)
	repo := newFakeRepo(tasks...)
	ledger := &fakeLedger{}
	rec := &fakeRecorder{}
	e := NewStatusEngine(repo, ledger, rec)

	if err := e.SetStatus(tasks, models.StatusFixed, 7, StatusOptions{}); err != nil {
		t.Fatalf("set status: %v", err)
	}

	for _, id := range []int64{10, 20, 30} {
		got, _ := repo.GetTask(id)
		if got.Status != models.StatusFixed {
			t.Errorf("task %d: expected fixed, got %s", id, got.Status)
		}
		if got.ReviewStatus != nil {
			t.Errorf("task %d: review status must stay unset without requestReview", id)
		}
	}
	if len(ledger.credits) != 3 {
		t.Errorf("expected one credit per task, got %d", len(ledger.credits))
	}
	if len(rec.actions) != 3 {
		t.Fatalf("expected one action per task, got %d", len(rec.actions))
	}
	for i, a := range rec.actions {
		if a.kind != models.ActionTaskStatusSet {
			t.Errorf("action %d: expected status-set kind, got %s", i, a.kind)
		}
	}
}

func TestSetStatus_RequestReviewInitializesWorkflow(t *testing.T) {
	tasks := taskFixture(1)
	repo := newFakeRepo(tasks...)
	e := NewStatusEngine(repo, &fakeLedger{}, &fakeRecorder{})

	if err := e.SetStatus(tasks, models.StatusFixed, 7, StatusOptions{RequestReview: true}); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, _ := repo.GetTask(1)
	if got.ReviewStatus == nil || *got.ReviewStatus != models.ReviewRequested {
		t.Errorf("expected review status requested, got %v", got.ReviewStatus)
	}
}

func TestSetStatus_BundleContextOnAction(t *testing.T) {
	tasks := taskFixture(10)
	repo := newFakeRepo(tasks...)
	rec := &fakeRecorder{}
	e := NewStatusEngine(repo, &fakeLedger{}, rec)

	bundleID := int64(5)
	primaryID := int64(10)
	opts := StatusOptions{
		Completion:    "osm-changeset-991",
		BundleID:      &bundleID,
		PrimaryTaskID: &primaryID,
	}
	if err := e.SetStatus(tasks, models.StatusFixed, 7, opts); err != nil {
		t.Fatalf("set status: %v", err)
	}
	detail := rec.actions[0].detail
	for _, want := range []string{"status=fixed", "bundle=5", "primary=10", "completion=osm-changeset-991"} {
		if !strings.Contains(detail, want) {
			t.Errorf("action detail missing %q: %s", want, detail)
		}
	}
}

func TestSetStatus_RejectsInvalidCode(t *testing.T) {
	tasks := taskFixture(1)
	repo := newFakeRepo(tasks...)
	ledger := &fakeLedger{}
	e := NewStatusEngine(repo, ledger, &fakeRecorder{})

	err := e.SetStatus(tasks, models.TaskStatus(99), 7, StatusOptions{})
	if !types.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	got, _ := repo.GetTask(1)
	if got.Status != models.StatusCreated {
		t.Errorf("invalid code must not mutate, got %s", got.Status)
	}
	if len(ledger.credits) != 0 {
		t.Errorf("invalid code must not credit, got %d credits", len(ledger.credits))
	}
}
