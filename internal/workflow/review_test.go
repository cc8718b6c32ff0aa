package workflow

import (
	"fmt"
	"testing"

	"github.com/mapcrowd/bundlework/internal/tags"
	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

type fakeComment struct {
	actorID  int64
	taskID   int64
	text     string
	actionID string
}

type fakeComments struct {
	comments []fakeComment
}

func (f *fakeComments) CreateComment(actorID, taskID int64, text, actionID string) error {
	f.comments = append(f.comments, fakeComment{actorID, taskID, text, actionID})
	return nil
}

type fakeTagStore struct {
	tags   map[string]models.Tag
	nextID int64
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{tags: make(map[string]models.Tag), nextID: 1}
}

func (f *fakeTagStore) seed(name, tagType string) models.Tag {
	t := models.Tag{ID: f.nextID, Name: name, TagType: tagType}
	f.nextID++
	f.tags[name+"|"+tagType] = t
	return t
}

func (f *fakeTagStore) FindTagByName(name, tagType string) (*models.Tag, error) {
	if t, ok := f.tags[name+"|"+tagType]; ok {
		return &t, nil
	}
	return nil, nil
}

func (f *fakeTagStore) CreateTag(tag models.Tag) (models.Tag, error) {
	if _, ok := f.tags[tag.Name+"|"+tag.TagType]; ok {
		return models.Tag{}, tags.ErrDuplicateTag
	}
	tag.ID = f.nextID
	f.nextID++
	f.tags[tag.Name+"|"+tag.TagType] = tag
	return tag, nil
}

func (f *fakeTagStore) ListTags(tagType string) ([]models.Tag, error) {
	var out []models.Tag
	for _, t := range f.tags {
		if t.TagType == tagType {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeAssocStore struct {
	links map[string]map[int64]bool
}

func newFakeAssocStore() *fakeAssocStore {
	return &fakeAssocStore{links: make(map[string]map[int64]bool)}
}

func (f *fakeAssocStore) key(itemType string, itemID int64) string {
	return fmt.Sprintf("%s:%d", itemType, itemID)
}

func (f *fakeAssocStore) ListTagAssociations(itemType string, itemID int64) ([]int64, error) {
	var out []int64
	for id := range f.links[f.key(itemType, itemID)] {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeAssocStore) AddTagAssociations(itemType string, itemID int64, tagIDs []int64) error {
	k := f.key(itemType, itemID)
	if f.links[k] == nil {
		f.links[k] = make(map[int64]bool)
	}
	for _, id := range tagIDs {
		f.links[k][id] = true
	}
	return nil
}

func (f *fakeAssocStore) ClearTagAssociations(itemType string, itemID int64) error {
	delete(f.links, f.key(itemType, itemID))
	return nil
}

type reviewHarness struct {
	repo     *fakeRepo
	ledger   *fakeLedger
	rec      *fakeRecorder
	comments *fakeComments
	tagStore *fakeTagStore
	assoc    *fakeAssocStore
	engine   *ReviewEngine
}

func newReviewHarness(tasks ...models.Task) *reviewHarness {
	h := &reviewHarness{
		repo:     newFakeRepo(tasks...),
		ledger:   &fakeLedger{},
		rec:      &fakeRecorder{},
		comments: &fakeComments{},
		tagStore: newFakeTagStore(),
		assoc:    newFakeAssocStore(),
	}
	status := NewStatusEngine(h.repo, h.ledger, h.rec)
	reconciler := tags.NewReconciler(h.tagStore)
	assoc := tags.NewAssociationManager(h.assoc, h.rec)
	h.engine = NewReviewEngine(h.repo, h.ledger, h.rec, h.comments, status, reconciler, assoc)
	return h
}

func TestSetReviewStatus_EmptyBundle(t *testing.T) {
	h := newReviewHarness()
	_, err := h.engine.SetReviewStatus(nil, models.ReviewApproved, 7, ReviewOptions{})
	if !types.IsInvalidBundleState(err) {
		t.Fatalf("expected InvalidBundleState, got %v", err)
	}
}

func TestSetReviewStatus_WritesStatusAndComment(t *testing.T) {
	h := newReviewHarness(taskFixture(10, 20)...)

	out, err := h.engine.SetReviewStatus(taskFixture(10, 20), models.ReviewApproved, 7, ReviewOptions{
		Comment: "looks good",
	})
	if err != nil {
		t.Fatalf("set review status: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 returned tasks, got %d", len(out))
	}
	for _, task := range out {
		if task.ReviewStatus == nil || *task.ReviewStatus != models.ReviewApproved {
			t.Errorf("task %d: expected approved, got %v", task.ID, task.ReviewStatus)
		}
	}

	// One review action per task, one comment per task linked to it.
	var reviewActions []recordedAction
	for _, a := range h.rec.actions {
		if a.kind == models.ActionReviewStatusSet {
			reviewActions = append(reviewActions, a)
		}
	}
	if len(reviewActions) != 2 {
		t.Fatalf("expected 2 review actions, got %d", len(reviewActions))
	}
	if len(h.comments.comments) != 2 {
		t.Fatalf("expected a comment per task, got %d", len(h.comments.comments))
	}
	for _, c := range h.comments.comments {
		if c.actionID == "" {
			t.Errorf("comment on task %d not linked to an action", c.taskID)
		}
	}
}

func TestSetReviewStatus_RevisionRollsBackAndRecredits(t *testing.T) {
	fixture := taskFixture(10, 20, 30)
	for i := range fixture {
		fixture[i].Status = models.StatusFixed
	}
	h := newReviewHarness(fixture...)

	newStatus := models.StatusTooHard
	out, err := h.engine.SetReviewStatus(fixture, models.ReviewRejected, 7, ReviewOptions{
		NewTaskStatus: &newStatus,
	})
	if err != nil {
		t.Fatalf("set review status: %v", err)
	}

	// Exactly one rollback of the prior status and one credit of the new
	// status per task, never more.
	if len(h.ledger.rollbacks) != 3 {
		t.Fatalf("expected 3 rollbacks, got %d", len(h.ledger.rollbacks))
	}
	for _, status := range h.ledger.rollbacks {
		if status != models.StatusFixed {
			t.Errorf("rollback must target the prior status, got %s", status)
		}
	}
	if len(h.ledger.credits) != 3 {
		t.Fatalf("expected 3 credits, got %d", len(h.ledger.credits))
	}
	for _, status := range h.ledger.credits {
		if status != models.StatusTooHard {
			t.Errorf("credit must target the new status, got %s", status)
		}
	}

	for _, task := range out {
		if task.Status != models.StatusTooHard {
			t.Errorf("task %d: review must operate on post-revision state, got %s", task.ID, task.Status)
		}
		if task.ReviewStatus == nil || *task.ReviewStatus != models.ReviewRejected {
			t.Errorf("task %d: expected rejected review, got %v", task.ID, task.ReviewStatus)
		}
	}
}

func TestSetReviewStatus_TagsScopedPerTaskByDefault(t *testing.T) {
	h := newReviewHarness(taskFixture(10, 20)...)
	h.tagStore.seed("foo", models.TagTypeTasks)

	_, err := h.engine.SetReviewStatus(taskFixture(10, 20), models.ReviewApproved, 7, ReviewOptions{
		Tags: "foo,bar",
	})
	if err != nil {
		t.Fatalf("set review status: %v", err)
	}

	for _, id := range []int64{10, 20} {
		ids, _ := h.assoc.ListTagAssociations(models.ItemTypeTask, id)
		if len(ids) != 2 {
			t.Errorf("task %d: expected both tags associated, got %v", id, ids)
		}
	}
	if len(h.tagStore.tags) != 2 {
		t.Errorf("only the unknown tag should be created, have %d tags", len(h.tagStore.tags))
	}
}

func TestSetReviewStatus_TagTargetOverride(t *testing.T) {
	h := newReviewHarness(taskFixture(10, 20)...)
	target := int64(99)

	_, err := h.engine.SetReviewStatus(taskFixture(10, 20), models.ReviewApproved, 7, ReviewOptions{
		Tags:      "foo,bar",
		TagItemID: &target,
	})
	if err != nil {
		t.Fatalf("set review status: %v", err)
	}

	ids, _ := h.assoc.ListTagAssociations(models.ItemTypeTask, target)
	if len(ids) != 2 {
		t.Errorf("expected tags on the override target, got %v", ids)
	}
	for _, id := range []int64{10, 20} {
		ids, _ := h.assoc.ListTagAssociations(models.ItemTypeTask, id)
		if len(ids) != 0 {
			t.Errorf("task %d: tags must not attach per task when a target is supplied, got %v", id, ids)
		}
	}
}

func TestSetMetaReviewStatus_OnlyTouchesMetaReview(t *testing.T) {
	fixture := taskFixture(10)
	fixture[0].Status = models.StatusFixed
	approved := models.ReviewApproved
	fixture[0].ReviewStatus = &approved
	h := newReviewHarness(fixture...)

	out, err := h.engine.SetMetaReviewStatus(fixture, models.ReviewRejected, 7, MetaReviewOptions{})
	if err != nil {
		t.Fatalf("set meta-review status: %v", err)
	}

	task := out[0]
	if task.MetaReviewStatus == nil || *task.MetaReviewStatus != models.ReviewRejected {
		t.Errorf("expected meta-review rejected, got %v", task.MetaReviewStatus)
	}
	if task.Status != models.StatusFixed {
		t.Errorf("meta-review must not mutate status, got %s", task.Status)
	}
	if task.ReviewStatus == nil || *task.ReviewStatus != models.ReviewApproved {
		t.Errorf("meta-review must not mutate review status, got %v", task.ReviewStatus)
	}
	if len(h.ledger.rollbacks) != 0 || len(h.ledger.credits) != 0 {
		t.Errorf("meta-review must not touch scoring: %d rollbacks, %d credits",
			len(h.ledger.rollbacks), len(h.ledger.credits))
	}
}

func TestSetMetaReviewStatus_EmptyBundle(t *testing.T) {
	h := newReviewHarness()
	_, err := h.engine.SetMetaReviewStatus(nil, models.ReviewApproved, 7, MetaReviewOptions{})
	if !types.IsInvalidBundleState(err) {
		t.Fatalf("expected InvalidBundleState, got %v", err)
	}
}
