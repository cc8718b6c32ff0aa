package storage

import (
	"errors"
	"testing"

	"github.com/mapcrowd/bundlework/internal/tags"
	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetTaskNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetTask(404)
	if !types.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTaskStatusRoundtrip(t *testing.T) {
	s := testStore(t)
	task, err := s.CreateTask("resurvey path", models.StatusCreated)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := s.SaveTaskStatus(task.ID, models.StatusFixed); err != nil {
		t.Fatalf("save status: %v", err)
	}
	if err := s.SaveReviewStatus(task.ID, models.ReviewRequested); err != nil {
		t.Fatalf("save review status: %v", err)
	}
	if err := s.SaveMetaReviewStatus(task.ID, models.ReviewApproved); err != nil {
		t.Fatalf("save meta-review status: %v", err)
	}

	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != models.StatusFixed {
		t.Errorf("status: got %s", got.Status)
	}
	if got.ReviewStatus == nil || *got.ReviewStatus != models.ReviewRequested {
		t.Errorf("review status: got %v", got.ReviewStatus)
	}
	if got.MetaReviewStatus == nil || *got.MetaReviewStatus != models.ReviewApproved {
		t.Errorf("meta-review status: got %v", got.MetaReviewStatus)
	}

	if err := s.SaveTaskStatus(404, models.StatusFixed); !types.IsNotFound(err) {
		t.Errorf("saving an unknown task: expected NotFound, got %v", err)
	}
}

func TestCreateTagDetectsDuplicates(t *testing.T) {
	s := testStore(t)

	first, err := s.CreateTag(models.Tag{Name: "sidewalk", TagType: models.TagTypeTasks})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	_, err = s.CreateTag(models.Tag{Name: "sidewalk", TagType: models.TagTypeTasks})
	if !errors.Is(err, tags.ErrDuplicateTag) {
		t.Fatalf("expected ErrDuplicateTag, got %v", err)
	}

	// Same name for a different tag type is a distinct tag.
	other, err := s.CreateTag(models.Tag{Name: "sidewalk", TagType: models.TagTypeChallenges})
	if err != nil {
		t.Fatalf("create tag for other type: %v", err)
	}
	if other.ID == first.ID {
		t.Error("tag types must not share rows")
	}

	found, err := s.FindTagByName("sidewalk", models.TagTypeTasks)
	if err != nil {
		t.Fatalf("find tag: %v", err)
	}
	if found == nil || found.ID != first.ID {
		t.Errorf("expected the original row, got %+v", found)
	}
	missing, err := s.FindTagByName("curb", models.TagTypeTasks)
	if err != nil || missing != nil {
		t.Errorf("absent tag must be (nil, nil), got %v, %v", missing, err)
	}
}

func TestAddTagAssociationsIgnoresRepeats(t *testing.T) {
	s := testStore(t)
	tag, err := s.CreateTag(models.Tag{Name: "surface", TagType: models.TagTypeTasks})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if err := s.AddTagAssociations(models.ItemTypeTask, 1, []int64{tag.ID}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.AddTagAssociations(models.ItemTypeTask, 1, []int64{tag.ID}); err != nil {
		t.Fatalf("repeated add: %v", err)
	}

	ids, err := s.ListTagAssociations(models.ItemTypeTask, 1)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected a single association, got %v", ids)
	}

	if err := s.ClearTagAssociations(models.ItemTypeTask, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	ids, _ = s.ListTagAssociations(models.ItemTypeTask, 1)
	if len(ids) != 0 {
		t.Errorf("expected no associations after clear, got %v", ids)
	}
}

func TestCreditAndRollbackAreSymmetric(t *testing.T) {
	s := testStore(t)
	const userID = int64(3)

	if err := s.Credit(userID, models.StatusFixed); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := s.Credit(userID, models.StatusAlreadyFixed); err != nil {
		t.Fatalf("credit: %v", err)
	}
	points, err := s.Points(userID)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if points != 8 {
		t.Errorf("expected 5+3 points, got %d", points)
	}

	if err := s.Rollback(userID, models.StatusFixed); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	points, _ = s.Points(userID)
	if points != 3 {
		t.Errorf("expected rollback to remove exactly the credited amount, got %d", points)
	}

	// Zero-point statuses leave the ledger alone.
	if err := s.Credit(userID, models.StatusCreated); err != nil {
		t.Fatalf("credit created: %v", err)
	}
	points, _ = s.Points(userID)
	if points != 3 {
		t.Errorf("created must score 0, got %d", points)
	}
}

func TestPointsUnknownUser(t *testing.T) {
	s := testStore(t)
	points, err := s.Points(999)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if points != 0 {
		t.Errorf("unknown user must score 0, got %d", points)
	}
}

func TestRemoveBundleTasksClearsPrimary(t *testing.T) {
	s := testStore(t)
	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		task, err := s.CreateTask(name, models.StatusCreated)
		if err != nil {
			t.Fatalf("create task: %v", err)
		}
		ids = append(ids, task.ID)
	}

	b, err := s.CreateBundle(models.TaskBundle{OwnerID: 7, Name: "primary test", TaskIDs: ids, PrimaryTaskID: &ids[0]})
	if err != nil {
		t.Fatalf("create bundle: %v", err)
	}

	if err := s.RemoveBundleTasks(b.ID, []int64{ids[0]}); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	got, err := s.GetBundle(b.ID)
	if err != nil {
		t.Fatalf("get bundle: %v", err)
	}
	if got.PrimaryTaskID != nil {
		t.Errorf("removing the primary member must clear the primary, got %d", *got.PrimaryTaskID)
	}
	if len(got.TaskIDs) != 2 {
		t.Errorf("expected 2 members left, got %v", got.TaskIDs)
	}
}

func TestActionAndCommentRoundtrip(t *testing.T) {
	s := testStore(t)

	actionID, err := s.Record(7, models.ItemTypeTask, 1, models.ActionTaskStatusSet, "status=fixed")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if actionID == "" {
		t.Fatal("expected a generated action id")
	}
	if err := s.CreateComment(7, 1, "checked on site", actionID); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	actions, err := s.ListActions(models.ItemTypeTask, 1)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 1 || actions[0].Kind != models.ActionTaskStatusSet {
		t.Fatalf("unexpected actions %+v", actions)
	}

	comments, err := s.ListComments(1)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 1 || comments[0].ActionID != actionID {
		t.Fatalf("unexpected comments %+v", comments)
	}
}
