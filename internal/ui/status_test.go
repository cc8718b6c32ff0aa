package ui

import (
	"strings"
	"testing"

	"github.com/mapcrowd/bundlework/models"
)

func TestStatusStyleBuckets(t *testing.T) {
	if StatusStyle(models.StatusFixed).GetForeground() != ColorSuccess {
		t.Error("fixed must render as success")
	}
	if StatusStyle(models.StatusTooHard).GetForeground() != ColorWarning {
		t.Error("too-hard must render as warning")
	}
	if StatusStyle(models.StatusDeleted).GetForeground() != ColorError {
		t.Error("deleted must render as error")
	}
	if StatusStyle(models.StatusCreated).GetForeground() != ColorSecondary {
		t.Error("created must render subtle")
	}
}

func TestRenderTaskLine(t *testing.T) {
	approved := models.ReviewApproved
	line := RenderTaskLine(models.Task{
		ID:           4,
		Name:         "resurface path",
		Status:       models.StatusFixed,
		ReviewStatus: &approved,
	})
	for _, want := range []string{"#4", "resurface path", "fixed", "review:", "approved"} {
		if !strings.Contains(line, want) {
			t.Errorf("line missing %q: %s", want, line)
		}
	}
	if strings.Contains(line, "meta:") {
		t.Errorf("meta segment must be absent without a meta-review: %s", line)
	}
}

func TestRenderBundle(t *testing.T) {
	primary := int64(2)
	out := RenderBundle(&models.TaskBundle{
		ID:            9,
		OwnerID:       7,
		Name:          "crossings",
		TaskIDs:       []int64{1, 2},
		PrimaryTaskID: &primary,
		Tasks: []models.Task{
			{ID: 1, Name: "north", Status: models.StatusFixed},
			{ID: 2, Name: "south", Status: models.StatusCreated},
		},
	})
	for _, want := range []string{"Bundle #9", "crossings", "owner 7", "primary 2", "north", "south"} {
		if !strings.Contains(out, want) {
			t.Errorf("bundle render missing %q:\n%s", want, out)
		}
	}
}
