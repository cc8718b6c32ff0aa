package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TaskStatus codes follow the map-editing task lifecycle. The numeric
// values are stable because they are persisted and drive point awards.
type TaskStatus int

const (
	StatusCreated       TaskStatus = 0
	StatusFixed         TaskStatus = 1
	StatusFalsePositive TaskStatus = 2
	StatusSkipped       TaskStatus = 3
	StatusDeleted       TaskStatus = 4
	StatusAlreadyFixed  TaskStatus = 5
	StatusTooHard       TaskStatus = 6
	StatusDisabled      TaskStatus = 9
)

// ReviewStatus codes track human review of a completed task. Meta-review
// shares the same code space.
type ReviewStatus int

const (
	ReviewRequested   ReviewStatus = 0
	ReviewApproved    ReviewStatus = 1
	ReviewRejected    ReviewStatus = 2
	ReviewAssisted    ReviewStatus = 3
	ReviewDisputed    ReviewStatus = 4
	ReviewUnnecessary ReviewStatus = 5
)

var taskStatusNames = map[TaskStatus]string{
	StatusCreated:       "created",
	StatusFixed:         "fixed",
	StatusFalsePositive: "false-positive",
	StatusSkipped:       "skipped",
	StatusDeleted:       "deleted",
	StatusAlreadyFixed:  "already-fixed",
	StatusTooHard:       "too-hard",
	StatusDisabled:      "disabled",
}

var reviewStatusNames = map[ReviewStatus]string{
	ReviewRequested:   "requested",
	ReviewApproved:    "approved",
	ReviewRejected:    "rejected",
	ReviewAssisted:    "assisted",
	ReviewDisputed:    "disputed",
	ReviewUnnecessary: "unnecessary",
}

func (s TaskStatus) String() string {
	if name, ok := taskStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s ReviewStatus) String() string {
	if name, ok := reviewStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("review(%d)", int(s))
}

// IsValidTaskStatus reports whether code is a known task status.
func IsValidTaskStatus(code int) bool {
	_, ok := taskStatusNames[TaskStatus(code)]
	return ok
}

// IsValidReviewStatus reports whether code is a known review (or
// meta-review) status.
func IsValidReviewStatus(code int) bool {
	_, ok := reviewStatusNames[ReviewStatus(code)]
	return ok
}

// ParseTaskStatus resolves either a numeric code or a status name.
func ParseTaskStatus(s string) (TaskStatus, error) {
	s = strings.TrimSpace(s)
	for code, name := range taskStatusNames {
		if strings.EqualFold(s, name) {
			return code, nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(s, "%d", &code); err == nil && IsValidTaskStatus(code) {
		return TaskStatus(code), nil
	}
	return 0, fmt.Errorf("unknown task status %q", s)
}

// ParseReviewStatus resolves either a numeric code or a status name.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	s = strings.TrimSpace(s)
	for code, name := range reviewStatusNames {
		if strings.EqualFold(s, name) {
			return code, nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(s, "%d", &code); err == nil && IsValidReviewStatus(code) {
		return ReviewStatus(code), nil
	}
	return 0, fmt.Errorf("unknown review status %q", s)
}

// Task is one unit of map-editing work. ReviewStatus and MetaReviewStatus
// are pointers because they carry no meaning until the first review (or
// meta-review) transition touches the task.
type Task struct {
	ID               int64         `json:"id" validate:"required"`
	Name             string        `json:"name" validate:"required,min=1,max=255"`
	Status           TaskStatus    `json:"status"`
	ReviewStatus     *ReviewStatus `json:"reviewStatus,omitempty"`
	MetaReviewStatus *ReviewStatus `json:"metaReviewStatus,omitempty"`
}

// global validator instance, shared by all model validation.
var validate = validator.New()

// ValidateStruct performs validation on any struct carrying validate tags.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
