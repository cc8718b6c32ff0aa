package models

// TaskBundle groups tasks so that status and review transitions can be
// applied to all members in one operation. A bundle never exists with an
// empty member set; removing the last member deletes it.
type TaskBundle struct {
	ID            int64   `json:"id"`
	OwnerID       int64   `json:"ownerId" validate:"required"`
	Name          string  `json:"name"`
	TaskIDs       []int64 `json:"taskIds" validate:"required,min=1"`
	PrimaryTaskID *int64  `json:"primaryTaskId,omitempty"`

	// Tasks holds the resolved member tasks when the bundle was loaded
	// with its contents. Not populated on bare membership reads.
	Tasks []Task `json:"tasks,omitempty"`
}

// Contains reports whether id is a member of the bundle.
func (b *TaskBundle) Contains(id int64) bool {
	for _, tid := range b.TaskIDs {
		if tid == id {
			return true
		}
	}
	return false
}
