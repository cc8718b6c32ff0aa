package models

import "time"

// Item types recorded on audit actions. Tag associations always use
// ItemTypeTask; ItemTypeBundle covers bundle lifecycle records.
const (
	ItemTypeTask   = "task"
	ItemTypeBundle = "bundle"
)

// ActionKind identifies what a mutating operation did.
type ActionKind string

const (
	ActionTaskStatusSet       ActionKind = "task_status_set"
	ActionReviewStatusSet     ActionKind = "review_status_set"
	ActionMetaReviewStatusSet ActionKind = "meta_review_status_set"
	ActionTagsAdded           ActionKind = "tags_added"
	ActionTagsRemoved         ActionKind = "tags_removed"
	ActionBundleCreated       ActionKind = "bundle_created"
	ActionBundleTasksRemoved  ActionKind = "bundle_tasks_removed"
	ActionBundleDeleted       ActionKind = "bundle_deleted"
)

// Action is the audit record emitted by every mutating workflow
// operation. It is write-only from the engines' point of view.
type Action struct {
	ID        string     `json:"id"`
	ActorID   int64      `json:"actorId"`
	ItemType  string     `json:"itemType"`
	ItemID    int64      `json:"itemId"`
	Kind      ActionKind `json:"kind"`
	Detail    string     `json:"detail,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Comment is free-form reviewer text attached to a task, optionally
// linked to the action that prompted it.
type Comment struct {
	ID        string    `json:"id"`
	ActorID   int64     `json:"actorId"`
	TaskID    int64     `json:"taskId"`
	Text      string    `json:"text"`
	ActionID  string    `json:"actionId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
