package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag type discriminators. The tag type decides which item kind a tag
// applies to; (name, tagType) is unique among persisted tags.
const (
	TagTypeTasks      = "tasks"
	TagTypeChallenges = "challenges"
)

// Tag is a persisted free-form label. ID is only meaningful once the tag
// has been stored; a not-yet-persisted tag travels as a pending TagRef
// instead of carrying a sentinel id.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
	TagType     string `json:"tagType" validate:"required,oneof=tasks challenges"`
}

// TagRefKind discriminates the three accepted tag reference shapes.
type TagRefKind int

const (
	// TagRefID references an existing tag by numeric id.
	TagRefID TagRefKind = iota
	// TagRefName references a tag by name, to be reused or created.
	TagRefName
	// TagRefFull carries a structured tag object; its id is optional and
	// absent means "create".
	TagRefFull
)

// TagRef is the normalized form of heterogeneous tag input: numeric-id
// strings, plain names, or structured objects, singly or mixed.
type TagRef struct {
	Kind        TagRefKind
	ID          int64 // valid for TagRefID, and for TagRefFull when HasID
	HasID       bool  // TagRefFull only: whether ID was supplied
	Name        string
	Description string
}

// NumericTagRef references an existing tag id.
func NumericTagRef(id int64) TagRef {
	return TagRef{Kind: TagRefID, ID: id}
}

// NameTagRef references a tag by name with create-or-reuse semantics.
func NameTagRef(name string) TagRef {
	return TagRef{Kind: TagRefName, Name: strings.ToLower(strings.TrimSpace(name))}
}

// FullTagRef references a structured tag object. Pass hasID=false for a
// tag that does not exist yet.
func FullTagRef(id int64, hasID bool, name, description string) TagRef {
	return TagRef{
		Kind:        TagRefFull,
		ID:          id,
		HasID:       hasID,
		Name:        strings.ToLower(strings.TrimSpace(name)),
		Description: description,
	}
}

// ParseTagRef normalizes one raw string reference. A string that parses
// as an integer is an id reference; anything else is a name reference.
func ParseTagRef(raw string) (TagRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TagRef{}, fmt.Errorf("empty tag reference")
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return NumericTagRef(id), nil
	}
	return NameTagRef(raw), nil
}

// ParseTagRefs splits comma-separated raw input into normalized refs.
// Blank segments are dropped; an empty input yields no refs and no error.
func ParseTagRefs(raw string) []TagRef {
	var refs []TagRef
	for _, part := range strings.Split(raw, ",") {
		ref, err := ParseTagRef(part)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
