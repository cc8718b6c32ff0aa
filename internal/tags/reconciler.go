// Package tags resolves heterogeneous tag references into canonical
// persisted tag records and manages tag-to-item associations.
package tags

import (
	"errors"
	"fmt"

	"github.com/mapcrowd/bundlework/models"
)

// ErrDuplicateTag is returned by a TagStore when an insert collides with
// the (name, tagType) uniqueness constraint. The reconciler recovers from
// it by re-reading the winning row; it is never surfaced to callers.
var ErrDuplicateTag = errors.New("tag already exists")

// TagStore defines the persistence methods the reconciler needs. The
// store guarantees a uniqueness constraint on (name, tagType).
type TagStore interface {
	// FindTagByName returns the tag with the given name and type, or nil
	// when no such tag exists.
	FindTagByName(name, tagType string) (*models.Tag, error)
	// CreateTag persists a new tag and returns it with its assigned id.
	// Returns ErrDuplicateTag (possibly wrapped) when (name, tagType)
	// already exists.
	CreateTag(tag models.Tag) (models.Tag, error)
	// ListTags returns all tags of the given type.
	ListTags(tagType string) ([]models.Tag, error)
}

// Reconciler resolves raw tag references with create-or-reuse semantics.
type Reconciler struct {
	store TagStore
}

// NewReconciler creates a Reconciler backed by the given store.
func NewReconciler(store TagStore) *Reconciler {
	return &Reconciler{store: store}
}

// Resolve turns a list of tag references into canonical tag ids,
// preserving input order. Numeric references pass through unvalidated;
// whether the id exists is the storage layer's concern. Name references
// reuse an existing (name, tagType) row or create a new one. Duplicate
// input may yield duplicate ids; deduplication is the caller's choice.
// An empty reference list yields an empty result.
func (r *Reconciler) Resolve(refs []models.TagRef, tagType string) ([]int64, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(refs))
	// byName caches lookups and creations within one call so that two
	// references to the same new name resolve to one row.
	byName := make(map[string]int64)

	for i, ref := range refs {
		switch ref.Kind {
		case models.TagRefID:
			ids[i] = ref.ID
		case models.TagRefFull:
			if ref.HasID {
				ids[i] = ref.ID
				continue
			}
			id, err := r.resolveName(ref.Name, ref.Description, tagType, byName)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		case models.TagRefName:
			id, err := r.resolveName(ref.Name, "", tagType, byName)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		default:
			return nil, fmt.Errorf("unknown tag reference kind %d", ref.Kind)
		}
	}

	return ids, nil
}

// resolveName reuses an existing tag or creates a new one. A concurrent
// duplicate create is resolved by re-reading the row that won.
func (r *Reconciler) resolveName(name, description, tagType string, byName map[string]int64) (int64, error) {
	if id, ok := byName[name]; ok {
		return id, nil
	}

	existing, err := r.store.FindTagByName(name, tagType)
	if err != nil {
		return 0, fmt.Errorf("find tag %q: %w", name, err)
	}
	if existing != nil {
		byName[name] = existing.ID
		return existing.ID, nil
	}

	created, err := r.store.CreateTag(models.Tag{
		Name:        name,
		Description: description,
		TagType:     tagType,
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicateTag) {
			return 0, fmt.Errorf("create tag %q: %w", name, err)
		}
		// Lost the race against a concurrent create; the constraint
		// guarantees exactly one winning row to reuse.
		winner, ferr := r.store.FindTagByName(name, tagType)
		if ferr != nil {
			return 0, fmt.Errorf("re-read tag %q after duplicate: %w", name, ferr)
		}
		if winner == nil {
			return 0, fmt.Errorf("tag %q reported duplicate but is absent", name)
		}
		byName[name] = winner.ID
		return winner.ID, nil
	}

	byName[name] = created.ID
	return created.ID, nil
}
