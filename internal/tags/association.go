package tags

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mapcrowd/bundlework/models"
)

// AssociationMode selects how new tag links combine with existing ones.
type AssociationMode int

const (
	// Merge adds the given tags on top of existing associations.
	Merge AssociationMode = iota
	// Replace clears all prior associations before inserting.
	Replace
)

// AssociationStore defines the persistence methods for item-tag links.
// Duplicate inserts are no-ops at the store level.
type AssociationStore interface {
	ListTagAssociations(itemType string, itemID int64) ([]int64, error)
	AddTagAssociations(itemType string, itemID int64, tagIDs []int64) error
	ClearTagAssociations(itemType string, itemID int64) error
}

// ActionRecorder records one audit action for a tag change.
type ActionRecorder interface {
	Record(actorID int64, itemType string, itemID int64, kind models.ActionKind, detail string) (string, error)
}

// AssociationManager links resolved tag ids to an owning item and emits
// one audit action per mutating call.
type AssociationManager struct {
	store   AssociationStore
	actions ActionRecorder
}

// NewAssociationManager creates an AssociationManager.
func NewAssociationManager(store AssociationStore, actions ActionRecorder) *AssociationManager {
	return &AssociationManager{store: store, actions: actions}
}

// Associate links tagIDs to the item. Merge mode with no tags is a no-op.
// Replace mode is an explicit write of the given set, including the empty
// set; the audit action is emitted only when the association set actually
// changed.
func (m *AssociationManager) Associate(actorID int64, itemType string, itemID int64, tagIDs []int64, mode AssociationMode) error {
	switch mode {
	case Merge:
		if len(tagIDs) == 0 {
			return nil
		}
		if err := m.store.AddTagAssociations(itemType, itemID, tagIDs); err != nil {
			return fmt.Errorf("add tag associations: %w", err)
		}
		if _, err := m.actions.Record(actorID, itemType, itemID, models.ActionTagsAdded, joinIDs(tagIDs)); err != nil {
			return fmt.Errorf("record tag action: %w", err)
		}
		return nil

	case Replace:
		prior, err := m.store.ListTagAssociations(itemType, itemID)
		if err != nil {
			return fmt.Errorf("list tag associations: %w", err)
		}
		if err := m.store.ClearTagAssociations(itemType, itemID); err != nil {
			return fmt.Errorf("clear tag associations: %w", err)
		}
		if len(tagIDs) > 0 {
			if err := m.store.AddTagAssociations(itemType, itemID, tagIDs); err != nil {
				return fmt.Errorf("add tag associations: %w", err)
			}
		}
		if sameIDSet(prior, tagIDs) {
			return nil
		}
		kind := models.ActionTagsAdded
		detail := joinIDs(tagIDs)
		if len(tagIDs) == 0 {
			kind = models.ActionTagsRemoved
			detail = joinIDs(prior)
		}
		if _, err := m.actions.Record(actorID, itemType, itemID, kind, detail); err != nil {
			return fmt.Errorf("record tag action: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown association mode %d", mode)
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func sameIDSet(a, b []int64) bool {
	as := uniqueSorted(a)
	bs := uniqueSorted(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func uniqueSorted(ids []int64) []int64 {
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
