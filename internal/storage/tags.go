package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mapcrowd/bundlework/internal/tags"
	"github.com/mapcrowd/bundlework/models"
	"github.com/mapcrowd/bundlework/types"
)

// FindTagByName returns the tag with the given name and type, or nil
// when no such tag exists.
func (s *Store) FindTagByName(name, tagType string) (*models.Tag, error) {
	var t models.Tag
	var description sql.NullString
	err := s.db.QueryRow(`
		SELECT id, name, description, tag_type FROM tags WHERE name = ? AND tag_type = ?
	`, name, tagType).Scan(&t.ID, &t.Name, &description, &t.TagType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query tag: %w", err)
	}
	t.Description = description.String
	return &t, nil
}

// GetTag loads one tag by id.
func (s *Store) GetTag(id int64) (*models.Tag, error) {
	var t models.Tag
	var description sql.NullString
	err := s.db.QueryRow(`
		SELECT id, name, description, tag_type FROM tags WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &description, &t.TagType)
	if err == sql.ErrNoRows {
		return nil, types.NewNotFoundError("tag", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query tag: %w", err)
	}
	t.Description = description.String
	return &t, nil
}

// CreateTag persists a new tag. A collision on (name, tag_type) is
// reported as tags.ErrDuplicateTag so the reconciler can reuse the
// winning row.
func (s *Store) CreateTag(tag models.Tag) (models.Tag, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO tags (name, description, tag_type, created_at) VALUES (?, ?, ?, ?)
	`, tag.Name, tag.Description, tag.TagType, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.Tag{}, fmt.Errorf("tag %q (%s): %w", tag.Name, tag.TagType, tags.ErrDuplicateTag)
		}
		return models.Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Tag{}, fmt.Errorf("tag id: %w", err)
	}
	tag.ID = id
	return tag, nil
}

// ListTags returns all tags of the given type ordered by name.
func (s *Store) ListTags(tagType string) ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, tag_type FROM tags WHERE tag_type = ? ORDER BY name
	`, tagType)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		var description sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &description, &t.TagType); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.Description = description.String
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTagAssociations returns the tag ids linked to an item.
func (s *Store) ListTagAssociations(itemType string, itemID int64) ([]int64, error) {
	rows, err := s.db.Query(`
		SELECT tag_id FROM tag_associations WHERE item_type = ? AND item_id = ? ORDER BY tag_id
	`, itemType, itemID)
	if err != nil {
		return nil, fmt.Errorf("query tag associations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tag association: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddTagAssociations links tagIDs to the item; duplicates are no-ops.
func (s *Store) AddTagAssociations(itemType string, itemID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO tag_associations (item_type, item_id, tag_id, created_at)
			VALUES (?, ?, ?, ?)
		`, itemType, itemID, tagID, now); err != nil {
			return fmt.Errorf("insert tag association %d: %w", tagID, err)
		}
	}
	return tx.Commit()
}

// ClearTagAssociations removes every tag link for the item.
func (s *Store) ClearTagAssociations(itemType string, itemID int64) error {
	if _, err := s.db.Exec(`
		DELETE FROM tag_associations WHERE item_type = ? AND item_id = ?
	`, itemType, itemID); err != nil {
		return fmt.Errorf("clear tag associations: %w", err)
	}
	return nil
}
