// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/models"
	"blogpress/internal/slug"
)

// TagStore manages tags in the database.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `id, name, slug, created_at`

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func scanTag(row scanner) (*models.Tag, error) {
	var t models.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// slugFor derives the URL slug of a category or tag name. Names made only
// of characters the slug drops (punctuation, emoji) get a random slug.
func slugFor(name string) string {
	if s := slug.Generate(name); s != "" {
		return s
	}
	return uuid.NewString()[:8]
}

// GetOrCreate returns the tag with the given name, creating it if needed.
func (s *TagStore) GetOrCreate(name string) (*models.Tag, error) {
	return getOrCreateTag(s.db, name)
}

// getOrCreateTag is a single upsert so concurrent callers with the same
// name converge on one row. A different name whose slug is already taken
// yields ErrDuplicate.
func getOrCreateTag(q queryRower, name string) (*models.Tag, error) {
	t, err := scanTag(q.QueryRow(`
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+tagColumns,
		name, slugFor(name)))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("tag %q: %w", name, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("get or create tag: %w", err)
	}
	return t, nil
}

// FindBySlug retrieves a tag by its slug. Returns nil if not found.
func (s *TagStore) FindBySlug(tagSlug string) (*models.Tag, error) {
	t, err := scanTag(s.db.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE slug = $1`, tagSlug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// List returns all tags ordered by name, with post counts.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(pt.post_id) AS post_count
		FROM tags t
		LEFT JOIN post_tags pt ON pt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.PostCount); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
