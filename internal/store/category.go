// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with post counts. Posts
// without a category are not counted here; see PostStore.CountUncategorized.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.created_at, c.updated_at,
		       COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt, &c.PostCount)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindByID returns a single category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// FindBySlug returns a single category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(categorySlug string) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, categorySlug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category. An empty slug is derived from the name.
// A taken name or slug yields ErrDuplicate.
func (s *CategoryStore) Create(name, categorySlug string) (*models.Category, error) {
	if categorySlug == "" {
		categorySlug = slugFor(name)
	}
	c, err := scanCategory(s.db.QueryRow(`
		INSERT INTO categories (name, slug) VALUES ($1, $2)
		RETURNING `+categoryColumns,
		name, categorySlug))
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Delete removes a category. Its posts become uncategorized.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
