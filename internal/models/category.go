// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// NoCategorySlug addresses the uncategorized listing. It is a query
// condition, not a stored category.
const NoCategorySlug = "no_category"

// Category is a single-valued classification for posts. Name and slug are
// both unique.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Virtual field populated by CategoryStore.List.
	PostCount int `json:"post_count"`
}

// URL returns the filtered listing path for the category.
func (c *Category) URL() string {
	return "/categories/" + c.Slug + "/"
}

// Tag is a many-to-many label for posts. Name and slug are both unique.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field populated by TagStore.List.
	PostCount int `json:"post_count"`
}

// URL returns the filtered listing path for the tag.
func (t *Tag) URL() string {
	return "/tags/" + t.Slug + "/"
}
