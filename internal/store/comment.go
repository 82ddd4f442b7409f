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

// CommentStore handles comment database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `
	SELECT cm.id, cm.post_id, cm.author_id, cm.content, cm.created_at, cm.updated_at,
	       u.username, u.display_name, u.role
	FROM comments cm
	JOIN users u ON u.id = cm.author_id`

func scanComment(row scanner) (*models.Comment, error) {
	c := &models.Comment{Author: &models.User{}}
	err := row.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.Username, &c.Author.DisplayName, &c.Author.Role,
	)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.AuthorID
	return c, nil
}

// Create inserts a comment on a post. Returns ErrNotFound if the post does
// not exist.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, author_id, content)
		SELECT p.id, $2, $3 FROM posts p WHERE p.id = $1
		RETURNING id
	`, c.PostID, c.AuthorID, c.Content).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.FindByID(id)
}

// FindByID retrieves a comment with its author. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRow(commentSelect+` WHERE cm.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// ListByPost returns a post's comments, oldest first.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(commentSelect+`
		WHERE cm.post_id = $1
		ORDER BY cm.created_at, cm.id
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Update replaces a comment's content and refreshes updated_at.
func (s *CommentStore) Update(c *models.Comment) error {
	err := s.db.QueryRow(`
		UPDATE comments SET content = $1, updated_at = clock_timestamp()
		WHERE id = $2
		RETURNING updated_at
	`, c.Content, c.ID).Scan(&c.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment by ID.
func (s *CommentStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
