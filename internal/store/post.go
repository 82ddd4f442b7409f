// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blogpress/internal/models"
)

// PostStore handles all post-related database operations, including the
// post/tag association table.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// PostFilter narrows PostStore.List. Zero value lists every post.
// CategorySlug and Uncategorized are mutually exclusive; Uncategorized wins.
type PostFilter struct {
	CategorySlug  string
	Uncategorized bool
	TagSlug       string
	// Query is a case-insensitive substring matched against title and content.
	Query string
}

const postSelect = `
	SELECT p.id, p.title, p.hook_text, p.content,
	       p.head_image, p.head_image_thumb, p.file_upload,
	       p.author_id, p.category_id, p.created_at, p.updated_at,
	       u.username, u.display_name, u.role,
	       c.name, c.slug
	FROM posts p
	LEFT JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id`

// scanPost scans a postSelect row, attaching the author and category when
// the post still references them.
func scanPost(row scanner) (*models.Post, error) {
	var (
		p                           models.Post
		username, displayName, role sql.NullString
		categoryName, categorySlug  sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.HookText, &p.Content,
		&p.HeadImage, &p.HeadImageThumb, &p.FileUpload,
		&p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		&username, &displayName, &role,
		&categoryName, &categorySlug,
	)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != nil {
		p.Author = &models.User{
			ID:          *p.AuthorID,
			Username:    username.String,
			DisplayName: displayName.String,
			Role:        models.Role(role.String),
		}
	}
	if p.CategoryID != nil {
		p.Category = &models.Category{
			ID:   *p.CategoryID,
			Name: categoryName.String,
			Slug: categorySlug.String,
		}
	}
	return &p, nil
}

// FindByID retrieves a post with its author, category and tags. Returns nil
// if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(postSelect+` WHERE p.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}

	posts := []models.Post{*p}
	if err := s.attachTags(posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// List returns posts matching the filter, newest first, with their tags.
func (s *PostStore) List(f PostFilter) ([]models.Post, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case f.Uncategorized:
		where = append(where, "p.category_id IS NULL")
	case f.CategorySlug != "":
		where = append(where, "c.slug = "+arg(f.CategorySlug))
	}
	if f.TagSlug != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = p.id AND t.slug = `+arg(f.TagSlug)+`)`)
	}
	if f.Query != "" {
		n := arg("%" + likeEscaper.Replace(f.Query) + "%")
		where = append(where, `(p.title ILIKE `+n+` OR p.hook_text ILIKE `+n+` OR p.content ILIKE `+n+`
			OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
				WHERE pt.post_id = p.id AND t.name ILIKE `+n+`))`)
	}

	query := postSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := s.attachTags(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// likeEscaper escapes ILIKE wildcards so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// attachTags loads the tags of every post in one query.
func (s *PostStore) attachTags(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	index := make(map[uuid.UUID]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.String()
		index[p.ID] = i
	}

	rows, err := s.db.Query(`
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name
	`, ids)
	if err != nil {
		return fmt.Errorf("list post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID uuid.UUID
			t      models.Tag
		)
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, t)
		}
	}
	return rows.Err()
}

// Create inserts a post and attaches the named tags in one transaction,
// creating tags that do not exist yet. It returns the stored post.
func (s *PostStore) Create(p *models.Post, tagNames []string) (*models.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id uuid.UUID
	err = tx.QueryRow(`
		INSERT INTO posts (title, hook_text, content, head_image, head_image_thumb,
		                   file_upload, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.Title, p.HookText, p.Content, p.HeadImage, p.HeadImageThumb,
		p.FileUpload, p.AuthorID, p.CategoryID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := setPostTags(tx, id, tagNames); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}

	return s.FindByID(id)
}

// Update modifies a post's editable fields, refreshes updated_at and
// replaces its whole tag set with tagNames. The author and creation time
// are never changed. Returns ErrNotFound if the post does not exist.
func (s *PostStore) Update(p *models.Post, tagNames []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		UPDATE posts SET
			title = $1, hook_text = $2, content = $3, head_image = $4,
			head_image_thumb = $5, file_upload = $6, category_id = $7,
			updated_at = clock_timestamp()
		WHERE id = $8
		RETURNING updated_at
	`, p.Title, p.HookText, p.Content, p.HeadImage, p.HeadImageThumb,
		p.FileUpload, p.CategoryID, p.ID,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, p.ID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	if err := setPostTags(tx, p.ID, tagNames); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post: %w", err)
	}
	return nil
}

// setPostTags associates each named tag with the post. Associating the
// same tag twice is a no-op.
func setPostTags(tx *sql.Tx, postID uuid.UUID, tagNames []string) error {
	for _, name := range tagNames {
		t, err := getOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, t.ID)
		if err != nil {
			return fmt.Errorf("attach tag %q: %w", name, err)
		}
	}
	return nil
}

// Delete removes a post together with its comments and tag associations.
func (s *PostStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUncategorized returns the number of posts without a category.
func (s *PostStore) CountUncategorized() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE category_id IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count uncategorized posts: %w", err)
	}
	return count, nil
}
