// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post is a blog article. Author and category are optional: removing the
// referenced user or category clears the reference instead of deleting
// the post.
type Post struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	HookText       string     `json:"hook_text"`
	Content        string     `json:"content"`
	HeadImage      *string    `json:"head_image,omitempty"`
	HeadImageThumb *string    `json:"head_image_thumb,omitempty"`
	FileUpload     *string    `json:"file_upload,omitempty"`
	AuthorID       *uuid.UUID `json:"author_id,omitempty"`
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Populated by store read methods.
	Author   *User     `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`
	Tags     []Tag     `json:"tags,omitempty"`
}

// String returns the "[id] title" form used in logs and admin listings.
func (p *Post) String() string {
	return fmt.Sprintf("[%s] %s", p.ID, p.Title)
}

// AbsoluteURL returns the canonical detail page path for the post.
func (p *Post) AbsoluteURL() string {
	return "/posts/" + p.ID.String() + "/"
}

// FileName returns the base name of the attached file, or "" when the
// post has no attachment.
func (p *Post) FileName() string {
	if p.FileUpload == nil || *p.FileUpload == "" {
		return ""
	}
	return path.Base(*p.FileUpload)
}

// FileExt returns the attachment's extension without the leading dot.
func (p *Post) FileExt() string {
	name := p.FileName()
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}

// TagNames joins the post's tag names with "; " so the edit form can
// round-trip them through the tags_str field.
func (p *Post) TagNames() string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, "; ")
}

// IsOwnedBy reports whether the given user wrote the post.
func (p *Post) IsOwnedBy(userID uuid.UUID) bool {
	return p.AuthorID != nil && *p.AuthorID == userID
}
