package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reply owned by its author and attached to exactly one post.
// Deleting the post deletes its comments.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated by CommentStore read methods.
	Author *User `json:"author,omitempty"`
}

// URL returns the anchor of the comment on its post's detail page.
func (c *Comment) URL() string {
	return "/posts/" + c.PostID.String() + "/#comment-" + c.ID.String()
}

// IsEdited reports whether the comment was modified after creation.
func (c *Comment) IsEdited() bool {
	return c.UpdatedAt.Sub(c.CreatedAt) > time.Second
}
