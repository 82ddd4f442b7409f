// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/policy"
	"blogpress/internal/render"
	"blogpress/internal/store"
)

// CommentCreate adds a comment by the current user to a post.
func (b *Blog) CommentCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	p, err := b.posts.FindByID(id)
	if err != nil {
		serverError(w, "find post failed", err, "id", id)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	ident := middleware.IdentityFromCtx(r.Context())
	if d := policy.Evaluate(ident, policy.CreateComment, nil); !d.Allowed() {
		refuse(w, r, d)
		return
	}

	content := r.FormValue("content")
	if errMsg := validateComment(content); errMsg != "" {
		b.renderDetail(w, r, p, errMsg, content)
		return
	}

	c, err := b.comments.Create(&models.Comment{
		PostID:   p.ID,
		AuthorID: ident.UserID,
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, "create comment failed", err, "post_id", p.ID)
		return
	}

	http.Redirect(w, r, c.URL(), http.StatusSeeOther)
}

// CommentEditForm renders the edit form for the author's own comment.
func (b *Blog) CommentEditForm(w http.ResponseWriter, r *http.Request) {
	c, p, ok := b.loadComment(w, r, policy.UpdateComment)
	if !ok {
		return
	}
	b.renderCommentForm(w, r, c, p, c.Content, "")
}

// CommentUpdate saves an edited comment.
func (b *Blog) CommentUpdate(w http.ResponseWriter, r *http.Request) {
	c, p, ok := b.loadComment(w, r, policy.UpdateComment)
	if !ok {
		return
	}

	content := r.FormValue("content")
	if errMsg := validateComment(content); errMsg != "" {
		b.renderCommentForm(w, r, c, p, content, errMsg)
		return
	}

	c.Content = content
	if err := b.comments.Update(c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, "update comment failed", err, "id", c.ID)
		return
	}

	http.Redirect(w, r, c.URL(), http.StatusSeeOther)
}

// CommentDeleteConfirm asks the author to confirm deletion.
func (b *Blog) CommentDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	c, p, ok := b.loadComment(w, r, policy.DeleteComment)
	if !ok {
		return
	}
	b.renderer.Page(w, r, "comment_delete", &render.PageData{
		Title:   "Delete Comment",
		Section: "posts",
		Data:    map[string]any{"Comment": c, "Post": p},
	})
}

// CommentDelete removes the author's comment and returns to the post.
func (b *Blog) CommentDelete(w http.ResponseWriter, r *http.Request) {
	c, p, ok := b.loadComment(w, r, policy.DeleteComment)
	if !ok {
		return
	}

	if err := b.comments.Delete(c.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		serverError(w, "delete comment failed", err, "id", c.ID)
		return
	}

	http.Redirect(w, r, p.AbsoluteURL(), http.StatusSeeOther)
}

// loadComment fetches the comment named by the route and its post, and
// checks action against the comment author.
func (b *Blog) loadComment(w http.ResponseWriter, r *http.Request, action policy.Action) (*models.Comment, *models.Post, bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return nil, nil, false
	}
	c, err := b.comments.FindByID(id)
	if err != nil {
		serverError(w, "find comment failed", err, "id", id)
		return nil, nil, false
	}
	if c == nil {
		http.NotFound(w, r)
		return nil, nil, false
	}

	if d := policy.Evaluate(middleware.IdentityFromCtx(r.Context()), action, &c.AuthorID); !d.Allowed() {
		slog.Info("comment access denied", "action", action, "comment_id", c.ID, "reason", d.Reason)
		refuse(w, r, d)
		return nil, nil, false
	}

	p, err := b.posts.FindByID(c.PostID)
	if err != nil {
		serverError(w, "find post failed", err, "id", c.PostID)
		return nil, nil, false
	}
	if p == nil {
		http.NotFound(w, r)
		return nil, nil, false
	}
	return c, p, true
}

func (b *Blog) renderCommentForm(w http.ResponseWriter, r *http.Request, c *models.Comment, p *models.Post, content, errMsg string) {
	b.renderer.Page(w, r, "comment_form", &render.PageData{
		Title:   "Edit Comment",
		Section: "posts",
		Data: map[string]any{
			"Comment": c,
			"Post":    p,
			"Content": content,
			"Error":   errMsg,
		},
	})
}
