// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/cache"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/policy"
	"blogpress/internal/render"
	"blogpress/internal/storage"
	"blogpress/internal/store"
	"blogpress/internal/tags"
)

// Blog groups the post, comment, and category handlers and their
// dependencies.
type Blog struct {
	renderer   *render.Renderer
	posts      *store.PostStore
	categories *store.CategoryStore
	tags       *store.TagStore
	comments   *store.CommentStore
	bodies     *cache.BodyCache
	objects    objectStore
}

// NewBlog creates a new Blog handler group. storageClient may be nil if
// S3 is not configured; uploads are then rejected on the post form.
func NewBlog(renderer *render.Renderer, posts *store.PostStore, categories *store.CategoryStore, tagStore *store.TagStore, comments *store.CommentStore, bodies *cache.BodyCache, storageClient *storage.Client) *Blog {
	b := &Blog{
		renderer:   renderer,
		posts:      posts,
		categories: categories,
		tags:       tagStore,
		comments:   comments,
		bodies:     bodies,
	}
	if storageClient != nil {
		b.objects = storageClient
	}
	return b
}

// postForm carries post form values back into the template.
type postForm struct {
	Title      string
	HookText   string
	Content    string
	TagsStr    string
	CategoryID *uuid.UUID

	tagNames []string
}

// commentView pairs a comment with the viewer's right to change it.
type commentView struct {
	*models.Comment
	CanEdit bool
}

// --- Listings ---

// List renders all posts, newest first. ?q= searches, ?category= and
// ?tag= narrow by slug.
func (b *Blog) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.PostFilter{
		Query:   strings.TrimSpace(q.Get("q")),
		TagSlug: q.Get("tag"),
	}
	data := map[string]any{"SearchTerm": f.Query}

	if c := q.Get("category"); c == models.NoCategorySlug {
		f.Uncategorized = true
		data["Uncategorized"] = true
	} else {
		f.CategorySlug = c
	}

	b.listing(w, r, f, data, nil)
}

// Category renders the posts of one category, or uncategorized posts for
// the reserved no_category slug.
func (b *Blog) Category(w http.ResponseWriter, r *http.Request) {
	categorySlug := chi.URLParam(r, "slug")
	data := map[string]any{}
	f := store.PostFilter{}

	if categorySlug == models.NoCategorySlug {
		f.Uncategorized = true
		data["Uncategorized"] = true
	} else {
		cat, err := b.categories.FindBySlug(categorySlug)
		if err != nil {
			serverError(w, "find category failed", err, "slug", categorySlug)
			return
		}
		if cat == nil {
			http.NotFound(w, r)
			return
		}
		f.CategorySlug = cat.Slug
		data["Category"] = cat
	}

	b.listing(w, r, f, data, nil)
}

// Tag renders the posts carrying one tag.
func (b *Blog) Tag(w http.ResponseWriter, r *http.Request) {
	tagSlug := chi.URLParam(r, "slug")
	tag, err := b.tags.FindBySlug(tagSlug)
	if err != nil {
		serverError(w, "find tag failed", err, "slug", tagSlug)
		return
	}
	if tag == nil {
		http.NotFound(w, r)
		return
	}

	b.listing(w, r, store.PostFilter{TagSlug: tag.Slug}, map[string]any{"Tag": tag}, nil)
}

// Search renders posts whose title, hook text, content, or tag names
// contain the path term, case-insensitively.
func (b *Blog) Search(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	if unescaped, err := url.PathUnescape(term); err == nil {
		term = unescaped
	}
	term = strings.TrimSpace(term)
	if term == "" {
		http.Redirect(w, r, listURL, http.StatusSeeOther)
		return
	}

	b.listing(w, r, store.PostFilter{Query: term}, map[string]any{"SearchTerm": term}, nil)
}

// listing renders post_list for a filter plus the navigation sidebar.
func (b *Blog) listing(w http.ResponseWriter, r *http.Request, f store.PostFilter, data map[string]any, flashes []render.Flash) {
	posts, err := b.posts.List(f)
	if err != nil {
		serverError(w, "list posts failed", err)
		return
	}

	ident := middleware.IdentityFromCtx(r.Context())
	data["Posts"] = posts
	data["CanCreate"] = policy.Evaluate(ident, policy.CreatePost, nil).Allowed()
	if err := b.sidebar(r, data); err != nil {
		serverError(w, "load sidebar failed", err)
		return
	}

	title := ""
	if term, _ := data["SearchTerm"].(string); term != "" {
		title = fmt.Sprintf("Search: %s (%d)", term, len(posts))
	}

	b.renderer.Page(w, r, "post_list", &render.PageData{
		Title:   title,
		Section: "posts",
		Data:    data,
		Flashes: flashes,
	})
}

// sidebar adds the category navigation, with per-category and
// uncategorized post counts, to a page's data.
func (b *Blog) sidebar(r *http.Request, data map[string]any) error {
	categories, err := b.categories.List()
	if err != nil {
		return err
	}
	uncategorized, err := b.posts.CountUncategorized()
	if err != nil {
		return err
	}

	data["Categories"] = categories
	data["NoCategoryCount"] = uncategorized
	data["CanManageCategories"] = policy.Evaluate(middleware.IdentityFromCtx(r.Context()), policy.ManageCategory, nil).Allowed()
	return nil
}

// --- Detail ---

// Detail renders a single post with its comments.
func (b *Blog) Detail(w http.ResponseWriter, r *http.Request) {
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

	b.renderDetail(w, r, p, "", "")
}

// renderDetail renders post_detail, optionally with a rejected comment.
func (b *Blog) renderDetail(w http.ResponseWriter, r *http.Request, p *models.Post, commentErr, commentContent string) {
	ctx := r.Context()
	ident := middleware.IdentityFromCtx(ctx)

	body, err := b.bodies.HTML(ctx, p.ID, p.UpdatedAt, p.Content)
	if err != nil {
		slog.Error("render post body failed", "error", err, "id", p.ID)
		body = template.HTMLEscapeString(p.Content)
	}

	comments, err := b.comments.ListByPost(p.ID)
	if err != nil {
		serverError(w, "list comments failed", err, "post_id", p.ID)
		return
	}
	views := make([]commentView, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		views = append(views, commentView{
			Comment: c,
			CanEdit: policy.Evaluate(ident, policy.UpdateComment, &c.AuthorID).Allowed(),
		})
	}

	data := map[string]any{
		"Post":           p,
		"Body":           template.HTML(body),
		"Comments":       views,
		"CanEdit":        policy.Evaluate(ident, policy.UpdatePost, p.AuthorID).Allowed(),
		"CanComment":     policy.Evaluate(ident, policy.CreateComment, nil).Allowed(),
		"CommentError":   commentErr,
		"CommentContent": commentContent,
	}
	if err := b.sidebar(r, data); err != nil {
		serverError(w, "load sidebar failed", err)
		return
	}

	b.renderer.Page(w, r, "post_detail", &render.PageData{
		Title:   p.Title,
		Section: "posts",
		Data:    data,
	})
}

// --- Create / update / delete ---

// CreateForm renders the empty post form for staff.
func (b *Blog) CreateForm(w http.ResponseWriter, r *http.Request) {
	if d := policy.Evaluate(middleware.IdentityFromCtx(r.Context()), policy.CreatePost, nil); !d.Allowed() {
		refuse(w, r, d)
		return
	}
	b.renderForm(w, r, nil, postForm{}, "")
}

// CreateSubmit stores a new post owned by the current user.
func (b *Blog) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident := middleware.IdentityFromCtx(ctx)
	if d := policy.Evaluate(ident, policy.CreatePost, nil); !d.Allowed() {
		refuse(w, r, d)
		return
	}

	form, errMsg, err := b.parsePostForm(r)
	if err != nil {
		serverError(w, "parse post form failed", err)
		return
	}
	if errMsg != "" {
		b.renderForm(w, r, nil, form, errMsg)
		return
	}

	up, err := b.saveUploads(ctx, r)
	if err != nil {
		if msg, ok := isUploadError(err); ok {
			b.renderForm(w, r, nil, form, msg)
			return
		}
		serverError(w, "save uploads failed", err)
		return
	}

	authorID := ident.UserID
	p := &models.Post{
		Title:          strings.TrimSpace(form.Title),
		HookText:       strings.TrimSpace(form.HookText),
		Content:        form.Content,
		AuthorID:       &authorID,
		CategoryID:     form.CategoryID,
		HeadImage:      up.headImage,
		HeadImageThumb: up.thumb,
		FileUpload:     up.file,
	}

	created, err := b.posts.Create(p, form.tagNames)
	if err != nil {
		b.removeObjects(ctx, up.keys())
		if errors.Is(err, store.ErrDuplicate) {
			b.renderForm(w, r, nil, form, "A tag conflicts with an existing tag. Please rename it.")
			return
		}
		serverError(w, "create post failed", err)
		return
	}

	http.Redirect(w, r, created.AbsoluteURL(), http.StatusSeeOther)
}

// UpdateForm renders the post form filled with the post's current values.
func (b *Blog) UpdateForm(w http.ResponseWriter, r *http.Request) {
	p, ok := b.loadPost(w, r, policy.UpdatePost)
	if !ok {
		return
	}

	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}

	b.renderForm(w, r, p, postForm{
		Title:      p.Title,
		HookText:   p.HookText,
		Content:    p.Content,
		TagsStr:    tags.Join(names),
		CategoryID: p.CategoryID,
	}, "")
}

// UpdateSubmit applies the edit form. The tag set is replaced by the
// submitted tags_str; an empty field clears all tags.
func (b *Blog) UpdateSubmit(w http.ResponseWriter, r *http.Request) {
	p, ok := b.loadPost(w, r, policy.UpdatePost)
	if !ok {
		return
	}
	ctx := r.Context()

	form, errMsg, err := b.parsePostForm(r)
	if err != nil {
		serverError(w, "parse post form failed", err)
		return
	}
	if errMsg != "" {
		b.renderForm(w, r, p, form, errMsg)
		return
	}

	up, err := b.saveUploads(ctx, r)
	if err != nil {
		if msg, ok := isUploadError(err); ok {
			b.renderForm(w, r, p, form, msg)
			return
		}
		serverError(w, "save uploads failed", err)
		return
	}

	// Objects replaced or cleared by this edit, removed after the update.
	var stale []string
	if up.headImage != nil || r.FormValue("head_image_clear") == "on" {
		stale = append(stale, postObjects(&models.Post{HeadImage: p.HeadImage, HeadImageThumb: p.HeadImageThumb})...)
		p.HeadImage, p.HeadImageThumb = up.headImage, up.thumb
	}
	if up.file != nil || r.FormValue("file_upload_clear") == "on" {
		stale = append(stale, postObjects(&models.Post{FileUpload: p.FileUpload})...)
		p.FileUpload = up.file
	}

	p.Title = strings.TrimSpace(form.Title)
	p.HookText = strings.TrimSpace(form.HookText)
	p.Content = form.Content
	p.CategoryID = form.CategoryID

	if err := b.posts.Update(p, form.tagNames); err != nil {
		b.removeObjects(ctx, up.keys())
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, store.ErrDuplicate):
			b.renderForm(w, r, p, form, "A tag conflicts with an existing tag. Please rename it.")
		default:
			serverError(w, "update post failed", err, "id", p.ID)
		}
		return
	}

	b.removeObjects(ctx, stale)
	b.bodies.Invalidate(ctx, p.ID)

	http.Redirect(w, r, p.AbsoluteURL(), http.StatusSeeOther)
}

// Delete removes a post with its comments and stored files.
func (b *Blog) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := b.loadPost(w, r, policy.DeletePost)
	if !ok {
		return
	}
	ctx := r.Context()

	if err := b.posts.Delete(p.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		serverError(w, "delete post failed", err, "id", p.ID)
		return
	}

	b.removeObjects(ctx, postObjects(p))
	b.bodies.Invalidate(ctx, p.ID)

	http.Redirect(w, r, listURL, http.StatusSeeOther)
}

// About renders the static about page.
func (b *Blog) About(w http.ResponseWriter, r *http.Request) {
	b.renderer.Page(w, r, "about", &render.PageData{
		Title:   "About Me",
		Section: "about",
	})
}

// loadPost fetches the post named by the route and checks action against
// its owner. It writes the error response and returns false on failure.
func (b *Blog) loadPost(w http.ResponseWriter, r *http.Request, action policy.Action) (*models.Post, bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return nil, false
	}
	p, err := b.posts.FindByID(id)
	if err != nil {
		serverError(w, "find post failed", err, "id", id)
		return nil, false
	}
	if p == nil {
		http.NotFound(w, r)
		return nil, false
	}

	if d := policy.Evaluate(middleware.IdentityFromCtx(r.Context()), action, p.AuthorID); !d.Allowed() {
		slog.Info("post access denied", "action", action, "post_id", p.ID, "reason", d.Reason)
		refuse(w, r, d)
		return nil, false
	}
	return p, true
}

// parsePostForm reads and validates the post form. A non-empty message
// is a validation failure to show on the form.
func (b *Blog) parsePostForm(r *http.Request) (postForm, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return postForm{}, "The upload is too large or malformed.", nil
	}

	form := postForm{
		Title:    r.FormValue("title"),
		HookText: r.FormValue("hook_text"),
		Content:  r.FormValue("content"),
		TagsStr:  r.FormValue("tags_str"),
	}
	form.tagNames = tags.Parse(form.TagsStr)

	if raw := strings.TrimSpace(r.FormValue("category")); raw != "" {
		cid, err := uuid.Parse(raw)
		if err != nil {
			return form, "Select a valid category.", nil
		}
		cat, err := b.categories.FindByID(cid)
		if err != nil {
			return form, "", err
		}
		if cat == nil {
			return form, "Select a valid category.", nil
		}
		form.CategoryID = &cat.ID
	}

	return form, validatePost(form.Title, form.HookText, form.Content, form.tagNames), nil
}

// renderForm renders post_form. p is nil when creating.
func (b *Blog) renderForm(w http.ResponseWriter, r *http.Request, p *models.Post, form postForm, errMsg string) {
	categories, err := b.categories.List()
	if err != nil {
		serverError(w, "list categories failed", err)
		return
	}

	title := "Create New Post"
	if p != nil {
		title = "Edit " + p.Title
	}

	b.renderer.Page(w, r, "post_form", &render.PageData{
		Title:   title,
		Section: "posts",
		Data: map[string]any{
			"Post":       p,
			"Form":       form,
			"Categories": categories,
			"Error":      errMsg,
		},
	})
}
