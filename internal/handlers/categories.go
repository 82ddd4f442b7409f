// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/policy"
	"blogpress/internal/render"
	"blogpress/internal/slug"
	"blogpress/internal/store"
)

// CategoryCreate adds a category from the sidebar form. Validation
// problems re-render the listing with an error flash.
func (b *Blog) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	if d := policy.Evaluate(middleware.IdentityFromCtx(r.Context()), policy.ManageCategory, nil); !d.Allowed() {
		refuse(w, r, d)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	categorySlug := slug.Generate(r.FormValue("slug"))
	if errMsg := validateCategory(name, categorySlug); errMsg != "" {
		b.categoryError(w, r, errMsg)
		return
	}
	if categorySlug == models.NoCategorySlug || (categorySlug == "" && slug.Generate(name) == models.NoCategorySlug) {
		b.categoryError(w, r, "That slug is reserved.")
		return
	}

	cat, err := b.categories.Create(name, categorySlug)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			b.categoryError(w, r, "A category with that name or slug already exists.")
			return
		}
		serverError(w, "create category failed", err, "name", name)
		return
	}

	http.Redirect(w, r, cat.URL(), http.StatusSeeOther)
}

// CategoryDelete removes a category. Its posts become uncategorized.
func (b *Blog) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	if d := policy.Evaluate(middleware.IdentityFromCtx(r.Context()), policy.ManageCategory, nil); !d.Allowed() {
		refuse(w, r, d)
		return
	}

	categorySlug := chi.URLParam(r, "slug")
	cat, err := b.categories.FindBySlug(categorySlug)
	if err != nil {
		serverError(w, "find category failed", err, "slug", categorySlug)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	if err := b.categories.Delete(cat.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		serverError(w, "delete category failed", err, "slug", categorySlug)
		return
	}

	http.Redirect(w, r, listURL, http.StatusSeeOther)
}

func (b *Blog) categoryError(w http.ResponseWriter, r *http.Request, msg string) {
	b.listing(w, r, store.PostFilter{}, map[string]any{}, []render.Flash{{Type: "error", Message: msg}})
}
