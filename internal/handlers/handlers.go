// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the blog. Handlers are
// grouped by concern (blog, auth) and receive their dependencies through
// the handler struct. Permission checks are delegated to the policy
// package; handlers only translate its decisions into responses.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/policy"
)

// listURL is where denied writers and finished deletions are sent.
const listURL = "/posts/"

// urlID parses a UUID route parameter. On failure it answers 404, since
// a malformed ID can never name an existing row.
func urlID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		http.NotFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// refuse writes the response for a denied policy decision.
func refuse(w http.ResponseWriter, r *http.Request, d policy.Decision) {
	switch d.Outcome {
	case policy.Redirect:
		http.Redirect(w, r, listURL, http.StatusSeeOther)
	case policy.Unauthorized:
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// serverError logs err and answers 500.
func serverError(w http.ResponseWriter, msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
