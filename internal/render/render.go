// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the blog pages.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"blogpress/internal/markdown"
	"blogpress/internal/middleware"
	"blogpress/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active navbar section (e.g., "posts", "login")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution for blog pages.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem. Each page template is paired with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
			// Returns true if the pointer is non-nil and points to the same value.
			"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
				return ptr != nil && *ptr == val
			},
			"mediaURL": MediaURL,
			"date": func(t time.Time) string {
				return t.Format("2006-01-02 15:04")
			},
			"truncate": Truncate,
			"excerpt":  markdown.Excerpt,
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	// Parse each page template paired with the base layout.
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Page renders a full page or an HTMX partial, depending on the request
// headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit response status.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	// Inject CSRF token from context (set by CSRF middleware).
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())

	// Inject session from context.
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if isHTMX(r) {
		execName = "content"
	}

	// Render into a buffer first so a template error never leaves a
	// half-written page behind a 200 status.
	var buf strings.Builder
	if err := executeTemplate(&buf, tmpl, execName, data); err != nil {
		slog.Error("render template failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, buf.String())
}

// MediaURL maps a stored object key to the local redirect route.
func MediaURL(key *string) string {
	if key == nil || *key == "" {
		return ""
	}
	return "/media/" + *key
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
