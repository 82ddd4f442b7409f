// Package router sets up all HTTP routes and middleware chains for the
// blog. Reading routes are public; every write decision is made by the
// handlers through the access policy.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"blogpress/internal/handlers"
	"blogpress/internal/middleware"
	"blogpress/internal/session"
)

// Options carries the per-deployment switches of the middleware stack.
type Options struct {
	// SecureCookies marks the CSRF cookie HTTPS-only.
	SecureCookies bool
	// MediaOrigin is the object storage origin allowed for images by the CSP.
	MediaOrigin string
	// AuthLimiter throttles login and signup submissions. May be nil.
	AuthLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, blog *handlers.Blog, auth *handlers.Auth, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.MediaOrigin))
	r.Use(chimw.RequestSize(handlers.MaxRequestSize))

	// Health check: no session, no CSRF.
	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessionStore))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/posts/", http.StatusFound)
		})
		r.Get("/about_me/", blog.About)
		r.Get("/media/*", blog.Media)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", blog.List)
			r.Get("/create/", blog.CreateForm)
			r.Post("/create/", blog.CreateSubmit)
			r.Get("/{id}/", blog.Detail)
			r.Get("/{id}/update/", blog.UpdateForm)
			r.Post("/{id}/update/", blog.UpdateSubmit)
			r.Post("/{id}/delete/", blog.Delete)
			r.Post("/{id}/comments/", blog.CommentCreate)
		})

		r.Route("/comments/{id}", func(r chi.Router) {
			r.Get("/update/", blog.CommentEditForm)
			r.Post("/update/", blog.CommentUpdate)
			r.Get("/delete/", blog.CommentDeleteConfirm)
			r.Post("/delete/", blog.CommentDelete)
		})

		r.Post("/categories/", blog.CategoryCreate)
		r.Get("/categories/{slug}/", blog.Category)
		r.Post("/categories/{slug}/delete/", blog.CategoryDelete)
		r.Get("/tags/{slug}/", blog.Tag)
		r.Get("/search/{term}/", blog.Search)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/login/", auth.LoginPage)
			r.Get("/signup/", auth.SignupPage)
			r.Post("/logout/", auth.Logout)

			// Password submissions are throttled per client.
			r.Group(func(r chi.Router) {
				if opts.AuthLimiter != nil {
					r.Use(opts.AuthLimiter.Middleware)
				}
				r.Post("/login/", auth.LoginSubmit)
				r.Post("/signup/", auth.SignupSubmit)
			})

			// 2FA verify requires a session but not a completed 2FA step.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/2fa/verify/", auth.TwoFAVerifyPage)
				r.Post("/2fa/verify/", auth.TwoFAVerifySubmit)
			})

			// Enrolling a new authenticator needs a fully signed-in session.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)
				r.Get("/2fa/setup/", auth.TwoFASetupPage)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
