// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// scriptOrigin serves the HTMX bundle loaded by the base layout.
const scriptOrigin = "https://unpkg.com"

// ContentSecurityPolicy builds the CSP for the blog. Images may also come
// from mediaOrigin, the object storage host serving head images; pass ""
// when uploads are disabled. Inline styles are allowed because highlighted
// code blocks carry style attributes.
func ContentSecurityPolicy(mediaOrigin string) string {
	img := []string{"'self'", "data:"}
	if mediaOrigin != "" {
		img = append(img, mediaOrigin)
	}
	return strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' " + scriptOrigin,
		"style-src 'self' 'unsafe-inline'",
		"img-src " + strings.Join(img, " "),
		"frame-ancestors 'self'",
		"form-action 'self'",
	}, "; ")
}

// SecureHeaders adds security-related HTTP headers to every response.
// These headers protect against common web vulnerabilities like clickjacking,
// MIME-sniffing, and information leakage.
func SecureHeaders(mediaOrigin string) func(http.Handler) http.Handler {
	csp := ContentSecurityPolicy(mediaOrigin)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Prevent the browser from MIME-sniffing the Content-Type.
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent embedding in iframes from other origins (clickjacking).
			h.Set("X-Frame-Options", "SAMEORIGIN")

			// Disable the legacy XSS filter; CSP replaces it.
			h.Set("X-XSS-Protection", "0")

			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "interest-cohort=()")
			h.Set("Content-Security-Policy", csp)

			next.ServeHTTP(w, r)
		})
	}
}
