// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security-related HTTP headers to every API response.
// Responses are JSON or HTML fragments meant for the site's own frontend,
// so they are never framed and never sniffed.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-site")

		// Fragments from /html endpoints must not run scripts if opened directly.
		h.Set("Content-Security-Policy", "default-src 'none'; img-src * data:; frame-ancestors 'none'")

		next.ServeHTTP(w, r)
	})
}
