// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// APIKey guards write endpoints with the shared admin secret. The key is
// taken from "Authorization: Bearer <key>" or "X-API-Key". When key is set
// it is compared in constant time; otherwise hash, a bcrypt digest, is used.
// With neither configured every request is refused with 503, since nobody
// could ever be allowed in.
func APIKey(key, hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" && hash == "" {
				WriteError(w, http.StatusServiceUnavailable, "writes are disabled: no API key configured")
				return
			}

			given := requestKey(r)
			if given == "" || !keyMatches(given, key, hash) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestKey extracts the presented key, preferring the Authorization header.
func requestKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func keyMatches(given, key, hash string) bool {
	if key != "" {
		return subtle.ConstantTimeCompare([]byte(given), []byte(key)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(given)) == nil
}
