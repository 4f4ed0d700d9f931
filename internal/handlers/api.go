// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON content API: posts and projects
// backed by the SQLite store, file-based sections, and media uploads.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"agencysite/internal/cache"
	"agencysite/internal/middleware"
	"agencysite/internal/models"
	"agencysite/internal/section"
	"agencysite/internal/store"
)

// maxJSONBody caps request bodies for JSON endpoints (posts can be long).
const maxJSONBody = 5 << 20

// MediaStorage is the object storage the media endpoints upload to.
type MediaStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	ExtractKey(rawURL string) (string, bool)
}

// API groups the content API handlers.
type API struct {
	store    *store.ContentStore
	cache    *cache.ResponseCache
	media    MediaStorage
	sections map[string]*section.Handler
}

// NewAPI creates the API handler group. responseCache and media may be nil:
// listings are then always read from the store and uploads answer 503.
func NewAPI(contentStore *store.ContentStore, responseCache *cache.ResponseCache, media MediaStorage, sections map[string]*section.Handler) *API {
	if sections == nil {
		sections = map[string]*section.Handler{}
	}
	return &API{
		store:    contentStore,
		cache:    responseCache,
		media:    media,
		sections: sections,
	}
}

// writeJSON and writeError share the wire shape used by the middleware.
var (
	writeJSON  = middleware.WriteJSON
	writeError = middleware.WriteError
)

// serverError logs err and answers with a generic 500.
func serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "method", r.Method, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if dec.More() {
		return errors.New("malformed JSON: trailing data after the document")
	}
	return nil
}

// queryLang reads the "lang" query parameter. fallback is used when the
// parameter is absent.
func queryLang(r *http.Request, fallback string) (models.Lang, error) {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		raw = fallback
	}
	lang, ok := models.ParseLang(raw)
	if !ok {
		return "", fmt.Errorf("unsupported language %q", raw)
	}
	return lang, nil
}

// cachedJSON serves key from the response cache, or computes it with load,
// caches the encoding and serves it.
func (a *API) cachedJSON(w http.ResponseWriter, r *http.Request, key string, load func() (any, error)) {
	ctx := r.Context()
	entry, body, ok := a.cache.Get(ctx, key)
	if ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "HIT")
		w.Write(body)
		return
	}

	data, err := load()
	if err != nil {
		serverError(w, r, "load listing failed", err)
		return
	}
	body, err = json.Marshal(data)
	if err != nil {
		serverError(w, r, "encode listing failed", err)
		return
	}
	a.cache.Set(ctx, entry, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(body)
}

// Health reports whether the store answers queries.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.CountPosts(r.Context())
	if err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "posts": posts})
}
