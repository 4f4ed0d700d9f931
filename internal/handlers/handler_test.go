// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Every test runs against its own SQLite file in t.TempDir().
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"agencysite/internal/database"
	"agencysite/internal/section"
	"agencysite/internal/store"
)

// fakeMedia records uploads in memory.
type fakeMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: make(map[string][]byte)}
}

func (f *fakeMedia) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeMedia) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeMedia) ExtractKey(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, "https://cdn.test/")
	if !ok || !strings.HasPrefix(key, "media/") {
		return "", false
	}
	return key, true
}

// testEnv bundles an API wired to a fresh store, one "cases" section and
// the fake media storage.
type testEnv struct {
	api      *API
	store    *store.ContentStore
	media    *fakeMedia
	sections []string // write dirs of the "cases" section
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "data", "content.sqlite"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cs := store.NewContentStore(db)
	media := newFakeMedia()
	dirs := []string{
		filepath.Join(dir, "dist", "content", "cases"),
		filepath.Join(dir, "repo", "public", "content", "cases"),
	}
	sections := map[string]*section.Handler{"cases": section.New(dirs, dirs)}

	api := NewAPI(cs, nil, media, sections)
	return &testEnv{api: api, store: cs, media: media, sections: dirs, router: testRouter(api)}
}

// testRouter mounts the handlers on the same paths the server uses, without
// the auth middleware.
func testRouter(api *API) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", api.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", api.ListPosts)
		r.Post("/posts", api.CreatePost)
		r.Get("/posts/{slug}", api.GetPost)
		r.Get("/posts/{slug}/html", api.GetPostHTML)
		r.Put("/posts/{slug}", api.PutPost)
		r.Delete("/posts/{slug}", api.DeletePost)

		r.Get("/projects", api.GetProjects)
		r.Put("/projects", api.PutProjects)

		r.Get("/sections/{section}", api.ListSection)
		r.Get("/sections/{section}/{slug}", api.GetSectionFile)
		r.Put("/sections/{section}/{slug}", api.PutSectionFile)
		r.Delete("/sections/{section}/{slug}", api.DeleteSectionFile)

		r.Post("/media", api.UploadMedia)
		r.Delete("/media", api.DeleteMedia)
	})
	return r
}

// do sends a request with an optional JSON body through the router.
func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorder body, failing the test on error.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %q)", rec.Code, want, rec.Body.String())
	}
}
