// Package router tests verify the route table, the auth split between reads
// and writes, and the global middleware chain.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agencysite/internal/database"
	"agencysite/internal/handlers"
	"agencysite/internal/middleware"
	"agencysite/internal/section"
	"agencysite/internal/store"
)

const testKey = "s3cret"

func testRouter(t *testing.T, auth Auth) http.Handler {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "content.sqlite"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sectionDir := filepath.Join(dir, "cases")
	sections := map[string]*section.Handler{
		"cases": section.New([]string{sectionDir}, []string{sectionDir}),
	}
	api := handlers.NewAPI(store.NewContentStore(db), nil, nil, sections)
	return New(api, auth)
}

func send(h http.Handler, method, target, body, key string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := testRouter(t, Auth{APIKey: testKey})

	rec := send(h, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %v, want ok", body["status"])
	}
}

func TestReadsArePublic(t *testing.T) {
	h := testRouter(t, Auth{APIKey: testKey})

	for _, target := range []string{
		"/api/posts",
		"/api/posts?lang=en",
		"/api/projects",
		"/api/sections/cases",
	} {
		if rec := send(h, http.MethodGet, target, "", ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s: got %d, want 200", target, rec.Code)
		}
	}
	if rec := send(h, http.MethodGet, "/api/posts/missing", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET missing post: got %d, want 404", rec.Code)
	}
}

func TestWritesRequireKey(t *testing.T) {
	h := testRouter(t, Auth{APIKey: testKey})

	writes := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, "/api/posts", `{"title": "T"}`},
		{http.MethodPut, "/api/posts/t", `{"title": "T"}`},
		{http.MethodDelete, "/api/posts/t", ""},
		{http.MethodPut, "/api/projects", `[]`},
		{http.MethodPut, "/api/sections/cases/x", `{"content": "x"}`},
		{http.MethodDelete, "/api/sections/cases/x", ""},
		{http.MethodPost, "/api/media", ""},
		{http.MethodDelete, "/api/media?url=x", ""},
	}

	for _, w := range writes {
		rec := send(h, w.method, w.target, w.body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without key: got %d, want 401", w.method, w.target, rec.Code)
		}
		rec = send(h, w.method, w.target, w.body, "wrong")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with wrong key: got %d, want 401", w.method, w.target, rec.Code)
		}
	}
}

func TestWriteWithKey(t *testing.T) {
	h := testRouter(t, Auth{APIKey: testKey})

	rec := send(h, http.MethodPut, "/api/posts/hello", `{"title": "Hello", "content": "Body."}`, testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT with key: got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec := send(h, http.MethodGet, "/api/posts/hello", "", ""); rec.Code != http.StatusOK {
		t.Errorf("GET after write: got %d, want 200", rec.Code)
	}

	// Media storage is not configured in this router.
	if rec := send(h, http.MethodDelete, "/api/media?url=x", "", testKey); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("media without storage: got %d, want 503", rec.Code)
	}
}

func TestWritesWithoutConfiguredKey(t *testing.T) {
	h := testRouter(t, Auth{})

	rec := send(h, http.MethodPut, "/api/projects", `[]`, "anything")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503", rec.Code)
	}
}

func TestWritesRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	h := testRouter(t, Auth{APIKey: testKey, Limiter: limiter})

	for i := 0; i < 2; i++ {
		if rec := send(h, http.MethodPut, "/api/projects", `[]`, testKey); rec.Code != http.StatusOK {
			t.Fatalf("write %d: got %d, want 200", i, rec.Code)
		}
	}
	rec := send(h, http.MethodPut, "/api/projects", `[]`, testKey)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("third write: got %d, want 429", rec.Code)
	}

	// Reads are not limited.
	if rec := send(h, http.MethodGet, "/api/projects", "", ""); rec.Code != http.StatusOK {
		t.Errorf("read after limit: got %d, want 200", rec.Code)
	}
}

func TestSecureHeadersApplied(t *testing.T) {
	h := testRouter(t, Auth{APIKey: testKey})

	rec := send(h, http.MethodGet, "/api/posts", "", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := testRouter(t, Auth{APIKey: testKey})

	if rec := send(h, http.MethodGet, "/admin", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
	if rec := send(h, http.MethodPatch, "/api/posts/x", "", testKey); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH: got %d, want 405", rec.Code)
	}
}
