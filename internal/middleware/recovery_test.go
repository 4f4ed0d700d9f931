package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecoverer(t *testing.T) {
	for _, value := range []any{"boom", 42, errors.New("nil map write")} {
		buf := captureLog(t)

		h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic(value)
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/posts/x", nil))

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("panic(%v): status %d, want 500", value, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("panic(%v): content-type %q", value, ct)
		}
		var body map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] != "internal server error" {
			t.Errorf("panic(%v): body %q", value, rr.Body.String())
		}

		rec := lastRecord(t, buf)
		if rec["msg"] != "panic recovered" || rec["path"] != "/api/posts/x" {
			t.Errorf("panic(%v): log record %v", value, rec)
		}
	}
}

func TestRecovererAbortHandler(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler re-panicked", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	t.Error("ServeHTTP returned normally")
}

func TestRecovererPassThrough(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cache", "HIT")
		w.Write([]byte(`[]`))
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "[]" || rr.Header().Get("X-Cache") != "HIT" {
		t.Errorf("got %d %q %v", rr.Code, rr.Body.String(), rr.Header())
	}
}
