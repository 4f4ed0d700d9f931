package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	tests := []struct {
		name     string
		key      string
		hash     string
		headers  map[string]string
		wantCode int
	}{
		{
			name:     "bearer token",
			key:      "secret",
			headers:  map[string]string{"Authorization": "Bearer secret"},
			wantCode: http.StatusOK,
		},
		{
			name:     "bearer scheme is case insensitive",
			key:      "secret",
			headers:  map[string]string{"Authorization": "bearer secret"},
			wantCode: http.StatusOK,
		},
		{
			name:     "x-api-key header",
			key:      "secret",
			headers:  map[string]string{"X-API-Key": "secret"},
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong key",
			key:      "secret",
			headers:  map[string]string{"Authorization": "Bearer guess"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "prefix of key",
			key:      "secret",
			headers:  map[string]string{"X-API-Key": "secre"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "basic auth is not a key",
			key:      "secret",
			headers:  map[string]string{"Authorization": "Basic secret"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "missing key",
			key:      "secret",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "bcrypt hash",
			hash:     string(hash),
			headers:  map[string]string{"Authorization": "Bearer hashed-secret"},
			wantCode: http.StatusOK,
		},
		{
			name:     "bcrypt hash wrong key",
			hash:     string(hash),
			headers:  map[string]string{"X-API-Key": "nope"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "nothing configured",
			headers:  map[string]string{"Authorization": "Bearer anything"},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, called := okHandler()
			handler := APIKey(tt.key, tt.hash)(next)

			req := httptest.NewRequest(http.MethodPut, "/api/posts/hello", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantCode)
			}
			if *called != (tt.wantCode == http.StatusOK) {
				t.Errorf("next called = %v, want %v", *called, tt.wantCode == http.StatusOK)
			}
			if tt.wantCode != http.StatusOK && !strings.Contains(rr.Body.String(), `"error"`) {
				t.Errorf("body: got %q, want a JSON error", rr.Body.String())
			}
		})
	}
}

func TestAPIKey_ChallengeHeader(t *testing.T) {
	next, _ := okHandler()
	handler := APIKey("secret", "")(next)

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/hello", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("WWW-Authenticate"); got != `Bearer realm="api"` {
		t.Errorf("WWW-Authenticate: got %q", got)
	}
}
