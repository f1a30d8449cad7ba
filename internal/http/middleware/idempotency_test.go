package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	userID, scope, key string
	now                time.Time
}

// idemRouter mounts the validator behind a fake sign-in that sets uid (when
// non-empty) and records what the handler observed.
func idemRouter(uid string, opts IdempotencyOptions, lookup IdempotencyLookup, seen *map[string]any) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	if uid != "" {
		r.Use(func(c *gin.Context) { c.Set("userID", uid); c.Next() })
	}
	r.Use(IdempotencyValidator(opts, lookup))
	h := func(c *gin.Context) {
		key, ok := GetIdempotencyKey(c)
		*seen = map[string]any{"key": key, "has_key": ok, "replay": IsReplay(c), "bypass": IsRateBypass(c)}
		c.Status(http.StatusOK)
	}
	r.POST("/api/v1/:entity", h)
	r.PATCH("/api/v1/:entity/:id", h)
	return r
}

func send(r *gin.Engine, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccessors_Defaults(t *testing.T) {
	c := testContext("192.0.2.1")
	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected no key")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must read as false")
	}
}

func TestIdempotencyValidator_IgnoresMissingHeaderAndNonPost(t *testing.T) {
	called := false
	lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
		called = true
		return true, nil
	}
	var seen map[string]any
	r := idemRouter("u1", IdempotencyOptions{}, lookup, &seen)

	if w := send(r, http.MethodPost, "/api/v1/cases", ""); w.Code != http.StatusOK || seen["has_key"] != false {
		t.Fatalf("no header: code=%d seen=%v", w.Code, seen)
	}
	if w := send(r, http.MethodPatch, "/api/v1/cases/c-1", "not valid at all!"); w.Code != http.StatusOK || seen["has_key"] != false {
		t.Fatalf("PATCH must ignore the header: code=%d seen=%v", w.Code, seen)
	}
	if called {
		t.Fatalf("lookup must not run")
	}
}

func TestIdempotencyValidator_RejectsMalformedKeys(t *testing.T) {
	var seen map[string]any
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"too long", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"default max", IdempotencyOptions{}, strings.Repeat("k", 201)},
		{"bad chars", IdempotencyOptions{}, "key with spaces"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(idemRouter("", tc.opts, nil, &seen), http.MethodPost, "/api/v1/fines", tc.key)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["code"] != "bad_request" || body["request_id"] == "" {
				t.Fatalf("unexpected body: %v", body)
			}
		})
	}
}

func TestIdempotencyValidator_AnonymousSkipsLookup(t *testing.T) {
	lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
		t.Fatalf("lookup must not run without a user")
		return false, nil
	}
	var seen map[string]any
	w := send(idemRouter("", IdempotencyOptions{}, lookup, &seen), http.MethodPost, "/api/v1/cases", "key-1")
	if w.Code != http.StatusOK || seen["key"] != "key-1" || seen["replay"] != false {
		t.Fatalf("code=%d seen=%v", w.Code, seen)
	}
}

func TestIdempotencyValidator_LookupOutcomes(t *testing.T) {
	fixed := time.Date(2025, 5, 2, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	var calls []lookupCall

	tests := []struct {
		name       string
		exists     bool
		err        error
		wantReplay bool
	}{
		{"miss", false, nil, false},
		{"hit", true, nil, true},
		{"error is a miss", true, errors.New("db down"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls = nil
			lookup := func(_ context.Context, userID, scope, key string, now time.Time) (bool, error) {
				calls = append(calls, lookupCall{userID, scope, key, now})
				return tc.exists, tc.err
			}
			opts := IdempotencyOptions{
				Scope: func(c *gin.Context) string { return c.Param("entity") },
				Now:   func() time.Time { return fixed },
			}
			var seen map[string]any
			w := send(idemRouter("u9", opts, lookup, &seen), http.MethodPost, "/api/v1/fines", "k-9")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if seen["replay"] != tc.wantReplay || seen["bypass"] != tc.wantReplay {
				t.Fatalf("seen=%v; want replay=%v", seen, tc.wantReplay)
			}
			if len(calls) != 1 {
				t.Fatalf("expected one lookup, got %d", len(calls))
			}
			got := calls[0]
			if got.userID != "u9" || got.scope != "fines" || got.key != "k-9" {
				t.Fatalf("lookup args = %+v", got)
			}
			if !got.now.Equal(fixed) || got.now.Location() != time.UTC {
				t.Fatalf("lookup time must be the clock in UTC, got %v", got.now)
			}
		})
	}
}

func TestIdempotencyValidator_DefaultScopeIsRoute(t *testing.T) {
	var scope string
	lookup := func(_ context.Context, _, s, _ string, _ time.Time) (bool, error) {
		scope = s
		return false, nil
	}
	var seen map[string]any
	send(idemRouter("u1", IdempotencyOptions{}, lookup, &seen), http.MethodPost, "/api/v1/hearings", "k")
	if scope != "/api/v1/:entity" {
		t.Fatalf("default scope = %q", scope)
	}
}
