package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func lastLogLine(t *testing.T, out string) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &ev); err != nil {
		t.Fatalf("bad log line %q: %v", lines[len(lines)-1], err)
	}
	return ev
}

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"": "",
		"case=550e8400-e29b-41d4-a716-446655440000": "case=[REDACTED:id]",
		"who=clerk@court.example":                   "who=[REDACTED:email]",
		"p=0001234-56.2024.8.26.0100":               "p=[REDACTED:process]",
		"tel=212-555-1212":                          "tel=[REDACTED:phone]",
		"window=7d":                                 "window=7d",
	}
	for in, want := range cases {
		if got := Redact(in); got != want {
			t.Errorf("Redact(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestAccessLog_ScrubsAndTagsEntity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), AccessLog(AccessLogOptions{MaskHeaders: []string{"X-Client-Location"}, BasePath: "/api/v1"}))
	r.GET("/api/v1/cases/:id", func(c *gin.Context) {
		c.Set("userID", "u-1")
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/abc?owner=clerk@court.example", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Idempotency-Key", "k-1")
	req.Header.Set("X-Client-Location", "Lisbon")
	req.Header.Set("X-Note", "call 212-555-1212")
	r.ServeHTTP(httptest.NewRecorder(), req)

	ev := lastLogLine(t, buf.String())
	if ev["level"] != "info" || ev["message"] != "http_request" {
		t.Fatalf("unexpected level/message: %v", ev)
	}
	if ev["entity"] != "cases" || ev["path"] != "/api/v1/cases/:id" || ev["user_id"] != "u-1" {
		t.Fatalf("unexpected route fields: %v", ev)
	}
	if ev["query"] != "owner=[REDACTED:email]" {
		t.Fatalf("query not scrubbed: %v", ev["query"])
	}
	h := ev["headers"].(map[string]any)
	for _, k := range []string{"Authorization", "Idempotency-Key", "X-Client-Location"} {
		if h[k] != "[REDACTED]" {
			t.Fatalf("header %s not masked: %v", k, h[k])
		}
	}
	if h["X-Note"] != "call [REDACTED:phone]" {
		t.Fatalf("header value not scrubbed: %v", h["X-Note"])
	}
	if strings.Contains(buf.String(), "secret") || strings.Contains(buf.String(), "Lisbon") {
		t.Fatalf("sensitive value leaked:\n%s", buf.String())
	}
}

func TestAccessLog_LevelsFollowOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(), AccessLog(AccessLogOptions{BasePath: "/api/v1"}))
	r.GET("/api/v1/fines", func(c *gin.Context) { c.Status(http.StatusForbidden) })
	r.GET("/api/v1/hearings", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/api/v1/dispatches", func(c *gin.Context) {
		_ = c.Error(http.ErrHandlerTimeout)
		c.Status(http.StatusBadRequest)
	})

	cases := []struct {
		path, level string
	}{
		{"/api/v1/fines", "warn"},
		{"/api/v1/hearings", "error"},
		{"/api/v1/dispatches", "error"},
		{"/nowhere", "warn"},
	}
	for _, tc := range cases {
		buf := captureLogger(t)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))
		ev := lastLogLine(t, buf.String())
		if ev["level"] != tc.level {
			t.Fatalf("%s logged at %v; want %s", tc.path, ev["level"], tc.level)
		}
		if tc.path == "/nowhere" && (ev["path"] != "/nowhere" || ev["entity"] != nil) {
			t.Fatalf("unmatched route fields: %v", ev)
		}
	}
}

func TestEntityOf(t *testing.T) {
	cases := []struct{ route, base, want string }{
		{"/api/v1/cases", "/api/v1", "cases"},
		{"/api/v1/fine-reductions/:id", "/api/v1", "fine-reductions"},
		{"/health", "/api/v1", ""},
		{"/api/v1/:id", "/api/v1", ""},
		{"/cases/:id", "", "cases"},
	}
	for _, tc := range cases {
		if got := entityOf(tc.route, tc.base); got != tc.want {
			t.Errorf("entityOf(%q,%q) = %q; want %q", tc.route, tc.base, got, tc.want)
		}
	}
}
