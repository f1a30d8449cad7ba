package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AccessLogOptions configures AccessLog.
type AccessLogOptions struct {
	// MaskHeaders are logged as "[REDACTED]" in addition to Authorization,
	// Cookie, Set-Cookie and Idempotency-Key.
	MaskHeaders []string
	// BasePath is stripped from the route to derive the "entity" field.
	BasePath string
	// MaxQueryLen caps the logged query string; 0 means 2048.
	MaxQueryLen int
}

// Order matters: ids before process numbers before phones, the loosest.
var redactions = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-8][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}\b`), "[REDACTED:process]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

// Redact scrubs ids, emails, court process numbers and phone numbers from s.
func Redact(s string) string {
	for _, r := range redactions {
		if s == "" {
			return s
		}
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// AccessLog emits one structured line per request with PII scrubbed from the
// query string and header values. Bodies are never logged. The level follows
// the outcome: error for 5xx or recorded gin errors, warn for 4xx, info
// otherwise.
func AccessLog(opts AccessLogOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization":   {},
		"cookie":          {},
		"set-cookie":      {},
		"idempotency-key": {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}
	maxQuery := opts.MaxQueryLen
	if maxQuery <= 0 {
		maxQuery = 2048
	}
	base := strings.TrimRight(opts.BasePath, "/")

	return func(c *gin.Context) {
		start := time.Now()

		rid := RequestIDFrom(c)
		if rid == "" {
			rid = c.GetHeader(requestIDHeader)
		}
		scoped := log.With().Str("request_id", rid).Logger()
		attachLogger(c, &scoped)

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := masked[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = Redact(strings.Join(vv, ", "))
		}
		query := truncate(Redact(c.Request.URL.RawQuery), maxQuery)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = scoped.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", c.Errors.String())
			}
		case status >= 400:
			ev = scoped.Warn()
		default:
			ev = scoped.Info()
		}
		if entity := entityOf(route, base); entity != "" {
			ev = ev.Str("entity", entity)
		}
		ev.Str("user_id", c.GetString("userID")).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("query", query).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}

// entityOf returns the first route segment under base, e.g. "cases" for
// "/api/v1/cases/:id".
func entityOf(route, base string) string {
	if base != "" {
		if !strings.HasPrefix(route, base+"/") {
			return ""
		}
		route = strings.TrimPrefix(route, base)
	}
	seg := strings.SplitN(strings.TrimPrefix(route, "/"), "/", 2)[0]
	if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
		return ""
	}
	return seg
}

// truncate cuts s to max bytes plus an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
