package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRouteAndRejections(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/v1/cases/:id", func(c *gin.Context) { c.String(http.StatusOK, "case") })
	r.DELETE("/api/v1/fines/:id", func(c *gin.Context) { c.Status(http.StatusForbidden) })
	r.GET("/api/v1/hearings", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/v1/cases/:id", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))
	baseDenied := testutil.ToFloat64(httpRejections.WithLabelValues("/api/v1/fines/:id", "forbidden"))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/cases/c-1", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/cases/c-2", nil),
		httptest.NewRequest(http.MethodGet, "/no/such/route", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/fines/f-1", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/hearings", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/api/v1/cases/:id", "200")); got != baseOK+2 {
		t.Fatalf("route counter = %v; want %v", got, baseOK+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != base404+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, base404+1)
	}
	if got := testutil.ToFloat64(httpRejections.WithLabelValues("/api/v1/fines/:id", "forbidden")); got != baseDenied+1 {
		t.Fatalf("rejections = %v; want %v", got, baseDenied+1)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}

func TestRejectionReason(t *testing.T) {
	cases := map[int]string{
		http.StatusOK:                 "",
		http.StatusNotFound:           "",
		http.StatusUnauthorized:       "unauthenticated",
		http.StatusForbidden:          "forbidden",
		http.StatusTooManyRequests:    "rate_limited",
		http.StatusServiceUnavailable: "permissions_unavailable",
	}
	for status, want := range cases {
		if got := rejectionReason(status); got != want {
			t.Errorf("rejectionReason(%d) = %q; want %q", status, got, want)
		}
	}
}
