// Access analytics HTTP handlers.
//
//   - GET /analytics/access/hourly     (24 hour-of-day buckets)
//   - GET /analytics/access/daily      (one bucket per calendar day the window touches)
//   - GET /analytics/access/locations  (top sign-in locations)
//
// All accept ?window=24h|7d|30d|90d (default 7d).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/courtdesk-backend/internal/analytics"
)

// AnalyticsService computes access-log aggregates.
type AnalyticsService interface {
	Hourly(ctx context.Context, w analytics.Window) ([]analytics.HourBucket, error)
	Daily(ctx context.Context, w analytics.Window) ([]analytics.DayBucket, error)
	Locations(ctx context.Context, w analytics.Window) ([]analytics.LocationBucket, error)
}

// AnalyticsHandlers groups the analytics endpoints.
type AnalyticsHandlers struct {
	svc AnalyticsService
}

// NewAnalyticsHandlers binds the analytics service.
func NewAnalyticsHandlers(svc AnalyticsService) *AnalyticsHandlers {
	return &AnalyticsHandlers{svc: svc}
}

// AnalyticsResponse wraps one aggregate series.
type AnalyticsResponse[B any] struct {
	Window  analytics.Window `json:"window"  example:"7d"`
	Buckets []B              `json:"buckets"`
}

// serveSeries parses the window, runs fn, and writes the series.
func serveSeries[B any](c *gin.Context, fn func(context.Context, analytics.Window) ([]B, error)) {
	w, err := analytics.ParseWindow(c.Query("window"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	buckets, err := fn(c.Request.Context(), w)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeQueryFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, AnalyticsResponse[B]{Window: w, Buckets: buckets})
}

// Hourly godoc
// @ID          accessHourly
// @Summary     Sign-in attempts by hour of day
// @Tags        Analytics
// @Produce     json
// @Security    BearerAuth
// @Param       window  query  string  false  "Time window"  Enums(24h, 7d, 30d, 90d)  default(7d)
// @Success     200  {object} handlers.AnalyticsResponse[analytics.HourBucket]
// @Failure     400  {object} handlers.ErrorResponse "Invalid window"
// @Failure     500  {object} handlers.ErrorResponse "Query failed"
// @Router      /analytics/access/hourly [get]
func (h *AnalyticsHandlers) Hourly(c *gin.Context) { serveSeries(c, h.svc.Hourly) }

// Daily godoc
// @ID          accessDaily
// @Summary     Sign-in attempts per day
// @Description Covers the same rolling range as the hourly and location series, so a 24h window spans two calendar days.
// @Tags        Analytics
// @Produce     json
// @Security    BearerAuth
// @Param       window  query  string  false  "Time window"  Enums(24h, 7d, 30d, 90d)  default(7d)
// @Success     200  {object} handlers.AnalyticsResponse[analytics.DayBucket]
// @Failure     400  {object} handlers.ErrorResponse "Invalid window"
// @Failure     500  {object} handlers.ErrorResponse "Query failed"
// @Router      /analytics/access/daily [get]
func (h *AnalyticsHandlers) Daily(c *gin.Context) { serveSeries(c, h.svc.Daily) }

// Locations godoc
// @ID          accessLocations
// @Summary     Top sign-in locations
// @Tags        Analytics
// @Produce     json
// @Security    BearerAuth
// @Param       window  query  string  false  "Time window"  Enums(24h, 7d, 30d, 90d)  default(7d)
// @Success     200  {object} handlers.AnalyticsResponse[analytics.LocationBucket]
// @Failure     400  {object} handlers.ErrorResponse "Invalid window"
// @Failure     500  {object} handlers.ErrorResponse "Query failed"
// @Router      /analytics/access/locations [get]
func (h *AnalyticsHandlers) Locations(c *gin.Context) { serveSeries(c, h.svc.Locations) }
