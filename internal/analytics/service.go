package analytics

import (
	"context"
	"time"

	"github.com/tbourn/courtdesk-backend/internal/datastore"
	"github.com/tbourn/courtdesk-backend/internal/domain"
	"github.com/tbourn/courtdesk-backend/internal/resource"
)

const accessLogTable = "access_logs"

// Service reads access-log events for a window and aggregates them.
type Service struct {
	store datastore.Store
	loc   *time.Location
	now   func() time.Time
}

// NewService builds a Service that buckets days and hours in loc.
func NewService(store datastore.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, loc: loc, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// events returns log rows with created_at in [start, now].
func (s *Service) events(ctx context.Context, start, now time.Time) ([]domain.AccessLog, error) {
	q := datastore.From(accessLogTable).
		Select("id", "success", "ip_address", "location", "created_at").
		Gte("created_at", start.UTC()).
		OrderBy("created_at", datastore.Ascending)

	var rows []domain.AccessLog
	if err := s.store.Find(ctx, q, &rows); err != nil {
		return nil, &resource.QueryError{Entity: accessLogTable, Err: err}
	}
	out := rows[:0]
	for _, ev := range rows {
		if ev.CreatedAt.Before(start) || ev.CreatedAt.After(now) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *Service) rolling(w Window) (start, now time.Time) {
	now = s.now()
	return now.Add(-time.Duration(w.Days()) * 24 * time.Hour), now
}

// Hourly returns the 24 hour-of-day buckets for w.
func (s *Service) Hourly(ctx context.Context, w Window) ([]HourBucket, error) {
	start, now := s.rolling(w)
	evs, err := s.events(ctx, start, now)
	if err != nil {
		return nil, err
	}
	b := ByHourOfDay(evs, s.loc)
	return b[:], nil
}

// Daily returns one bucket per calendar day touched by the rolling window,
// so its totals match Hourly and Locations for the same w. The first bucket
// is usually partial.
func (s *Service) Daily(ctx context.Context, w Window) ([]DayBucket, error) {
	start, now := s.rolling(w)
	evs, err := s.events(ctx, start, now)
	if err != nil {
		return nil, err
	}
	return ByDay(evs, start, now, s.loc), nil
}

// Locations returns the top locations for w.
func (s *Service) Locations(ctx context.Context, w Window) ([]LocationBucket, error) {
	start, now := s.rolling(w)
	evs, err := s.events(ctx, start, now)
	if err != nil {
		return nil, err
	}
	return ByLocation(evs, DefaultTopLocations), nil
}
