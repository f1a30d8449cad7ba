// Package analytics groups access-log events into the fixed bucket shapes
// used by the dashboard charts: 24 hour-of-day buckets, one bucket per
// calendar day of a window, and the top locations by share of events.
//
// Aggregators never fail and always return dense shapes; an empty input
// yields all-zero buckets.
package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/tbourn/courtdesk-backend/internal/domain"
)

// UnknownLocation labels events with neither a location nor an address.
const UnknownLocation = "unknown"

// DefaultTopLocations is the number of locations ByLocation keeps.
const DefaultTopLocations = 10

// HourBucket counts events that fell in one hour of the day, on any day.
type HourBucket struct {
	Hour    int    `json:"hour"`
	Label   string `json:"label"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
	Failure int    `json:"failure"`
}

// DayBucket counts events on one calendar day.
type DayBucket struct {
	Date    string `json:"date"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
	Failure int    `json:"failure"`
}

// LocationBucket is one location's event count and share of all events.
type LocationBucket struct {
	Location   string  `json:"location"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ByHourOfDay buckets events by their hour in loc.
func ByHourOfDay(events []domain.AccessLog, loc *time.Location) [24]HourBucket {
	if loc == nil {
		loc = time.UTC
	}
	var out [24]HourBucket
	for h := range out {
		out[h] = HourBucket{Hour: h, Label: fmt.Sprintf("%02d:00", h)}
	}
	for _, ev := range events {
		b := &out[ev.CreatedAt.In(loc).Hour()]
		b.Total++
		if ev.Success {
			b.Success++
		} else {
			b.Failure++
		}
	}
	return out
}

// ByDay returns one bucket per calendar day in loc from from's day through
// to's day, both inclusive. Events outside that range are ignored.
func ByDay(events []domain.AccessLog, from, to time.Time, loc *time.Location) []DayBucket {
	if loc == nil {
		loc = time.UTC
	}
	first := startOfDay(from, loc)
	last := startOfDay(to, loc)
	if last.Before(first) {
		return []DayBucket{}
	}

	var out []DayBucket
	index := make(map[string]int)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		index[key] = len(out)
		out = append(out, DayBucket{Date: key})
	}
	for _, ev := range events {
		i, ok := index[ev.CreatedAt.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		out[i].Total++
		if ev.Success {
			out[i].Success++
		} else {
			out[i].Failure++
		}
	}
	return out
}

// ByLocation counts events per location label, falling back to the IP
// address and then to UnknownLocation. Results are sorted by count
// descending (ties by label), truncated to topN, and carry each location's
// percentage of all events rounded to one decimal.
func ByLocation(events []domain.AccessLog, topN int) []LocationBucket {
	if topN <= 0 {
		topN = DefaultTopLocations
	}
	counts := make(map[string]int)
	for _, ev := range events {
		counts[locationLabel(ev)]++
	}

	out := make([]LocationBucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, LocationBucket{Location: label, Count: n})
	}
	slices.SortFunc(out, func(a, b LocationBucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})
	if len(out) > topN {
		out = out[:topN]
	}

	total := len(events)
	for i := range out {
		out[i].Percentage = math.Round(float64(out[i].Count)*1000/float64(total)) / 10
	}
	return out
}

func locationLabel(ev domain.AccessLog) string {
	if s := strings.TrimSpace(ev.Location); s != "" {
		return s
	}
	if s := strings.TrimSpace(ev.IPAddress); s != "" {
		return s
	}
	return UnknownLocation
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
