package analytics

import (
	"time"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

const (
	WeekDays   = 7
	MonthDays  = 30
	TopN       = 10
	DetailDays = MonthDays
)

type Summary struct {
	TotalViews     int64 `json:"total_views"`
	UniqueVisitors int64 `json:"unique_visitors"`
	TodayViews     int64 `json:"today_views"`
	WeekViews      int64 `json:"week_views"`
	MonthViews     int64 `json:"month_views"`
}

type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

type LocationCount struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Count   int64  `json:"count"`
}

type Detail struct {
	TotalViews     int64               `json:"total_views"`
	UniqueVisitors int64               `json:"unique_visitors"`
	DailyStats     []domain.DailyStat  `json:"daily_stats"`
	Devices        domain.DeviceCounts `json:"devices"`
	TopReferrers   []ReferrerCount     `json:"top_referrers"`
	TopLocations   []LocationCount     `json:"top_locations"`
	LastUpdated    *time.Time          `json:"last_updated"`
}

// Summarize reports lifetime totals plus today/week/month view counts.
// A nil record summarizes to zeros.
func Summarize(r *domain.AggregateRecord, now time.Time) Summary {
	if r == nil {
		return Summary{}
	}

	today := domain.CalendarDay(now)
	// Windows count today, so a week is today plus the six days before it.
	weekFrom := domain.DaysAgo(now, WeekDays-1)
	monthFrom := domain.DaysAgo(now, MonthDays-1)

	s := Summary{
		TotalViews:     r.TotalViews,
		UniqueVisitors: r.UniqueVisitors,
	}
	for _, d := range r.Daily {
		if d.Day > today {
			continue
		}
		if d.Day == today {
			s.TodayViews = d.Views
		}
		if d.Day >= weekFrom {
			s.WeekViews += d.Views
		}
		if d.Day >= monthFrom {
			s.MonthViews += d.Views
		}
	}
	return s
}

// BuildDetail reports the last DetailDays of daily stats (ascending), the
// device split and the top referrers and locations. A nil record gives empty
// defaults.
func BuildDetail(r *domain.AggregateRecord, now time.Time) Detail {
	d := Detail{
		DailyStats:   []domain.DailyStat{},
		TopReferrers: []ReferrerCount{},
		TopLocations: []LocationCount{},
	}
	if r == nil {
		return d
	}

	d.TotalViews = r.TotalViews
	d.UniqueVisitors = r.UniqueVisitors
	d.Devices = r.Devices

	from := domain.DaysAgo(now, DetailDays-1)
	today := domain.CalendarDay(now)
	for _, day := range r.Daily {
		if day.Day >= from && day.Day <= today {
			d.DailyStats = append(d.DailyStats, day)
		}
	}

	for _, e := range r.Referrers.Top(TopN) {
		d.TopReferrers = append(d.TopReferrers, ReferrerCount{Referrer: e.Key, Count: e.Count})
	}
	for _, e := range r.Locations.Top(TopN) {
		d.TopLocations = append(d.TopLocations, LocationCount{Country: e.Key.Country, City: e.Key.City, Count: e.Count})
	}

	if !r.LastUpdated.IsZero() {
		t := r.LastUpdated
		d.LastUpdated = &t
	}
	return d
}
