package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
)

// Location is a coarse visitor location. City may be empty.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// DailyStat is one calendar day of activity.
type DailyStat struct {
	Day         string `json:"day"` // YYYY-MM-DD, UTC
	Views       int64  `json:"views"`
	UniqueViews int64  `json:"unique_views"`
}

type DeviceCounts struct {
	Desktop int64 `json:"desktop"`
	Mobile  int64 `json:"mobile"`
	Tablet  int64 `json:"tablet"`
}

// RetentionPolicy bounds the growth of an AggregateRecord.
type RetentionPolicy struct {
	MaxFingerprints  int // C_max: truncation triggers above this size
	KeepFingerprints int // C_keep: size after truncation
	MaxDailyEntries  int // D_max
}

var DefaultRetention = RetentionPolicy{
	MaxFingerprints:  10000,
	KeepFingerprints: 5000,
	MaxDailyEntries:  90,
}

func (p RetentionPolicy) Validate() error {
	if p.MaxFingerprints <= 0 || p.KeepFingerprints <= 0 || p.MaxDailyEntries <= 0 {
		return fmt.Errorf("%w: retention limits must be positive", ErrInvalidInput)
	}
	if p.KeepFingerprints > p.MaxFingerprints {
		return fmt.Errorf("%w: keep (%d) exceeds max fingerprints (%d)", ErrInvalidInput, p.KeepFingerprints, p.MaxFingerprints)
	}
	return nil
}

// View is a normalized "portfolio viewed" event.
type View struct {
	Fingerprint string
	Device      DeviceClass
	Referrer    string    // empty: not counted
	Location    *Location // nil or empty country: not counted
	At          time.Time
}

// AggregateRecord holds the rolling view statistics of one profile.
type AggregateRecord struct {
	SubjectID      string            `json:"subject_id"`
	SubjectKey     string            `json:"subject_key"`
	TotalViews     int64             `json:"total_views"`
	UniqueVisitors int64             `json:"unique_visitors"`
	Recent         RecentSet         `json:"recent_fingerprints"`
	Daily          []DailyStat       `json:"daily_series"`
	Referrers      Counter[string]   `json:"referrer_counts"`
	Locations      Counter[Location] `json:"location_counts"`
	Devices        DeviceCounts      `json:"device_counts"`
	LastUpdated    time.Time         `json:"last_updated"`
}

func NewAggregateRecord(subjectID, subjectKey string) *AggregateRecord {
	return &AggregateRecord{
		SubjectID:  subjectID,
		SubjectKey: subjectKey,
		Daily:      []DailyStat{},
	}
}

// Apply folds one view into the record. It is the only mutation of an
// AggregateRecord; the fingerprint and daily truncations happen here so they
// are part of the same write as the counters.
func (r *AggregateRecord) Apply(v View, p RetentionPolicy) error {
	if v.Fingerprint == "" {
		return errors.New("view has no fingerprint")
	}
	if v.At.IsZero() {
		return errors.New("view has no timestamp")
	}

	r.TotalViews++

	unique := !r.Recent.Contains(v.Fingerprint)
	if unique {
		r.UniqueVisitors++
		r.Recent.Add(v.Fingerprint)
		if r.Recent.Len() > p.MaxFingerprints {
			r.Recent.Truncate(p.KeepFingerprints)
		}
	}

	r.bumpDay(CalendarDay(v.At), unique, p.MaxDailyEntries)

	switch v.Device {
	case DeviceDesktop:
		r.Devices.Desktop++
	case DeviceMobile:
		r.Devices.Mobile++
	case DeviceTablet:
		r.Devices.Tablet++
	}

	if ref := strings.TrimSpace(v.Referrer); ref != "" {
		r.Referrers.Inc(ref)
	}
	if v.Location != nil && v.Location.Country != "" {
		r.Locations.Inc(Location{Country: v.Location.Country, City: v.Location.City})
	}

	r.LastUpdated = v.At
	return nil
}

func (r *AggregateRecord) bumpDay(day string, unique bool, maxDays int) {
	var uv int64
	if unique {
		uv = 1
	}

	// Fast path: views almost always land on the newest day.
	if n := len(r.Daily); n > 0 && r.Daily[n-1].Day == day {
		r.Daily[n-1].Views++
		r.Daily[n-1].UniqueViews += uv
		return
	}

	i := sort.Search(len(r.Daily), func(i int) bool { return r.Daily[i].Day >= day })
	if i < len(r.Daily) && r.Daily[i].Day == day {
		r.Daily[i].Views++
		r.Daily[i].UniqueViews += uv
		return
	}

	r.Daily = append(r.Daily, DailyStat{})
	copy(r.Daily[i+1:], r.Daily[i:])
	r.Daily[i] = DailyStat{Day: day, Views: 1, UniqueViews: uv}

	if maxDays > 0 && len(r.Daily) > maxDays {
		r.Daily = append(r.Daily[:0:0], r.Daily[len(r.Daily)-maxDays:]...)
	}
}

// Day returns the daily entry for day, if retained.
func (r *AggregateRecord) Day(day string) (DailyStat, bool) {
	i := sort.Search(len(r.Daily), func(i int) bool { return r.Daily[i].Day >= day })
	if i < len(r.Daily) && r.Daily[i].Day == day {
		return r.Daily[i], true
	}
	return DailyStat{}, false
}

// Clone returns a deep copy that shares no mutable state with r.
func (r *AggregateRecord) Clone() *AggregateRecord {
	cp := *r
	cp.Recent = r.Recent.Clone()
	cp.Daily = append([]DailyStat{}, r.Daily...)
	cp.Referrers = r.Referrers.Clone()
	cp.Locations = r.Locations.Clone()
	return &cp
}
