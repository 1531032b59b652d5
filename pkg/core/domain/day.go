package domain

import "time"

// DayLayout is the calendar day key format. Days are UTC calendar days.
const DayLayout = "2006-01-02"

// CalendarDay truncates t to its UTC calendar day key.
func CalendarDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DaysAgo returns the calendar day key n days before t.
func DaysAgo(t time.Time, n int) string {
	return CalendarDay(t.UTC().AddDate(0, 0, -n))
}
