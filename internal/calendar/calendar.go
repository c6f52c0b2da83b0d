package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host database
)

// DateLayout is the layout of every date key.
const DateLayout = "2006-01-02"

// DateKey returns the calendar day of t in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekStartKey returns the date key of the Monday that starts t's week.
// Sunday belongs to the week that began six days earlier.
func WeekStartKey(t time.Time) string {
	return DateKey(WeekStart(t))
}

// WeekStart returns local midnight of the Monday that starts t's week.
func WeekStart(t time.Time) time.Time {
	day := StartOfLocalDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfLocalDay returns 00:00:00 of t's calendar day in t's location.
func StartOfLocalDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfLocalDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfLocalDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfLocalMonth returns midnight of the first day of t's month.
func StartOfLocalMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ParseDateKey parses a YYYY-MM-DD key as local midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q (expected YYYY-MM-DD): %w", key, err)
	}
	return t, nil
}

// KeyBefore reports whether date key a is strictly earlier than b.
func KeyBefore(a, b string) bool {
	return a < b
}

// LoadLocation resolves an IANA zone name. Empty and "Local" map to time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}
