// Package timeutil provides timezone-aware calendar-day utilities for
// Momentum Tracker. Streaks and daily completion records are keyed by the
// user's local calendar day, so every "what day is it" question must be
// answered in the user's zone, never by wall-clock string arithmetic.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// DayIndex is an integer number of calendar days since the Unix epoch,
// computed in a specific user's timezone. Two instants map to the same
// DayIndex iff they fall on the same local calendar day. Comparing and
// subtracting DayIndex values is safe across DST transitions, which makes
// it the right key for streak continuity checks.
//
// The zero value means "no day recorded yet" (mirrors time.Time.IsZero).
// No real user data predates 1970-01-01, so 0 is unambiguous.
type DayIndex int64

// NoDay is the zero DayIndex, meaning no calendar day has been recorded.
const NoDay DayIndex = 0

// IsZero reports whether the day index is unset.
func (d DayIndex) IsZero() bool {
	return d == NoDay
}

// Next returns the following calendar day.
func (d DayIndex) Next() DayIndex {
	return d + 1
}

// Prev returns the preceding calendar day.
func (d DayIndex) Prev() DayIndex {
	return d - 1
}

// DaysSince returns the number of calendar days from other to d.
// Positive when d is later than other.
func (d DayIndex) DaysSince(other DayIndex) int {
	return int(d - other)
}

// Date returns the calendar date of the index in the given location at
// local midnight.
func (d DayIndex) Date(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	// Anchor at the epoch date and shift by whole calendar days.
	return time.Date(1970, time.January, 1, 0, 0, 0, 0, loc).AddDate(0, 0, int(d))
}

// String formats the index as its UTC calendar date (YYYY-MM-DD).
func (d DayIndex) String() string {
	return d.Date(time.UTC).Format(FormatDate)
}

// DayOf returns the DayIndex of the instant t in the given location.
func DayOf(t time.Time, loc *time.Location) DayIndex {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, day := local.Date()
	// Re-anchoring the civil date in UTC gives a clean day count that is
	// independent of the zone's offset.
	utcMidnight := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return DayIndex(utcMidnight.Unix() / secondsPerDay)
}

// Today returns the DayIndex of the current moment in the given location.
func Today(loc *time.Location) DayIndex {
	return DayOf(time.Now(), loc)
}

// ParseDay parses a YYYY-MM-DD date string into a DayIndex. The string is
// interpreted as a civil date in the given location.
func ParseDay(value string, loc *time.Location) (DayIndex, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(FormatDate, value, loc)
	if err != nil {
		return NoDay, fmt.Errorf("timeutil: invalid date %q: %w", value, err)
	}
	return DayOf(t, loc), nil
}

const secondsPerDay = 24 * 60 * 60

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
)

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last nanosecond of the day containing t.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns Monday 00:00:00 of the week containing t, in loc.
// Used by the weekly freeze replenishment job.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	start := StartOfDay(t, loc)
	weekday := int(start.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return start.AddDate(0, 0, -(weekday - 1))
}

// IsSameDay checks if two instants fall on the same calendar day in loc.
func IsSameDay(t1, t2 time.Time, loc *time.Location) bool {
	return DayOf(t1, loc) == DayOf(t2, loc)
}

// IsConsecutiveDay checks if t2 falls on the calendar day right after t1.
func IsConsecutiveDay(t1, t2 time.Time, loc *time.Location) bool {
	return DayOf(t2, loc) == DayOf(t1, loc).Next()
}

// DaysBetween returns the absolute number of calendar days between two
// instants in loc.
func DaysBetween(t1, t2 time.Time, loc *time.Location) int {
	diff := DayOf(t2, loc).DaysSince(DayOf(t1, loc))
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// LoadLocation resolves an IANA timezone name, falling back to UTC for an
// empty name. Invalid names are an error: silently mis-bucketing a user's
// days would corrupt their streak.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timeutil: unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
