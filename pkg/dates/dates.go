// Package dates handles calendar-date arithmetic on YYYY-MM-DD strings.
// Contract and suspension dates carry no time-of-day; keeping them as
// date strings makes comparisons timezone-proof and lexicographically
// ordered.
package dates

import (
	"fmt"
	"time"
)

// Layout is the wire and storage format for calendar dates.
const Layout = "2006-01-02"

// MonthLayout is the key format for monthly summary documents.
const MonthLayout = "2006-01"

// Parse parses a YYYY-MM-DD string into a UTC midnight time.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Valid reports whether s is a well-formed calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Today returns the current calendar date in UTC.
func Today() string {
	return time.Now().UTC().Format(Layout)
}

// TodayIn returns the current calendar date in the given location.
// Branch operations anchor "today" to the branch's configured timezone.
func TodayIn(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc).Format(Layout)
}

// AddDays returns the date n days after d (n may be negative).
func AddDays(d string, n int) (string, error) {
	t, err := Parse(d)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// DaysBetween returns b minus a in whole days. Negative when b < a.
func DaysBetween(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// DaysBetweenInclusive counts the days in [start, end] including both
// endpoints, i.e. (end - start) + 1.
func DaysBetweenInclusive(start, end string) (int, error) {
	n, err := DaysBetween(start, end)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

// MonthOf returns the YYYY-MM prefix of a calendar date.
func MonthOf(d string) string {
	if len(d) < 7 {
		return d
	}
	return d[:7]
}

// Before reports whether a is strictly earlier than b. Well-formed
// YYYY-MM-DD strings order lexicographically.
func Before(a, b string) bool {
	return a < b
}

// OnOrBefore reports whether a is on or earlier than b.
func OnOrBefore(a, b string) bool {
	return a <= b
}
