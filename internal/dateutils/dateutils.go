// Package dateutils provides the calendar arithmetic behind period windows:
// day truncation, period starts and day-by-day iteration.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted on input and used on output.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
)

// CommonFormats is the list of layouts ParseDate tries, in order.
var CommonFormats = []string{
	DateLayoutISO,
	time.RFC3339,
	DateLayoutFull,
	DateLayoutEuropean,
	"2006/01/02",
}

var whitespace = regexp.MustCompile(`\s+`)

// Period identifies a calendar window that ends today.
type Period string

// Supported periods.
const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// Periods lists the supported periods from shortest to longest.
var Periods = []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear}

// ParsePeriod maps a period keyword to a Period. Both the noun form ("month")
// and the adjective form ("monthly") are accepted, case-insensitively.
func ParsePeriod(s string) (Period, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "weekly":
		return PeriodWeek, true
	case "month", "monthly":
		return PeriodMonth, true
	case "quarter", "quarterly":
		return PeriodQuarter, true
	case "year", "yearly":
		return PeriodYear, true
	}
	return "", false
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the most recent Monday on or before date.
func StartOfWeek(date time.Time) time.Time {
	d := Day(date)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfQuarter returns the first day of the quarter containing date.
func StartOfQuarter(date time.Time) time.Time {
	month := time.Month((int(date.Month())-1)/3*3 + 1)
	return time.Date(date.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns January 1st of the year containing date.
func StartOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// PeriodStart returns the first day of the current instance of p relative to
// today. Unknown periods fall back to the month window.
func PeriodStart(p Period, today time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return StartOfWeek(today)
	case PeriodQuarter:
		return StartOfQuarter(today)
	case PeriodYear:
		return StartOfYear(today)
	default:
		return StartOfMonth(today)
	}
}

// EachDay returns every calendar day in [start, end], both ends inclusive.
// It returns nil when end is before start.
func EachDay(start, end time.Time) []time.Time {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ParseDate parses a date string using the common formats and returns the
// calendar day in UTC together with the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return Day(t), format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// MustParseISO parses a YYYY-MM-DD literal and panics on failure. Intended for
// fixed dates in tests and defaults.
func MustParseISO(s string) time.Time {
	t, err := time.Parse(DateLayoutISO, s)
	if err != nil {
		panic(err)
	}
	return t
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
