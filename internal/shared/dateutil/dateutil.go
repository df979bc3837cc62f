package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const Layout = "2006-01-02"

// Date is a calendar day at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time of day, keeping the calendar day of t in UTC.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// InclusiveDays counts both ends: 10th..15th is 6 days.
func InclusiveDays(from, to time.Time) int {
	return int(Truncate(to).Sub(Truncate(from)).Hours()/24) + 1
}

func StartOfYear(year int) time.Time {
	return Date(year, time.January, 1)
}

func StartOfMonth(year int, month time.Month) time.Time {
	return Date(year, month, 1)
}

// EndOfMonth is the last calendar day of the month.
func EndOfMonth(year int, month time.Month) time.Time {
	return Date(year, month+1, 0)
}

func DaysInMonth(year int, month time.Month) int {
	return EndOfMonth(year, month).Day()
}

// CompletedYears counts whole anniversaries of since reached by asOf. A
// February 29 start date reaches its anniversary on March 1 in common years.
func CompletedYears(since, asOf time.Time) int {
	since, asOf = Truncate(since), Truncate(asOf)
	years := asOf.Year() - since.Year()
	anniversary := since.AddDate(years, 0, 0)
	if asOf.Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

var monthNames = map[string]time.Month{}

func init() {
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		monthNames[name] = m
		monthNames[name[:3]] = m
	}
}

// ParseMonth accepts "March", "mar", "3" or "03".
func ParseMonth(s string) (time.Month, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m, ok := monthNames[s]; ok {
		return m, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("invalid month %q", s)
	}
	return time.Month(n), nil
}

// MonthKey renders a month zero padded ("03").
func MonthKey(m time.Month) string {
	return fmt.Sprintf("%02d", int(m))
}
