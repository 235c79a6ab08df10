// Package period maps calendar dates onto reporting buckets.
//
// Key formats:
//
//	day   YYYY-MM-DD
//	week  YYYY-Www   ISO-8601 week and week-year, week zero padded
//	month YYYY-M     month not zero padded
//	year  YYYY
//
// Month keys keep the unpadded form existing reports depend on, so string order
// is not chronological ("2024-10" < "2024-9"). Order keys with Key.Before.
package period

import (
	"fmt"
	"strings"
	"time"
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// MonthKeyUnpadded is the layout of month keys.
const MonthKeyUnpadded = "%d-%d"

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Day, Week, Month, Year:
		return g, nil
	case "daily":
		return Day, nil
	case "weekly":
		return Week, nil
	case "monthly":
		return Month, nil
	case "annual", "yearly":
		return Year, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Key identifies a bucket. Sub is the day-of-year, ISO week or month
// depending on the granularity, and zero for years.
type Key struct {
	Granularity Granularity
	Year        int
	Sub         int
}

// KeyOf returns the bucket of the calendar date of t.
func KeyOf(t time.Time, g Granularity) Key {
	switch g {
	case Week:
		y, w := t.ISOWeek()
		return Key{Granularity: Week, Year: y, Sub: w}
	case Month:
		return Key{Granularity: Month, Year: t.Year(), Sub: int(t.Month())}
	case Year:
		return Key{Granularity: Year, Year: t.Year()}
	default:
		return Key{Granularity: Day, Year: t.Year(), Sub: t.YearDay()}
	}
}

func (k Key) String() string {
	switch k.Granularity {
	case Week:
		return fmt.Sprintf("%04d-W%02d", k.Year, k.Sub)
	case Month:
		return fmt.Sprintf(MonthKeyUnpadded, k.Year, k.Sub)
	case Year:
		return fmt.Sprintf("%04d", k.Year)
	default:
		return time.Date(k.Year, time.January, 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, k.Sub-1).
			Format("2006-01-02")
	}
}

// Before orders keys of the same granularity chronologically.
func (k Key) Before(o Key) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Sub < o.Sub
}

// Truncate returns the calendar date of t as midnight UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
