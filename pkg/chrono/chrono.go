// Package chrono provides the calendar arithmetic used by the cohort
// analysis engine: legacy date parsing, whole-month differences, and
// age calculations. All computations work on UTC dates with the time
// component discarded.
package chrono

import (
	"sort"
	"time"
)

// DateLayout is the canonical wire format for dates.
const DateLayout = "2006-01-02"

// legacyLayouts are the formats seen in records imported from the
// upstream clinic systems. Day-first entries appear when a record was
// keyed by hand.
var legacyLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
	"02/01/2006",
}

// sentinelYear marks placeholder dates written by upstream systems for
// "unknown". Any parsed date at or beyond this year is treated as absent.
const sentinelYear = 3000

// ParseLegacy parses a date string from an imported record. It returns
// nil for empty strings, unparseable values, and sentinel placeholder
// dates such as "3000-01-01" or "01-01-3000".
func ParseLegacy(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range legacyLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return Normalize(&t)
	}
	return nil
}

// Normalize maps sentinel placeholder dates to nil and truncates the
// time component. It is applied to every date crossing the storage
// boundary so downstream code never sees a placeholder.
func Normalize(t *time.Time) *time.Time {
	if t == nil || t.Year() >= sentinelYear {
		return nil
	}
	d := Date(*t)
	return &d
}

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole calendar months from a to b.
// A partial month does not count: 2020-01-15 to 2020-02-14 is 0 months.
// Returns a negative count when b precedes a.
func MonthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return -MonthsBetween(b, a)
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	return months
}

// DaysBetween returns the number of whole days from a to b, negative
// when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// AddMonths returns t shifted by n calendar months.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// AgeYears returns the age in whole years at the reference date.
func AgeYears(dob, at time.Time) int {
	return MonthsBetween(dob, at) / 12
}

// AgeMonths returns the age in whole months at the reference date.
func AgeMonths(dob, at time.Time) int {
	return MonthsBetween(dob, at)
}

// Median returns the median of xs, interpolating between the two middle
// values for even-length input. Returns 0 for empty input. The slice is
// not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Mean returns the arithmetic mean of xs, or 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// MonthLabel formats t as "Jan 2006" for time series axes.
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
