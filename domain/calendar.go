package domain

import (
	"fmt"
	"time"
)

// CalendarRange expands calendar drill-down components into an inclusive
// date-range filter on the index's date field. month and day may be zero to
// widen the range to the whole year or month. Returns nil when year is zero.
func CalendarRange(year, month, day int) *DateRange {
	if year <= 0 {
		return nil
	}

	var start, end time.Time
	switch {
	case month > 0 && day > 0:
		start = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, time.Month(month), day, 23, 59, 59, 0, time.UTC)
	case month > 0:
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		// day 0 of the next month is the last day of this one
		last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, time.Month(month), last.Day(), 23, 59, 59, 0, time.UTC)
	default:
		start = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)
	}

	return &DateRange{
		Field: "date",
		GTE:   start.Format(IndexDateFormat),
		LTE:   end.Format(IndexDateFormat),
	}
}

// OrdinalDay renders a day of month with its English ordinal suffix.
func OrdinalDay(day int) string {
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}
