// Package dates parses the shorthand date words accepted wherever a due
// date can be typed ("tomorrow", "friday", "2026-01-15") and formats due
// dates for display.
package dates

import (
	"strings"
	"time"
)

// ParseNatural resolves a natural-language date word to an end-of-day
// timestamp, or nil when the input is not recognized.
func ParseNatural(s string, now time.Time) *time.Time {
	today := endOfDay(now)

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.AddDate(0, 0, 1)
		return &t
	case "monday", "mon":
		return nextWeekday(now, time.Monday)
	case "tuesday", "tue":
		return nextWeekday(now, time.Tuesday)
	case "wednesday", "wed":
		return nextWeekday(now, time.Wednesday)
	case "thursday", "thu":
		return nextWeekday(now, time.Thursday)
	case "friday", "fri":
		return nextWeekday(now, time.Friday)
	case "saturday", "sat":
		return nextWeekday(now, time.Saturday)
	case "sunday", "sun":
		return nextWeekday(now, time.Sunday)
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}

	// Try parsing as date
	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
		"Jan 2",
		"Jan 2, 2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			// If no year, use current year
			if t.Year() == 0 {
				t = time.Date(now.Year(), t.Month(), t.Day(), 23, 59, 59, 0, now.Location())
			} else {
				t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, now.Location())
			}
			return &t
		}
	}

	return nil
}

// FormatDue renders a due date relative to now: "today", "tomorrow",
// weekday-and-month for this year, full date otherwise.
func FormatDue(t time.Time, now time.Time) string {
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today"
	}

	tomorrow := now.AddDate(0, 0, 1)
	if t.Year() == tomorrow.Year() && t.YearDay() == tomorrow.YearDay() {
		return "tomorrow"
	}

	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}

	return t.Format("Jan 2, 2006")
}

func endOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

func nextWeekday(now time.Time, day time.Weekday) *time.Time {
	today := endOfDay(now)

	daysUntil := int(day - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	t := today.AddDate(0, 0, daysUntil)
	return &t
}
