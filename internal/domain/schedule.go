package domain

import (
	"fmt"
	"strings"
	"time"
)

// dueDateLayouts lists accepted due-date spellings, most common first.
var dueDateLayouts = []string{
	DateKeyLayout,
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, Jan 2, 2006",
	"Monday, January 2, 2006",
	time.RFC3339,
}

// ParseDueDate parses a due-date key into a calendar day at UTC midnight.
func ParseDueDate(key string) (time.Time, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return time.Time{}, ErrInvalidDueDate
	}
	for _, layout := range dueDateLayouts {
		parsed, err := time.Parse(layout, key)
		if err != nil {
			continue
		}
		y, m, d := parsed.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, key)
}

// DateKey formats a day the way new due dates are stored.
func DateKey(day time.Time) string {
	return day.Format(DateKeyLayout)
}

// FormatDayHeading renders a due-date key as a column heading, e.g. "Monday, Jan 5, 2026".
func FormatDayHeading(key string) string {
	day, err := ParseDueDate(key)
	if err != nil {
		return key
	}
	return day.Format("Monday, Jan 2, 2006")
}

// DueTimeSlots returns every selectable due time, one per half hour.
func DueTimeSlots() []string {
	out := make([]string, 0, 48)
	for h := 0; h < 24; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return out
}

// ValidateDueTime accepts only the half-hour slots from DueTimeSlots.
func ValidateDueTime(value string) error {
	minutes, err := ParseClock(value)
	if err != nil {
		return err
	}
	if minutes%30 != 0 {
		return fmt.Errorf("%w: %q", ErrInvalidDueTime, value)
	}
	return nil
}

// ParseClock parses "HH:MM" and returns minutes past midnight.
func ParseClock(value string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDueTime, value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatClock renders "14:00" as "2:00 PM". Invalid input is returned unchanged.
func FormatClock(value string) string {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return parsed.Format("3:04 PM")
}
