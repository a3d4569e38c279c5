package models

import "time"

// DateLayout is the calendar-date layout used for DateAdded and DiscoveredAt.
const DateLayout = "2006-01-02"

// CalendarDate formats t as a calendar date in UTC, dropping the time component.
func CalendarDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Competitor is a named organization being tracked.
// Findings reference competitors by name only, so deleting a competitor
// leaves its findings untouched.
type Competitor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DateAdded string `json:"date_added"` // YYYY-MM-DD, immutable
}
