package seap

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date form used across the scrape pipeline.
const DateLayout = "2006-01-02"

const instantLayout = "2006-01-02T15:04:05.000Z"

// The catalog filters on local civil days at a fixed +02:00 offset. No
// DST adjustment is applied; stored publication dates depend on these
// exact boundaries, so do not swap this for a tz-database location.
var fixedOffset = time.FixedZone("UTC+2", 2*60*60)

// StartOfDay converts a calendar date to the UTC instant opening that
// civil day: 22:00:00.000Z on the previous calendar day.
func StartOfDay(date string) (string, error) {
	day, err := parseDate(date)
	if err != nil {
		return "", err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, fixedOffset)
	return start.UTC().Format(instantLayout), nil
}

// EndOfDay converts a calendar date to the UTC instant closing that
// civil day: 21:59:59.000Z on the given day.
func EndOfDay(date string) (string, error) {
	day, err := parseDate(date)
	if err != nil {
		return "", err
	}
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, fixedOffset)
	return end.UTC().Format(instantLayout), nil
}

func parseDate(date string) (time.Time, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar date %q: %w", date, err)
	}
	return day, nil
}
