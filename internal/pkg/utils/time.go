package utils

import (
	"time"

	"citamed-service/internal/pkg/constvars"
)

func ParseClock(value string) (time.Time, error) {
	return time.Parse(constvars.ClockLayout, value)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(constvars.DateLayout, value)
}

// BuildTimeSlotKey combines a YYYY-MM-DD date and an HH:mm clock into the
// fixed-width YYYYMMDDHHMM key stored on appointments. Lexicographic order of
// keys equals chronological order.
func BuildTimeSlotKey(date, clock string) (string, error) {
	combined, err := time.Parse(constvars.DateLayout+" "+constvars.ClockLayout, date+" "+clock)
	if err != nil {
		return "", err
	}
	return combined.Format(constvars.TimeSlotLayout), nil
}

// SplitTimeSlotKey is the inverse of BuildTimeSlotKey.
func SplitTimeSlotKey(key string) (date string, clock string, err error) {
	parsed, err := time.Parse(constvars.TimeSlotLayout, key)
	if err != nil {
		return "", "", err
	}
	return parsed.Format(constvars.DateLayout), parsed.Format(constvars.ClockLayout), nil
}

func AddMinutesToClock(clock string, minutes int) (string, error) {
	parsed, err := time.Parse(constvars.ClockLayout, clock)
	if err != nil {
		return "", err
	}
	return parsed.Add(time.Duration(minutes) * time.Minute).Format(constvars.ClockLayout), nil
}

// IsPastDate reports whether date is strictly before now's calendar date.
func IsPastDate(date string, now time.Time) bool {
	parsed, err := time.Parse(constvars.DateLayout, date)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return parsed.Before(today)
}

// MonthWindow returns the first day of date's month and the first day of the
// next month, the half-open interval used for quota aggregation.
func MonthWindow(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
