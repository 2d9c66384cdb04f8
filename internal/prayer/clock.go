package prayer

import (
	"fmt"
	"strings"
	"time"
)

// ParseClock parses an HH:MM string into minutes since midnight.
// A trailing suffix like " (IST)" that some sources append is stripped.
func ParseClock(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", raw)
	}

	var hour, min int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", raw, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &min); err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", raw, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, fmt.Errorf("time out of range: %q", raw)
	}

	return hour*60 + min, nil
}

// ClockAt anchors an HH:MM string onto the given date in the given location.
func ClockAt(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	mins, err := ParseClock(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), mins/60, mins%60, 0, 0, loc), nil
}

// AddMinutes returns the HH:MM string shifted by the given number of
// minutes, wrapping within the day.
func AddMinutes(raw string, minutes int) (string, error) {
	mins, err := ParseClock(raw)
	if err != nil {
		return "", err
	}
	mins = (mins + minutes) % (24 * 60)
	if mins < 0 {
		mins += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60), nil
}
