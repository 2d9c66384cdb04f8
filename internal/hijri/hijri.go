// Package hijri resolves Hijri calendar dates from the religious
// authority's public website.
//
// The site was never designed for programmatic consumption: the current
// Hijri month's Gregorian boundaries live in an embedded script variable on
// the calendar page, and the month-name list comes from a paginated AJAX
// endpoint returning an HTML fragment. The scraper joins the two and never
// raises for malformed content; every extraction mismatch is a soft
// not-found.
package hijri

import (
	"fmt"
	"time"
)

// Day is a resolved Hijri calendar date for one Gregorian date.
type Day struct {
	DayOfMonth    int       `json:"day_of_month"`
	MonthName     string    `json:"month_name"` // published name, e.g. "Rabee`unith Thaani"
	Year          int       `json:"year"`
	GregorianDate string    `json:"gregorian_date"` // YYYY-MM-DD
	MonthStart    time.Time `json:"month_start"`    // Gregorian date the Hijri month begins
	MonthEnd      time.Time `json:"month_end"`      // Gregorian date the Hijri month ends
	Provider      string    `json:"provider"`
	Region        string    `json:"region"`
}

// String renders the date as "8 Rabee`unith Thaani 1447".
func (d Day) String() string {
	return fmt.Sprintf("%d %s %d", d.DayOfMonth, d.MonthName, d.Year)
}

// DayWithin computes the Hijri day-of-month for target given the month's
// Gregorian boundaries: whole days since the month start, plus one. A
// target outside [start, end] is an error; the caller must never guess an
// out-of-range day number.
func DayWithin(target, start, end time.Time) (int, error) {
	t := truncateDay(target)
	s := truncateDay(start)
	e := truncateDay(end)
	if t.Before(s) || t.After(e) {
		return 0, fmt.Errorf("date %s outside hijri month range [%s, %s]",
			t.Format("2006-01-02"), s.Format("2006-01-02"), e.Format("2006-01-02"))
	}
	return int(t.Sub(s).Hours()/24) + 1, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
