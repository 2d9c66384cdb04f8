package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/masjidboard/masjidboard/internal/fault"
	"github.com/masjidboard/masjidboard/internal/hijri"
	"github.com/masjidboard/masjidboard/internal/prayer"
)

// ACJUID tags records scraped from the authority website.
const ACJUID = hijri.ProviderID

const (
	defaultACJUBaseURL = "https://www.acju.lk"
	timetablePath      = "/prayer-times/"
)

// timetableRowRe matches one timetable row: a date cell followed by six
// time cells (fajr, sunrise, dhuhr, asr, maghrib, isha). The site's markup
// varies in attributes and whitespace, never in this shape.
var timetableRowRe = regexp.MustCompile(
	`<td[^>]*class="[^"]*date[^"]*"[^>]*>\s*(\d{4}-\d{2}-\d{2})\s*</td>` +
		strings.Repeat(`\s*<td[^>]*>\s*(\d{1,2}:\d{2})\s*</td>`, 6))

// hijriLookup is the slice of the calendar scraper this client needs.
type hijriLookup interface {
	Lookup(ctx context.Context, date time.Time, region string) (hijri.Day, error)
}

// ACJU scrapes the authority site's monthly prayer timetable and enriches
// it with Hijri dates from the calendar scraper. Same discipline as the
// calendar scrape: every format assumption fails soft.
type ACJU struct {
	httpClient *http.Client
	calendar   hijriLookup
	log        zerolog.Logger

	// BaseURL is the site root. Exported for testing with httptest.
	BaseURL string
}

// NewACJU creates a scrape client sharing the given calendar scraper.
func NewACJU(calendar hijriLookup, log zerolog.Logger) *ACJU {
	return &ACJU{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		calendar:   calendar,
		log:        log.With().Str("component", "acju_client").Logger(),
		BaseURL:    defaultACJUBaseURL,
	}
}

func (c *ACJU) ID() string { return ACJUID }

// Horizon: timetables are published for the current calendar year.
func (c *ACJU) Horizon(now time.Time) time.Time { return endOfYear(now) }

// FetchDay scrapes the day's month and picks the requested date.
func (c *ACJU) FetchDay(ctx context.Context, date time.Time, location string) (prayer.Day, error) {
	days, err := c.FetchMonth(ctx, date.Year(), date.Month(), location)
	if err != nil {
		return prayer.Day{}, err
	}

	key := date.Format(prayer.DateLayout)
	for _, d := range days {
		if d.Date == key {
			return d, nil
		}
	}
	return prayer.Day{}, fault.New(fault.KindNotFound, ACJUID, "fetch day",
		fmt.Errorf("date %s missing from timetable", key))
}

// FetchMonth scrapes the monthly timetable page.
func (c *ACJU) FetchMonth(ctx context.Context, year int, month time.Month, location string) ([]prayer.Day, error) {
	url := fmt.Sprintf("%s%s?zone=%s&month=%04d-%02d", c.BaseURL, timetablePath, location, year, month)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fault.New(fault.KindTransport, ACJUID, "build timetable request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.KindTransport, ACJUID, "fetch timetable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fault.New(fault.KindUnavailable, ACJUID, "fetch timetable",
			fmt.Errorf("status 404"))
	default:
		return nil, fault.New(fault.KindTransport, ACJUID, "fetch timetable",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.New(fault.KindTransport, ACJUID, "read timetable", err)
	}

	rows := timetableRowRe.FindAllStringSubmatch(string(raw), -1)
	if len(rows) == 0 {
		// A published page always has rows; an empty one means the month
		// is not out yet.
		return nil, fault.New(fault.KindUnavailable, ACJUID, "parse timetable",
			fmt.Errorf("no timetable rows for %04d-%02d", year, month))
	}

	days := make([]prayer.Day, 0, len(rows))
	for _, row := range rows {
		day := prayer.Day{
			Date:     row[1],
			Fajr:     prayer.Times{Azan: row[2]},
			Sunrise:  row[3],
			Dhuhr:    prayer.Times{Azan: row[4]},
			Asr:      prayer.Times{Azan: row[5]},
			Maghrib:  prayer.Times{Azan: row[6]},
			Isha:     prayer.Times{Azan: row[7]},
			Location: location,
			Provider: ACJUID,
		}
		if err := day.Validate(); err != nil {
			c.log.Warn().Err(err).Str("date", day.Date).Msg("skipping invalid timetable row")
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fault.New(fault.KindNotFound, ACJUID, "parse timetable",
			fmt.Errorf("no valid rows for %04d-%02d", year, month))
	}

	c.enrichHijri(ctx, days, location)
	return days, nil
}

// enrichHijri fills HijriDate on each day from the calendar scraper's
// month boundaries. A Gregorian month straddles at most two Hijri months,
// so at most two lookups are made; any failure leaves the field empty.
func (c *ACJU) enrichHijri(ctx context.Context, days []prayer.Day, location string) {
	var months []hijri.Day

	lookup := func(date time.Time) *hijri.Day {
		for i := range months {
			if !date.Before(months[i].MonthStart) && !date.After(months[i].MonthEnd) {
				return &months[i]
			}
		}
		if len(months) >= 2 {
			return nil
		}
		hd, err := c.calendar.Lookup(ctx, date, location)
		if err != nil {
			c.log.Debug().Err(err).Str("date", date.Format(prayer.DateLayout)).
				Msg("hijri enrichment unavailable")
			return nil
		}
		months = append(months, hd)
		return &months[len(months)-1]
	}

	for i := range days {
		date, err := time.Parse(prayer.DateLayout, days[i].Date)
		if err != nil {
			continue
		}
		hm := lookup(date)
		if hm == nil {
			continue
		}
		dayOfMonth, err := hijri.DayWithin(date, hm.MonthStart, hm.MonthEnd)
		if err != nil {
			continue
		}
		days[i].HijriDate = fmt.Sprintf("%d %s %d", dayOfMonth, hm.MonthName, hm.Year)
	}
}
