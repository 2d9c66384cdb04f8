package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/masjidboard/masjidboard/internal/fault"
	"github.com/masjidboard/masjidboard/internal/prayer"
)

// AladhanID tags records produced by the Al Adhan public API.
const AladhanID = "aladhan"

const defaultAladhanBaseURL = "https://api.aladhan.com/v1"

// Aladhan calls the generic public prayer-times API by city and country.
// The wire schema publishes azan times only; iqamah fields are left absent
// for the display layer to fill from the configured gaps.
type Aladhan struct {
	httpClient *http.Client
	log        zerolog.Logger

	// BaseURL is the API base URL. Exported for testing with httptest.
	BaseURL string
}

// NewAladhan creates a client with a bounded request timeout.
func NewAladhan(log zerolog.Logger) *Aladhan {
	return &Aladhan{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "aladhan_client").Logger(),
		BaseURL:    defaultAladhanBaseURL,
	}
}

func (a *Aladhan) ID() string { return AladhanID }

// Horizon: the API computes times on demand; prefetch is capped at the
// end of the current year.
func (a *Aladhan) Horizon(now time.Time) time.Time { return endOfYear(now) }

// aladhanResponse is the day endpoint's envelope.
type aladhanResponse struct {
	Code   int         `json:"code"`
	Status string      `json:"status"`
	Data   aladhanData `json:"data"`
}

// aladhanCalendarResponse is the month endpoint's envelope: one data
// object per day.
type aladhanCalendarResponse struct {
	Code   int           `json:"code"`
	Status string        `json:"status"`
	Data   []aladhanData `json:"data"`
}

type aladhanData struct {
	Timings aladhanTimings  `json:"timings"`
	Date    aladhanDateInfo `json:"date"`
}

// aladhanTimings carries HH:MM strings, sometimes with a timezone suffix
// like " (IST)" which the clock parser strips.
type aladhanTimings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

type aladhanDateInfo struct {
	Gregorian aladhanGregorian `json:"gregorian"`
	Hijri     aladhanHijri     `json:"hijri"`
}

type aladhanGregorian struct {
	Date string `json:"date"` // DD-MM-YYYY
}

type aladhanHijri struct {
	Day   string `json:"day"`
	Month struct {
		En string `json:"en"`
	} `json:"month"`
	Year string `json:"year"`
}

// hijriString renders "10 Shaʿbān 1447", or "" when fields are missing.
func (h aladhanHijri) hijriString() string {
	if h.Day == "" || h.Month.En == "" || h.Year == "" {
		return ""
	}
	return h.Day + " " + h.Month.En + " " + h.Year
}

// FetchDay fetches one day's timings by city.
func (a *Aladhan) FetchDay(ctx context.Context, date time.Time, location string) (prayer.Day, error) {
	city, country := splitCityCountry(location)
	endpoint := fmt.Sprintf("%s/timingsByCity/%s", a.BaseURL, date.Format("02-01-2006"))

	params := url.Values{}
	params.Set("city", city)
	params.Set("country", country)

	var resp aladhanResponse
	if err := a.getJSON(ctx, endpoint, params, "fetch day", fault.KindNotFound, &resp); err != nil {
		return prayer.Day{}, err
	}
	if resp.Code != http.StatusOK {
		return prayer.Day{}, fault.New(fault.KindNotFound, AladhanID, "fetch day",
			fmt.Errorf("api code=%d status=%s", resp.Code, resp.Status))
	}

	day := mapAladhanData(resp.Data, date.Format(prayer.DateLayout), location)
	if err := day.Validate(); err != nil {
		a.log.Warn().Err(err).Str("date", day.Date).Msg("aladhan day failed validation")
		return prayer.Day{}, fault.New(fault.KindNotFound, AladhanID, "validate day", err)
	}
	return day, nil
}

// FetchMonth fetches a whole month via the calendar endpoint.
func (a *Aladhan) FetchMonth(ctx context.Context, year int, month time.Month, location string) ([]prayer.Day, error) {
	city, country := splitCityCountry(location)
	endpoint := fmt.Sprintf("%s/calendarByCity/%d/%d", a.BaseURL, year, int(month))

	params := url.Values{}
	params.Set("city", city)
	params.Set("country", country)

	var resp aladhanCalendarResponse
	if err := a.getJSON(ctx, endpoint, params, "fetch month", fault.KindUnavailable, &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK || len(resp.Data) == 0 {
		return nil, fault.New(fault.KindUnavailable, AladhanID, "fetch month",
			fmt.Errorf("api code=%d status=%s days=%d", resp.Code, resp.Status, len(resp.Data)))
	}

	days := make([]prayer.Day, 0, len(resp.Data))
	for i, data := range resp.Data {
		date := time.Date(year, month, i+1, 0, 0, 0, 0, time.UTC)
		// Prefer the API's own Gregorian date when present.
		if g, err := time.Parse("02-01-2006", data.Date.Gregorian.Date); err == nil {
			date = g
		}
		day := mapAladhanData(data, date.Format(prayer.DateLayout), location)
		if err := day.Validate(); err != nil {
			a.log.Warn().Err(err).Str("date", day.Date).Msg("skipping invalid aladhan day")
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fault.New(fault.KindNotFound, AladhanID, "fetch month",
			fmt.Errorf("no valid days in month %04d-%02d", year, month))
	}
	return days, nil
}

func (a *Aladhan) getJSON(ctx context.Context, endpoint string, params url.Values, op string, notFoundKind fault.Kind, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fault.New(fault.KindTransport, AladhanID, op, err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fault.New(fault.KindTransport, AladhanID, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return fault.New(notFoundKind, AladhanID, op, fmt.Errorf("status 404"))
	default:
		return fault.New(fault.KindTransport, AladhanID, op,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fault.New(fault.KindNotFound, AladhanID, op, err)
	}
	return nil
}

func mapAladhanData(d aladhanData, date, location string) prayer.Day {
	return prayer.Day{
		Date:      date,
		Fajr:      prayer.Times{Azan: stripSuffix(d.Timings.Fajr)},
		Sunrise:   stripSuffix(d.Timings.Sunrise),
		Dhuhr:     prayer.Times{Azan: stripSuffix(d.Timings.Dhuhr)},
		Asr:       prayer.Times{Azan: stripSuffix(d.Timings.Asr)},
		Maghrib:   prayer.Times{Azan: stripSuffix(d.Timings.Maghrib)},
		Isha:      prayer.Times{Azan: stripSuffix(d.Timings.Isha)},
		HijriDate: d.Date.Hijri.hijriString(),
		Location:  location,
		Provider:  AladhanID,
	}
}

// stripSuffix removes a trailing timezone annotation like " (IST)".
func stripSuffix(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}
	return s
}

// splitCityCountry splits a "City,Country" locality key. A bare city is
// allowed; the API then guesses the country.
func splitCityCountry(location string) (string, string) {
	parts := strings.SplitN(location, ",", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(location), ""
}
