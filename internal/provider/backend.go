package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/masjidboard/masjidboard/internal/fault"
	"github.com/masjidboard/masjidboard/internal/prayer"
)

// BackendID tags records produced by the first-party backend API.
const BackendID = "backend"

const defaultBackendBaseURL = "https://api.masjidboard.app"

// Backend calls the first-party API by numeric zone id. Its wire schema
// already carries iqamah and Hijri fields, so the mapping is 1:1.
type Backend struct {
	httpClient *http.Client
	log        zerolog.Logger

	// BaseURL is the API base URL. Exported for testing with httptest.
	BaseURL string
}

// NewBackend creates a backend client with a bounded request timeout.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "backend_client").Logger(),
		BaseURL:    defaultBackendBaseURL,
	}
}

func (b *Backend) ID() string { return BackendID }

// Horizon: the backend publishes through the end of the current year.
func (b *Backend) Horizon(now time.Time) time.Time { return endOfYear(now) }

// backendTimes is one prayer's wire entry.
type backendTimes struct {
	Azan   string `json:"azan"`
	Iqamah string `json:"iqamah"`
}

// backendDay is the wire schema for one day.
type backendDay struct {
	Date    string       `json:"date"`
	Hijri   string       `json:"hijri"`
	Fajr    backendTimes `json:"fajr"`
	Sunrise string       `json:"sunrise"`
	Dhuhr   backendTimes `json:"dhuhr"`
	Asr     backendTimes `json:"asr"`
	Maghrib backendTimes `json:"maghrib"`
	Isha    backendTimes `json:"isha"`
}

// backendMonth is the month endpoint's response envelope.
type backendMonth struct {
	Zone  string       `json:"zone"`
	Month string       `json:"month"` // YYYY-MM
	Days  []backendDay `json:"days"`
}

// FetchDay fetches a single day by zone id.
func (b *Backend) FetchDay(ctx context.Context, date time.Time, location string) (prayer.Day, error) {
	url := fmt.Sprintf("%s/v1/zones/%s/days/%s", b.BaseURL, location, date.Format(prayer.DateLayout))

	var wire backendDay
	if err := b.getJSON(ctx, url, "fetch day", fault.KindNotFound, &wire); err != nil {
		return prayer.Day{}, err
	}

	day := mapBackendDay(wire, location)
	if err := day.Validate(); err != nil {
		b.log.Warn().Err(err).Str("date", wire.Date).Msg("backend day failed validation")
		return prayer.Day{}, fault.New(fault.KindNotFound, BackendID, "validate day", err)
	}
	return day, nil
}

// FetchMonth fetches a whole month by zone id. A 404 here means the month
// is not yet published.
func (b *Backend) FetchMonth(ctx context.Context, year int, month time.Month, location string) ([]prayer.Day, error) {
	url := fmt.Sprintf("%s/v1/zones/%s/days?month=%04d-%02d", b.BaseURL, location, year, month)

	var wire backendMonth
	if err := b.getJSON(ctx, url, "fetch month", fault.KindUnavailable, &wire); err != nil {
		return nil, err
	}
	if len(wire.Days) == 0 {
		return nil, fault.New(fault.KindNotFound, BackendID, "fetch month",
			fmt.Errorf("empty month %04d-%02d", year, month))
	}

	days := make([]prayer.Day, 0, len(wire.Days))
	for _, wd := range wire.Days {
		day := mapBackendDay(wd, location)
		if err := day.Validate(); err != nil {
			b.log.Warn().Err(err).Str("date", wd.Date).Msg("skipping invalid backend day")
			continue
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fault.New(fault.KindNotFound, BackendID, "fetch month",
			fmt.Errorf("no valid days in month %04d-%02d", year, month))
	}
	return days, nil
}

// getJSON performs a GET and decodes the response. notFoundKind is the
// kind a 404 maps to: NotFound for day lookups, Unavailable for month
// lookups (the month simply is not published yet).
func (b *Backend) getJSON(ctx context.Context, url, op string, notFoundKind fault.Kind, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fault.New(fault.KindTransport, BackendID, op, err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fault.New(fault.KindTransport, BackendID, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return fault.New(notFoundKind, BackendID, op, fmt.Errorf("status 404"))
	default:
		return fault.New(fault.KindTransport, BackendID, op,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// Malformed content is a soft failure, never a crash.
		return fault.New(fault.KindNotFound, BackendID, op, err)
	}
	return nil
}

func mapBackendDay(w backendDay, location string) prayer.Day {
	return prayer.Day{
		Date:      w.Date,
		Fajr:      prayer.Times(w.Fajr),
		Sunrise:   w.Sunrise,
		Dhuhr:     prayer.Times(w.Dhuhr),
		Asr:       prayer.Times(w.Asr),
		Maghrib:   prayer.Times(w.Maghrib),
		Isha:      prayer.Times(w.Isha),
		HijriDate: w.Hijri,
		Location:  location,
		Provider:  BackendID,
	}
}
