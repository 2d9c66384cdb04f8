package hijri

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/masjidboard/masjidboard/internal/fault"
)

const (
	// ProviderID tags records produced by this scraper.
	ProviderID = "acju"

	defaultBaseURL   = "https://www.acju.lk"
	calendarPagePath = "/hijri-calendar/"
	monthListPath    = "/wp-admin/admin-ajax.php"

	// The month list is short enough to fit on the first page; the
	// endpoint is paginated but the page index is static.
	monthListPage = "1"
)

// rangeRe matches the embedded script assignment carrying the current
// Hijri month's Gregorian boundaries, e.g.
//
//	var hijriRange = {"startDate":"2025\/08\/25","endDate":"2025\/09\/22"};
//
// Whitespace and escaped slashes vary between deployments, so both are
// tolerated.
var rangeRe = regexp.MustCompile(
	`hijriRange\s*=\s*\{\s*"startDate"\s*:\s*"([^"]+)"\s*,\s*"endDate"\s*:\s*"([^"]+)"`)

// monthEntryRe matches one (title, description) pair in the AJAX fragment:
// the title is a YYYY-MM Gregorian month key, the description is
// "<HijriMonthName> - <HijriYear>".
var monthEntryRe = regexp.MustCompile(
	`(?s)<h3[^>]*class="[^"]*title[^"]*"[^>]*>\s*(\d{4}-\d{2})\s*</h3>.*?` +
		`<p[^>]*class="[^"]*desc[^"]*"[^>]*>\s*([^<]+?)\s*</p>`)

const descSeparator = " - "

// Scraper fetches and parses the authority site's Hijri calendar.
type Scraper struct {
	httpClient *http.Client
	log        zerolog.Logger

	// BaseURL is the site root. Exported for testing with httptest.
	BaseURL string
}

// NewScraper creates a scraper with a bounded request timeout.
func NewScraper(log zerolog.Logger) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "hijri_scraper").Logger(),
		BaseURL:    defaultBaseURL,
	}
}

// Lookup resolves the Hijri date for the given Gregorian date, for the
// given region key. It performs two network calls (calendar page + month
// list) and writes nothing; the caller persists the result.
func (s *Scraper) Lookup(ctx context.Context, date time.Time, region string) (Day, error) {
	start, end, err := s.fetchMonthRange(ctx)
	if err != nil {
		return Day{}, err
	}

	entries, err := s.fetchMonthList(ctx)
	if err != nil {
		return Day{}, err
	}

	key := date.Format("2006-01")
	desc, ok := entries[key]
	if !ok {
		s.log.Debug().Str("month", key).Msg("no hijri month entry for requested month")
		return Day{}, fault.New(fault.KindNotFound, ProviderID, "match month entry",
			fmt.Errorf("no entry for %s", key))
	}

	monthName, year, err := ParseDescription(desc)
	if err != nil {
		return Day{}, fault.New(fault.KindNotFound, ProviderID, "parse month description", err)
	}

	dayOfMonth, err := DayWithin(date, start, end)
	if err != nil {
		// The month boundaries from the calendar page disagree with the
		// month-name list entry. Do not guess.
		s.log.Warn().
			Str("month", key).
			Time("range_start", start).
			Time("range_end", end).
			Msg("hijri month range does not cover requested date")
		return Day{}, fault.New(fault.KindDataInconsistency, ProviderID, "compute hijri day", err)
	}

	return Day{
		DayOfMonth:    dayOfMonth,
		MonthName:     monthName,
		Year:          year,
		GregorianDate: date.Format("2006-01-02"),
		MonthStart:    truncateDay(start),
		MonthEnd:      truncateDay(end),
		Provider:      ProviderID,
		Region:        region,
	}, nil
}

// ParseDescription splits a month-list description like
// "Rabee`unith Thaani - 1447" into its name and year parts.
func ParseDescription(desc string) (string, int, error) {
	idx := strings.LastIndex(desc, descSeparator)
	if idx < 0 {
		return "", 0, fmt.Errorf("description %q missing %q separator", desc, descSeparator)
	}
	name := strings.TrimSpace(desc[:idx])
	yearStr := strings.TrimSpace(desc[idx+len(descSeparator):])
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", 0, fmt.Errorf("description %q has non-numeric year %q", desc, yearStr)
	}
	if name == "" {
		return "", 0, fmt.Errorf("description %q has empty month name", desc)
	}
	return name, year, nil
}

// fetchMonthRange fetches the calendar page and extracts the current
// Hijri month's Gregorian start and end dates.
func (s *Scraper) fetchMonthRange(ctx context.Context) (time.Time, time.Time, error) {
	body, err := s.get(ctx, s.BaseURL+calendarPagePath)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	m := rangeRe.FindStringSubmatch(body)
	if m == nil {
		s.log.Warn().Msg("hijri range assignment not found on calendar page")
		return time.Time{}, time.Time{}, fault.New(fault.KindNotFound, ProviderID,
			"extract month range", fmt.Errorf("range pattern not matched"))
	}

	start, err := parseRangeDate(m[1])
	if err != nil {
		return time.Time{}, time.Time{}, fault.New(fault.KindNotFound, ProviderID,
			"parse range start", err)
	}
	end, err := parseRangeDate(m[2])
	if err != nil {
		return time.Time{}, time.Time{}, fault.New(fault.KindNotFound, ProviderID,
			"parse range end", err)
	}
	return start, end, nil
}

// fetchMonthList fetches the paginated AJAX fragment and extracts the
// Gregorian-month-key -> Hijri-description mapping.
func (s *Scraper) fetchMonthList(ctx context.Context) (map[string]string, error) {
	form := url.Values{}
	form.Set("action", "hijri_month_list")
	form.Set("page", monthListPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.BaseURL+monthListPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fault.New(fault.KindTransport, ProviderID, "build month list request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.KindTransport, ProviderID, "fetch month list", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fault.KindTransport, ProviderID, "fetch month list",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.New(fault.KindTransport, ProviderID, "read month list", err)
	}

	matches := monthEntryRe.FindAllStringSubmatch(string(raw), -1)
	if len(matches) == 0 {
		s.log.Warn().Msg("no month entries found in month list fragment")
		return nil, fault.New(fault.KindNotFound, ProviderID, "extract month list",
			fmt.Errorf("entry pattern not matched"))
	}

	entries := make(map[string]string, len(matches))
	for _, m := range matches {
		entries[m[1]] = m[2]
	}
	return entries, nil
}

func (s *Scraper) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fault.New(fault.KindTransport, ProviderID, "build request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fault.New(fault.KindTransport, ProviderID, "fetch calendar page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fault.New(fault.KindTransport, ProviderID, "fetch calendar page",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fault.New(fault.KindTransport, ProviderID, "read calendar page", err)
	}
	return string(raw), nil
}

// parseRangeDate parses a boundary date that may use escaped or plain
// slashes, or dashes.
func parseRangeDate(raw string) (time.Time, error) {
	s := strings.ReplaceAll(raw, `\/`, "/")
	for _, layout := range []string{"2006/01/02", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable range date %q", raw)
}
