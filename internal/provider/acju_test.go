package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masjidboard/masjidboard/internal/fault"
	"github.com/masjidboard/masjidboard/internal/hijri"
)

// fakeCalendar serves a fixed Hijri month and counts lookups.
type fakeCalendar struct {
	day   hijri.Day
	err   error
	calls int
}

func (f *fakeCalendar) Lookup(_ context.Context, date time.Time, region string) (hijri.Day, error) {
	f.calls++
	if f.err != nil {
		return hijri.Day{}, f.err
	}
	d := f.day
	d.GregorianDate = date.Format("2006-01-02")
	d.Region = region
	return d, nil
}

func timetablePage(dates ...string) string {
	page := "<table>"
	for _, d := range dates {
		page += fmt.Sprintf(`<tr>
			<td class="col date">%s</td>
			<td class="col">04:48</td>
			<td class="col">06:05</td>
			<td class="col">12:14</td>
			<td class="col">15:23</td>
			<td class="col">18:18</td>
			<td class="col">19:27</td>
		</tr>`, d)
	}
	return page + "</table>"
}

func newTestACJU(cal hijriLookup, handler http.HandlerFunc) (*ACJU, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewACJU(cal, zerolog.Nop())
	c.BaseURL = srv.URL
	return c, srv
}

func TestACJUFetchMonth(t *testing.T) {
	cal := &fakeCalendar{day: hijri.Day{
		MonthName:  "Rabee`unith Thaani",
		Year:       1447,
		MonthStart: time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC),
		MonthEnd:   time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC),
	}}

	c, srv := newTestACJU(cal, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, timetablePath, r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("zone"))
		assert.Equal(t, "2025-09", r.URL.Query().Get("month"))
		w.Write([]byte(timetablePage("2025-09-01", "2025-09-02")))
	})
	defer srv.Close()

	days, err := c.FetchMonth(context.Background(), 2025, time.September, "4")
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2025-09-01", days[0].Date)
	assert.Equal(t, "04:48", days[0].Fajr.Azan)
	assert.Equal(t, "06:05", days[0].Sunrise)
	assert.Equal(t, "19:27", days[0].Isha.Azan)
	assert.Equal(t, ACJUID, days[0].Provider)

	// Both days fall in the same Hijri month: one lookup, two enrichments.
	assert.Equal(t, 1, cal.calls)
	assert.Equal(t, "8 Rabee`unith Thaani 1447", days[0].HijriDate)
	assert.Equal(t, "9 Rabee`unith Thaani 1447", days[1].HijriDate)
}

func TestACJUFetchMonth_HijriLookupFails(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("site down")}

	c, srv := newTestACJU(cal, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(timetablePage("2025-09-01")))
	})
	defer srv.Close()

	days, err := c.FetchMonth(context.Background(), 2025, time.September, "4")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Empty(t, days[0].HijriDate)
}

func TestACJUFetchMonth_NoRows(t *testing.T) {
	c, srv := newTestACJU(&fakeCalendar{}, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<table></table>"))
	})
	defer srv.Close()

	_, err := c.FetchMonth(context.Background(), 2025, time.November, "4")
	require.Error(t, err)
	assert.Equal(t, fault.KindUnavailable, fault.KindOf(err))
}

func TestACJUFetchMonth_ServerError(t *testing.T) {
	c, srv := newTestACJU(&fakeCalendar{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer srv.Close()

	_, err := c.FetchMonth(context.Background(), 2025, time.September, "4")
	require.Error(t, err)
	assert.Equal(t, fault.KindTransport, fault.KindOf(err))
}

func TestACJUFetchDay(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("skip enrichment")}

	c, srv := newTestACJU(cal, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(timetablePage("2025-09-01", "2025-09-02", "2025-09-03")))
	})
	defer srv.Close()

	day, err := c.FetchDay(context.Background(), time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), "4")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-02", day.Date)
}

func TestACJUFetchDay_MissingFromTimetable(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("skip enrichment")}

	c, srv := newTestACJU(cal, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(timetablePage("2025-09-01")))
	})
	defer srv.Close()

	_, err := c.FetchDay(context.Background(), time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), "4")
	require.Error(t, err)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}
