package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masjidboard/masjidboard/internal/hijri"
	"github.com/masjidboard/masjidboard/internal/prayer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDay(date, providerID, location string) prayer.Day {
	return prayer.Day{
		Date:      date,
		Fajr:      prayer.Times{Azan: "04:48", Iqamah: "05:05"},
		Sunrise:   "06:05",
		Dhuhr:     prayer.Times{Azan: "12:14"},
		Asr:       prayer.Times{Azan: "15:23"},
		Maghrib:   prayer.Times{Azan: "18:18"},
		Isha:      prayer.Times{Azan: "19:27", Iqamah: "19:45"},
		HijriDate: "8 Rabee`unith Thaani 1447",
		Location:  location,
		Provider:  providerID,
	}
}

func sampleHijri(gregorianDate string) hijri.Day {
	return hijri.Day{
		DayOfMonth:    8,
		MonthName:     "Rabee`unith Thaani",
		Year:          1447,
		GregorianDate: gregorianDate,
		MonthStart:    time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC),
		MonthEnd:      time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC),
		Provider:      "acju",
		Region:        "colombo",
	}
}

func TestPutGetDay(t *testing.T) {
	s := newTestStore(t)

	want := sampleDay("2025-09-01", "backend", "4")
	require.NoError(t, s.PutDay(want))

	got, err := s.GetDay("2025-09-01", "backend", "4")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetDay_Miss(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetDay("2025-09-01", "backend", "4")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutDay_Upsert(t *testing.T) {
	s := newTestStore(t)

	first := sampleDay("2025-09-01", "backend", "4")
	require.NoError(t, s.PutDay(first))

	second := first
	second.Isha.Iqamah = "19:50"
	require.NoError(t, s.PutDay(second))

	got, err := s.GetDay("2025-09-01", "backend", "4")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "19:50", got.Isha.Iqamah)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PrayerDays)
}

func TestGetDay_ProviderIsolation(t *testing.T) {
	s := newTestStore(t)

	backendDay := sampleDay("2025-09-01", "backend", "4")
	aladhanDay := sampleDay("2025-09-01", "aladhan", "Colombo,Sri Lanka")
	aladhanDay.Fajr.Azan = "04:50"
	require.NoError(t, s.PutDay(backendDay))
	require.NoError(t, s.PutDay(aladhanDay))

	got, err := s.GetDay("2025-09-01", "backend", "4")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "04:48", got.Fajr.Azan)

	got, err = s.GetDay("2025-09-01", "aladhan", "Colombo,Sri Lanka")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "04:50", got.Fajr.Azan)

	// Same provider, different locality: still a miss.
	got, err = s.GetDay("2025-09-01", "backend", "5")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutDays(t *testing.T) {
	s := newTestStore(t)

	days := []prayer.Day{
		sampleDay("2025-09-01", "backend", "4"),
		sampleDay("2025-09-02", "backend", "4"),
		sampleDay("2025-09-03", "backend", "4"),
	}
	written, err := s.PutDays(days)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	n, err := s.CountDays("backend", "4")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCountDaysInMonth(t *testing.T) {
	s := newTestStore(t)

	_, err := s.PutDays([]prayer.Day{
		sampleDay("2025-09-01", "backend", "4"),
		sampleDay("2025-09-02", "backend", "4"),
		sampleDay("2025-10-01", "backend", "4"),
	})
	require.NoError(t, err)

	n, err := s.CountDaysInMonth("2025-09", "backend", "4")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.CountDaysInMonth("2025-11", "backend", "4")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPutGetHijri(t *testing.T) {
	s := newTestStore(t)

	want := sampleHijri("2025-09-01")
	require.NoError(t, s.PutHijri(want))

	got, err := s.GetHijri("2025-09-01", "acju", "colombo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.MonthName, got.MonthName)
	assert.True(t, want.MonthStart.Equal(got.MonthStart))

	got, err = s.GetHijri("2025-09-02", "acju", "colombo")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatestHijriAtOrBefore(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutHijri(sampleHijri("2025-08-28")))
	require.NoError(t, s.PutHijri(sampleHijri("2025-09-01")))

	got, err := s.LatestHijriAtOrBefore("2025-09-05", "acju", "colombo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-09-01", got.GregorianDate)

	got, err = s.LatestHijriAtOrBefore("2025-09-01", "acju", "colombo")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2025-09-01", got.GregorianDate)

	got, err = s.LatestHijriAtOrBefore("2025-08-27", "acju", "colombo")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.LatestHijriAtOrBefore("2025-09-05", "acju", "kandy")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteOlderThan(t *testing.T) {
	s := newTestStore(t)

	old := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	fresh := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return old }
	require.NoError(t, s.PutDay(sampleDay("2025-07-01", "backend", "4")))
	require.NoError(t, s.PutHijri(sampleHijri("2025-07-01")))

	s.now = func() time.Time { return fresh }
	require.NoError(t, s.PutDay(sampleDay("2025-09-01", "backend", "4")))

	deleted, err := s.DeleteOlderThan(fresh.Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	got, err := s.GetDay("2025-07-01", "backend", "4")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.GetDay("2025-09-01", "backend", "4")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDeleteDaysBefore(t *testing.T) {
	s := newTestStore(t)

	_, err := s.PutDays([]prayer.Day{
		sampleDay("2025-08-30", "backend", "4"),
		sampleDay("2025-08-31", "backend", "4"),
		sampleDay("2025-09-01", "backend", "4"),
	})
	require.NoError(t, err)
	require.NoError(t, s.PutDay(sampleDay("2025-08-30", "aladhan", "Colombo,Sri Lanka")))

	deleted, err := s.DeleteDaysBefore("2025-09-01", "backend", "4")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// Other providers are untouched.
	got, err := s.GetDay("2025-08-30", "aladhan", "Colombo,Sri Lanka")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDeleteAllAndStats(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutDay(sampleDay("2025-09-01", "backend", "4")))
	require.NoError(t, s.PutHijri(sampleHijri("2025-09-01")))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{PrayerDays: 1, HijriDays: 1}, stats)

	require.NoError(t, s.DeleteAll())

	stats, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}
