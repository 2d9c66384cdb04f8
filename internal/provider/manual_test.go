package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masjidboard/masjidboard/internal/settings"
)

func manualSettings() settings.Settings {
	s := settings.Defaults()
	s.Provider = settings.ProviderManual
	s.Manual = settings.ManualTimes{
		Fajr:    "04:45",
		Sunrise: "06:05",
		Dhuhr:   "12:15",
		Asr:     "15:25",
		Maghrib: "18:20",
		Isha:    "19:30",
	}
	return s
}

func TestManualFetchDay(t *testing.T) {
	m := NewManual(manualSettings)

	day, err := m.FetchDay(context.Background(), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	assert.Equal(t, "2025-09-01", day.Date)
	assert.Equal(t, "04:45", day.Fajr.Azan)
	assert.Empty(t, day.Fajr.Iqamah)
	assert.Equal(t, "19:30", day.Isha.Azan)
	assert.Equal(t, ManualID, day.Provider)
	assert.Equal(t, "manual", day.Location)
}

func TestManualFetchDay_PartialTimes(t *testing.T) {
	m := NewManual(func() settings.Settings {
		s := settings.Defaults()
		s.Manual.Fajr = "04:45"
		return s
	})

	day, err := m.FetchDay(context.Background(), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	assert.Equal(t, "04:45", day.Fajr.Azan)
	assert.Empty(t, day.Dhuhr.Azan)
	assert.False(t, day.IsEmpty())
}

func TestManualFetchMonth(t *testing.T) {
	m := NewManual(manualSettings)

	days, err := m.FetchMonth(context.Background(), 2025, time.September, "")
	require.NoError(t, err)
	require.Len(t, days, 30)
	assert.Equal(t, "2025-09-01", days[0].Date)
	assert.Equal(t, "2025-09-30", days[29].Date)
	for _, d := range days {
		assert.Equal(t, "04:45", d.Fajr.Azan)
	}
}

func TestManualHorizon(t *testing.T) {
	m := NewManual(manualSettings)
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now, m.Horizon(now))
}
