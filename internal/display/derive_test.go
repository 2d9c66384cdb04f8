package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masjidboard/masjidboard/internal/prayer"
	"github.com/masjidboard/masjidboard/internal/settings"
)

// 2025-09-04 is a Thursday.
const thursday = "2025-09-04"

func displayDay(date string) prayer.Day {
	return prayer.Day{
		Date:     date,
		Fajr:     prayer.Times{Azan: "05:30"},
		Sunrise:  "06:05",
		Dhuhr:    prayer.Times{Azan: "12:14"},
		Asr:      prayer.Times{Azan: "15:23", Iqamah: "15:45"},
		Maghrib:  prayer.Times{Azan: "18:18"},
		Isha:     prayer.Times{Azan: "19:27"},
		Location: "4",
		Provider: "backend",
	}
}

func defaultConfig() Config {
	return ConfigFrom(settings.Defaults())
}

func at(date, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDerive_AllEntries(t *testing.T) {
	now := at(thursday, "04:00")
	entries, next, err := Derive(displayDay(thursday), defaultConfig(), now)
	require.NoError(t, err)

	require.Len(t, entries, 6)
	for i, id := range prayer.CanonicalOrder {
		assert.Equal(t, id, entries[i].ID)
		assert.NotEmpty(t, entries[i].NameEn)
	}

	require.NotNil(t, next)
	assert.Equal(t, prayer.Fajr, *next)
	assert.True(t, entries[0].IsNext)
}

func TestDerive_GapIqamah(t *testing.T) {
	// No published iqamah: azan plus the configured gap (fajr gap is 20).
	entries, _, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "04:00"))
	require.NoError(t, err)

	assert.Equal(t, at(thursday, "05:30"), entries[0].Azan)
	assert.Equal(t, at(thursday, "05:50"), entries[0].Iqamah)
}

func TestDerive_ExplicitIqamahWins(t *testing.T) {
	// Asr publishes 15:45; the 15-minute gap would give 15:38.
	entries, _, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "04:00"))
	require.NoError(t, err)

	assert.Equal(t, at(thursday, "15:45"), entries[3].Iqamah)
}

func TestDerive_SunriseHasNoIqamah(t *testing.T) {
	entries, _, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "04:00"))
	require.NoError(t, err)

	assert.Equal(t, prayer.Sunrise, entries[1].ID)
	assert.Equal(t, at(thursday, "06:05"), entries[1].Azan)
	assert.True(t, entries[1].Iqamah.IsZero())
}

func TestDerive_NightGatheringShiftsIsha(t *testing.T) {
	cfg := defaultConfig()
	cfg.NightGatheringDelay = true

	// Thursday: isha iqamah is azan + gap(15) + delay(30).
	entries, _, err := Derive(displayDay(thursday), cfg, at(thursday, "04:00"))
	require.NoError(t, err)
	assert.Equal(t, at(thursday, "20:12"), entries[5].Iqamah)

	// Friday: no shift.
	friday := "2025-09-05"
	entries, _, err = Derive(displayDay(friday), cfg, at(friday, "04:00"))
	require.NoError(t, err)
	assert.Equal(t, at(friday, "19:42"), entries[5].Iqamah)
}

func TestDerive_NightGatheringDisabled(t *testing.T) {
	entries, _, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "04:00"))
	require.NoError(t, err)
	assert.Equal(t, at(thursday, "19:42"), entries[5].Iqamah)
}

func TestDerive_NextSkipsSunrise(t *testing.T) {
	// Between fajr and sunrise the next prayer is dhuhr, never sunrise.
	_, next, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "05:45"))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, prayer.Dhuhr, *next)
}

func TestDerive_NextAtExactAzan(t *testing.T) {
	// An azan happening right now has not passed yet.
	_, next, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "12:14"))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, prayer.Dhuhr, *next)
}

func TestDerive_AllPrayersPassed(t *testing.T) {
	entries, next, err := Derive(displayDay(thursday), defaultConfig(), at(thursday, "23:00"))
	require.NoError(t, err)
	assert.Nil(t, next)
	for _, e := range entries {
		assert.False(t, e.IsNext)
	}
}

func TestDerive_EmptyDay(t *testing.T) {
	empty := prayer.Empty(time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC), "backend", "4")
	_, _, err := Derive(empty, defaultConfig(), at(thursday, "04:00"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestDerive_MissingSunriseTolerated(t *testing.T) {
	day := displayDay(thursday)
	day.Sunrise = ""

	entries, _, err := Derive(day, defaultConfig(), at(thursday, "04:00"))
	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.True(t, entries[1].Azan.IsZero())
}

func TestDerive_MissingTimedAzanFails(t *testing.T) {
	day := displayDay(thursday)
	day.Maghrib.Azan = ""

	_, _, err := Derive(day, defaultConfig(), at(thursday, "04:00"))
	assert.Error(t, err)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "2h 5m", FormatRemaining(2*time.Hour+5*time.Minute))
	assert.Equal(t, "45m", FormatRemaining(45*time.Minute))
	assert.Equal(t, "0m", FormatRemaining(-time.Minute))
}

func TestTimeRemaining(t *testing.T) {
	e := Entry{Azan: at(thursday, "12:14")}
	assert.Equal(t, 14*time.Minute, TimeRemaining(e, at(thursday, "12:00")))
}
