package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDay() Day {
	return Day{
		Date:     "2025-09-01",
		Fajr:     Times{Azan: "04:48", Iqamah: "05:05"},
		Sunrise:  "06:05",
		Dhuhr:    Times{Azan: "12:14"},
		Asr:      Times{Azan: "15:23", Iqamah: "15:35"},
		Maghrib:  Times{Azan: "18:18"},
		Isha:     Times{Azan: "19:27", Iqamah: "19:45"},
		Location: "4",
		Provider: "backend",
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"05:30", 5*60 + 30, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{"15:02 (IST)", 15*60 + 2, false},
		{" 9:05 ", 9*60 + 5, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
		{"12", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "ParseClock(%q)", tt.raw)
			continue
		}
		require.NoError(t, err, "ParseClock(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "ParseClock(%q)", tt.raw)
	}
}

func TestClockAt(t *testing.T) {
	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	got, err := ClockAt("05:30", date, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 1, 5, 30, 0, 0, time.UTC), got)
}

func TestAddMinutes(t *testing.T) {
	got, err := AddMinutes("05:30", 20)
	require.NoError(t, err)
	assert.Equal(t, "05:50", got)

	got, err = AddMinutes("23:50", 20)
	require.NoError(t, err)
	assert.Equal(t, "00:10", got)

	_, err = AddMinutes("bogus", 5)
	assert.Error(t, err)
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validDay().Validate())
}

func TestValidate_AzanOrder(t *testing.T) {
	d := validDay()
	d.Asr.Azan = "11:00" // before dhuhr
	assert.Error(t, d.Validate())
}

func TestValidate_IqamahBeforeAzan(t *testing.T) {
	d := validDay()
	d.Isha.Iqamah = "19:00"
	assert.Error(t, d.Validate())
}

func TestValidate_SkipsEmptyFields(t *testing.T) {
	d := validDay()
	d.Sunrise = ""
	d.Fajr.Iqamah = ""
	require.NoError(t, d.Validate())
}

func TestEmptyDay(t *testing.T) {
	d := Empty(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "backend", "4")
	assert.True(t, d.IsEmpty())
	assert.Equal(t, "2025-09-01", d.Date)
	assert.Equal(t, "backend", d.Provider)
	require.NoError(t, d.Validate())
	assert.False(t, validDay().IsEmpty())
}

func TestAt(t *testing.T) {
	d := validDay()
	assert.Equal(t, Times{Azan: "04:48", Iqamah: "05:05"}, d.At(Fajr))
	assert.Equal(t, Times{Azan: "06:05"}, d.At(Sunrise))
	assert.Equal(t, Times{}, d.At(ID("bogus")))
}

func TestCanonicalOrder(t *testing.T) {
	assert.Len(t, CanonicalOrder, 6)
	assert.Len(t, TimedPrayers, 5)
	assert.NotContains(t, TimedPrayers, Sunrise)
	for _, id := range CanonicalOrder {
		name, ok := Names[id]
		assert.True(t, ok, "missing name for %s", id)
		assert.NotEmpty(t, name.En)
		assert.NotEmpty(t, name.Ar)
	}
}
