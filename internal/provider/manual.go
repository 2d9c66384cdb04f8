package provider

import (
	"context"
	"time"

	"github.com/masjidboard/masjidboard/internal/prayer"
	"github.com/masjidboard/masjidboard/internal/settings"
)

// ManualID tags records synthesized from user-entered times.
const ManualID = "manual"

// Manual is not a network client: it synthesizes days from the current
// settings snapshot. It is always available and always fresh, so the
// coordinator never caches its output.
type Manual struct {
	snapshot func() settings.Settings
}

// NewManual creates a manual provider reading from the given snapshot
// source.
func NewManual(snapshot func() settings.Settings) *Manual {
	return &Manual{snapshot: snapshot}
}

func (m *Manual) ID() string { return ManualID }

// Horizon: nothing to prefetch; manual days are synthesized on demand.
func (m *Manual) Horizon(now time.Time) time.Time { return now }

// FetchDay synthesizes the day from the configured manual times. Iqamah
// times are left absent; the display layer applies the configured gaps.
func (m *Manual) FetchDay(_ context.Context, date time.Time, _ string) (prayer.Day, error) {
	return SynthesizeManualDay(m.snapshot(), date), nil
}

// FetchMonth synthesizes every day of the month from the same times.
func (m *Manual) FetchMonth(_ context.Context, year int, month time.Month, _ string) ([]prayer.Day, error) {
	snap := m.snapshot()
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	days := make([]prayer.Day, 0, last)
	for d := 1; d <= last; d++ {
		days = append(days, SynthesizeManualDay(snap, time.Date(year, month, d, 0, 0, 0, 0, time.UTC)))
	}
	return days, nil
}

// SynthesizeManualDay builds a day record from user-entered times. Unset
// prayers stay empty; the record is degraded rather than wrong.
func SynthesizeManualDay(s settings.Settings, date time.Time) prayer.Day {
	return prayer.Day{
		Date:     date.Format(prayer.DateLayout),
		Fajr:     prayer.Times{Azan: s.Manual.Fajr},
		Sunrise:  s.Manual.Sunrise,
		Dhuhr:    prayer.Times{Azan: s.Manual.Dhuhr},
		Asr:      prayer.Times{Azan: s.Manual.Asr},
		Maghrib:  prayer.Times{Azan: s.Manual.Maghrib},
		Isha:     prayer.Times{Azan: s.Manual.Isha},
		Location: "manual",
		Provider: ManualID,
	}
}
