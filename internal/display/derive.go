// Package display derives what the board shows from a resolved prayer
// day: iqamah times layered from the configured gaps, the weekly
// night-gathering shift, and the next-prayer pointer. Pure data in, data
// out; nothing here touches the network or the store.
package display

import (
	"errors"
	"fmt"
	"time"

	"github.com/masjidboard/masjidboard/internal/prayer"
	"github.com/masjidboard/masjidboard/internal/settings"
)

// ErrNoData marks a degraded day that has nothing to display.
var ErrNoData = errors.New("no prayer data for date")

// Entry is one display row. Not persisted.
type Entry struct {
	ID     prayer.ID
	NameEn string
	NameAr string
	Azan   time.Time
	Iqamah time.Time // zero for sunrise
	IsNext bool
}

// Config is the display-time configuration slice.
type Config struct {
	Gaps                       settings.IqamahGaps
	NightGatheringDelay        bool
	NightGatheringWeekday      time.Weekday
	NightGatheringDelayMinutes int
}

// ConfigFrom extracts the display configuration from settings.
func ConfigFrom(s settings.Settings) Config {
	return Config{
		Gaps:                       s.Gaps,
		NightGatheringDelay:        s.NightGatheringDelay,
		NightGatheringWeekday:      time.Weekday(s.NightGatheringWeekday),
		NightGatheringDelayMinutes: s.NightGatheringDelayMinutes,
	}
}

// Derive builds the ordered display entries and the next-prayer pointer
// for the given instant.
//
// Iqamah is the provider's explicit time when published, otherwise azan
// plus the configured gap. On the configured weekly occasion the Isha
// iqamah is shifted later by the configured delay; the shift exists only
// here, never in the stored day. The next prayer is the first timed
// prayer (sunrise excluded) whose azan is at or after now; a prayer whose
// azan equals now has not yet passed. Nil means all prayers are done for
// the day.
func Derive(day prayer.Day, cfg Config, now time.Time) ([]Entry, *prayer.ID, error) {
	if day.IsEmpty() {
		return nil, nil, ErrNoData
	}

	loc := now.Location()
	date, err := time.ParseInLocation(prayer.DateLayout, day.Date, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid day date %q: %w", day.Date, err)
	}

	entries := make([]Entry, 0, len(prayer.CanonicalOrder))
	for _, id := range prayer.CanonicalOrder {
		t := day.At(id)
		name := prayer.Names[id]
		e := Entry{ID: id, NameEn: name.En, NameAr: name.Ar}

		if t.Azan == "" {
			if id == prayer.Sunrise {
				// Some providers omit sunrise; the row renders blank.
				entries = append(entries, e)
				continue
			}
			return nil, nil, fmt.Errorf("day %s missing %s azan", day.Date, id)
		}

		azan, err := prayer.ClockAt(t.Azan, date, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("day %s %s azan: %w", day.Date, id, err)
		}
		e.Azan = azan

		if id != prayer.Sunrise {
			if t.Iqamah != "" {
				iqamah, err := prayer.ClockAt(t.Iqamah, date, loc)
				if err != nil {
					return nil, nil, fmt.Errorf("day %s %s iqamah: %w", day.Date, id, err)
				}
				e.Iqamah = iqamah
			} else {
				e.Iqamah = azan.Add(time.Duration(cfg.Gaps.For(id)) * time.Minute)
			}

			if id == prayer.Isha && cfg.NightGatheringDelay && date.Weekday() == cfg.NightGatheringWeekday {
				e.Iqamah = e.Iqamah.Add(time.Duration(cfg.NightGatheringDelayMinutes) * time.Minute)
			}
		}

		entries = append(entries, e)
	}

	next := nextPrayer(entries, now)
	if next != nil {
		for i := range entries {
			if entries[i].ID == *next {
				entries[i].IsNext = true
			}
		}
	}
	return entries, next, nil
}

// nextPrayer returns the first eligible prayer whose azan has not
// strictly elapsed, or nil when all have.
func nextPrayer(entries []Entry, now time.Time) *prayer.ID {
	for i := range entries {
		if entries[i].ID == prayer.Sunrise {
			continue
		}
		if entries[i].Azan.IsZero() {
			continue
		}
		if !entries[i].Azan.Before(now) {
			id := entries[i].ID
			return &id
		}
	}
	return nil
}

// TimeRemaining returns the duration until the given entry's azan.
func TimeRemaining(e Entry, now time.Time) time.Duration {
	return e.Azan.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym", or "Ym" under an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
