// Package prayer defines the canonical prayer-day model shared by the
// provider clients, the local store, and the display layer.
package prayer

import (
	"fmt"
	"time"
)

// ID identifies a prayer or daily event.
type ID string

const (
	Fajr    ID = "fajr"
	Sunrise ID = "sunrise"
	Dhuhr   ID = "dhuhr"
	Asr     ID = "asr"
	Maghrib ID = "maghrib"
	Isha    ID = "isha"
)

// CanonicalOrder lists the six daily entries in chronological order.
var CanonicalOrder = []ID{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// TimedPrayers are the five congregational prayers. Sunrise is excluded:
// it has no iqamah and is never eligible as "next prayer".
var TimedPrayers = []ID{Fajr, Dhuhr, Asr, Maghrib, Isha}

// Name holds the localized display name pair for a prayer.
type Name struct {
	En string
	Ar string
}

// Names maps every entry to its display names.
var Names = map[ID]Name{
	Fajr:    {En: "Fajr", Ar: "الفجر"},
	Sunrise: {En: "Sunrise", Ar: "الشروق"},
	Dhuhr:   {En: "Dhuhr", Ar: "الظهر"},
	Asr:     {En: "Asr", Ar: "العصر"},
	Maghrib: {En: "Maghrib", Ar: "المغرب"},
	Isha:    {En: "Isha", Ar: "العشاء"},
}

// DateLayout is the ISO form used for Day.Date keys.
const DateLayout = "2006-01-02"

// Times holds one prayer's azan time and optional iqamah time as HH:MM
// strings. An empty Iqamah means the provider does not publish one; the
// display layer fills it from the configured gap.
type Times struct {
	Azan   string `json:"azan"`
	Iqamah string `json:"iqamah,omitempty"`
}

// Day is one calendar day's canonical prayer data, as resolved from a
// single provider for a single locality.
type Day struct {
	Date      string `json:"date"` // YYYY-MM-DD, immutable key component
	Fajr      Times  `json:"fajr"`
	Sunrise   string `json:"sunrise"`
	Dhuhr     Times  `json:"dhuhr"`
	Asr       Times  `json:"asr"`
	Maghrib   Times  `json:"maghrib"`
	Isha      Times  `json:"isha"`
	HijriDate string `json:"hijri_date,omitempty"`
	Location  string `json:"location"` // provider-specific zone/region key
	Provider  string `json:"provider"`
}

// Empty returns a degraded-but-dated Day. The UI shows it as "no data",
// distinct from a resolution error.
func Empty(date time.Time, providerID, location string) Day {
	return Day{
		Date:     date.Format(DateLayout),
		Location: location,
		Provider: providerID,
	}
}

// IsEmpty reports whether the day carries no prayer times at all.
func (d Day) IsEmpty() bool {
	return d.Fajr.Azan == "" && d.Dhuhr.Azan == "" && d.Asr.Azan == "" &&
		d.Maghrib.Azan == "" && d.Isha.Azan == ""
}

// At returns the times for the given prayer id. Sunrise is reported with
// an empty iqamah.
func (d Day) At(id ID) Times {
	switch id {
	case Fajr:
		return d.Fajr
	case Sunrise:
		return Times{Azan: d.Sunrise}
	case Dhuhr:
		return d.Dhuhr
	case Asr:
		return d.Asr
	case Maghrib:
		return d.Maghrib
	case Isha:
		return d.Isha
	}
	return Times{}
}

// Validate checks the day's internal invariants: azan times monotonically
// non-decreasing in canonical order, and each iqamah at or after its azan.
// Empty fields are skipped so degraded and iqamah-less records pass.
func (d Day) Validate() error {
	prev := -1
	prevID := ID("")
	for _, id := range CanonicalOrder {
		t := d.At(id)
		if t.Azan == "" {
			continue
		}
		azan, err := ParseClock(t.Azan)
		if err != nil {
			return fmt.Errorf("%s azan: %w", id, err)
		}
		if azan < prev {
			return fmt.Errorf("%s azan %s is before %s", id, t.Azan, prevID)
		}
		prev = azan
		prevID = id
		if t.Iqamah == "" {
			continue
		}
		iqamah, err := ParseClock(t.Iqamah)
		if err != nil {
			return fmt.Errorf("%s iqamah: %w", id, err)
		}
		if iqamah < azan {
			return fmt.Errorf("%s iqamah %s is before its azan %s", id, t.Iqamah, t.Azan)
		}
	}
	return nil
}
