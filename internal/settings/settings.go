// Package settings holds the user configuration the engine reads:
// active provider, locality keys, manual times, iqamah gaps, and the
// night-gathering delay rule.
//
// Settings are stored as JSON at ~/.config/masjidboard/config.json
// (XDG-compliant). The engine never reads them ambiently: callers take a
// Snapshot and subscribe for change notifications.
package settings

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/masjidboard/masjidboard/internal/prayer"
)

// Provider selects which data source resolves prayer days.
type Provider string

const (
	ProviderManual  Provider = "manual"
	ProviderBackend Provider = "backend"
	ProviderAladhan Provider = "aladhan"
	ProviderACJU    Provider = "acju"
)

// Providers lists the selectable providers.
var Providers = []Provider{ProviderManual, ProviderBackend, ProviderAladhan, ProviderACJU}

// ManualTimes holds user-entered azan times for the manual provider.
type ManualTimes struct {
	Fajr    string `json:"fajr,omitempty" validate:"omitempty,clock"`
	Sunrise string `json:"sunrise,omitempty" validate:"omitempty,clock"`
	Dhuhr   string `json:"dhuhr,omitempty" validate:"omitempty,clock"`
	Asr     string `json:"asr,omitempty" validate:"omitempty,clock"`
	Maghrib string `json:"maghrib,omitempty" validate:"omitempty,clock"`
	Isha    string `json:"isha,omitempty" validate:"omitempty,clock"`
}

// IqamahGaps holds per-prayer minutes between azan and iqamah, applied by
// the display layer when a provider publishes no iqamah.
type IqamahGaps struct {
	Fajr    int `json:"fajr" validate:"gte=0,lte=120"`
	Dhuhr   int `json:"dhuhr" validate:"gte=0,lte=120"`
	Asr     int `json:"asr" validate:"gte=0,lte=120"`
	Maghrib int `json:"maghrib" validate:"gte=0,lte=120"`
	Isha    int `json:"isha" validate:"gte=0,lte=120"`
}

// For returns the configured gap for the given prayer. Sunrise has none.
func (g IqamahGaps) For(id prayer.ID) int {
	switch id {
	case prayer.Fajr:
		return g.Fajr
	case prayer.Dhuhr:
		return g.Dhuhr
	case prayer.Asr:
		return g.Asr
	case prayer.Maghrib:
		return g.Maghrib
	case prayer.Isha:
		return g.Isha
	}
	return 0
}

// Settings is the full user configuration.
type Settings struct {
	Provider Provider `json:"provider" validate:"required,oneof=manual backend aladhan acju"`

	// Zone is the numeric locality id used by the backend and ACJU
	// providers.
	Zone int `json:"zone" validate:"gte=0"`

	// City and Country identify the locality for the Aladhan provider.
	// When City is empty the engine falls back to IP geolocation.
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`

	Manual ManualTimes `json:"manual"`
	Gaps   IqamahGaps  `json:"iqamah_gaps"`

	// NightGatheringDelay shifts the Isha iqamah later on the configured
	// weekday (computed at display time, never persisted).
	NightGatheringDelay        bool `json:"night_gathering_delay"`
	NightGatheringDelayMinutes int  `json:"night_gathering_delay_minutes" validate:"gte=0,lte=180"`
	NightGatheringWeekday      int  `json:"night_gathering_weekday" validate:"gte=0,lte=6"`

	CacheDir string `json:"cache_dir,omitempty"`
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=trace debug info warn error"`
}

// Defaults returns the configuration used before the user changes anything.
func Defaults() Settings {
	return Settings{
		Provider: ProviderAladhan,
		Gaps: IqamahGaps{
			Fajr:    20,
			Dhuhr:   15,
			Asr:     15,
			Maghrib: 10,
			Isha:    15,
		},
		NightGatheringDelayMinutes: 30,
		NightGatheringWeekday:      4, // Thursday
		LogLevel:                   "info",
	}
}

// LocationKey returns the provider-specific locality key records are
// cached under.
func (s Settings) LocationKey() string {
	switch s.Provider {
	case ProviderManual:
		return "manual"
	case ProviderAladhan:
		if s.Country != "" {
			return s.City + "," + s.Country
		}
		return s.City
	default:
		return strconv.Itoa(s.Zone)
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "clock" accepts HH:MM strings, tolerant of the suffixes providers
	// sometimes append.
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := prayer.ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the settings against their declared constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}
