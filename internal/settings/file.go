package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	configDirName  = "masjidboard"
	configFileName = "config.json"
)

// ValidKeys lists all keys that can be read or written via Set/Get.
var ValidKeys = []string{
	"provider", "zone", "city", "country",
	"manual.fajr", "manual.sunrise", "manual.dhuhr", "manual.asr", "manual.maghrib", "manual.isha",
	"gap.fajr", "gap.dhuhr", "gap.asr", "gap.maghrib", "gap.isha",
	"night_delay", "night_delay_minutes", "night_weekday",
	"cache_dir", "log_level",
}

// Dir returns the config directory, respecting $XDG_CONFIG_HOME.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadFrom reads settings from a specific file path. A missing file is
// not an error: defaults are returned so first run works out of the box.
func LoadFrom(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}

// SaveTo writes settings to a specific file path, creating the directory
// if needed.
func (s Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create settings directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Set assigns a key to a string value, parsing it into the right type.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "provider":
		p := Provider(strings.ToLower(value))
		switch p {
		case ProviderManual, ProviderBackend, ProviderAladhan, ProviderACJU:
			s.Provider = p
		default:
			return fmt.Errorf("unknown provider %q; valid: manual, backend, aladhan, acju", value)
		}
	case "zone":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid zone %q: must be a non-negative integer", value)
		}
		s.Zone = v
	case "city":
		s.City = value
	case "country":
		s.Country = value
	case "manual.fajr", "manual.sunrise", "manual.dhuhr", "manual.asr", "manual.maghrib", "manual.isha":
		return s.setManual(strings.TrimPrefix(key, "manual."), value)
	case "gap.fajr", "gap.dhuhr", "gap.asr", "gap.maghrib", "gap.isha":
		return s.setGap(strings.TrimPrefix(key, "gap."), value)
	case "night_delay":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid night_delay %q: must be true or false", value)
		}
		s.NightGatheringDelay = v
	case "night_delay_minutes":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 180 {
			return fmt.Errorf("invalid night_delay_minutes %q: must be 0-180", value)
		}
		s.NightGatheringDelayMinutes = v
	case "night_weekday":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 6 {
			return fmt.Errorf("invalid night_weekday %q: must be 0 (Sunday) to 6 (Saturday)", value)
		}
		s.NightGatheringWeekday = v
	case "cache_dir":
		s.CacheDir = value
	case "log_level":
		s.LogLevel = value
	default:
		return fmt.Errorf("unknown settings key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}
	return s.Validate()
}

func (s *Settings) setManual(name, value string) error {
	var field *string
	switch name {
	case "fajr":
		field = &s.Manual.Fajr
	case "sunrise":
		field = &s.Manual.Sunrise
	case "dhuhr":
		field = &s.Manual.Dhuhr
	case "asr":
		field = &s.Manual.Asr
	case "maghrib":
		field = &s.Manual.Maghrib
	case "isha":
		field = &s.Manual.Isha
	}
	old := *field
	*field = value
	if err := s.Validate(); err != nil {
		*field = old
		return fmt.Errorf("invalid manual time %q for %s: must be HH:MM", value, name)
	}
	return nil
}

func (s *Settings) setGap(name, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil || v < 0 || v > 120 {
		return fmt.Errorf("invalid gap %q for %s: must be 0-120 minutes", value, name)
	}
	switch name {
	case "fajr":
		s.Gaps.Fajr = v
	case "dhuhr":
		s.Gaps.Dhuhr = v
	case "asr":
		s.Gaps.Asr = v
	case "maghrib":
		s.Gaps.Maghrib = v
	case "isha":
		s.Gaps.Isha = v
	}
	return nil
}

// Get returns the string form of a settings key.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "provider":
		return string(s.Provider), nil
	case "zone":
		return strconv.Itoa(s.Zone), nil
	case "city":
		return s.City, nil
	case "country":
		return s.Country, nil
	case "manual.fajr":
		return s.Manual.Fajr, nil
	case "manual.sunrise":
		return s.Manual.Sunrise, nil
	case "manual.dhuhr":
		return s.Manual.Dhuhr, nil
	case "manual.asr":
		return s.Manual.Asr, nil
	case "manual.maghrib":
		return s.Manual.Maghrib, nil
	case "manual.isha":
		return s.Manual.Isha, nil
	case "gap.fajr":
		return strconv.Itoa(s.Gaps.Fajr), nil
	case "gap.dhuhr":
		return strconv.Itoa(s.Gaps.Dhuhr), nil
	case "gap.asr":
		return strconv.Itoa(s.Gaps.Asr), nil
	case "gap.maghrib":
		return strconv.Itoa(s.Gaps.Maghrib), nil
	case "gap.isha":
		return strconv.Itoa(s.Gaps.Isha), nil
	case "night_delay":
		return strconv.FormatBool(s.NightGatheringDelay), nil
	case "night_delay_minutes":
		return strconv.Itoa(s.NightGatheringDelayMinutes), nil
	case "night_weekday":
		return strconv.Itoa(s.NightGatheringWeekday), nil
	case "cache_dir":
		return s.CacheDir, nil
	case "log_level":
		return s.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown settings key %q", key)
	}
}
