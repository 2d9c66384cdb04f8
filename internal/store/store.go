// Package store is the durable on-device cache of resolved prayer days
// and Hijri dates. Keys are composite and provider-qualified: switching
// provider never serves another provider's record for the same date.
//
// SQLite (WAL mode) backs the store; rows carry created_at for the
// age-based eviction sweep. Reads never fail by age — only the prefetch
// and coordinator freshness checks decide whether to refetch.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/masjidboard/masjidboard/internal/hijri"
	"github.com/masjidboard/masjidboard/internal/prayer"
)

const schema = `
CREATE TABLE IF NOT EXISTS prayer_days (
	date       TEXT NOT NULL,
	provider   TEXT NOT NULL,
	location   TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (date, provider, location)
);

CREATE TABLE IF NOT EXISTS hijri_days (
	gregorian_date TEXT NOT NULL,
	provider       TEXT NOT NULL,
	region         TEXT NOT NULL,
	payload        TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL,
	PRIMARY KEY (gregorian_date, provider, region)
);
`

// Store wraps the sqlite handle. Writes are serialized through a mutex;
// same-key writes are last-write-wins.
type Store struct {
	db  *sqlx.DB
	mu  sync.Mutex
	log zerolog.Logger

	// now is stubbed in tests to pin created_at.
	now func() time.Time
}

// Stats reports cache row counts for the settings screen.
type Stats struct {
	PrayerDays int `json:"prayer_days"`
	HijriDays  int `json:"hijri_days"`
}

// Open opens (or creates) the store at path and migrates the schema.
// Pass ":memory:" for an ephemeral store in tests.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open cache database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot migrate cache schema: %w", err)
	}

	return &Store{
		db:  db,
		log: log.With().Str("component", "store").Logger(),
		now: time.Now,
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutDay upserts one prayer day (replace-on-conflict).
func (s *Store) PutDay(day prayer.Day) error {
	payload, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("marshal prayer day: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`
		INSERT INTO prayer_days (date, provider, location, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (date, provider, location) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		day.Date, day.Provider, day.Location, string(payload), s.now().UTC())
	if err != nil {
		return fmt.Errorf("put prayer day %s: %w", day.Date, err)
	}
	return nil
}

// PutDays upserts a batch in one transaction and returns the number of
// rows written.
func (s *Store) PutDays(days []prayer.Day) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin put batch: %w", err)
	}
	defer tx.Rollback()

	written := 0
	createdAt := s.now().UTC()
	for _, day := range days {
		payload, err := json.Marshal(day)
		if err != nil {
			return 0, fmt.Errorf("marshal prayer day %s: %w", day.Date, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO prayer_days (date, provider, location, payload, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (date, provider, location) DO UPDATE SET
				payload = excluded.payload,
				created_at = excluded.created_at`,
			day.Date, day.Provider, day.Location, string(payload), createdAt); err != nil {
			return 0, fmt.Errorf("put prayer day %s: %w", day.Date, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit put batch: %w", err)
	}
	return written, nil
}

// GetDay returns the exact-match cached day, or nil on a miss.
func (s *Store) GetDay(date, providerID, location string) (*prayer.Day, error) {
	var payload string
	err := s.db.Get(&payload, `
		SELECT payload FROM prayer_days
		WHERE date = ? AND provider = ? AND location = ?`,
		date, providerID, location)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get prayer day %s: %w", date, err)
	}

	var day prayer.Day
	if err := json.Unmarshal([]byte(payload), &day); err != nil {
		return nil, fmt.Errorf("corrupt prayer day payload %s: %w", date, err)
	}
	return &day, nil
}

// PutHijri upserts one Hijri date (replace-on-conflict; records are
// superseded, never merged).
func (s *Store) PutHijri(day hijri.Day) error {
	payload, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("marshal hijri day: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`
		INSERT INTO hijri_days (gregorian_date, provider, region, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (gregorian_date, provider, region) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		day.GregorianDate, day.Provider, day.Region, string(payload), s.now().UTC())
	if err != nil {
		return fmt.Errorf("put hijri day %s: %w", day.GregorianDate, err)
	}
	return nil
}

// GetHijri returns the exact-match cached Hijri date, or nil on a miss.
func (s *Store) GetHijri(gregorianDate, providerID, region string) (*hijri.Day, error) {
	var payload string
	err := s.db.Get(&payload, `
		SELECT payload FROM hijri_days
		WHERE gregorian_date = ? AND provider = ? AND region = ?`,
		gregorianDate, providerID, region)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get hijri day %s: %w", gregorianDate, err)
	}

	var day hijri.Day
	if err := json.Unmarshal([]byte(payload), &day); err != nil {
		return nil, fmt.Errorf("corrupt hijri payload %s: %w", gregorianDate, err)
	}
	return &day, nil
}

// LatestHijriAtOrBefore returns the most recent cached Hijri date at or
// before the given date for provider+region, or nil when none exists.
// ISO dates sort lexicographically, so string comparison is date order.
func (s *Store) LatestHijriAtOrBefore(gregorianDate, providerID, region string) (*hijri.Day, error) {
	var payload string
	err := s.db.Get(&payload, `
		SELECT payload FROM hijri_days
		WHERE gregorian_date <= ? AND provider = ? AND region = ?
		ORDER BY gregorian_date DESC
		LIMIT 1`,
		gregorianDate, providerID, region)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest hijri at or before %s: %w", gregorianDate, err)
	}

	var day hijri.Day
	if err := json.Unmarshal([]byte(payload), &day); err != nil {
		return nil, fmt.Errorf("corrupt hijri payload: %w", err)
	}
	return &day, nil
}

// DeleteOlderThan removes rows created before cutoff from both tables and
// returns the number deleted. This is the periodic eviction sweep.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, table := range []string{"prayer_days", "hijri_days"} {
		res, err := s.db.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE created_at < ?", table), cutoff.UTC())
		if err != nil {
			return total, fmt.Errorf("evict %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if total > 0 {
		s.log.Debug().Int64("rows", total).Time("cutoff", cutoff).Msg("evicted aged cache rows")
	}
	return total, nil
}

// DeleteDaysBefore removes prayer days dated before date for one
// provider+location.
func (s *Store) DeleteDaysBefore(date, providerID, location string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		DELETE FROM prayer_days
		WHERE date < ? AND provider = ? AND location = ?`,
		date, providerID, location)
	if err != nil {
		return 0, fmt.Errorf("delete days before %s: %w", date, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteAll clears both tables.
func (s *Store) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"prayer_days", "hijri_days"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// CountDays returns the number of cached prayer days for provider+location.
func (s *Store) CountDays(providerID, location string) (int, error) {
	var n int
	err := s.db.Get(&n, `
		SELECT COUNT(*) FROM prayer_days WHERE provider = ? AND location = ?`,
		providerID, location)
	if err != nil {
		return 0, fmt.Errorf("count prayer days: %w", err)
	}
	return n, nil
}

// CountDaysInMonth returns the cached day count for a YYYY-MM month.
func (s *Store) CountDaysInMonth(yearMonth, providerID, location string) (int, error) {
	var n int
	err := s.db.Get(&n, `
		SELECT COUNT(*) FROM prayer_days
		WHERE date LIKE ? AND provider = ? AND location = ?`,
		yearMonth+"-%", providerID, location)
	if err != nil {
		return 0, fmt.Errorf("count month %s: %w", yearMonth, err)
	}
	return n, nil
}

// Stats returns total row counts across all providers.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.Get(&st.PrayerDays, "SELECT COUNT(*) FROM prayer_days"); err != nil {
		return Stats{}, fmt.Errorf("count prayer days: %w", err)
	}
	if err := s.db.Get(&st.HijriDays, "SELECT COUNT(*) FROM hijri_days"); err != nil {
		return Stats{}, fmt.Errorf("count hijri days: %w", err)
	}
	return st, nil
}
