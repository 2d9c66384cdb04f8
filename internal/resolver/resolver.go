// Package resolver is the resolution coordinator: given the current
// settings it selects the active provider, serves from the local store
// when a record exists, fetches and writes back on a miss, and degrades
// to an empty-but-dated record when the provider has nothing.
package resolver

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/masjidboard/masjidboard/internal/fault"
	"github.com/masjidboard/masjidboard/internal/geo"
	"github.com/masjidboard/masjidboard/internal/hijri"
	"github.com/masjidboard/masjidboard/internal/prayer"
	"github.com/masjidboard/masjidboard/internal/provider"
	"github.com/masjidboard/masjidboard/internal/settings"
	"github.com/masjidboard/masjidboard/internal/store"
)

// SettingsSource is the read-only view of user configuration the
// coordinator consumes. Settings changes arrive through Invalidate, not
// through polling.
type SettingsSource interface {
	Snapshot() settings.Settings
}

// hijriSource is the slice of the calendar scraper used for Hijri
// resolution.
type hijriSource interface {
	Lookup(ctx context.Context, date time.Time, region string) (hijri.Day, error)
}

// Target describes the currently active provider for prefetch.
type Target struct {
	Provider     string
	Location     string
	Horizon      time.Time
	Prefetchable bool // manual days are synthesized, never cached
}

// flight tracks one in-progress fetch so duplicate concurrent requests
// for the same key coalesce onto a single provider call.
type flight struct {
	done chan struct{}
	day  prayer.Day
	err  error
}

// Resolver coordinates providers, the local store, and settings.
type Resolver struct {
	store    *store.Store
	settings SettingsSource
	clients  map[settings.Provider]provider.Client
	hijriSrc hijriSource
	geo      *geo.Detector
	log      zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*flight
	geoLoc   *geo.Location
}

// Option customizes a Resolver, mainly for tests.
type Option func(*Resolver)

// WithClient replaces the client for one provider.
func WithClient(p settings.Provider, c provider.Client) Option {
	return func(r *Resolver) { r.clients[p] = c }
}

// WithHijriSource replaces the calendar scraper.
func WithHijriSource(h hijriSource) Option {
	return func(r *Resolver) { r.hijriSrc = h }
}

// WithGeoDetector replaces the geolocation detector.
func WithGeoDetector(d *geo.Detector) Option {
	return func(r *Resolver) { r.geo = d }
}

// New builds a resolver with the default provider clients.
func New(st *store.Store, src SettingsSource, log zerolog.Logger, opts ...Option) *Resolver {
	scraper := hijri.NewScraper(log)
	r := &Resolver{
		store:    st,
		settings: src,
		clients: map[settings.Provider]provider.Client{
			settings.ProviderBackend: provider.NewBackend(log),
			settings.ProviderAladhan: provider.NewAladhan(log),
			settings.ProviderACJU:    provider.NewACJU(scraper, log),
			settings.ProviderManual:  provider.NewManual(src.Snapshot),
		},
		hijriSrc: scraper,
		geo:      geo.NewDetector(),
		log:      log.With().Str("component", "resolver").Logger(),
		inflight: make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical prayer day for the given date under the
// current settings. Routine misses (NotFound/Unavailable) yield a
// degraded empty-but-dated record; only transport failures propagate so
// the caller can offer a retry.
func (r *Resolver) Resolve(ctx context.Context, date time.Time) (prayer.Day, error) {
	snap := r.settings.Snapshot()

	// Manual is always available and always fresh: no network, no cache.
	if snap.Provider == settings.ProviderManual {
		return provider.SynthesizeManualDay(snap, date), nil
	}

	location, err := r.locationKey(ctx, snap)
	if err != nil {
		return prayer.Day{}, err
	}

	key := date.Format(prayer.DateLayout) + "|" + string(snap.Provider) + "|" + location

	r.mu.Lock()
	if f, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		select {
		case <-f.done:
			return f.day, f.err
		case <-ctx.Done():
			return prayer.Day{}, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	r.inflight[key] = f
	r.mu.Unlock()

	f.day, f.err = r.resolve(ctx, snap, date, location)
	close(f.done)

	r.mu.Lock()
	if r.inflight[key] == f {
		delete(r.inflight, key)
	}
	r.mu.Unlock()

	return f.day, f.err
}

func (r *Resolver) resolve(ctx context.Context, snap settings.Settings, date time.Time, location string) (prayer.Day, error) {
	dateKey := date.Format(prayer.DateLayout)

	// A cached record is authoritative until invalidated or evicted.
	cached, err := r.store.GetDay(dateKey, string(snap.Provider), location)
	if err != nil {
		r.log.Warn().Err(err).Str("date", dateKey).Msg("cache read failed, falling through to provider")
	}
	if cached != nil {
		return *cached, nil
	}

	client := r.clients[snap.Provider]
	day, err := client.FetchDay(ctx, date, location)
	if err != nil {
		switch fault.KindOf(err) {
		case fault.KindTransport:
			return prayer.Day{}, err
		default:
			// NotFound / Unavailable / DataInconsistency: the UI shows
			// "no data", distinct from a crash.
			r.log.Info().
				Str("date", dateKey).
				Str("provider", string(snap.Provider)).
				Str("kind", fault.KindOf(err).String()).
				Msg("no prayer data for date")
			return prayer.Empty(date, string(snap.Provider), location), nil
		}
	}

	if err := r.store.PutDay(day); err != nil {
		r.log.Warn().Err(err).Str("date", dateKey).Msg("cache write failed")
	}
	return day, nil
}

// FetchMonth runs the active provider's month path and writes the result
// back, returning the number of days cached. Errors keep their fault
// classification so the prefetch manager can bucket them.
func (r *Resolver) FetchMonth(ctx context.Context, year int, month time.Month) (int, error) {
	snap := r.settings.Snapshot()
	if snap.Provider == settings.ProviderManual {
		return 0, nil
	}

	location, err := r.locationKey(ctx, snap)
	if err != nil {
		return 0, err
	}

	days, err := r.clients[snap.Provider].FetchMonth(ctx, year, month, location)
	if err != nil {
		return 0, err
	}
	return r.store.PutDays(days)
}

// ActiveTarget reports the provider, locality key, and prefetch horizon
// of the current settings.
func (r *Resolver) ActiveTarget(ctx context.Context) (Target, error) {
	snap := r.settings.Snapshot()

	if snap.Provider == settings.ProviderManual {
		return Target{Provider: provider.ManualID, Location: "manual"}, nil
	}

	location, err := r.locationKey(ctx, snap)
	if err != nil {
		return Target{}, err
	}

	client := r.clients[snap.Provider]
	return Target{
		Provider:     client.ID(),
		Location:     location,
		Horizon:      client.Horizon(time.Now()),
		Prefetchable: true,
	}, nil
}

// ResolveHijri returns the Hijri date for the given Gregorian date,
// serving from cache, then the scraper, then the continuity fallback
// (the most recent cached entry whose month still covers the date).
func (r *Resolver) ResolveHijri(ctx context.Context, date time.Time) (hijri.Day, error) {
	snap := r.settings.Snapshot()
	region := strconv.Itoa(snap.Zone)
	dateKey := date.Format(prayer.DateLayout)

	cached, err := r.store.GetHijri(dateKey, hijri.ProviderID, region)
	if err != nil {
		r.log.Warn().Err(err).Str("date", dateKey).Msg("hijri cache read failed")
	}
	if cached != nil {
		return *cached, nil
	}

	day, err := r.hijriSrc.Lookup(ctx, date, region)
	if err == nil {
		if putErr := r.store.PutHijri(day); putErr != nil {
			r.log.Warn().Err(putErr).Str("date", dateKey).Msg("hijri cache write failed")
		}
		return day, nil
	}

	// Continuity fallback: a previously cached entry for the same Hijri
	// month still determines today's day-of-month by offset.
	prev, prevErr := r.store.LatestHijriAtOrBefore(dateKey, hijri.ProviderID, region)
	if prevErr == nil && prev != nil {
		if dayOfMonth, inErr := hijri.DayWithin(date, prev.MonthStart, prev.MonthEnd); inErr == nil {
			carried := *prev
			carried.DayOfMonth = dayOfMonth
			carried.GregorianDate = dateKey
			r.log.Debug().Str("date", dateKey).Msg("hijri resolved from continuity fallback")
			return carried, nil
		}
	}

	return hijri.Day{}, err
}

// Invalidate drops in-memory assumptions after a settings change: pending
// single-flight dedup state and the detected-location cache. Persisted
// cache rows stay; their provider-qualified keys already isolate them.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.inflight = make(map[string]*flight)
	r.geoLoc = nil
	r.mu.Unlock()
	r.log.Debug().Msg("resolver invalidated")
}

// ClearAllCachedData wipes the local store.
func (r *Resolver) ClearAllCachedData() error {
	return r.store.DeleteAll()
}

// CacheStats reports cache row counts.
func (r *Resolver) CacheStats() (store.Stats, error) {
	return r.store.Stats()
}

// locationKey computes the cache/provider locality key, falling back to
// IP geolocation for the Aladhan provider when no city is configured.
func (r *Resolver) locationKey(ctx context.Context, snap settings.Settings) (string, error) {
	if snap.Provider != settings.ProviderAladhan || snap.City != "" {
		return snap.LocationKey(), nil
	}

	r.mu.Lock()
	loc := r.geoLoc
	r.mu.Unlock()

	if loc == nil {
		detected, err := r.geo.Detect(ctx)
		if err != nil {
			return "", fault.New(fault.KindTransport, string(snap.Provider), "detect location", err)
		}
		r.mu.Lock()
		r.geoLoc = detected
		r.mu.Unlock()
		loc = detected
	}

	if loc.Country != "" {
		return loc.City + "," + loc.Country, nil
	}
	return loc.City, nil
}
