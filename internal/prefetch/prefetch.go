// Package prefetch walks the remaining months of the active provider's
// published horizon and fills the local store so the board keeps working
// offline. One bad month never aborts a run; every month is classified
// and the aggregate is reported.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/masjidboard/masjidboard/internal/fault"
	"github.com/masjidboard/masjidboard/internal/resolver"
)

// ErrAlreadyRunning is returned when a prefetch run is requested while
// one is in flight.
var ErrAlreadyRunning = errors.New("prefetch already running")

// State is the UI-facing prefetch status.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the aggregate outcome of one prefetch run. Ephemeral; held
// only to report to the caller.
type Result struct {
	SuccessfulMonths  int `json:"successful_months"`
	SkippedMonths     int `json:"skipped_months"`     // already fully cached
	FailedMonths      int `json:"failed_months"`      // transient errors
	UnavailableMonths int `json:"unavailable_months"` // not yet published
	CachedDays        int `json:"cached_days"`        // rows written this run
}

// Status is the read-only cache coverage probe.
type Status struct {
	CachedMonths int  `json:"cached_months"`
	TotalMonths  int  `json:"total_months"`
	CachedDays   int  `json:"cached_days"`
	TotalDays    int  `json:"total_days"`
	FullyCached  bool `json:"fully_cached"`
}

// Coordinator is the slice of the resolver the manager drives.
type Coordinator interface {
	ActiveTarget(ctx context.Context) (resolver.Target, error)
	FetchMonth(ctx context.Context, year int, month time.Month) (int, error)
}

// DayCounter is the slice of the store used for skip-if-cached checks.
type DayCounter interface {
	CountDaysInMonth(yearMonth, providerID, location string) (int, error)
}

// Manager runs prefetch and tracks its state machine:
// Idle → Loading → {Success, Error} → Loading (on retry). Loading is
// never re-entered from Loading.
type Manager struct {
	coord Coordinator
	days  DayCounter
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	state State
	subs  []func(State)
}

// New creates a prefetch manager.
func New(coord Coordinator, days DayCounter, log zerolog.Logger) *Manager {
	return &Manager{
		coord: coord,
		days:  days,
		log:   log.With().Str("component", "prefetch").Logger(),
		now:   time.Now,
	}
}

// State returns the current state machine position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a state-change observer. Callbacks run on the
// prefetching goroutine and must not block.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	subs := make([]func(State), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// Run walks the months from now to the provider's horizon, fetching each
// uncached month sequentially. It is a single blocking run; a concurrent
// call fails with ErrAlreadyRunning.
func (m *Manager) Run(ctx context.Context) (Result, error) {
	m.mu.Lock()
	if m.state == StateLoading {
		m.mu.Unlock()
		return Result{}, ErrAlreadyRunning
	}
	m.state = StateLoading
	subs := make([]func(State), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(StateLoading)
	}

	res, err := m.run(ctx)
	if err != nil {
		m.setState(StateError)
		return res, err
	}

	// A run that achieved nothing but failures is an error surface;
	// anything else is a (possibly mixed) success.
	if res.FailedMonths > 0 && res.SuccessfulMonths == 0 && res.SkippedMonths == 0 {
		m.setState(StateError)
	} else {
		m.setState(StateSuccess)
	}
	return res, nil
}

func (m *Manager) run(ctx context.Context) (Result, error) {
	target, err := m.coord.ActiveTarget(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("prefetch target: %w", err)
	}
	if !target.Prefetchable {
		m.log.Debug().Str("provider", target.Provider).Msg("provider has nothing to prefetch")
		return Result{}, nil
	}

	months := monthsUntil(m.now(), target.Horizon)
	var res Result

	for i, ym := range months {
		if err := ctx.Err(); err != nil {
			// Cooperative cancellation between months only.
			return res, err
		}

		cached, err := m.days.CountDaysInMonth(ym.key(), target.Provider, target.Location)
		if err == nil && cached >= ym.days() {
			res.SkippedMonths++
			continue
		}

		written, err := m.coord.FetchMonth(ctx, ym.year, ym.month)
		if err == nil {
			res.SuccessfulMonths++
			res.CachedDays += written
			m.log.Debug().Str("month", ym.key()).Int("days", written).Msg("month cached")
			continue
		}

		if fault.Is(err, fault.KindUnavailable) {
			// The provider has not published this far; later months are
			// even less likely. Count the tail and stop.
			res.UnavailableMonths += len(months) - i
			m.log.Info().Str("month", ym.key()).Msg("month not yet published, stopping prefetch")
			break
		}

		res.FailedMonths++
		m.log.Warn().Err(err).Str("month", ym.key()).Msg("month prefetch failed")
	}

	m.log.Info().
		Int("successful", res.SuccessfulMonths).
		Int("skipped", res.SkippedMonths).
		Int("failed", res.FailedMonths).
		Int("unavailable", res.UnavailableMonths).
		Int("cached_days", res.CachedDays).
		Msg("prefetch run complete")
	return res, nil
}

// CacheStatus reports how much of the fetchable horizon is already
// cached. Read-only; it never touches the network.
func (m *Manager) CacheStatus(ctx context.Context) (Status, error) {
	target, err := m.coord.ActiveTarget(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("cache status target: %w", err)
	}
	if !target.Prefetchable {
		return Status{FullyCached: true}, nil
	}

	months := monthsUntil(m.now(), target.Horizon)
	var st Status
	st.TotalMonths = len(months)

	for _, ym := range months {
		total := ym.days()
		st.TotalDays += total

		cached, err := m.days.CountDaysInMonth(ym.key(), target.Provider, target.Location)
		if err != nil {
			return Status{}, fmt.Errorf("count month %s: %w", ym.key(), err)
		}
		if cached > total {
			cached = total
		}
		st.CachedDays += cached
		if cached >= total {
			st.CachedMonths++
		}
	}

	st.FullyCached = st.TotalMonths > 0 && st.CachedDays >= st.TotalDays
	return st, nil
}

// yearMonth is one enumerated month of the horizon.
type yearMonth struct {
	year  int
	month time.Month
}

func (ym yearMonth) key() string {
	return fmt.Sprintf("%04d-%02d", ym.year, ym.month)
}

func (ym yearMonth) days() int {
	return time.Date(ym.year, ym.month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthsUntil enumerates the months from now's month through horizon's
// month, inclusive. An horizon before now yields nothing.
func monthsUntil(now, horizon time.Time) []yearMonth {
	if horizon.Before(now) {
		return nil
	}

	var months []yearMonth
	y, mo := now.Year(), now.Month()
	endY, endMo := horizon.Year(), horizon.Month()
	for y < endY || (y == endY && mo <= endMo) {
		months = append(months, yearMonth{year: y, month: mo})
		mo++
		if mo > time.December {
			mo = time.January
			y++
		}
	}
	return months
}
