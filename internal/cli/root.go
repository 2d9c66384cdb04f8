// Package cli wires the engine together behind the masjidboard command.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/masjidboard/masjidboard/internal/logging"
	"github.com/masjidboard/masjidboard/internal/prefetch"
	"github.com/masjidboard/masjidboard/internal/resolver"
	"github.com/masjidboard/masjidboard/internal/settings"
	"github.com/masjidboard/masjidboard/internal/store"
)

// Global flags shared across all subcommands.
var (
	FlagCacheDir string
	FlagLogLevel string
	FlagJSON     bool
)

// cacheMaxAge bounds how long unused rows survive the eviction sweep.
const cacheMaxAge = 30 * 24 * time.Hour

// NewRootCmd creates the root command. The version parameter is set by
// the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "masjidboard",
		Short:   "Prayer times and Hijri calendar engine",
		Long:    "Resolves canonical prayer times and Hijri dates from the configured provider,\ncaches them for offline use, and derives the board's display schedule.",
		Version: version,
		// Default action: show today's schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/masjidboard/)")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error (overrides config)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")

	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newDateCmd())
	rootCmd.AddCommand(newHijriCmd())
	rootCmd.AddCommand(newPrefetchCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the assembled engine for one command invocation.
type app struct {
	log      zerolog.Logger
	settings *settings.Service
	store    *store.Store
	resolver *resolver.Resolver
	prefetch *prefetch.Manager
}

// buildApp loads settings, opens the store, and wires the resolver and
// prefetch manager. The returned cleanup closes the store.
func buildApp() (*app, func(), error) {
	path, err := settings.Path()
	if err != nil {
		return nil, nil, err
	}

	svc, err := settings.NewService(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	snap := svc.Snapshot()

	level := snap.LogLevel
	if FlagLogLevel != "" {
		level = FlagLogLevel
	}
	log := logging.New(level)

	dir := FlagCacheDir
	if dir == "" {
		dir = snap.CacheDir
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "masjidboard")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	st, err := store.Open(filepath.Join(dir, "cache.db"), log)
	if err != nil {
		return nil, nil, err
	}

	// Background-style eviction: sweep aged rows on startup. Reads never
	// fail by age, so this is the only place eviction runs.
	if _, err := st.DeleteOlderThan(time.Now().Add(-cacheMaxAge)); err != nil {
		log.Warn().Err(err).Msg("cache eviction sweep failed")
	}

	res := resolver.New(st, svc, log)
	// Settings changes (provider switch, manual time edits) invalidate
	// the resolver through the notification stream, never by polling.
	svc.Subscribe(res.Invalidate)

	a := &app{
		log:      log,
		settings: svc,
		store:    st,
		resolver: res,
		prefetch: prefetch.New(res, st, log),
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close cache store")
		}
	}
	return a, cleanup, nil
}
