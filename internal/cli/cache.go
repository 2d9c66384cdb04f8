package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the offline cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show how much of the fetchable horizon is cached",
		RunE:  runCacheStatus,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cached row counts",
		RunE:  runCacheStats,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all cached prayer times and Hijri dates",
		RunE:  runCacheClear,
	})

	return cmd
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := a.prefetch.CacheStatus(cmd.Context())
	if err != nil {
		return err
	}

	if FlagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Printf("  Cached months: %d of %d\n", st.CachedMonths, st.TotalMonths)
	fmt.Printf("  Cached days:   %d of %d\n", st.CachedDays, st.TotalDays)
	if st.FullyCached {
		fmt.Println("  Fully cached for offline use.")
	} else {
		fmt.Println("  Run 'masjidboard prefetch' to cache the remaining months.")
	}
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := a.resolver.CacheStats()
	if err != nil {
		return err
	}

	if FlagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("  Prayer days cached: %d\n", stats.PrayerDays)
	fmt.Printf("  Hijri dates cached: %d\n", stats.HijriDays)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.resolver.ClearAllCachedData(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("Cache cleared.")
	return nil
}
