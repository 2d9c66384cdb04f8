package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/masjidboard/masjidboard/internal/display"
	"github.com/masjidboard/masjidboard/internal/prefetch"
)

func newPrefetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch",
		Short: "Cache upcoming months for offline use",
		Long:  "Fetch and cache every remaining month of the active provider's published\nhorizon. Months already cached are skipped; one failed month does not abort\nthe run. Interrupt with Ctrl-C between months.",
		RunE:  runPrefetch,
	}
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a.prefetch.Subscribe(func(s prefetch.State) {
		a.log.Debug().Str("state", s.String()).Msg("prefetch state changed")
	})

	if !FlagJSON {
		fmt.Println("Prefetching upcoming months...")
	}

	res, err := a.prefetch.Run(ctx)
	if err != nil {
		return fmt.Errorf("prefetch failed: %w", err)
	}

	if FlagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Println()
	fmt.Printf("  %-20s %d\n", "Months cached:", res.SuccessfulMonths)
	fmt.Printf("  %-20s %d\n", "Already cached:", res.SkippedMonths)
	fmt.Printf("  %-20s %d\n", "Failed:", res.FailedMonths)
	fmt.Printf("  %-20s %d\n", "Not yet published:", res.UnavailableMonths)
	fmt.Printf("  %-20s %d\n", "Days written:", res.CachedDays)
	if res.FailedMonths > 0 {
		fmt.Println()
		fmt.Println("  " + display.Yellow("Some months failed; run prefetch again to retry."))
	}
	return nil
}
