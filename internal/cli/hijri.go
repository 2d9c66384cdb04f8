package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/masjidboard/masjidboard/internal/prayer"
)

func newHijriCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hijri [YYYY-MM-DD]",
		Short: "Show the Hijri date for today or a given date",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHijri,
	}
}

func runHijri(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if len(args) == 1 {
		parsed, err := time.ParseInLocation(prayer.DateLayout, args[0], time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[0])
		}
		date = parsed
	}

	a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	day, err := a.resolver.ResolveHijri(cmd.Context(), date)
	if err != nil {
		return fmt.Errorf("could not resolve hijri date for %s: %w", date.Format(prayer.DateLayout), err)
	}

	if FlagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(day)
	}

	fmt.Printf("%s is %s\n", day.GregorianDate, day)
	fmt.Printf("(%s runs %s to %s)\n", day.MonthName,
		day.MonthStart.Format(prayer.DateLayout), day.MonthEnd.Format(prayer.DateLayout))
	return nil
}
