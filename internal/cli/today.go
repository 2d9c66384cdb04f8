package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/masjidboard/masjidboard/internal/display"
	"github.com/masjidboard/masjidboard/internal/prayer"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer schedule",
		RunE:  runToday,
	}
}

func newDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "date <YYYY-MM-DD>",
		Short: "Show the prayer schedule for a specific date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.ParseInLocation(prayer.DateLayout, args[0], time.Local)
			if err != nil {
				return fmt.Errorf("invalid date %q: use YYYY-MM-DD", args[0])
			}
			return showSchedule(cmd.Context(), date)
		},
	}
}

func runToday(cmd *cobra.Command, args []string) error {
	return showSchedule(cmd.Context(), time.Now())
}

func showSchedule(ctx context.Context, date time.Time) error {
	a, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if ctx == nil {
		ctx = context.Background()
	}

	day, err := a.resolver.Resolve(ctx, date)
	if err != nil {
		return fmt.Errorf("could not resolve prayer times (try again): %w", err)
	}

	now := time.Now()
	cfg := display.ConfigFrom(a.settings.Snapshot())
	entries, next, err := display.Derive(day, cfg, now)
	if err != nil {
		if err == display.ErrNoData {
			fmt.Printf("No prayer data available for %s from provider %q.\n", day.Date, day.Provider)
			return nil
		}
		return err
	}

	if FlagJSON {
		return printScheduleJSON(day, entries, next)
	}

	fmt.Println()
	fmt.Printf("  %s", display.Bold(day.Date))
	if day.HijriDate != "" {
		fmt.Printf("  %s", display.Dim(day.HijriDate))
	}
	fmt.Printf("\n\n")
	fmt.Print(display.RenderSchedule(entries, "15:04"))
	fmt.Println()
	fmt.Printf("  %s\n\n", display.NextLine(entries, now))
	return nil
}

// scheduleJSON is the machine-readable schedule shape.
type scheduleJSON struct {
	Date    string      `json:"date"`
	Hijri   string      `json:"hijri,omitempty"`
	Entries []entryJSON `json:"entries"`
	Next    *prayer.ID  `json:"next"`
}

type entryJSON struct {
	ID     prayer.ID `json:"id"`
	Name   string    `json:"name"`
	NameAr string    `json:"name_ar"`
	Azan   string    `json:"azan"`
	Iqamah string    `json:"iqamah,omitempty"`
	IsNext bool      `json:"is_next"`
}

func printScheduleJSON(day prayer.Day, entries []display.Entry, next *prayer.ID) error {
	out := scheduleJSON{
		Date:  day.Date,
		Hijri: day.HijriDate,
		Next:  next,
	}
	for _, e := range entries {
		je := entryJSON{ID: e.ID, Name: e.NameEn, NameAr: e.NameAr, IsNext: e.IsNext}
		if !e.Azan.IsZero() {
			je.Azan = e.Azan.Format("15:04")
		}
		if !e.Iqamah.IsZero() {
			je.Iqamah = e.Iqamah.Format("15:04")
		}
		out.Entries = append(out.Entries, je)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
