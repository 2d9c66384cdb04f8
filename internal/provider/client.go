// Package provider implements the interchangeable prayer-day data sources:
// the first-party backend API, the Aladhan public API, the ACJU website
// scrape, and manual user entry. All four sit behind the same Client
// contract; failures are classified through the fault package so the
// coordinator and the prefetch manager can tell "not published yet" from
// "network down" from "no such record".
package provider

import (
	"context"
	"time"

	"github.com/masjidboard/masjidboard/internal/prayer"
)

// Client is the uniform provider contract.
type Client interface {
	// ID returns the provider id stamped onto produced records.
	ID() string

	// FetchDay resolves one day for the given locality key.
	FetchDay(ctx context.Context, date time.Time, location string) (prayer.Day, error)

	// FetchMonth resolves a whole month. Prefetch uses this; a month the
	// provider has not yet published fails with KindUnavailable.
	FetchMonth(ctx context.Context, year int, month time.Month, location string) ([]prayer.Day, error)

	// Horizon returns the last date the provider is expected to have
	// published, bounding the prefetch window.
	Horizon(now time.Time) time.Time
}

// endOfYear is the conservative horizon for providers that publish a
// calendar year at a time.
func endOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location())
}
