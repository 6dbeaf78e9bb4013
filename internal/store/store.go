// Package store declares the persistence interface for tracked links and
// price observations. Using an interface decouples the scan pipeline from a
// specific backend: Postgres in production, an in-memory store in tests.
package store

import (
	"context"
	"time"

	"github.com/dkoval/pricewatch/internal/tracking"
)

// Store is the persistence contract consumed by the scanner and the CLI
// report commands.
type Store interface {
	// ListActiveLinks returns all links with active=true together with
	// their shop's hint configuration, optionally scoped to one product.
	ListActiveLinks(ctx context.Context, productID *int64) ([]tracking.TrackedLink, error)

	// GetShopHints returns the ordered selector hints configured for a
	// shop, or nil when the shop has none.
	GetShopHints(ctx context.Context, shopID int64) ([]string, error)

	// AppendObservations persists a batch of observations in one write.
	// Observations are append-only; duplicates across runs are expected
	// historical entries, not conflicts.
	AppendObservations(ctx context.Context, obs []tracking.Observation) error

	// RecentObservations returns the newest observations for reporting.
	RecentObservations(ctx context.Context, limit int) ([]ObservationRow, error)

	// BestPrices returns, per product, the lowest recently observed price.
	BestPrices(ctx context.Context) ([]BestPrice, error)

	// Close releases backend resources.
	Close()
}

// ObservationRow is an observation joined with product and shop names for
// display.
type ObservationRow struct {
	ProductName string
	ShopName    string
	URL         string
	PriceMinor  int64
	Currency    string
	Status      tracking.Status
	ObservedAt  time.Time
}

// BestPrice is the cheapest known offer for one product.
type BestPrice struct {
	ProductID   int64
	ProductName string
	ShopName    string
	PriceMinor  int64
	Currency    string
	ObservedAt  time.Time
}
