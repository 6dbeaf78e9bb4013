// Package memory contains an in-memory Store for tests and local runs
// without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dkoval/pricewatch/internal/store"
	"github.com/dkoval/pricewatch/internal/tracking"
)

// Store keeps links, shop hints and observations in process memory.
type Store struct {
	mu           sync.RWMutex
	links        []tracking.TrackedLink
	shopHints    map[int64][]string
	observations []tracking.Observation
	productNames map[int64]string
	shopNames    map[int64]string
}

// New returns an empty memory Store.
func New() *Store {
	return &Store{
		shopHints:    make(map[int64][]string),
		productNames: make(map[int64]string),
		shopNames:    make(map[int64]string),
	}
}

// AddLink registers a tracked link.
func (s *Store) AddLink(link tracking.TrackedLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append(s.links, link)
	if link.ShopName != "" {
		s.shopNames[link.ShopID] = link.ShopName
	}
}

// SetShopHints configures a shop's hint list.
func (s *Store) SetShopHints(shopID int64, hints []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shopHints[shopID] = append([]string(nil), hints...)
}

// SetProductName registers a display name used by the report queries.
func (s *Store) SetProductName(productID int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productNames[productID] = name
}

// ListActiveLinks returns active links, optionally scoped to one product.
func (s *Store) ListActiveLinks(_ context.Context, productID *int64) ([]tracking.TrackedLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tracking.TrackedLink, 0, len(s.links))
	for _, l := range s.links {
		if !l.Active {
			continue
		}
		if productID != nil && l.ProductID != *productID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// GetShopHints returns the configured hints for a shop.
func (s *Store) GetShopHints(_ context.Context, shopID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hints := s.shopHints[shopID]
	return append([]string(nil), hints...), nil
}

// AppendObservations appends the batch.
func (s *Store) AppendObservations(_ context.Context, obs []tracking.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations = append(s.observations, obs...)
	return nil
}

// Observations returns a copy of everything appended so far.
func (s *Store) Observations() []tracking.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tracking.Observation, len(s.observations))
	copy(out, s.observations)
	return out
}

// RecentObservations returns the newest observations first.
func (s *Store) RecentObservations(_ context.Context, limit int) ([]store.ObservationRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obs := make([]tracking.Observation, len(s.observations))
	copy(obs, s.observations)
	sort.Slice(obs, func(i, j int) bool {
		return obs[i].ObservedAt.After(obs[j].ObservedAt)
	})
	if limit > 0 && len(obs) > limit {
		obs = obs[:limit]
	}
	rows := make([]store.ObservationRow, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, store.ObservationRow{
			ProductName: s.productNames[o.ProductID],
			ShopName:    s.shopNames[o.ShopID],
			URL:         o.URL,
			PriceMinor:  o.PriceMinor,
			Currency:    o.Currency,
			Status:      o.Status,
			ObservedAt:  o.ObservedAt,
		})
	}
	return rows, nil
}

// BestPrices returns the lowest observed OK price per product.
func (s *Store) BestPrices(_ context.Context) ([]store.BestPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := make(map[int64]tracking.Observation)
	for _, o := range s.observations {
		if o.Status != tracking.StatusOK {
			continue
		}
		cur, ok := best[o.ProductID]
		if !ok || o.PriceMinor < cur.PriceMinor {
			best[o.ProductID] = o
		}
	}
	out := make([]store.BestPrice, 0, len(best))
	for productID, o := range best {
		out = append(out, store.BestPrice{
			ProductID:   productID,
			ProductName: s.productNames[productID],
			ShopName:    s.shopNames[o.ShopID],
			PriceMinor:  o.PriceMinor,
			Currency:    o.Currency,
			ObservedAt:  o.ObservedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductName < out[j].ProductName
	})
	return out, nil
}

// Close is a no-op for the memory store.
func (s *Store) Close() {}
