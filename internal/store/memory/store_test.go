package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/pricewatch/internal/tracking"
)

func obs(productID, shopID, priceMinor int64, at time.Time) tracking.Observation {
	return tracking.Observation{
		ID:         uuid.New(),
		ProductID:  productID,
		ShopID:     shopID,
		PriceMinor: priceMinor,
		Currency:   "RUB",
		Status:     tracking.StatusOK,
		ObservedAt: at,
	}
}

func TestListActiveLinksFiltersInactiveAndProduct(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddLink(tracking.TrackedLink{ID: 1, ProductID: 10, Active: true})
	s.AddLink(tracking.TrackedLink{ID: 2, ProductID: 10, Active: false})
	s.AddLink(tracking.TrackedLink{ID: 3, ProductID: 11, Active: true})

	all, err := s.ListActiveLinks(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	productID := int64(11)
	scoped, err := s.ListActiveLinks(context.Background(), &productID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, int64(3), scoped[0].ID)
}

func TestRecentObservationsNewestFirst(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetProductName(10, "Чайник")
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendObservations(context.Background(), []tracking.Observation{
		obs(10, 100, 100, base),
		obs(10, 100, 200, base.Add(time.Hour)),
		obs(10, 100, 300, base.Add(2*time.Hour)),
	}))

	rows, err := s.RecentObservations(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(300), rows[0].PriceMinor)
	require.Equal(t, int64(200), rows[1].PriceMinor)
	require.Equal(t, "Чайник", rows[0].ProductName)
}

func TestBestPricesLowestOKPerProduct(t *testing.T) {
	t.Parallel()

	s := New()
	s.SetProductName(10, "Чайник")
	s.SetProductName(11, "Тостер")
	now := time.Now().UTC()

	failed := obs(10, 100, 50, now)
	failed.Status = tracking.StatusError

	require.NoError(t, s.AppendObservations(context.Background(), []tracking.Observation{
		obs(10, 100, 12000, now),
		obs(10, 200, 11000, now),
		failed,
		obs(11, 100, 4500, now),
	}))

	best, err := s.BestPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, best, 2)
	// Sorted by product name; the error-status bargain is ignored.
	require.Equal(t, "Тостер", best[0].ProductName)
	require.Equal(t, int64(4500), best[0].PriceMinor)
	require.Equal(t, "Чайник", best[1].ProductName)
	require.Equal(t, int64(11000), best[1].PriceMinor)
}
