package stats

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmart/glowmart-api/internal/domain/order"
)

func TestFold_Empty(t *testing.T) {
	s := Fold(nil)

	assert.True(t, s.Revenue.IsZero())
	assert.Zero(t, s.OrderCount)
	assert.Zero(t, s.CancelledCount)
	assert.Zero(t, s.CustomerCount)
}

func TestFold_CancelledExcludedFromRevenue(t *testing.T) {
	orders := []order.Order{
		{ID: "o1", UserID: "u1", Status: order.StatusPaid, Total: decimal.NewFromInt(1100)},
		{ID: "o2", UserID: "u2", Status: order.StatusDelivered, Total: decimal.NewFromInt(500)},
		{ID: "o3", UserID: "u3", Status: order.StatusCancelled, Total: decimal.NewFromInt(9999)},
	}

	s := Fold(orders)

	assert.True(t, s.Revenue.Equal(decimal.NewFromInt(1600)), "revenue %s", s.Revenue)
	assert.Equal(t, 2, s.OrderCount)
	assert.Equal(t, 1, s.CancelledCount)
	assert.Equal(t, 2, s.CustomerCount)
}

func TestFold_DistinctCustomers(t *testing.T) {
	orders := []order.Order{
		{ID: "o1", UserID: "u1", Status: order.StatusPaid, Total: decimal.NewFromInt(100)},
		{ID: "o2", UserID: "u1", Status: order.StatusShipped, Total: decimal.NewFromInt(200)},
		{ID: "o3", UserID: "u1", Status: order.StatusCancelled, Total: decimal.NewFromInt(300)},
	}

	s := Fold(orders)

	// The cancelled order neither adds a customer nor revenue.
	assert.Equal(t, 1, s.CustomerCount)
	assert.Equal(t, 2, s.OrderCount)
	assert.True(t, s.Revenue.Equal(decimal.NewFromInt(300)))
}

type windowRepo struct {
	order.Repository
	since  time.Time
	orders []order.Order
}

func (w *windowRepo) ListSince(_ context.Context, since time.Time) ([]order.Order, error) {
	w.since = since
	return w.orders, nil
}

func TestSummarize_WindowBounds(t *testing.T) {
	repo := &windowRepo{}
	agg := NewAggregator(repo)
	now := time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return now }

	cases := []struct {
		r    Range
		want time.Time
	}{
		{RangeThisMonth, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{RangeLastSixMon, now.AddDate(0, -6, 0)},
		{RangeThisYear, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{RangeAll, time.Time{}},
	}
	for _, tc := range cases {
		_, err := agg.Summarize(context.Background(), tc.r)
		require.NoError(t, err, "range %s", tc.r)
		assert.True(t, repo.since.Equal(tc.want), "range %s: since %s", tc.r, repo.since)
	}
}

func TestSummarize_InvalidRange(t *testing.T) {
	agg := NewAggregator(&windowRepo{})

	_, err := agg.Summarize(context.Background(), "last-century")
	require.ErrorIs(t, err, ErrInvalidRange)
}
