// Package stats folds order rows into the dashboard's revenue and customer
// statistics.
package stats

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/glowmart/glowmart-api/internal/domain/order"
)

// Range selects a reporting window for the dashboard.
type Range string

const (
	RangeThisMonth  Range = "this-month"
	RangeLastSixMon Range = "last-6-months"
	RangeThisYear   Range = "this-year"
	RangeAll        Range = "all"
)

// ErrInvalidRange is returned for unknown range selectors.
var ErrInvalidRange = errors.New("invalid dashboard range")

// Summary is the dashboard aggregate for one reporting window.
type Summary struct {
	Revenue        decimal.Decimal
	OrderCount     int
	CancelledCount int
	CustomerCount  int
}

// Aggregator computes dashboard summaries from the order repository.
type Aggregator struct {
	orders order.Repository
	now    func() time.Time
}

// NewAggregator creates an Aggregator reading from the given repository.
func NewAggregator(orders order.Repository) *Aggregator {
	return &Aggregator{orders: orders, now: time.Now}
}

// startOf returns the inclusive lower bound for a range. The zero time
// means no lower bound.
func (a *Aggregator) startOf(r Range) (time.Time, error) {
	now := a.now()
	switch r {
	case RangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case RangeLastSixMon:
		return now.AddDate(0, -6, 0), nil
	case RangeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	case RangeAll:
		return time.Time{}, nil
	default:
		return time.Time{}, ErrInvalidRange
	}
}

// Summarize fetches the windowed order slice and folds it: revenue and
// order count over non-cancelled orders, cancelled counted separately, and
// customers as distinct users across non-cancelled orders.
func (a *Aggregator) Summarize(ctx context.Context, r Range) (*Summary, error) {
	since, err := a.startOf(r)
	if err != nil {
		return nil, err
	}

	orders, err := a.orders.ListSince(ctx, since)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	return Fold(orders), nil
}

// Fold reduces an in-memory order slice into a Summary. Pure function.
func Fold(orders []order.Order) *Summary {
	s := &Summary{Revenue: decimal.Zero}
	customers := make(map[string]struct{})
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			s.CancelledCount++
			continue
		}
		s.Revenue = s.Revenue.Add(o.Total)
		s.OrderCount++
		customers[o.UserID] = struct{}{}
	}
	s.CustomerCount = len(customers)
	return s
}
