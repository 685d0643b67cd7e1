package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/glowmart/glowmart-api/internal/domain/checkout"
	"github.com/glowmart/glowmart-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository is an in-memory order.Repository. CommitOrder applies the
// same all-or-nothing semantics as the PostgreSQL implementation: stock is
// checked before anything is mutated.
type OrderRepository struct {
	mu       sync.RWMutex
	items    map[string]order.Order
	products *ProductRepository
	carts    *CartRepository
}

// NewOrderRepository returns an in-memory order store that mutates the
// given product and cart fakes on commit.
func NewOrderRepository(products *ProductRepository, carts *CartRepository) *OrderRepository {
	return &OrderRepository{
		items:    make(map[string]order.Order),
		products: products,
		carts:    carts,
	}
}

func (r *OrderRepository) CommitOrder(ctx context.Context, o *order.Order, changes []order.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate every decrement before applying any.
	for _, ch := range changes {
		p, err := r.products.GetByID(ctx, ch.ProductID)
		if err != nil {
			return err
		}
		if p.Stock < ch.Quantity {
			return &checkout.InsufficientStockError{
				ProductID: ch.ProductID,
				Requested: ch.Quantity,
				InStock:   p.Stock,
			}
		}
	}

	for _, ch := range changes {
		p, _ := r.products.GetByID(ctx, ch.ProductID)
		p.Stock -= ch.Quantity
		if err := r.products.Update(ctx, p); err != nil {
			return err
		}
	}

	r.items[o.ID] = *o
	return r.carts.Clear(ctx, o.UserID)
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.items[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range r.items {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *OrderRepository) ListSince(_ context.Context, since time.Time) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range r.items {
		if since.IsZero() || !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id string, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.items[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.items[id] = o
	return nil
}

func (r *OrderRepository) HasDeliveredProduct(_ context.Context, userID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.items {
		if o.UserID != userID || o.Status != order.StatusDelivered {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func sortNewestFirst(orders []order.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}
