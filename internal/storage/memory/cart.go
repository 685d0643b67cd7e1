package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/glowmart/glowmart-api/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

type cartKey struct{ userID, productID string }

// CartRepository is an in-memory cart.Repository.
type CartRepository struct {
	mu    sync.RWMutex
	items map[cartKey]cart.Line
}

// NewCartRepository returns an empty in-memory cart store.
func NewCartRepository() *CartRepository {
	return &CartRepository{items: make(map[cartKey]cart.Line)}
}

func (r *CartRepository) ListByUser(_ context.Context, userID string) ([]cart.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cart.Line, 0)
	for _, l := range r.items {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (r *CartRepository) Upsert(_ context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID, productID}
	if l, ok := r.items[key]; ok {
		l.Quantity += quantity
		r.items[key] = l
		return nil
	}
	r.items[key] = cart.Line{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	return nil
}

func (r *CartRepository) SetQuantity(_ context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID, productID}
	l, ok := r.items[key]
	if !ok {
		return cart.ErrLineNotFound
	}
	l.Quantity = quantity
	r.items[key] = l
	return nil
}

func (r *CartRepository) Remove(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cartKey{userID, productID}
	if _, ok := r.items[key]; !ok {
		return cart.ErrLineNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *CartRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.items {
		if key.userID == userID {
			delete(r.items, key)
		}
	}
	return nil
}
