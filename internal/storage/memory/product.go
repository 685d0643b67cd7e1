package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/glowmart/glowmart-api/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository is an in-memory product.Repository.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]product.Product
}

// NewProductRepository returns an empty in-memory catalog.
func NewProductRepository(products ...product.Product) *ProductRepository {
	items := make(map[string]product.Product, len(products))
	for _, p := range products {
		items[p.ID] = p
	}
	return &ProductRepository{items: items}
}

func (r *ProductRepository) List(_ context.Context, f product.Filter) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.items))
	for _, p := range r.items {
		if f.VisibleOnly && !p.Visible {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.items[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProductRepository) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = *p
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return product.ErrNotFound
	}
	r.items[p.ID] = *p
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
