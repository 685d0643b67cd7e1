package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID          string
	Name        string
	Description string
	Brand       string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Visible     bool
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available reports whether the product can be purchased in the given
// quantity right now.
func (p *Product) Available(qty int) bool {
	return p.Visible && qty <= p.Stock
}

// Filter narrows catalog listings.
type Filter struct {
	Category    string
	VisibleOnly bool
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
