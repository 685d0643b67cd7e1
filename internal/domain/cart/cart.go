package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrLineNotFound is returned when a cart line does not exist.
	ErrLineNotFound = errors.New("cart line not found")
)

// Line is one (user, product, quantity) record representing an unpurchased
// intent to buy. Unique per (user, product).
type Line struct {
	UserID    string
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// Repository defines persistence operations for cart lines.
type Repository interface {
	// ListByUser returns all cart lines for a user.
	ListByUser(ctx context.Context, userID string) ([]Line, error)
	// Upsert adds quantity to an existing line or creates a new one.
	Upsert(ctx context.Context, userID, productID string, quantity int) error
	// SetQuantity replaces a line's quantity. Returns ErrLineNotFound when
	// no line exists for the pair.
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	// Remove deletes a single line.
	Remove(ctx context.Context, userID, productID string) error
	// Clear deletes all of a user's lines.
	Clear(ctx context.Context, userID string) error
}
