package cart

import (
	"context"
	"time"
)

// WishlistItem marks a product a user wants to buy later.
type WishlistItem struct {
	UserID    string
	ProductID string
	AddedAt   time.Time
}

// WishlistRepository defines persistence operations for wishlists.
type WishlistRepository interface {
	ListByUser(ctx context.Context, userID string) ([]WishlistItem, error)
	// Add is idempotent: adding an already-wished product is a no-op.
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}
