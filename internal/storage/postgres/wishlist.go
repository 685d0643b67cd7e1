package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmart/glowmart-api/internal/domain/cart"
)

const (
	listWishlistSQL = `SELECT user_id, product_id, added_at
		FROM wishlist_items WHERE user_id = $1 ORDER BY added_at`

	addWishlistSQL = `INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	removeWishlistSQL = `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`
)

var _ cart.WishlistRepository = (*WishlistRepository)(nil)

// WishlistRepository implements cart.WishlistRepository backed by PostgreSQL.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a WishlistRepository that uses the given pool.
func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// ListByUser returns the user's wishlist in insertion order.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID string) ([]cart.WishlistItem, error) {
	rows, err := r.pool.Query(ctx, listWishlistSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing wishlist for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.WishlistItem, error) {
		var it cart.WishlistItem
		err := row.Scan(&it.UserID, &it.ProductID, &it.AddedAt)
		return it, err
	})
}

// Add marks a product as wished. Idempotent.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, addWishlistSQL, userID, productID); err != nil {
		return fmt.Errorf("adding wishlist item: %w", err)
	}
	return nil
}

// Remove unmarks a product.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	if _, err := r.pool.Exec(ctx, removeWishlistSQL, userID, productID); err != nil {
		return fmt.Errorf("removing wishlist item: %w", err)
	}
	return nil
}
