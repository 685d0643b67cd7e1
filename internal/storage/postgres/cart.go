package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmart/glowmart-api/internal/domain/cart"
)

const (
	listCartSQL = `SELECT user_id, product_id, quantity, added_at
		FROM cart_items WHERE user_id = $1 ORDER BY added_at`

	upsertCartSQL = `INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	setCartQuantitySQL = `UPDATE cart_items SET quantity = $3
		WHERE user_id = $1 AND product_id = $2`

	removeCartLineSQL = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	clearCartSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListByUser returns all cart lines for a user in insertion order.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// Upsert adds quantity to an existing line or creates a new one.
func (r *CartRepository) Upsert(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}
	if _, err := r.pool.Exec(ctx, upsertCartSQL, userID, productID, quantity); err != nil {
		return fmt.Errorf("upserting cart line: %w", err)
	}
	return nil
}

// SetQuantity replaces a line's quantity.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}
	tag, err := r.pool.Exec(ctx, setCartQuantitySQL, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("setting cart quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Remove deletes a single line.
func (r *CartRepository) Remove(ctx context.Context, userID, productID string) error {
	tag, err := r.pool.Exec(ctx, removeCartLineSQL, userID, productID)
	if err != nil {
		return fmt.Errorf("removing cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Clear deletes all of a user's lines.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, clearCartSQL, userID); err != nil {
		return fmt.Errorf("clearing cart for %q: %w", userID, err)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(&l.UserID, &l.ProductID, &l.Quantity, &l.AddedAt)
	return l, err
}
