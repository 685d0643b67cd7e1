package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmart/glowmart-api/internal/domain/checkout"
	"github.com/glowmart/glowmart-api/internal/domain/order"
)

const (
	orderColumns = `id, user_id, status, payment_method, payment_ref,
		subtotal, discount, tax, shipping, total, promo_code,
		ship_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state, ship_pincode,
		created_at, updated_at`

	insertOrderSQL = `INSERT INTO orders (id, user_id, status, payment_method, payment_ref,
		subtotal, discount, tax, shipping, total, promo_code,
		ship_name, ship_phone, ship_line1, ship_line2, ship_city, ship_state, ship_pincode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	// Conditional decrement: zero affected rows means the remaining stock
	// no longer covers the purchase and the whole transaction rolls back.
	decrementStockSQL = `UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`

	clearCartTxSQL = `DELETE FROM cart_items WHERE user_id = $1`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	listOrdersSinceSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE created_at >= $1 ORDER BY created_at DESC`

	listAllOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	listOrderItemsSQL = `SELECT order_id, product_id, product_name, unit_price, quantity
		FROM order_items WHERE order_id = ANY($1) ORDER BY product_id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	hasDeliveredProductSQL = `SELECT EXISTS (
		SELECT 1 FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'delivered')`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CommitOrder persists the order, its item snapshots, the stock decrements
// and the cart clear in one transaction. Stock decrements are conditional;
// a line that no longer fits returns checkout.InsufficientStockError and
// rolls back everything.
func (r *OrderRepository) CommitOrder(ctx context.Context, o *order.Order, changes []order.StockChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, o.Status, o.PaymentMethod, o.PaymentRef,
		o.Subtotal, o.Discount, o.Tax, o.Shipping, o.Total, o.PromoCode,
		o.ShipTo.Name, o.ShipTo.Phone, o.ShipTo.Line1, o.ShipTo.Line2,
		o.ShipTo.City, o.ShipTo.State, o.ShipTo.Pincode,
	); err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, insertOrderItemSQL,
			o.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity,
		); err != nil {
			return fmt.Errorf("inserting order item %q: %w", it.ProductID, err)
		}
	}

	for _, ch := range changes {
		tag, err := tx.Exec(ctx, decrementStockSQL, ch.ProductID, ch.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for %q: %w", ch.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return &checkout.InsufficientStockError{ProductID: ch.ProductID, Requested: ch.Quantity}
		}
	}

	if _, err := tx.Exec(ctx, clearCartTxSQL, o.UserID); err != nil {
		return fmt.Errorf("clearing cart for %q: %w", o.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID returns an order including its item snapshots.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.attachItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first, with items attached.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", userID, err)
	}
	return r.collectWithItems(ctx, rows)
}

// ListSince returns orders created at or after since; a zero time means all.
func (r *OrderRepository) ListSince(ctx context.Context, since time.Time) ([]order.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if since.IsZero() {
		rows, err = r.pool.Query(ctx, listAllOrdersSQL)
	} else {
		rows, err = r.pool.Query(ctx, listOrdersSinceSQL, since)
	}
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return r.collectWithItems(ctx, rows)
}

// UpdateStatus flips an order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, status)
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// HasDeliveredProduct reports whether the user owns a delivered order
// containing the product.
func (r *OrderRepository) HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, hasDeliveredProductSQL, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking delivered purchase: %w", err)
	}
	return exists, nil
}

func (r *OrderRepository) collectWithItems(ctx context.Context, rows pgx.Rows) ([]order.Order, error) {
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}
	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads item snapshots for the given orders in a single query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      order.Item
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return fmt.Errorf("scanning order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentMethod, &o.PaymentRef,
		&o.Subtotal, &o.Discount, &o.Tax, &o.Shipping, &o.Total, &o.PromoCode,
		&o.ShipTo.Name, &o.ShipTo.Phone, &o.ShipTo.Line1, &o.ShipTo.Line2,
		&o.ShipTo.City, &o.ShipTo.State, &o.ShipTo.Pincode,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}
