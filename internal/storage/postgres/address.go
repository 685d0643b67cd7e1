package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmart/glowmart-api/internal/domain/user"
)

const (
	addressColumns = `id, user_id, name, phone, line1, line2, city, state, pincode, is_default, created_at`

	listAddressesSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE user_id = $1 ORDER BY created_at`

	getAddressSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE user_id = $1 AND id = $2`

	countAddressesSQL = `SELECT count(*) FROM addresses WHERE user_id = $1`

	insertAddressSQL = `INSERT INTO addresses (id, user_id, name, phone, line1, line2, city, state, pincode, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateAddressSQL = `UPDATE addresses
		SET name = $3, phone = $4, line1 = $5, line2 = $6, city = $7, state = $8, pincode = $9
		WHERE user_id = $1 AND id = $2`

	deleteAddressSQL = `DELETE FROM addresses WHERE user_id = $1 AND id = $2`

	clearDefaultSQL = `UPDATE addresses SET is_default = FALSE WHERE user_id = $1`
	setDefaultSQL   = `UPDATE addresses SET is_default = TRUE WHERE user_id = $1 AND id = $2`
)

var _ user.AddressRepository = (*AddressRepository)(nil)

// AddressRepository implements user.AddressRepository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// ListByUser returns the user's saved addresses, oldest first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]user.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// GetByID returns one of the user's addresses.
func (r *AddressRepository) GetByID(ctx context.Context, userID, id string) (*user.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressSQL, userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrAddressNotFound
		}
		return nil, fmt.Errorf("getting address %q: %w", id, err)
	}
	return &a, nil
}

// Create persists a new address, enforcing the per-user limit inside a
// transaction so concurrent inserts cannot slip past it.
func (r *AddressRepository) Create(ctx context.Context, a *user.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	if err := tx.QueryRow(ctx, countAddressesSQL, a.UserID).Scan(&count); err != nil {
		return fmt.Errorf("counting addresses: %w", err)
	}
	if count >= user.MaxAddresses {
		return user.ErrAddressLimit
	}

	// First saved address becomes the default.
	isDefault := a.IsDefault || count == 0

	if _, err := tx.Exec(ctx, insertAddressSQL,
		a.ID, a.UserID, a.Name, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Pincode, isDefault,
	); err != nil {
		return fmt.Errorf("creating address: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	a.IsDefault = isDefault
	return nil
}

// Update rewrites an address's fields.
func (r *AddressRepository) Update(ctx context.Context, a *user.Address) error {
	tag, err := r.pool.Exec(ctx, updateAddressSQL,
		a.UserID, a.ID, a.Name, a.Phone, a.Line1, a.Line2, a.City, a.State, a.Pincode,
	)
	if err != nil {
		return fmt.Errorf("updating address %q: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrAddressNotFound
	}
	return nil
}

// Delete removes an address.
func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, deleteAddressSQL, userID, id)
	if err != nil {
		return fmt.Errorf("deleting address %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrAddressNotFound
	}
	return nil
}

// SetDefault marks one address default and clears the flag on the others.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, clearDefaultSQL, userID); err != nil {
		return fmt.Errorf("clearing default address: %w", err)
	}
	tag, err := tx.Exec(ctx, setDefaultSQL, userID, id)
	if err != nil {
		return fmt.Errorf("setting default address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrAddressNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func scanAddress(row pgx.CollectableRow) (user.Address, error) {
	var a user.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.Name, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.Pincode, &a.IsDefault, &a.CreatedAt,
	)
	return a, err
}
