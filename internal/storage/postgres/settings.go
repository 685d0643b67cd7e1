package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmart/glowmart-api/internal/domain/settings"
)

const (
	getSettingsSQL = `SELECT currency, tax_name, tax_rate, delivery_charge, free_shipping_threshold,
		enable_cod, enable_online_payment, updated_at
		FROM store_settings WHERE id = 1`

	updateSettingsSQL = `UPDATE store_settings
		SET currency = $1, tax_name = $2, tax_rate = $3, delivery_charge = $4,
		    free_shipping_threshold = $5, enable_cod = $6, enable_online_payment = $7,
		    updated_at = now()
		WHERE id = 1`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
// The schema guarantees exactly one row.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get reads the singleton settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.pool.QueryRow(ctx, getSettingsSQL).Scan(
		&s.Currency, &s.TaxName, &s.TaxRate, &s.DeliveryCharge, &s.FreeShippingThreshold,
		&s.EnableCOD, &s.EnableOnlinePayment, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("getting store settings: %w", err)
	}
	return &s, nil
}

// Update rewrites the singleton settings row.
func (r *SettingsRepository) Update(ctx context.Context, s *settings.Settings) error {
	_, err := r.pool.Exec(ctx, updateSettingsSQL,
		s.Currency, s.TaxName, s.TaxRate, s.DeliveryCharge, s.FreeShippingThreshold,
		s.EnableCOD, s.EnableOnlinePayment,
	)
	if err != nil {
		return fmt.Errorf("updating store settings: %w", err)
	}
	return nil
}
