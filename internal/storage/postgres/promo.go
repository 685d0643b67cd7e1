package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmart/glowmart-api/internal/domain/promo"
)

const (
	getPromoByCodeSQL = `SELECT code, discount_type, value, min_items, description,
		valid_from, valid_until, max_uses, uses, max_discount
		FROM promo_codes WHERE code = UPPER($1) AND active`

	incrementPromoUsesSQL = `UPDATE promo_codes SET uses = uses + 1 WHERE code = UPPER($1)`

	upsertPromoSQL = `INSERT INTO promo_codes (code, discount_type, value, min_items, description,
		valid_from, valid_until, max_uses, max_discount)
		VALUES (UPPER($1), $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			min_items = EXCLUDED.min_items,
			description = EXCLUDED.description,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			max_uses = EXCLUDED.max_uses,
			max_discount = EXCLUDED.max_discount,
			active = TRUE`
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindByCode looks up an active promo rule by its code, case-insensitively.
// Returns promo.ErrInvalidPromo when no matching active code exists.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*promo.Rule, error) {
	rows, err := r.pool.Query(ctx, getPromoByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promo code %q: %w", code, err)
	}
	rule, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (promo.Rule, error) {
		var p promo.Rule
		err := row.Scan(
			&p.Code, &p.DiscountType, &p.Value, &p.MinItems, &p.Description,
			&p.ValidFrom, &p.ValidUntil, &p.MaxUses, &p.Uses, &p.MaxDiscount,
		)
		return p, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrInvalidPromo
		}
		return nil, fmt.Errorf("finding promo code %q: %w", code, err)
	}
	return &rule, nil
}

// IncrementUses bumps a code's usage counter.
func (r *PromoRepository) IncrementUses(ctx context.Context, code string) error {
	if _, err := r.pool.Exec(ctx, incrementPromoUsesSQL, code); err != nil {
		return fmt.Errorf("incrementing uses for %q: %w", code, err)
	}
	return nil
}

// Upsert inserts or reactivates a promo rule. Used by the ingest tool.
func (r *PromoRepository) Upsert(ctx context.Context, p *promo.Rule) error {
	_, err := r.pool.Exec(ctx, upsertPromoSQL,
		p.Code, p.DiscountType, p.Value, p.MinItems, p.Description,
		p.ValidFrom, p.ValidUntil, p.MaxUses, p.MaxDiscount,
	)
	if err != nil {
		return fmt.Errorf("upserting promo code %q: %w", p.Code, err)
	}
	return nil
}
