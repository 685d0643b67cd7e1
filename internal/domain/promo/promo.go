package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promo discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountFreeLowest removes the cost of the cheapest item in the cart.
	DiscountFreeLowest DiscountType = "free_lowest"
)

var (
	// ErrInvalidPromo is returned when a promo code is not found or the
	// cart does not satisfy the code's minimum item requirement.
	ErrInvalidPromo = errors.New("invalid promo code")
	// ErrExpired is returned when a code is outside its valid time window.
	ErrExpired = errors.New("promo code expired")
	// ErrUsageLimitReached is returned when a code has exhausted its
	// allowed uses.
	ErrUsageLimitReached = errors.New("promo code usage limit reached")
)

// Rule defines a promo code's discount behaviour and eligibility constraints.
type Rule struct {
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	MinItems     int
	Description  string
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	MaxUses      int
	Uses         int
	MaxDiscount  decimal.Decimal
}

// Discount holds the computed discount amount and a human-readable
// description.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// Item represents a cart line for discount calculation purposes.
type Item struct {
	ProductID string
	Price     decimal.Decimal
	Quantity  int
}

// Repository provides lookup and mutation of promo rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}
