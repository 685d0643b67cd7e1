// Package settings holds the single global configuration row governing tax,
// shipping and payment-method availability.
package settings

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Settings is the store-wide singleton configuration.
type Settings struct {
	Currency              string
	TaxName               string
	TaxRate               decimal.Decimal // percent, e.g. 5 means 5%
	DeliveryCharge        decimal.Decimal
	FreeShippingThreshold decimal.Decimal // 0 disables free shipping
	EnableCOD             bool
	EnableOnlinePayment   bool
	UpdatedAt             time.Time
}

// Repository reads and writes the singleton settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}
