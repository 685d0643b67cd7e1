// Package pricing computes order totals from cart lines and store settings.
// It is a pure calculation with no side effects: idempotent by construction
// and safe to call from both display paths and the commit path.
package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/glowmart/glowmart-api/internal/domain/settings"
)

// ErrMalformedLine is returned for negative prices or non-positive
// quantities. Totals are never computed from malformed input.
var ErrMalformedLine = errors.New("malformed cart line")

var hundred = decimal.NewFromInt(100)

// Line is a priced cart line: unit price and quantity.
type Line struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the result of a pricing calculation. All amounts are rounded to
// 2 decimal places.
type Quote struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Calculate folds cart lines and store settings into a Quote:
//
//	subtotal = Σ unit_price * quantity
//	taxable  = subtotal - discount, floored at zero
//	tax      = taxable * tax_rate / 100
//	shipping = 0 when free_shipping_threshold > 0 and
//	           subtotal >= free_shipping_threshold, else delivery_charge
//	total    = taxable + tax + shipping
//
// The free-shipping decision uses the undiscounted subtotal, so promo codes
// cannot push a qualifying cart back into paid shipping.
func Calculate(lines []Line, s *settings.Settings, discount decimal.Decimal) (Quote, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			return Quote{}, errors.Wrapf(ErrMalformedLine, "product %s", l.ProductID)
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	tax := taxable.Mul(s.TaxRate).Div(hundred)

	shipping := s.DeliveryCharge
	if s.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(s.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	q := Quote{
		Subtotal:   subtotal.Round(2),
		Discount:   discount.Round(2),
		Tax:        tax.Round(2),
		Shipping:   shipping.Round(2),
	}
	q.GrandTotal = taxable.Add(tax).Add(shipping).Round(2)
	return q, nil
}

// MinorUnits converts a decimal amount into the payment gateway's minor
// currency unit (paise for INR), rounded to the nearest integer.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
