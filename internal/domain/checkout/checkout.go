// Package checkout implements the order pipeline: quoting a cart, opening a
// payment with the gateway, and committing a verified order. Totals are
// always recomputed server-side from the live cart and settings; nothing
// price-related is ever trusted from the client.
package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrMethodDisabled is returned when the requested payment method is
	// switched off in store settings.
	ErrMethodDisabled = errors.New("payment method is disabled")
	// ErrInvalidMethod is returned for unknown payment methods.
	ErrInvalidMethod = errors.New("invalid payment method")
)

// ProductUnavailableError indicates a cart line references a product that is
// hidden or deleted.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is unavailable", e.ProductID)
}

// InsufficientStockError indicates a cart line's quantity exceeds the live
// stock of its product.
type InsufficientStockError struct {
	ProductID string
	Requested int
	InStock   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, have %d",
		e.ProductID, e.Requested, e.InStock)
}
