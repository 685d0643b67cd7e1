// Package payment wraps the external payment gateway: opening gateway
// orders for a computed amount and verifying the signature the gateway
// hands back to the browser after a successful payment.
package payment

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrSignatureMismatch is returned when the client-forwarded payment
// signature does not match the recomputed HMAC. Treated as a potential
// security incident by callers: nothing may be persisted.
var ErrSignatureMismatch = errors.New("payment signature mismatch")

// GatewayError wraps a failure talking to the payment gateway. Surfaced to
// the user as "failed to initiate payment"; never retried.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return "payment gateway: " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Gateway opens payment orders with the external processor.
type Gateway interface {
	// CreateOrder opens a gateway order for the amount in minor currency
	// units and returns the opaque gateway order id.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
}

// Callback is the triple the hosted payment widget returns to the browser
// on success, forwarded to the server for verification.
type Callback struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}
