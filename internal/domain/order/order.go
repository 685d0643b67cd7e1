package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"    // placed, awaiting payment or dispatch (COD)
	StatusPaid       Status = "paid"       // online payment verified
	StatusProcessing Status = "processing" // being packed
	StatusShipped    Status = "shipped"    // handed to the courier
	StatusDelivered  Status = "delivered"  // received by the customer
	StatusCancelled  Status = "cancelled"
)

// PaymentMethod enumerates the accepted payment methods.
type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodUPI  PaymentMethod = "upi"
	MethodCOD  PaymentMethod = "cod"
)

var (
	// ErrNotFound is returned when an order does not exist or is owned by
	// another user.
	ErrNotFound = errors.New("order not found")
	// ErrNotCancellable is returned when a customer tries to cancel an
	// order that has progressed past pending.
	ErrNotCancellable = errors.New("order can no longer be cancelled")
	// ErrInvalidStatus is returned for unknown status values on admin
	// status updates.
	ErrInvalidStatus = errors.New("invalid order status")
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// AddressSnapshot is the denormalized copy of the shipping address stored
// on the order. Later address edits never change it.
type AddressSnapshot struct {
	Name    string
	Phone   string
	Line1   string
	Line2   string
	City    string
	State   string
	Pincode string
}

// ErrInvalidAddress is returned for missing or malformed shipping fields.
var ErrInvalidAddress = errors.New("invalid shipping address")

// Validate checks required fields, phone length and pincode length.
func (a *AddressSnapshot) Validate() error {
	for _, f := range []string{a.Name, a.Line1, a.City, a.State} {
		if strings.TrimSpace(f) == "" {
			return ErrInvalidAddress
		}
	}
	if n := len(strings.TrimSpace(a.Phone)); n < 10 || n > 15 {
		return ErrInvalidAddress
	}
	if len(strings.TrimSpace(a.Pincode)) != 6 {
		return ErrInvalidAddress
	}
	return nil
}

// Order is a committed purchase with immutable line-item snapshots.
type Order struct {
	ID            string
	UserID        string
	Status        Status
	PaymentMethod PaymentMethod
	PaymentRef    string // gateway payment id, empty for COD
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	PromoCode     string
	ShipTo        AddressSnapshot
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item snapshots one purchased line: product identity, name and unit price
// at time of purchase, decoupled from the live catalog row.
type Item struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// CancellableBy reports whether the given user may cancel the order:
// owners only, and only while the order is still pending.
func (o *Order) CancellableBy(userID string) bool {
	return o.UserID == userID && o.Status == StatusPending
}

// StockChange pairs a product with the quantity to subtract from its stock.
type StockChange struct {
	ProductID string
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CommitOrder atomically inserts the order with its items, applies the
	// stock decrements (conditionally: each fails when remaining stock is
	// insufficient), and clears the user's cart. Nothing is persisted when
	// any step fails.
	CommitOrder(ctx context.Context, o *Order, changes []StockChange) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// ListSince returns orders created at or after the given time. A zero
	// time returns all orders.
	ListSince(ctx context.Context, since time.Time) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// HasDeliveredProduct reports whether the user owns a delivered order
	// containing the product. Used by the review gate.
	HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error)
}
