package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// MaxAddresses caps the number of saved addresses per user.
const MaxAddresses = 2

var (
	// ErrAddressNotFound is returned when an address does not exist or is
	// owned by another user.
	ErrAddressNotFound = errors.New("address not found")
	// ErrAddressLimit is returned when a user already has MaxAddresses
	// saved addresses.
	ErrAddressLimit = errors.New("address limit reached")
	// ErrInvalidAddress is returned for missing or malformed address fields.
	ErrInvalidAddress = errors.New("invalid address")
)

// Address is a saved shipping address. Checkout copies its fields into the
// order; it never references the row.
type Address struct {
	ID        string
	UserID    string
	Name      string
	Phone     string
	Line1     string
	Line2     string
	City      string
	State     string
	Pincode   string
	IsDefault bool
	CreatedAt time.Time
}

// Validate checks required fields, phone length and pincode length.
func (a *Address) Validate() error {
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

// AddressRepository defines persistence operations for saved addresses.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	GetByID(ctx context.Context, userID, id string) (*Address, error)
	// Create persists a new address. Implementations enforce MaxAddresses
	// and return ErrAddressLimit beyond it.
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	Delete(ctx context.Context, userID, id string) error
	// SetDefault marks one address default and clears the flag on the rest.
	SetDefault(ctx context.Context, userID, id string) error
}
