package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrAlreadyReviewed is returned when the user has already reviewed
	// the product.
	ErrAlreadyReviewed = errors.New("product already reviewed")
	// ErrPurchaseRequired is returned when the user has no delivered
	// purchase of the product.
	ErrPurchaseRequired = errors.New("a delivered purchase is required to review")
	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Review is a customer's verdict on a purchased product. At most one per
// (user, product) pair.
type Review struct {
	ID        string
	UserID    string
	ProductID string
	Rating    int
	Comment   string
	ImageURLs []string
	CreatedAt time.Time
}

// Repository defines persistence operations for reviews.
type Repository interface {
	// Create persists a review. Implementations return ErrAlreadyReviewed
	// when a (user, product) review already exists.
	Create(ctx context.Context, r *Review) error
	Exists(ctx context.Context, userID, productID string) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
}
