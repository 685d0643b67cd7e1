package review

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/glowmart/glowmart-api/internal/domain/order"
	"github.com/glowmart/glowmart-api/internal/realtime"
)

// DeliveryChecker answers whether a user has a delivered purchase of a
// product. Satisfied by order.Repository.
type DeliveryChecker interface {
	HasDeliveredProduct(ctx context.Context, userID, productID string) (bool, error)
}

var _ DeliveryChecker = (order.Repository)(nil)

// Service enforces the review gate before persisting anything.
type Service struct {
	reviews Repository
	orders  DeliveryChecker
	events  realtime.Publisher
}

// NewService creates a review Service.
func NewService(reviews Repository, orders DeliveryChecker, events realtime.Publisher) *Service {
	return &Service{reviews: reviews, orders: orders, events: events}
}

// SubmitRequest is the input for submitting a review.
type SubmitRequest struct {
	UserID    string
	ProductID string
	Rating    int
	Comment   string
	ImageURLs []string
}

// Submit checks both gate preconditions server-side, uniqueness per
// (user, product) and proof of a delivered purchase, and only then writes
// the review row.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	exists, err := s.reviews.Exists(ctx, req.UserID, req.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "check existing review")
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	delivered, err := s.orders.HasDeliveredProduct(ctx, req.UserID, req.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "check delivered purchase")
	}
	if !delivered {
		return nil, ErrPurchaseRequired
	}

	r := &Review{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		ImageURLs: req.ImageURLs,
		CreatedAt: time.Now(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, errors.Wrap(err, "create review")
	}

	_ = s.events.Publish(ctx, realtime.Event{Topic: realtime.TopicReviews, ID: r.ID})

	return r, nil
}
