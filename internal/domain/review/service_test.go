package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowmart/glowmart-api/internal/realtime"
)

type mockReviewRepo struct {
	existing map[string]bool
	created  []*Review
}

func (m *mockReviewRepo) Create(_ context.Context, r *Review) error {
	m.created = append(m.created, r)
	return nil
}

func (m *mockReviewRepo) Exists(_ context.Context, userID, productID string) (bool, error) {
	return m.existing[userID+"/"+productID], nil
}

func (m *mockReviewRepo) ListByProduct(context.Context, string) ([]Review, error) {
	return nil, nil
}

type mockDelivery struct {
	delivered map[string]bool
}

func (m *mockDelivery) HasDeliveredProduct(_ context.Context, userID, productID string) (bool, error) {
	return m.delivered[userID+"/"+productID], nil
}

func newService(reviews *mockReviewRepo, delivery *mockDelivery) *Service {
	if reviews.existing == nil {
		reviews.existing = map[string]bool{}
	}
	if delivery.delivered == nil {
		delivery.delivered = map[string]bool{}
	}
	return NewService(reviews, delivery, realtime.Nop{})
}

func TestSubmit_RatingOutOfRange(t *testing.T) {
	svc := newService(&mockReviewRepo{}, &mockDelivery{})

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Submit(context.Background(), SubmitRequest{
			UserID: "u1", ProductID: "p1", Rating: rating,
		})
		require.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
}

func TestSubmit_WithoutDeliveredPurchase(t *testing.T) {
	reviews := &mockReviewRepo{}
	svc := newService(reviews, &mockDelivery{})

	_, err := svc.Submit(context.Background(), SubmitRequest{
		UserID: "u1", ProductID: "p1", Rating: 5,
	})
	require.ErrorIs(t, err, ErrPurchaseRequired)
	assert.Empty(t, reviews.created)
}

func TestSubmit_DuplicateReview(t *testing.T) {
	reviews := &mockReviewRepo{existing: map[string]bool{"u1/p1": true}}
	delivery := &mockDelivery{delivered: map[string]bool{"u1/p1": true}}
	svc := newService(reviews, delivery)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		UserID: "u1", ProductID: "p1", Rating: 4,
	})
	require.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Empty(t, reviews.created)
}

func TestSubmit_Success(t *testing.T) {
	reviews := &mockReviewRepo{}
	delivery := &mockDelivery{delivered: map[string]bool{"u1/p1": true}}
	svc := newService(reviews, delivery)

	r, err := svc.Submit(context.Background(), SubmitRequest{
		UserID:    "u1",
		ProductID: "p1",
		Rating:    4,
		Comment:   "lovely texture",
		ImageURLs: []string{"https://cdn.example.com/r1.jpg"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 4, r.Rating)
	require.Len(t, reviews.created, 1)
	assert.Equal(t, r, reviews.created[0])
}

func TestSubmit_SameProductDifferentUsers(t *testing.T) {
	reviews := &mockReviewRepo{}
	delivery := &mockDelivery{delivered: map[string]bool{"u1/p1": true, "u2/p1": true}}
	svc := newService(reviews, delivery)

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: "u1", ProductID: "p1", Rating: 5})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), SubmitRequest{UserID: "u2", ProductID: "p1", Rating: 3})
	require.NoError(t, err)

	assert.Len(t, reviews.created, 2)
}
