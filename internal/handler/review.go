package handler

import (
	"net/http"
	"time"

	"github.com/glowmart/glowmart-api/internal/domain/review"
)

type reviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	ImageURLs []string  `json:"imageUrls,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReviewResponse(rv *review.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		UserID:    rv.UserID,
		ProductID: rv.ProductID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		ImageURLs: rv.ImageURLs,
		CreatedAt: rv.CreatedAt,
	}
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListByProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]reviewResponse, len(reviews))
	for i := range reviews {
		out[i] = toReviewResponse(&reviews[i])
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	var req struct {
		ProductID string   `json:"productId"`
		Rating    int      `json:"rating"`
		Comment   string   `json:"comment"`
		ImageURLs []string `json:"imageUrls"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rv, err := h.reviewSvc.Submit(r.Context(), review.SubmitRequest{
		UserID:    s.UserID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toReviewResponse(rv))
}
