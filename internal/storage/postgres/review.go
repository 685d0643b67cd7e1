package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowmart/glowmart-api/internal/domain/review"
)

const (
	insertReviewSQL = `INSERT INTO reviews (id, user_id, product_id, rating, comment, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6)`

	reviewExistsSQL = `SELECT EXISTS (
		SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`

	listReviewsByProductSQL = `SELECT id, user_id, product_id, rating, comment, image_urls, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create persists a review. The (user_id, product_id) unique constraint
// backs the one-review-per-product rule even under concurrent submissions.
func (r *ReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	_, err := r.pool.Exec(ctx, insertReviewSQL,
		rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Comment, rv.ImageURLs,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return review.ErrAlreadyReviewed
		}
		return fmt.Errorf("creating review %q: %w", rv.ID, err)
	}
	return nil
}

// Exists reports whether the user already reviewed the product.
func (r *ReviewRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, reviewExistsSQL, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking review existence: %w", err)
	}
	return exists, nil
}

// ListByProduct returns a product's reviews, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]review.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (review.Review, error) {
		var rv review.Review
		err := row.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.ImageURLs, &rv.CreatedAt)
		return rv, err
	})
}
