package postgres

import (
	"context"
	"database/sql"

	"pet-sitting-marketplace/internal/domain/reviews"
)

type ReviewsRepo struct {
	db *sql.DB
}

func NewReviewsRepo(db *sql.DB) *ReviewsRepo {
	return &ReviewsRepo{db: db}
}

func (r *ReviewsRepo) Create(ctx context.Context, rv reviews.Review) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (
			id, booking_id, listing_id, owner_id, sitter_id,
			rating, comment, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rv.ID,
		rv.BookingID,
		rv.ListingID,
		rv.OwnerID,
		rv.SitterID,
		rv.Rating,
		rv.Comment,
		rv.CreatedAt,
	)
	return err
}

func (r *ReviewsRepo) GetByBooking(ctx context.Context, bookingID string) (reviews.Review, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, booking_id, listing_id, owner_id, sitter_id,
		       rating, comment, created_at
		FROM reviews
		WHERE booking_id = $1
	`, bookingID)

	rv, err := scanReview(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return reviews.Review{}, ErrNotFound
		}
		return reviews.Review{}, err
	}
	return rv, nil
}

func (r *ReviewsRepo) ListByListing(ctx context.Context, listingID string) ([]reviews.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, listing_id, owner_id, sitter_id,
		       rating, comment, created_at
		FROM reviews
		WHERE listing_id = $1
		ORDER BY created_at DESC
	`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reviews.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}

	return out, rows.Err()
}

func scanReview(row rowScanner) (reviews.Review, error) {
	var rv reviews.Review
	if err := row.Scan(
		&rv.ID,
		&rv.BookingID,
		&rv.ListingID,
		&rv.OwnerID,
		&rv.SitterID,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
	); err != nil {
		return reviews.Review{}, err
	}
	return rv, nil
}
