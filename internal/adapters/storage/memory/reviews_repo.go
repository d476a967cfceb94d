package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-sitting-marketplace/internal/domain/reviews"
)

type reviewRepo struct {
	mu   sync.RWMutex
	byID map[string]reviews.Review
}

func NewReviewRepo() reviews.Repository {
	return &reviewRepo{
		byID: make(map[string]reviews.Review),
	}
}

func (r *reviewRepo) Create(ctx context.Context, rv reviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rv.ID) == "" {
		return errors.New("review id required")
	}
	if _, exists := r.byID[rv.ID]; exists {
		return errors.New("review already exists")
	}
	for _, existing := range r.byID {
		if existing.BookingID == rv.BookingID {
			return errors.New("booking already reviewed")
		}
	}
	r.byID[rv.ID] = rv
	return nil
}

func (r *reviewRepo) GetByBooking(ctx context.Context, bookingID string) (reviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rv := range r.byID {
		if rv.BookingID == bookingID {
			return rv, nil
		}
	}
	return reviews.Review{}, ErrNotFound
}

func (r *reviewRepo) ListByListing(ctx context.Context, listingID string) ([]reviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]reviews.Review, 0)
	for _, rv := range r.byID {
		if rv.ListingID == listingID {
			out = append(out, rv)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
