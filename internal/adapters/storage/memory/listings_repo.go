package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-sitting-marketplace/internal/domain/listings"
)

type listingRepo struct {
	mu   sync.RWMutex
	byID map[string]listings.Listing
}

func NewListingRepo() listings.Repository {
	return &listingRepo{
		byID: make(map[string]listings.Listing),
	}
}

func (r *listingRepo) Create(ctx context.Context, l listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("listing id required")
	}
	if _, exists := r.byID[l.ID]; exists {
		return errors.New("listing already exists")
	}
	r.byID[l.ID] = l
	return nil
}

func (r *listingRepo) Update(ctx context.Context, l listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[l.ID]; !exists {
		return ErrNotFound
	}
	r.byID[l.ID] = l
	return nil
}

func (r *listingRepo) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return listings.Listing{}, ErrNotFound
	}
	return l, nil
}

func (r *listingRepo) ListBySitter(ctx context.Context, sitterID string) ([]listings.Listing, error) {
	return r.listBy(func(l listings.Listing) bool { return l.SitterID == sitterID }), nil
}

func (r *listingRepo) ListActive(ctx context.Context, city string) ([]listings.Listing, error) {
	return r.listBy(func(l listings.Listing) bool {
		if !l.Active {
			return false
		}
		return city == "" || strings.EqualFold(l.City, city)
	}), nil
}

func (r *listingRepo) listBy(match func(listings.Listing) bool) []listings.Listing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listings.Listing, 0)
	for _, l := range r.byID {
		if match(l) {
			out = append(out, l)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}
