package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-sitting-marketplace/internal/domain/wishlists"
)

type wishlistRepo struct {
	mu sync.RWMutex
	// key: ownerID + "|" + listingID
	byKey map[string]wishlists.Item
}

func NewWishlistRepo() wishlists.Repository {
	return &wishlistRepo{
		byKey: make(map[string]wishlists.Item),
	}
}

func wishlistKey(ownerID, listingID string) string {
	return ownerID + "|" + listingID
}

func (r *wishlistRepo) Save(ctx context.Context, it wishlists.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(it.ID) == "" {
		return errors.New("wishlist item id required")
	}
	r.byKey[wishlistKey(it.OwnerID, it.ListingID)] = it
	return nil
}

func (r *wishlistRepo) Remove(ctx context.Context, ownerID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := wishlistKey(ownerID, listingID)
	if _, ok := r.byKey[key]; !ok {
		return wishlists.ErrNotFound
	}
	delete(r.byKey, key)
	return nil
}

func (r *wishlistRepo) Get(ctx context.Context, ownerID, listingID string) (wishlists.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.byKey[wishlistKey(ownerID, listingID)]
	if !ok {
		return wishlists.Item{}, ErrNotFound
	}
	return it, nil
}

func (r *wishlistRepo) ListByOwner(ctx context.Context, ownerID string) ([]wishlists.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]wishlists.Item, 0)
	for _, it := range r.byKey {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}
