package wishlists

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Save es idempotente: guardar dos veces el mismo listing devuelve el item
// existente.
func (s *Service) Save(ctx context.Context, ownerID, listingID string) (Item, error) {
	ownerID = strings.TrimSpace(ownerID)
	listingID = strings.TrimSpace(listingID)
	if ownerID == "" || listingID == "" {
		return Item{}, ErrInvalidInput
	}

	if existing, err := s.repo.Get(ctx, ownerID, listingID); err == nil {
		return existing, nil
	}

	it := Item{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ListingID: listingID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Save(ctx, it); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *Service) Remove(ctx context.Context, ownerID, listingID string) error {
	ownerID = strings.TrimSpace(ownerID)
	listingID = strings.TrimSpace(listingID)
	if ownerID == "" || listingID == "" {
		return ErrInvalidInput
	}
	return s.repo.Remove(ctx, ownerID, listingID)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Item, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerID)
}
