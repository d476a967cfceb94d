package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrBadState      = errors.New("booking not completed")
	ErrAlreadyExists = errors.New("review already exists for booking")
)

// BookingInfo es la proyección del booking que el módulo necesita para las
// precondiciones (la arma el handler desde el servicio de bookings).
type BookingInfo struct {
	ID        string
	ListingID string
	OwnerID   string
	SitterID  string
	Completed bool
}

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

func (s *Service) Create(ctx context.Context, b BookingInfo, actorID string, rating int, comment string) (Review, error) {
	actorID = strings.TrimSpace(actorID)
	if strings.TrimSpace(b.ID) == "" || actorID == "" {
		return Review{}, ErrInvalidInput
	}
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidInput
	}
	if actorID != b.OwnerID {
		return Review{}, ErrForbidden
	}
	if !b.Completed {
		return Review{}, ErrBadState
	}

	if _, err := s.repo.GetByBooking(ctx, b.ID); err == nil {
		return Review{}, ErrAlreadyExists
	}

	rv := Review{
		ID:        uuid.NewString(),
		BookingID: b.ID,
		ListingID: b.ListingID,
		OwnerID:   b.OwnerID,
		SitterID:  b.SitterID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (s *Service) ListByListing(ctx context.Context, listingID string) ([]Review, error) {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByListing(ctx, listingID)
}

// AverageForListing devuelve el promedio de rating y la cantidad de reviews.
// 0 reviews => promedio 0.
func (s *Service) AverageForListing(ctx context.Context, listingID string) (float64, int, error) {
	items, err := s.ListByListing(ctx, listingID)
	if err != nil {
		return 0, 0, err
	}
	if len(items) == 0 {
		return 0, 0, nil
	}

	sum := 0
	for _, rv := range items {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(items)), len(items), nil
}
