package listings

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
	ErrForbidden    = errors.New("forbidden")
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

type CreateInput struct {
	Title             string
	Description       string
	City              string
	RatePerNightCents int64
	MaxPets           int
}

func (s *Service) Create(ctx context.Context, sitterID string, in CreateInput) (Listing, error) {
	sitterID = strings.TrimSpace(sitterID)
	if sitterID == "" {
		return Listing{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return Listing{}, ErrInvalidInput
	}
	if in.RatePerNightCents <= 0 {
		return Listing{}, ErrInvalidInput
	}
	if in.MaxPets <= 0 {
		in.MaxPets = 1
	}

	now := s.now()
	l := Listing{
		ID:                uuid.NewString(),
		SitterID:          sitterID,
		Title:             strings.TrimSpace(in.Title),
		Description:       strings.TrimSpace(in.Description),
		City:              strings.TrimSpace(in.City),
		RatePerNightCents: in.RatePerNightCents,
		MaxPets:           in.MaxPets,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return Listing{}, err
	}
	return l, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Listing{}, ErrInvalidInput
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Listing{}, ErrNotFound
	}
	return l, nil
}

func (s *Service) ListBySitter(ctx context.Context, sitterID string) ([]Listing, error) {
	sitterID = strings.TrimSpace(sitterID)
	if sitterID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListBySitter(ctx, sitterID)
}

func (s *Service) ListActive(ctx context.Context, city string) ([]Listing, error) {
	return s.repo.ListActive(ctx, strings.TrimSpace(city))
}

// Deactivate apaga el listing sin borrarlo (los bookings lo siguen
// referenciando).
func (s *Service) Deactivate(ctx context.Context, id, sitterID string) (Listing, error) {
	l, err := s.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if l.SitterID != strings.TrimSpace(sitterID) {
		return Listing{}, ErrForbidden
	}
	if !l.Active {
		return l, nil
	}

	l.Active = false
	l.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, l); err != nil {
		return Listing{}, err
	}
	return l, nil
}

// ListingTitle implementa bookings.ListingDirectory.
func (s *Service) ListingTitle(ctx context.Context, listingID string) (string, error) {
	l, err := s.GetByID(ctx, listingID)
	if err != nil {
		return "", err
	}
	return l.Title, nil
}
