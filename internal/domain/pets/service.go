package pets

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

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	Size      string
	CareNotes string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}

	species := Species(strings.TrimSpace(in.Species))
	switch species {
	case SpeciesDog, SpeciesCat, SpeciesOther:
	case "":
		species = SpeciesOther
	default:
		return Pet{}, ErrInvalidInput
	}

	size := Size(strings.TrimSpace(in.Size))
	switch size {
	case SizeSmall, SizeMedium, SizeLarge:
	case "":
		size = SizeMedium
	default:
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: strings.TrimSpace(ownerUserID),
		Name:        strings.TrimSpace(in.Name),
		Species:     species,
		Breed:       strings.TrimSpace(in.Breed),
		Size:        size,
		CareNotes:   strings.TrimSpace(in.CareNotes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// OwnsAll valida que todos los petIDs pertenezcan al owner.
// Lo consume el flujo de creación de bookings.
func (s *Service) OwnsAll(ctx context.Context, ownerUserID string, petIDs []string) (bool, error) {
	if len(petIDs) == 0 {
		return false, nil
	}
	for _, id := range petIDs {
		p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
		if err != nil {
			return false, nil
		}
		if p.OwnerUserID != ownerUserID {
			return false, nil
		}
	}
	return true, nil
}
