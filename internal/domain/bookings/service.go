package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-sitting-marketplace/internal/domain/messaging"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrBadState     = errors.New("invalid state")

	// ErrStatusConflict: el status en el store cambió entre la lectura y el
	// update (p.ej. dos accepts concurrentes sobre el mismo pending).
	ErrStatusConflict = errors.New("status conflict")
)

// Messenger publica los avisos de chat que acompañan accept/decline.
type Messenger interface {
	PostSystemMessage(ctx context.Context, conversationID, senderID, text string, metadata map[string]string) (string, error)
}

// ListingDirectory resuelve el título del listing para los avisos.
type ListingDirectory interface {
	ListingTitle(ctx context.Context, listingID string) (string, error)
}

type Service struct {
	repo      Repository
	messenger Messenger
	listings  ListingDirectory
	now       func() time.Time
}

func NewService(repo Repository, messenger Messenger, listings ListingDirectory) *Service {
	return &Service{
		repo:      repo,
		messenger: messenger,
		listings:  listings,
		now:       time.Now,
	}
}

type CreateInput struct {
	ListingID       string
	OwnerID         string
	SitterID        string
	PetIDs          []string
	StartDate       time.Time
	EndDate         time.Time
	TotalPriceCents *int64
	SpecialRequests string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Booking, error) {
	listingID := strings.TrimSpace(in.ListingID)
	ownerID := strings.TrimSpace(in.OwnerID)
	sitterID := strings.TrimSpace(in.SitterID)

	if listingID == "" || ownerID == "" || sitterID == "" {
		return Booking{}, ErrInvalidInput
	}
	if ownerID == sitterID {
		return Booking{}, ErrInvalidInput
	}
	if len(in.PetIDs) == 0 {
		return Booking{}, ErrInvalidInput
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || !in.StartDate.Before(in.EndDate) {
		return Booking{}, ErrInvalidInput
	}

	b := Booking{
		ID:              uuid.NewString(),
		ListingID:       listingID,
		OwnerID:         ownerID,
		SitterID:        sitterID,
		PetIDs:          in.PetIDs,
		StartDate:       midnight(in.StartDate),
		EndDate:         midnight(in.EndDate),
		Status:          StatusPending,
		TotalPriceCents: in.TotalPriceCents,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		CreatedAt:       s.now(),
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Booking{}, ErrInvalidInput
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Booking, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListBySitter(ctx context.Context, sitterID string) ([]Booking, error) {
	return s.repo.ListBySitter(ctx, sitterID)
}

// StatusChange es el resultado de accept/decline.
// NotifyErr != nil significa éxito degradado: el cambio de status quedó
// persistido pero el aviso de chat no se entregó. Nunca se silencia.
type StatusChange struct {
	Booking   Booking
	NotifyErr error
}

// Accept confirma un booking pending. Solo el sitter del booking puede
// aceptar. Después de persistir el cambio publica el aviso en la
// conversación indicada; si el aviso falla, el cambio NO se revierte y el
// fallo se reporta en StatusChange.NotifyErr.
func (s *Service) Accept(ctx context.Context, bookingID, sitterActorID, conversationID string) (StatusChange, error) {
	b, err := s.loadForSitter(ctx, bookingID, sitterActorID)
	if err != nil {
		return StatusChange{}, err
	}
	if b.Status != StatusPending {
		return StatusChange{}, ErrBadState
	}

	now := s.now()
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now

	if err := s.repo.UpdateStatusFrom(ctx, b, StatusPending); err != nil {
		return StatusChange{}, err
	}

	text := fmt.Sprintf("Booking accepted! %s, %s.", s.listingTitle(ctx, b.ListingID), dateRange(b))
	notifyErr := s.postNotice(ctx, conversationID, sitterActorID, text, messaging.KindBookingAccepted, b.ID)

	return StatusChange{Booking: b, NotifyErr: notifyErr}, nil
}

// Decline rechaza un booking pending. Mismas precondiciones que Accept.
func (s *Service) Decline(ctx context.Context, bookingID, sitterActorID, conversationID, reason string) (StatusChange, error) {
	b, err := s.loadForSitter(ctx, bookingID, sitterActorID)
	if err != nil {
		return StatusChange{}, err
	}
	if b.Status != StatusPending {
		return StatusChange{}, ErrBadState
	}

	now := s.now()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.CancellationReason = strings.TrimSpace(reason)

	if err := s.repo.UpdateStatusFrom(ctx, b, StatusPending); err != nil {
		return StatusChange{}, err
	}

	text := fmt.Sprintf("Booking declined: %s, %s.", s.listingTitle(ctx, b.ListingID), dateRange(b))
	if b.CancellationReason != "" {
		text += " Reason: " + b.CancellationReason
	}
	notifyErr := s.postNotice(ctx, conversationID, sitterActorID, text, messaging.KindBookingDeclined, b.ID)

	return StatusChange{Booking: b, NotifyErr: notifyErr}, nil
}

// Cancel lo puede invocar cualquiera de las dos partes sobre un booking no
// terminal. No publica aviso de chat.
func (s *Service) Cancel(ctx context.Context, bookingID, actorID, reason string) (Booking, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return Booking{}, ErrInvalidInput
	}

	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if actorID != b.OwnerID && actorID != b.SitterID {
		return Booking{}, ErrForbidden
	}
	if b.Status.Terminal() {
		return Booking{}, ErrBadState
	}

	prev := b.Status
	now := s.now()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.CancellationReason = strings.TrimSpace(reason)

	if err := s.repo.UpdateStatusFrom(ctx, b, prev); err != nil {
		return Booking{}, err
	}
	return b, nil
}

// Start marca el comienzo de la estadía: confirmed -> in_progress.
// Solo el sitter, y no antes de la fecha de inicio.
func (s *Service) Start(ctx context.Context, bookingID, sitterActorID string) (Booking, error) {
	b, err := s.loadForSitter(ctx, bookingID, sitterActorID)
	if err != nil {
		return Booking{}, err
	}
	if b.Status != StatusConfirmed {
		return Booking{}, ErrBadState
	}
	if midnight(s.now()).Before(midnight(b.StartDate)) {
		return Booking{}, ErrBadState
	}

	b.Status = StatusInProgress
	if err := s.repo.UpdateStatusFrom(ctx, b, StatusConfirmed); err != nil {
		return Booking{}, err
	}
	return b, nil
}

// Complete cierra la estadía: confirmed|in_progress -> completed.
func (s *Service) Complete(ctx context.Context, bookingID, sitterActorID string) (Booking, error) {
	b, err := s.loadForSitter(ctx, bookingID, sitterActorID)
	if err != nil {
		return Booking{}, err
	}
	if !CanTransition(b.Status, StatusCompleted) {
		return Booking{}, ErrBadState
	}

	prev := b.Status
	now := s.now()
	b.Status = StatusCompleted
	b.CompletedAt = &now

	if err := s.repo.UpdateStatusFrom(ctx, b, prev); err != nil {
		return Booking{}, err
	}
	return b, nil
}

// Grouped devuelve los bookings del usuario particionados en
// current/upcoming/past según el día de hoy.
func (s *Service) Grouped(ctx context.Context, userID string, asSitter bool) (Grouped, error) {
	var (
		items []Booking
		err   error
	)
	if asSitter {
		items, err = s.repo.ListBySitter(ctx, userID)
	} else {
		items, err = s.repo.ListByOwner(ctx, userID)
	}
	if err != nil {
		return Grouped{}, err
	}
	return Categorize(items, s.now()), nil
}

func (s *Service) loadForSitter(ctx context.Context, bookingID, sitterActorID string) (Booking, error) {
	sitterActorID = strings.TrimSpace(sitterActorID)
	if sitterActorID == "" {
		return Booking{}, ErrInvalidInput
	}
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	if b.SitterID != sitterActorID {
		return Booking{}, ErrForbidden
	}
	return b, nil
}

func (s *Service) listingTitle(ctx context.Context, listingID string) string {
	if s.listings == nil {
		return "your booking"
	}
	title, err := s.listings.ListingTitle(ctx, listingID)
	if err != nil || strings.TrimSpace(title) == "" {
		// El aviso sigue saliendo aunque no podamos resolver el título.
		return "your booking"
	}
	return title
}

func (s *Service) postNotice(ctx context.Context, conversationID, senderID, text, kind, bookingID string) error {
	if s.messenger == nil {
		return errors.New("messenger not configured")
	}
	_, err := s.messenger.PostSystemMessage(ctx, conversationID, senderID, text, map[string]string{
		messaging.MetaKind:      kind,
		messaging.MetaBookingID: bookingID,
	})
	return err
}

func dateRange(b Booking) string {
	const layout = "Jan 2, 2006"
	return b.StartDate.Format(layout) + " to " + b.EndDate.Format(layout)
}
