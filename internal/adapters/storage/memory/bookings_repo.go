package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-sitting-marketplace/internal/domain/bookings"
)

type bookingRepo struct {
	mu   sync.RWMutex
	byID map[string]bookings.Booking
}

func NewBookingRepo() bookings.Repository {
	return &bookingRepo{
		byID: make(map[string]bookings.Booking),
	}
}

func (r *bookingRepo) Create(ctx context.Context, b bookings.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("booking id required")
	}
	if _, exists := r.byID[b.ID]; exists {
		return errors.New("booking already exists")
	}
	r.byID[b.ID] = b
	return nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (bookings.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return bookings.Booking{}, ErrNotFound
	}
	return b, nil
}

// UpdateStatusFrom chequea el status esperado bajo el mismo lock que hace
// el write, que es lo que en Postgres resuelve el UPDATE condicional.
func (r *bookingRepo) UpdateStatusFrom(ctx context.Context, b bookings.Booking, expected bookings.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[b.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Status != expected {
		return bookings.ErrStatusConflict
	}
	r.byID[b.ID] = b
	return nil
}

func (r *bookingRepo) ListByOwner(ctx context.Context, ownerID string) ([]bookings.Booking, error) {
	return r.listBy(func(b bookings.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (r *bookingRepo) ListBySitter(ctx context.Context, sitterID string) ([]bookings.Booking, error) {
	return r.listBy(func(b bookings.Booking) bool { return b.SitterID == sitterID }), nil
}

func (r *bookingRepo) listBy(match func(bookings.Booking) bool) []bookings.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bookings.Booking, 0)
	for _, b := range r.byID {
		if match(b) {
			out = append(out, b)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}
