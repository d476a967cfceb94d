package bookings

import "context"

type Repository interface {
	Create(ctx context.Context, b Booking) error
	GetByID(ctx context.Context, id string) (Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Booking, error)
	ListBySitter(ctx context.Context, sitterID string) ([]Booking, error)

	// UpdateStatusFrom persiste b solo si el status almacenado todavía es
	// expected. Si otro request ganó la carrera devuelve ErrStatusConflict.
	UpdateStatusFrom(ctx context.Context, b Booking, expected Status) error
}
