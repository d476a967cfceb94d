package carerequests

import "context"

type Repository interface {
	// Create agrega una entrada al log. El log es append-only.
	Create(ctx context.Context, e LogEntry) error

	// LatestFor devuelve la entrada más reciente para (bookingID, type),
	// o ErrNoEntry si nunca se emitió un request de ese tipo.
	LatestFor(ctx context.Context, bookingID string, t RequestType) (LogEntry, error)

	ListByBooking(ctx context.Context, bookingID string) ([]LogEntry, error)
}
