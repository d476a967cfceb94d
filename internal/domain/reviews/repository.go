package reviews

import "context"

type Repository interface {
	Create(ctx context.Context, rv Review) error
	GetByBooking(ctx context.Context, bookingID string) (Review, error)
	ListByListing(ctx context.Context, listingID string) ([]Review, error)
}
