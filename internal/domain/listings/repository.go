package listings

import "context"

type Repository interface {
	Create(ctx context.Context, l Listing) error
	Update(ctx context.Context, l Listing) error
	GetByID(ctx context.Context, id string) (Listing, error)
	ListBySitter(ctx context.Context, sitterID string) ([]Listing, error)

	// ListActive filtra por ciudad si city != ""; si no, devuelve todos los
	// listings activos.
	ListActive(ctx context.Context, city string) ([]Listing, error)
}
