package wishlists

import "context"

type Repository interface {
	Save(ctx context.Context, it Item) error
	Remove(ctx context.Context, ownerID, listingID string) error
	Get(ctx context.Context, ownerID, listingID string) (Item, error)

	// ListByOwner devuelve los items del owner, más reciente primero.
	ListByOwner(ctx context.Context, ownerID string) ([]Item, error)
}
