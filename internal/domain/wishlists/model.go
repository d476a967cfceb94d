package wishlists

import "time"

// Item: un listing guardado por un owner. Una fila por (owner, listing).
type Item struct {
	ID        string
	OwnerID   string
	ListingID string
	CreatedAt time.Time
}
