package reviews

import "time"

// Review: el owner califica al sitter después de un booking completado.
// Máximo una review por booking.
type Review struct {
	ID string

	BookingID string
	ListingID string
	OwnerID   string
	SitterID  string

	Rating  int // 1..5
	Comment string

	CreatedAt time.Time
}
