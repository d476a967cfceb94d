package listings

import "time"

// Listing es el anuncio de un sitter: qué ofrece y a qué tarifa.
type Listing struct {
	ID       string
	SitterID string

	Title       string
	Description string
	City        string

	RatePerNightCents int64
	MaxPets           int

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
