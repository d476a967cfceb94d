package pets

import "time"

// Species define las especies soportadas.
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// Size orienta al sitter sobre el porte del animal.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Pet es el perfil de una mascota del owner; los bookings referencian sus ids.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species Species
	Breed   string
	Size    Size

	// CareNotes: alimentación, medicación, manías. Lo ve el sitter.
	CareNotes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
