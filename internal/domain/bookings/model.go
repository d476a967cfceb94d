package bookings

import "time"

// Booking representa una solicitud de cuidado sobre un rango de fechas.
// Nunca se borra físicamente: los estados terminales quedan en el historial.
type Booking struct {
	ID string

	ListingID string
	OwnerID   string
	SitterID  string
	PetIDs    []string

	StartDate time.Time // fecha (medianoche), inclusive
	EndDate   time.Time // fecha (medianoche), inclusive

	Status Status

	TotalPriceCents    *int64 // unidades menores de moneda; lo calcula el caller
	SpecialRequests    string
	CancellationReason string

	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time
}
