package carerequests

import "time"

// RequestType es el tipo de nudge de foto que pide el owner.
type RequestType string

const (
	TypeWalk RequestType = "walk"
	TypeFeed RequestType = "feed"
	TypePlay RequestType = "play"
)

func ValidType(t RequestType) bool {
	switch t {
	case TypeWalk, TypeFeed, TypePlay:
		return true
	}
	return false
}

// LogEntry es el registro append-only de cada care request emitido.
// Solo existe para aplicar el cooldown: nunca se actualiza.
type LogEntry struct {
	ID string

	BookingID string
	OwnerID   string
	SitterID  string

	Type RequestType

	ConversationID string
	MessageID      string

	CreatedAt time.Time
}

// BookingRef es la proyección mínima del booking que necesita el guard.
// Evita importarse el módulo bookings completo.
type BookingRef struct {
	ID       string
	OwnerID  string
	SitterID string
}
