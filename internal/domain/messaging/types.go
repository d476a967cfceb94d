package messaging

// Claves/valores de Metadata para mensajes generados por el sistema.
const (
	MetaKind      = "kind"
	MetaBookingID = "booking_id"
	MetaRequest   = "request_type"

	KindBookingAccepted = "booking_accepted"
	KindBookingDeclined = "booking_declined"
	KindCareRequest     = "care_request"
)
