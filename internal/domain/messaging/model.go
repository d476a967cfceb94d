package messaging

import "time"

// Conversation es el hilo persistente entre un owner y un sitter.
// Se identifica por el par no ordenado de participantes: ParticipantA
// siempre es el user id lexicográficamente menor.
type Conversation struct {
	ID string

	ParticipantA string
	ParticipantB string

	CreatedAt time.Time
}

// Message pertenece a exactamente una conversación.
// Metadata etiqueta mensajes generados por el sistema (ver kinds en types.go).
type Message struct {
	ID             string
	ConversationID string

	SenderID string
	Text     string
	Metadata map[string]string

	CreatedAt time.Time
}
