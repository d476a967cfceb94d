package messaging

import "context"

type Repository interface {
	CreateConversation(ctx context.Context, c Conversation) error
	GetConversation(ctx context.Context, id string) (Conversation, error)

	// GetConversationByPair busca por el par canónico (a < b).
	GetConversationByPair(ctx context.Context, a, b string) (Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]Conversation, error)

	CreateMessage(ctx context.Context, m Message) error

	// ListMessages devuelve los mensajes de la conversación ordenados por
	// CreatedAt ascendente.
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
}
