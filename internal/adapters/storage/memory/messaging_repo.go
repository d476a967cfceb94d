package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-sitting-marketplace/internal/domain/messaging"
)

type messagingRepo struct {
	mu            sync.RWMutex
	conversations map[string]messaging.Conversation
	// messages por conversación, en orden de inserción
	messages map[string][]messaging.Message
}

func NewMessagingRepo() messaging.Repository {
	return &messagingRepo{
		conversations: make(map[string]messaging.Conversation),
		messages:      make(map[string][]messaging.Message),
	}
}

func (r *messagingRepo) CreateConversation(ctx context.Context, c messaging.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("conversation id required")
	}
	if _, exists := r.conversations[c.ID]; exists {
		return errors.New("conversation already exists")
	}
	for _, existing := range r.conversations {
		if existing.ParticipantA == c.ParticipantA && existing.ParticipantB == c.ParticipantB {
			return errors.New("conversation pair already exists")
		}
	}
	r.conversations[c.ID] = c
	return nil
}

func (r *messagingRepo) GetConversation(ctx context.Context, id string) (messaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[id]
	if !ok {
		return messaging.Conversation{}, ErrNotFound
	}
	return c, nil
}

func (r *messagingRepo) GetConversationByPair(ctx context.Context, a, b string) (messaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.conversations {
		if c.ParticipantA == a && c.ParticipantB == b {
			return c, nil
		}
	}
	return messaging.Conversation{}, ErrNotFound
}

func (r *messagingRepo) ListConversationsByUser(ctx context.Context, userID string) ([]messaging.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]messaging.Conversation, 0)
	for _, c := range r.conversations {
		if c.ParticipantA == userID || c.ParticipantB == userID {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *messagingRepo) CreateMessage(ctx context.Context, m messaging.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("message id required")
	}
	if _, ok := r.conversations[m.ConversationID]; !ok {
		return ErrNotFound
	}
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	return nil
}

func (r *messagingRepo) ListMessages(ctx context.Context, conversationID string) ([]messaging.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.messages[conversationID]
	out := make([]messaging.Message, len(msgs))
	copy(out, msgs)

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}
