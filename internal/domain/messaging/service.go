package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-sitting-marketplace/internal/platform/logger"
	"pet-sitting-marketplace/internal/ports/notify"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo   Repository
	pusher notify.Pusher // opcional; nil => sin push
	log    logger.Logger // opcional
	now    func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithPusher habilita notificaciones push best-effort al otro participante.
func (s *Service) WithPusher(p notify.Pusher, log logger.Logger) *Service {
	s.pusher = p
	s.log = log
	return s
}

// canonicalPair ordena el par de participantes para que GetOrCreate sea
// idempotente sin importar el orden de los argumentos.
func canonicalPair(a, b string) (string, string) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if b < a {
		return b, a
	}
	return a, b
}

func (s *Service) GetOrCreate(ctx context.Context, userA, userB string) (Conversation, error) {
	a, b := canonicalPair(userA, userB)
	if a == "" || b == "" || a == b {
		return Conversation{}, ErrInvalidInput
	}

	if c, err := s.repo.GetConversationByPair(ctx, a, b); err == nil {
		return c, nil
	}

	c := Conversation{
		ID:           uuid.NewString(),
		ParticipantA: a,
		ParticipantB: b,
		CreatedAt:    s.now(),
	}

	if err := s.repo.CreateConversation(ctx, c); err != nil {
		// Carrera posible: otro request creó el mismo par primero.
		if existing, lookupErr := s.repo.GetConversationByPair(ctx, a, b); lookupErr == nil {
			return existing, nil
		}
		return Conversation{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Conversation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Conversation{}, ErrInvalidInput
	}
	c, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		return Conversation{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListConversationsByUser(ctx, userID)
}

type SendInput struct {
	ConversationID string
	SenderID       string
	Text           string
	Metadata       map[string]string
}

func (s *Service) Send(ctx context.Context, in SendInput) (Message, error) {
	convID := strings.TrimSpace(in.ConversationID)
	senderID := strings.TrimSpace(in.SenderID)
	text := strings.TrimSpace(in.Text)

	if convID == "" || senderID == "" || text == "" {
		return Message{}, ErrInvalidInput
	}

	c, err := s.repo.GetConversation(ctx, convID)
	if err != nil {
		return Message{}, ErrNotFound
	}
	if senderID != c.ParticipantA && senderID != c.ParticipantB {
		return Message{}, ErrForbidden
	}

	m := Message{
		ID:             uuid.NewString(),
		ConversationID: c.ID,
		SenderID:       senderID,
		Text:           text,
		Metadata:       in.Metadata,
		CreatedAt:      s.now(),
	}

	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return Message{}, err
	}

	s.pushToOther(ctx, c, m)

	return m, nil
}

func (s *Service) ListMessages(ctx context.Context, conversationID, requesterID string) ([]Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	requesterID = strings.TrimSpace(requesterID)
	if conversationID == "" || requesterID == "" {
		return nil, ErrInvalidInput
	}

	c, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, ErrNotFound
	}
	if requesterID != c.ParticipantA && requesterID != c.ParticipantB {
		return nil, ErrForbidden
	}

	return s.repo.ListMessages(ctx, conversationID)
}

// GetOrCreateConversation es el contrato que consumen bookings/carerequests.
func (s *Service) GetOrCreateConversation(ctx context.Context, userA, userB string) (string, error) {
	c, err := s.GetOrCreate(ctx, userA, userB)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// PostSystemMessage publica un mensaje generado por el sistema en nombre de
// senderID (el actor de la operación que lo disparó).
func (s *Service) PostSystemMessage(ctx context.Context, conversationID, senderID, text string, metadata map[string]string) (string, error) {
	m, err := s.Send(ctx, SendInput{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Metadata:       metadata,
	})
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// pushToOther notifica al otro participante. Nunca falla el envío:
// si el push falla solo se loguea.
func (s *Service) pushToOther(ctx context.Context, c Conversation, m Message) {
	if s.pusher == nil {
		return
	}

	other := c.ParticipantA
	if m.SenderID == c.ParticipantA {
		other = c.ParticipantB
	}

	err := s.pusher.Push(ctx, notify.Push{
		UserID: other,
		Title:  "New message",
		Body:   m.Text,
		Data: map[string]string{
			"conversation_id": c.ID,
			"message_id":      m.ID,
		},
	})
	if err != nil && s.log != nil {
		s.log.Warn("push notification failed", map[string]any{
			"conversation_id": c.ID,
			"user_id":         other,
			"error":           err.Error(),
		})
	}
}
