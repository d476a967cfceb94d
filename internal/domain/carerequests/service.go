package carerequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-sitting-marketplace/internal/domain/messaging"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// ErrOnCooldown: ya se emitió un request de este tipo dentro de la
	// ventana. Usar RemainingMinutes para el countdown.
	ErrOnCooldown = errors.New("request on cooldown")

	// ErrNoEntry lo devuelven los repos cuando no hay registro para la key.
	ErrNoEntry = errors.New("no log entry")

	// ErrMessageFailed: el mensaje de chat no se pudo publicar. En ese caso
	// NO se escribe el log ni se toca el cache: el owner puede reintentar.
	ErrMessageFailed = errors.New("care request message failed")
)

// Messenger es el colaborador de chat que consume el guard.
type Messenger interface {
	GetOrCreateConversation(ctx context.Context, userA, userB string) (string, error)
	PostSystemMessage(ctx context.Context, conversationID, senderID, text string, metadata map[string]string) (string, error)
}

// requestText es el template de mensaje por tipo.
var requestText = map[RequestType]string{
	TypeWalk: "Could you please share a photo of the walk?",
	TypeFeed: "Could you please share a photo of feeding time?",
	TypePlay: "Could you please share a photo of playtime?",
}

type Service struct {
	repo      Repository
	messenger Messenger
	cache     *sessionCache
	now       func() time.Time
}

func NewService(repo Repository, messenger Messenger) *Service {
	return &Service{
		repo:      repo,
		messenger: messenger,
		cache:     newSessionCache(),
		now:       time.Now,
	}
}

// latestTimestamp junta las dos fuentes (log persistido + cache de sesión)
// y devuelve el timestamp efectivo para (bookingID, t).
func (s *Service) latestTimestamp(ctx context.Context, bookingID string, t RequestType) (*time.Time, error) {
	var persisted *time.Time
	entry, err := s.repo.LatestFor(ctx, bookingID, t)
	switch {
	case err == nil:
		ts := entry.CreatedAt
		persisted = &ts
	case errors.Is(err, ErrNoEntry):
		// sin registro persistido
	default:
		return nil, err
	}

	return latestOf(persisted, s.cache.get(bookingID, t)), nil
}

// IsOnCooldown dice si un request de tipo t para bookingID está bloqueado
// en el instante now.
func (s *Service) IsOnCooldown(ctx context.Context, bookingID string, t RequestType, now time.Time) (bool, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" || !ValidType(t) {
		return false, ErrInvalidInput
	}

	latest, err := s.latestTimestamp(ctx, bookingID, t)
	if err != nil {
		return false, err
	}
	return onCooldown(latest, now), nil
}

// RemainingMinutes devuelve los minutos restantes de cooldown (redondeo
// hacia arriba), 0 si no hay bloqueo.
func (s *Service) RemainingMinutes(ctx context.Context, bookingID string, t RequestType, now time.Time) (int, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" || !ValidType(t) {
		return 0, ErrInvalidInput
	}

	latest, err := s.latestTimestamp(ctx, bookingID, t)
	if err != nil {
		return 0, err
	}
	return remainingMinutes(latest, now), nil
}

// Issue emite un care request: consigue la conversación owner<->sitter,
// publica el mensaje templado y recién después escribe la entrada del log y
// actualiza el cache de sesión. Un post fallido no deja cooldown colgado.
func (s *Service) Issue(ctx context.Context, b BookingRef, t RequestType, actorOwnerID string) (LogEntry, error) {
	actorOwnerID = strings.TrimSpace(actorOwnerID)
	if strings.TrimSpace(b.ID) == "" || actorOwnerID == "" || !ValidType(t) {
		return LogEntry{}, ErrInvalidInput
	}
	if actorOwnerID != b.OwnerID {
		return LogEntry{}, ErrForbidden
	}

	now := s.now()
	blocked, err := s.IsOnCooldown(ctx, b.ID, t, now)
	if err != nil {
		return LogEntry{}, err
	}
	if blocked {
		return LogEntry{}, ErrOnCooldown
	}

	conversationID, err := s.messenger.GetOrCreateConversation(ctx, b.OwnerID, b.SitterID)
	if err != nil {
		return LogEntry{}, fmt.Errorf("%w: %v", ErrMessageFailed, err)
	}

	messageID, err := s.messenger.PostSystemMessage(ctx, conversationID, actorOwnerID, requestText[t], map[string]string{
		messaging.MetaKind:      messaging.KindCareRequest,
		messaging.MetaBookingID: b.ID,
		messaging.MetaRequest:   string(t),
	})
	if err != nil {
		return LogEntry{}, fmt.Errorf("%w: %v", ErrMessageFailed, err)
	}

	e := LogEntry{
		ID:             uuid.NewString(),
		BookingID:      b.ID,
		OwnerID:        b.OwnerID,
		SitterID:       b.SitterID,
		Type:           t,
		ConversationID: conversationID,
		MessageID:      messageID,
		CreatedAt:      now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		// El mensaje ya salió pero el log no se escribió: se reporta el
		// fallo sin activar el cache (no hay lock sin registro visible).
		return LogEntry{}, err
	}

	s.cache.set(b.ID, t, now)

	return e, nil
}

// CooldownStatus arma el estado por tipo para la UI (countdown de botones).
type CooldownStatus struct {
	Type             RequestType
	OnCooldown       bool
	RemainingMinutes int
}

func (s *Service) StatusFor(ctx context.Context, bookingID string, now time.Time) ([]CooldownStatus, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, ErrInvalidInput
	}

	out := make([]CooldownStatus, 0, 3)
	for _, t := range []RequestType{TypeWalk, TypeFeed, TypePlay} {
		latest, err := s.latestTimestamp(ctx, bookingID, t)
		if err != nil {
			return nil, err
		}
		out = append(out, CooldownStatus{
			Type:             t,
			OnCooldown:       onCooldown(latest, now),
			RemainingMinutes: remainingMinutes(latest, now),
		})
	}
	return out, nil
}
