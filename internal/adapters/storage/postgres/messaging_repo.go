package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"pet-sitting-marketplace/internal/domain/messaging"
)

type MessagingRepo struct {
	db *sql.DB
}

func NewMessagingRepo(db *sql.DB) *MessagingRepo {
	return &MessagingRepo{db: db}
}

func (r *MessagingRepo) CreateConversation(ctx context.Context, c messaging.Conversation) error {
	// (participant_a, participant_b) lleva un unique index: la carrera de
	// get-or-create la resuelve la constraint y el retry del service.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, created_at)
		VALUES ($1,$2,$3,$4)
	`,
		c.ID,
		c.ParticipantA,
		c.ParticipantB,
		c.CreatedAt,
	)
	return err
}

func (r *MessagingRepo) GetConversation(ctx context.Context, id string) (messaging.Conversation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return messaging.Conversation{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM conversations
		WHERE id = $1
	`, id)

	var c messaging.Conversation
	if err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return messaging.Conversation{}, ErrNotFound
		}
		return messaging.Conversation{}, err
	}
	return c, nil
}

func (r *MessagingRepo) GetConversationByPair(ctx context.Context, a, b string) (messaging.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM conversations
		WHERE participant_a = $1 AND participant_b = $2
	`, a, b)

	var c messaging.Conversation
	if err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return messaging.Conversation{}, ErrNotFound
		}
		return messaging.Conversation{}, err
	}
	return c, nil
}

func (r *MessagingRepo) ListConversationsByUser(ctx context.Context, userID string) ([]messaging.Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM conversations
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]messaging.Conversation, 0)
	for rows.Next() {
		var c messaging.Conversation
		if err := rows.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *MessagingRepo) CreateMessage(ctx context.Context, m messaging.Message) error {
	var metadata sql.NullString
	if len(m.Metadata) > 0 {
		b, err := json.Marshal(m.Metadata)
		if err != nil {
			return err
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, text, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		m.ID,
		m.ConversationID,
		m.SenderID,
		m.Text,
		metadata,
		m.CreatedAt,
	)
	return err
}

func (r *MessagingRepo) ListMessages(ctx context.Context, conversationID string) ([]messaging.Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, text, metadata, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]messaging.Message, 0)
	for rows.Next() {
		var (
			m        messaging.Message
			metadata sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Text, &metadata, &m.CreatedAt); err != nil {
			return nil, err
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &m.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}

	return out, rows.Err()
}
