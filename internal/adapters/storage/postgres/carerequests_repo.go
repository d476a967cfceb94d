package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-sitting-marketplace/internal/domain/carerequests"
)

type CareRequestsRepo struct {
	db *sql.DB
}

func NewCareRequestsRepo(db *sql.DB) *CareRequestsRepo {
	return &CareRequestsRepo{db: db}
}

// Create inserta una entrada del log. La tabla es append-only: no hay
// UPDATE ni DELETE en este repo.
func (r *CareRequestsRepo) Create(ctx context.Context, e carerequests.LogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO care_request_log (
			id, booking_id, owner_id, sitter_id,
			request_type, conversation_id, message_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.BookingID,
		e.OwnerID,
		e.SitterID,
		string(e.Type),
		e.ConversationID,
		e.MessageID,
		e.CreatedAt,
	)
	return err
}

func (r *CareRequestsRepo) LatestFor(ctx context.Context, bookingID string, t carerequests.RequestType) (carerequests.LogEntry, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return carerequests.LogEntry{}, carerequests.ErrNoEntry
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, booking_id, owner_id, sitter_id,
			request_type, conversation_id, message_id, created_at
		FROM care_request_log
		WHERE booking_id = $1 AND request_type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, bookingID, string(t))

	e, err := scanLogEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return carerequests.LogEntry{}, carerequests.ErrNoEntry
		}
		return carerequests.LogEntry{}, err
	}
	return e, nil
}

func (r *CareRequestsRepo) ListByBooking(ctx context.Context, bookingID string) ([]carerequests.LogEntry, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, booking_id, owner_id, sitter_id,
			request_type, conversation_id, message_id, created_at
		FROM care_request_log
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]carerequests.LogEntry, 0)
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

func scanLogEntry(row rowScanner) (carerequests.LogEntry, error) {
	var (
		e       carerequests.LogEntry
		reqType string
	)
	if err := row.Scan(
		&e.ID,
		&e.BookingID,
		&e.OwnerID,
		&e.SitterID,
		&reqType,
		&e.ConversationID,
		&e.MessageID,
		&e.CreatedAt,
	); err != nil {
		return carerequests.LogEntry{}, err
	}
	e.Type = carerequests.RequestType(reqType)
	return e, nil
}
