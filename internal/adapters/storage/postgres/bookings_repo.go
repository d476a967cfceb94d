package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"pet-sitting-marketplace/internal/domain/bookings"
)

type BookingsRepo struct {
	db *sql.DB
}

func NewBookingsRepo(db *sql.DB) *BookingsRepo {
	return &BookingsRepo{db: db}
}

func (r *BookingsRepo) Create(ctx context.Context, b bookings.Booking) error {
	petIDs, err := json.Marshal(b.PetIDs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, listing_id, owner_id, sitter_id, pet_ids,
			start_date, end_date, status,
			total_price_cents, special_requests, cancellation_reason,
			created_at, confirmed_at, cancelled_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		b.ID,
		b.ListingID,
		b.OwnerID,
		b.SitterID,
		string(petIDs),
		b.StartDate,
		b.EndDate,
		string(b.Status),
		toNullInt(b.TotalPriceCents),
		b.SpecialRequests,
		b.CancellationReason,
		b.CreatedAt,
		toNullTime(b.ConfirmedAt),
		toNullTime(b.CancelledAt),
		toNullTime(b.CompletedAt),
	)
	return err
}

// UpdateStatusFrom hace el update condicionado al status previo; si otro
// request ganó la carrera el UPDATE no toca filas y devolvemos
// ErrStatusConflict (o ErrNotFound si el booking no existe).
func (r *BookingsRepo) UpdateStatusFrom(ctx context.Context, b bookings.Booking, expected bookings.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET
			status = $3,
			total_price_cents = $4,
			special_requests = $5,
			cancellation_reason = $6,
			confirmed_at = $7,
			cancelled_at = $8,
			completed_at = $9
		WHERE id = $1 AND status = $2
	`,
		b.ID,
		string(expected),
		string(b.Status),
		toNullInt(b.TotalPriceCents),
		b.SpecialRequests,
		b.CancellationReason,
		toNullTime(b.ConfirmedAt),
		toNullTime(b.CancelledAt),
		toNullTime(b.CompletedAt),
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, b.ID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return bookings.ErrStatusConflict
}

const bookingColumns = `
	id, listing_id, owner_id, sitter_id, pet_ids,
	start_date, end_date, status,
	total_price_cents, special_requests, cancellation_reason,
	created_at, confirmed_at, cancelled_at, completed_at
`

func (r *BookingsRepo) GetByID(ctx context.Context, id string) (bookings.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return bookings.Booking{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)

	b, err := scanBooking(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return bookings.Booking{}, ErrNotFound
		}
		return bookings.Booking{}, err
	}
	return b, nil
}

func (r *BookingsRepo) ListByOwner(ctx context.Context, ownerID string) ([]bookings.Booking, error) {
	return r.list(ctx, `owner_id`, ownerID)
}

func (r *BookingsRepo) ListBySitter(ctx context.Context, sitterID string) ([]bookings.Booking, error) {
	return r.list(ctx, `sitter_id`, sitterID)
}

func (r *BookingsRepo) list(ctx context.Context, column, value string) ([]bookings.Booking, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE `+column+` = $1
		ORDER BY created_at ASC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]bookings.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (bookings.Booking, error) {
	var (
		b        bookings.Booking
		petIDs   string
		status   string
		price    sql.NullInt64
		conf     sql.NullTime
		canc     sql.NullTime
		comp     sql.NullTime
		requests sql.NullString
		reason   sql.NullString
	)

	if err := row.Scan(
		&b.ID,
		&b.ListingID,
		&b.OwnerID,
		&b.SitterID,
		&petIDs,
		&b.StartDate,
		&b.EndDate,
		&status,
		&price,
		&requests,
		&reason,
		&b.CreatedAt,
		&conf,
		&canc,
		&comp,
	); err != nil {
		return bookings.Booking{}, err
	}

	if err := json.Unmarshal([]byte(petIDs), &b.PetIDs); err != nil {
		return bookings.Booking{}, err
	}

	b.Status = bookings.Status(status)
	b.SpecialRequests = requests.String
	b.CancellationReason = reason.String
	if price.Valid {
		v := price.Int64
		b.TotalPriceCents = &v
	}
	b.ConfirmedAt = fromNullTime(conf)
	b.CancelledAt = fromNullTime(canc)
	b.CompletedAt = fromNullTime(comp)

	return b, nil
}

func toNullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
