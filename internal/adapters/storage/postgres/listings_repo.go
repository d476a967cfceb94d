package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-sitting-marketplace/internal/domain/listings"
)

type ListingsRepo struct {
	db *sql.DB
}

func NewListingsRepo(db *sql.DB) *ListingsRepo {
	return &ListingsRepo{db: db}
}

const listingColumns = `
	id, sitter_id, title, description, city,
	rate_per_night_cents, max_pets, active,
	created_at, updated_at
`

func (r *ListingsRepo) Create(ctx context.Context, l listings.Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings (
			id, sitter_id, title, description, city,
			rate_per_night_cents, max_pets, active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		l.ID,
		l.SitterID,
		l.Title,
		l.Description,
		l.City,
		l.RatePerNightCents,
		l.MaxPets,
		l.Active,
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func (r *ListingsRepo) Update(ctx context.Context, l listings.Listing) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET
			title = $2,
			description = $3,
			city = $4,
			rate_per_night_cents = $5,
			max_pets = $6,
			active = $7,
			updated_at = $8
		WHERE id = $1
	`,
		l.ID,
		l.Title,
		l.Description,
		l.City,
		l.RatePerNightCents,
		l.MaxPets,
		l.Active,
		l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingsRepo) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return listings.Listing{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE id = $1
	`, id)

	l, err := scanListing(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return listings.Listing{}, ErrNotFound
		}
		return listings.Listing{}, err
	}
	return l, nil
}

func (r *ListingsRepo) ListBySitter(ctx context.Context, sitterID string) ([]listings.Listing, error) {
	sitterID = strings.TrimSpace(sitterID)
	if sitterID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE sitter_id = $1
		ORDER BY created_at ASC
	`, sitterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingsRepo) ListActive(ctx context.Context, city string) ([]listings.Listing, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if city == "" {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+listingColumns+`
			FROM listings
			WHERE active = TRUE
			ORDER BY created_at ASC
		`)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT `+listingColumns+`
			FROM listings
			WHERE active = TRUE AND LOWER(city) = LOWER($1)
			ORDER BY created_at ASC
		`, city)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectListings(rows)
}

func collectListings(rows *sql.Rows) ([]listings.Listing, error) {
	out := make([]listings.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanListing(row rowScanner) (listings.Listing, error) {
	var l listings.Listing
	if err := row.Scan(
		&l.ID,
		&l.SitterID,
		&l.Title,
		&l.Description,
		&l.City,
		&l.RatePerNightCents,
		&l.MaxPets,
		&l.Active,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return listings.Listing{}, err
	}
	return l, nil
}
