package postgres

import (
	"context"
	"database/sql"

	"pet-sitting-marketplace/internal/domain/wishlists"
)

type WishlistsRepo struct {
	db *sql.DB
}

func NewWishlistsRepo(db *sql.DB) *WishlistsRepo {
	return &WishlistsRepo{db: db}
}

// Save es idempotente: re-guardar el mismo listing no duplica la fila.
func (r *WishlistsRepo) Save(ctx context.Context, it wishlists.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, owner_id, listing_id, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (owner_id, listing_id) DO NOTHING
	`,
		it.ID,
		it.OwnerID,
		it.ListingID,
		it.CreatedAt,
	)
	return err
}

func (r *WishlistsRepo) Remove(ctx context.Context, ownerID, listingID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlist_items
		WHERE owner_id = $1 AND listing_id = $2
	`, ownerID, listingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return wishlists.ErrNotFound
	}
	return nil
}

func (r *WishlistsRepo) Get(ctx context.Context, ownerID, listingID string) (wishlists.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, listing_id, created_at
		FROM wishlist_items
		WHERE owner_id = $1 AND listing_id = $2
	`, ownerID, listingID)

	var it wishlists.Item
	if err := row.Scan(&it.ID, &it.OwnerID, &it.ListingID, &it.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return wishlists.Item{}, ErrNotFound
		}
		return wishlists.Item{}, err
	}
	return it, nil
}

func (r *WishlistsRepo) ListByOwner(ctx context.Context, ownerID string) ([]wishlists.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, listing_id, created_at
		FROM wishlist_items
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]wishlists.Item, 0)
	for rows.Next() {
		var it wishlists.Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.ListingID, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}

	return out, rows.Err()
}
