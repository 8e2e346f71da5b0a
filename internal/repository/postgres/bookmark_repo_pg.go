package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

type BookmarkRepository struct {
	db *sqlx.DB
}

func NewBookmarkRepo(db *sqlx.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// ListSaved returns listing ids newest save first.
func (r *BookmarkRepository) ListSaved(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT listing_id
		FROM bookmark
		WHERE user_account_id = $1
		ORDER BY created_at DESC, listing_id ASC
	`
	ids := make([]uuid.UUID, 0)
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *BookmarkRepository) IsSaved(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM bookmark
			WHERE user_account_id = $1 AND listing_id = $2
		)
	`
	var saved bool
	if err := r.db.GetContext(ctx, &saved, query, userID, listingID); err != nil {
		return false, err
	}
	return saved, nil
}

// Add reports false when the pair was already saved.
func (r *BookmarkRepository) Add(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	const query = `
		INSERT INTO bookmark (user_account_id, listing_id)
		VALUES ($1, $2)
		ON CONFLICT (user_account_id, listing_id) DO NOTHING
		RETURNING listing_id
	`
	var inserted uuid.UUID
	if err := r.db.GetContext(ctx, &inserted, query, userID, listingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *BookmarkRepository) Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	const query = `
		DELETE FROM bookmark
		WHERE user_account_id = $1 AND listing_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, userID, listingID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

var _ ports.BookmarkRepository = (*BookmarkRepository)(nil)
