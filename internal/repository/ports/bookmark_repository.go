package ports

import (
	"context"

	"github.com/google/uuid"
)

// BookmarkRepository stores per-user saved listing ids. Add reports whether
// a new row was written; adding an existing pair is not an error.
type BookmarkRepository interface {
	ListSaved(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	IsSaved(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Add(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
	Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error)
}
