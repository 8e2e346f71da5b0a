package ports

import (
	"context"

	"github.com/google/uuid"
)

// Identity answers role questions about an already-authenticated user. The
// current user id itself is always passed explicitly by the caller.
type Identity interface {
	IsModerator(ctx context.Context, userID uuid.UUID) (bool, error)
}
