package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
}
