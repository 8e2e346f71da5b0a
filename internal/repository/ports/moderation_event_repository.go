package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

type ModerationEventRepository interface {
	Append(ctx context.Context, event *domain.ModerationEvent) (*domain.ModerationEvent, error)
	ListByTarget(ctx context.Context, targetID uuid.UUID, limit int) ([]domain.ModerationEvent, error)
	LatestByTarget(ctx context.Context, targetID uuid.UUID) (*domain.ModerationEvent, error)
}
