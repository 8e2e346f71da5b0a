package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

type ModerationEventRepository struct {
	db *sqlx.DB
}

func NewModerationEventRepo(db *sqlx.DB) *ModerationEventRepository {
	return &ModerationEventRepository{db: db}
}

func (r *ModerationEventRepository) Append(ctx context.Context, event *domain.ModerationEvent) (*domain.ModerationEvent, error) {
	const query = `
		INSERT INTO moderation_event (action, actor_id, target_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, action, actor_id, target_id, detail, created_at
	`
	var stored domain.ModerationEvent
	if err := r.db.GetContext(ctx, &stored, query,
		event.Action, event.ActorID, event.TargetID, event.Detail, event.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ModerationEventRepository) ListByTarget(ctx context.Context, targetID uuid.UUID, limit int) ([]domain.ModerationEvent, error) {
	const query = `
		SELECT id, action, actor_id, target_id, detail, created_at
		FROM moderation_event
		WHERE target_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	events := make([]domain.ModerationEvent, 0)
	if err := r.db.SelectContext(ctx, &events, query, targetID, limit); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *ModerationEventRepository) LatestByTarget(ctx context.Context, targetID uuid.UUID) (*domain.ModerationEvent, error) {
	const query = `
		SELECT id, action, actor_id, target_id, detail, created_at
		FROM moderation_event
		WHERE target_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	var event domain.ModerationEvent
	if err := r.db.GetContext(ctx, &event, query, targetID); err != nil {
		return nil, err
	}
	return &event, nil
}

var _ ports.ModerationEventRepository = (*ModerationEventRepository)(nil)
