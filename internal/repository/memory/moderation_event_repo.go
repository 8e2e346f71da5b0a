package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

type ModerationEventRepo struct {
	mu     sync.Mutex
	events []domain.ModerationEvent
}

func NewModerationEventRepo() *ModerationEventRepo {
	return &ModerationEventRepo{}
}

func (r *ModerationEventRepo) Append(ctx context.Context, event *domain.ModerationEvent) (*domain.ModerationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneEvent(*event)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.events = append(r.events, stored)
	out := cloneEvent(stored)
	return &out, nil
}

// ListByTarget returns events newest first.
func (r *ModerationEventRepo) ListByTarget(ctx context.Context, targetID uuid.UUID, limit int) ([]domain.ModerationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ModerationEvent, 0)
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].TargetID != targetID {
			continue
		}
		out = append(out, cloneEvent(r.events[i]))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *ModerationEventRepo) LatestByTarget(ctx context.Context, targetID uuid.UUID) (*domain.ModerationEvent, error) {
	events, err := r.ListByTarget(ctx, targetID, 1)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, sql.ErrNoRows
	}
	return &events[0], nil
}

func cloneEvent(e domain.ModerationEvent) domain.ModerationEvent {
	out := e
	if e.Detail != nil {
		out.Detail = make(domain.EventDetail, len(e.Detail))
		for k, v := range e.Detail {
			out.Detail[k] = v
		}
	}
	return out
}

var _ ports.ModerationEventRepository = (*ModerationEventRepo)(nil)
