package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

// Identity is a static moderator roster.
type Identity struct {
	mu         sync.RWMutex
	moderators map[uuid.UUID]struct{}
}

func NewIdentity(moderators ...uuid.UUID) *Identity {
	set := make(map[uuid.UUID]struct{}, len(moderators))
	for _, id := range moderators {
		set[id] = struct{}{}
	}
	return &Identity{moderators: set}
}

func (i *Identity) Grant(userID uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.moderators[userID] = struct{}{}
}

func (i *Identity) IsModerator(ctx context.Context, userID uuid.UUID) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.moderators[userID]
	return ok, nil
}

type ProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]domain.UserProfile
}

func NewProfileRepo(profiles ...domain.UserProfile) *ProfileRepo {
	repo := &ProfileRepo{profiles: make(map[uuid.UUID]domain.UserProfile, len(profiles))}
	for _, p := range profiles {
		repo.profiles[p.UserID] = p
	}
	return repo
}

func (r *ProfileRepo) Put(profile domain.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
}

func (r *ProfileRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	p.PreferredSectors = append([]string(nil), p.PreferredSectors...)
	return &p, nil
}

var (
	_ ports.Identity          = (*Identity)(nil)
	_ ports.ProfileRepository = (*ProfileRepo)(nil)
)
