package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

type BookmarkRepo struct {
	mu    sync.Mutex
	saved map[uuid.UUID]map[uuid.UUID]time.Time
	now   func() time.Time
}

func NewBookmarkRepo() *BookmarkRepo {
	return &BookmarkRepo{
		saved: make(map[uuid.UUID]map[uuid.UUID]time.Time),
		now:   time.Now,
	}
}

// ListSaved returns ids newest save first.
func (r *BookmarkRepo) ListSaved(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.saved[userID]
	ids := make([]uuid.UUID, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := entries[ids[i]], entries[ids[j]]
		if ti.Equal(tj) {
			return ids[i].String() < ids[j].String()
		}
		return ti.After(tj)
	})
	return ids, nil
}

func (r *BookmarkRepo) IsSaved(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.saved[userID][listingID]
	return ok, nil
}

func (r *BookmarkRepo) Add(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, ok := r.saved[userID]
	if !ok {
		entries = make(map[uuid.UUID]time.Time)
		r.saved[userID] = entries
	}
	if _, exists := entries[listingID]; exists {
		return false, nil
	}
	entries[listingID] = r.now()
	return true, nil
}

func (r *BookmarkRepo) Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.saved[userID]
	if _, exists := entries[listingID]; !exists {
		return false, nil
	}
	delete(entries, listingID)
	if len(entries) == 0 {
		delete(r.saved, userID)
	}
	return true, nil
}

var _ ports.BookmarkRepository = (*BookmarkRepo)(nil)
