package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

// BookmarkRepository keeps each user's bookmarks in one sorted set scored by
// save time, so listing them newest first is a single ZREVRANGE.
type BookmarkRepository struct {
	client *goredis.Client
	now    func() time.Time
}

func NewBookmarkRepo(client *goredis.Client) *BookmarkRepository {
	return &BookmarkRepository{client: client, now: time.Now}
}

func bookmarkKey(userID uuid.UUID) string {
	return fmt.Sprintf("bookmark:user:%s", userID)
}

func (r *BookmarkRepository) ListSaved(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	members, err := r.client.ZRevRange(ctx, bookmarkKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *BookmarkRepository) IsSaved(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	_, err := r.client.ZScore(ctx, bookmarkKey(userID), listingID.String()).Result()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *BookmarkRepository) Add(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	added, err := r.client.ZAddNX(ctx, bookmarkKey(userID), goredis.Z{
		Score:  float64(r.now().UnixMilli()),
		Member: listingID.String(),
	}).Result()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

func (r *BookmarkRepository) Remove(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	removed, err := r.client.ZRem(ctx, bookmarkKey(userID), listingID.String()).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

var _ ports.BookmarkRepository = (*BookmarkRepository)(nil)
