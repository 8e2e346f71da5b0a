package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/metrics"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

type BookmarkService struct {
	bookmarks ports.BookmarkRepository
	listings  ports.ListingRepository
	locks     *keyedLocker
	logger    *zap.Logger
}

func NewBookmarkService(bookmarkRepo ports.BookmarkRepository, listingRepo ports.ListingRepository, logger *zap.Logger) *BookmarkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookmarkService{
		bookmarks: bookmarkRepo,
		listings:  listingRepo,
		locks:     newKeyedLocker(),
		logger:    logger,
	}
}

// Toggle flips the saved state of one listing for one user and reports the
// state it wrote. Toggles on the same pair run one at a time in the order
// they were issued; different pairs never wait on each other.
func (s *BookmarkService) Toggle(ctx context.Context, userID, listingID uuid.UUID) (domain.BookmarkState, error) {
	if userID == uuid.Nil {
		return "", domain.ErrAuthenticationRequired
	}

	unlock, err := s.locks.Lock(ctx, bookmarkKey(userID, listingID))
	if err != nil {
		return "", err
	}
	defer unlock()

	saved, err := s.bookmarks.IsSaved(ctx, userID, listingID)
	if err != nil {
		return "", domain.NewStoreError("check bookmark", err)
	}

	state := domain.BookmarkSaved
	if saved {
		if _, err := s.bookmarks.Remove(ctx, userID, listingID); err != nil {
			return "", domain.NewStoreError("remove bookmark", err)
		}
		state = domain.BookmarkUnsaved
	} else {
		if err := s.ensureVisible(ctx, listingID); err != nil {
			return "", err
		}
		// A false result means the row already existed, which is still the
		// state we meant to write.
		if _, err := s.bookmarks.Add(ctx, userID, listingID); err != nil {
			return "", domain.NewStoreError("add bookmark", err)
		}
	}

	metrics.BookmarkToggles.WithLabelValues(string(state)).Inc()
	s.logger.Debug("bookmark toggled",
		zap.String("user_id", userID.String()),
		zap.String("listing_id", listingID.String()),
		zap.String("state", string(state)),
	)
	return state, nil
}

func (s *BookmarkService) Saved(ctx context.Context, userID uuid.UUID) (domain.BookmarkSet, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrAuthenticationRequired
	}
	ids, err := s.bookmarks.ListSaved(ctx, userID)
	if err != nil {
		return nil, domain.NewStoreError("list bookmarks", err)
	}
	return domain.NewBookmarkSet(ids...), nil
}

func (s *BookmarkService) IsSaved(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}
	saved, err := s.bookmarks.IsSaved(ctx, userID, listingID)
	if err != nil {
		return false, domain.NewStoreError("check bookmark", err)
	}
	return saved, nil
}

// ListSavedListings resolves the user's bookmarks into listings, newest save
// first. Bookmarks whose listing has since been hidden are skipped.
func (s *BookmarkService) ListSavedListings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Listing, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrAuthenticationRequired
	}
	nLimit, nOffset := normalizeCatalogPagination(limit, offset, defaultCatalogLimit)

	ids, err := s.bookmarks.ListSaved(ctx, userID)
	if err != nil {
		return nil, domain.NewStoreError("list bookmarks", err)
	}

	items := make([]domain.Listing, 0, nLimit)
	skipped := 0
	for _, id := range ids {
		if len(items) == nLimit {
			break
		}
		listing, err := s.listings.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, domain.NewStoreError("load bookmarked listing", err)
		}
		if !listing.IsPubliclyVisible() {
			continue
		}
		if skipped < nOffset {
			skipped++
			continue
		}
		items = append(items, *listing)
	}
	return items, nil
}

func (s *BookmarkService) ensureVisible(ctx context.Context, listingID uuid.UUID) error {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrListingNotFound
		}
		return domain.NewStoreError("load listing", err)
	}
	if !listing.IsPubliclyVisible() {
		return domain.ErrListingNotFound
	}
	return nil
}

func bookmarkKey(userID, listingID uuid.UUID) string {
	return userID.String() + ":" + listingID.String()
}
