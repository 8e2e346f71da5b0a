package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

// CatalogService is the request-scoped entry point for public reads. It
// resolves the caller's profile and hands the selection to the orchestrator.
type CatalogService struct {
	orchestrator *QueryOrchestrator
	listings     ports.ListingRepository
	profiles     ports.ProfileRepository
	logger       *zap.Logger
}

type BrowseResult struct {
	Listings []domain.ScoredListing `json:"listings"`
	Profile  *domain.UserProfile    `json:"profile,omitempty"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

func NewCatalogService(orchestrator *QueryOrchestrator, listingRepo ports.ListingRepository, profileRepo ports.ProfileRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		orchestrator: orchestrator,
		listings:     listingRepo,
		profiles:     profileRepo,
		logger:       logger,
	}
}

// Browse runs one catalog read. A missing or unreadable profile turns
// personalization off for this read instead of failing it.
func (s *CatalogService) Browse(ctx context.Context, userID uuid.UUID, sel domain.FacetSelection) (*BrowseResult, error) {
	var profile *domain.UserProfile
	if sel.Personalize {
		profile = s.lookupProfile(ctx, userID)
	}

	listings, err := s.orchestrator.Run(ctx, sel, profile)
	if err != nil {
		return nil, err
	}
	limit, offset := normalizeCatalogPagination(sel.Limit, sel.Offset, s.orchestrator.compiler.defaultLimit)
	return &BrowseResult{
		Listings: listings,
		Profile:  profile,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// GetBySlug returns a publicly visible listing and counts the view.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, domain.ErrListingNotFound
	}
	listing, err := s.listings.FindBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrListingNotFound
		}
		return nil, domain.NewStoreError("find listing by slug", err)
	}
	if !listing.IsPubliclyVisible() {
		return nil, domain.ErrListingNotFound
	}

	if err := s.listings.IncrementPopularity(ctx, listing.ID); err != nil {
		s.logger.Warn("failed to count listing view", zap.String("listing_id", listing.ID.String()), zap.Error(err))
	} else {
		listing.Popularity++
	}
	return listing, nil
}

// Compare loads up to ComparisonLimit visible listings in the order given.
func (s *CatalogService) Compare(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	set, err := NewComparisonSet(ids...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, set.Len())
	for _, id := range set.IDs() {
		listing, err := s.listings.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, domain.ErrListingNotFound
			}
			return nil, domain.NewStoreError("load listing", err)
		}
		if !listing.IsPubliclyVisible() {
			return nil, domain.ErrListingNotFound
		}
		out = append(out, *listing)
	}
	return out, nil
}

func (s *CatalogService) lookupProfile(ctx context.Context, userID uuid.UUID) *domain.UserProfile {
	if userID == uuid.Nil || s.profiles == nil {
		return nil
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn("profile lookup failed, serving unpersonalized results",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	return profile
}
