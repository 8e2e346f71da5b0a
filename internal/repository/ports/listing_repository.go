package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

// ListingRepository is the catalog store. Find applies every predicate in the
// query as a conjunction. Update and SoftDelete re-check guard predicates at
// commit time and return sql.ErrNoRows when the guard rejects the row.
type ListingRepository interface {
	Find(ctx context.Context, query domain.CompiledQuery) ([]domain.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Listing, error)
	Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.ListingPatch, guard []domain.Predicate) (*domain.Listing, error)
	SoftDelete(ctx context.Context, id uuid.UUID, guard []domain.Predicate) error
	IncrementPopularity(ctx context.Context, id uuid.UUID) error
}
