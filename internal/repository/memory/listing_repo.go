package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

// ListingRepo keeps listings in process memory. Every method copies on the
// way in and out so callers never share state with the store.
type ListingRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Listing
	now   func() time.Time
}

func NewListingRepo(seed ...domain.Listing) *ListingRepo {
	repo := &ListingRepo{
		items: make(map[uuid.UUID]domain.Listing, len(seed)),
		now:   time.Now,
	}
	for _, l := range seed {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		repo.items[l.ID] = l.Clone()
	}
	return repo
}

func (r *ListingRepo) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *ListingRepo) Find(ctx context.Context, query domain.CompiledQuery) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	matched := make([]domain.Listing, 0, len(r.items))
	for _, l := range r.items {
		if domain.MatchesAll(query.Predicates, l) {
			matched = append(matched, l.Clone())
		}
	}
	r.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], query.Sorts)
	})

	if query.Offset >= len(matched) {
		return []domain.Listing{}, nil
	}
	matched = matched[query.Offset:]
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func (r *ListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := l.Clone()
	return &out, nil
}

func (r *ListingRepo) FindBySlug(ctx context.Context, slug string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.items {
		if strings.EqualFold(l.Slug, slug) {
			out := l.Clone()
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *ListingRepo) Insert(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if strings.EqualFold(existing.Slug, listing.Slug) {
			return nil, domain.ErrDuplicateSlug
		}
	}
	stored := listing.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := r.now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.items[stored.ID] = stored
	out := stored.Clone()
	return &out, nil
}

func (r *ListingRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ListingPatch, guard []domain.Predicate) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok || !domain.MatchesAll(guard, current) {
		return nil, sql.ErrNoRows
	}
	updated := patch.Apply(current)
	updated.UpdatedAt = r.now().UTC()
	r.items[id] = updated
	out := updated.Clone()
	return &out, nil
}

func (r *ListingRepo) SoftDelete(ctx context.Context, id uuid.UUID, guard []domain.Predicate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok || !domain.MatchesAll(guard, current) {
		return sql.ErrNoRows
	}
	now := r.now().UTC()
	current.DeletedAt = &now
	current.UpdatedAt = now
	r.items[id] = current
	return nil
}

func (r *ListingRepo) IncrementPopularity(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	current.Popularity++
	r.items[id] = current
	return nil
}

func less(a, b domain.Listing, sorts []domain.SortTerm) bool {
	for _, term := range sorts {
		cmp := compareField(a, b, term.Field)
		if cmp == 0 {
			continue
		}
		if term.Direction == domain.SortDesc {
			return cmp > 0
		}
		return cmp < 0
	}
	return false
}

// compareField orders absent numbers below every present value, which puts
// them last in descending sorts.
func compareField(a, b domain.Listing, field domain.Field) int {
	switch field {
	case domain.FieldIsFeatured:
		return compareBool(a.IsFeatured, b.IsFeatured)
	case domain.FieldIsApproved:
		return compareBool(a.IsApproved, b.IsApproved)
	case domain.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case domain.FieldPopularity:
		return compareInt(a.Popularity, b.Popularity)
	case domain.FieldMonthlyIncomeMin:
		return compareOptional(a.MonthlyIncomeMin(), b.MonthlyIncomeMin())
	case domain.FieldInvestmentMin:
		return compareOptional(a.InvestmentMin, b.InvestmentMin)
	case domain.FieldInvestmentMax:
		return compareOptional(a.InvestmentMax, b.InvestmentMax)
	case domain.FieldTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case domain.FieldID:
		return strings.Compare(a.ID.String(), b.ID.String())
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

var _ ports.ListingRepository = (*ListingRepo)(nil)
