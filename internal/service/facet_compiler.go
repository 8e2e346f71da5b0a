package service

import (
	"strings"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

const (
	defaultCatalogLimit = 20
	maxCatalogLimit     = 100
)

// FacetCompiler turns a facet selection into store predicates and a sort
// order for the public catalog. Author and moderator management views read
// through ListingRepository.FindByID instead and never pass through here.
type FacetCompiler struct {
	defaultLimit int
}

func NewFacetCompiler(defaultLimit int) *FacetCompiler {
	if defaultLimit <= 0 || defaultLimit > maxCatalogLimit {
		defaultLimit = defaultCatalogLimit
	}
	return &FacetCompiler{defaultLimit: defaultLimit}
}

// VisibilityPredicates are injected into every public query.
func VisibilityPredicates() []domain.Predicate {
	return []domain.Predicate{
		domain.Eq(domain.FieldIsApproved, true),
		domain.IsNull(domain.FieldDeletedAt),
	}
}

func (c *FacetCompiler) Compile(sel domain.FacetSelection) domain.CompiledQuery {
	preds := VisibilityPredicates()

	if domain.FacetActive(string(sel.Kind)) {
		preds = append(preds, domain.Eq(domain.FieldKind, strings.ToLower(strings.TrimSpace(string(sel.Kind)))))
	}
	if domain.FacetActive(sel.Category) {
		preds = append(preds, domain.Eq(domain.FieldCategory, strings.TrimSpace(sel.Category)))
	}
	if domain.FacetActive(sel.Risk) {
		preds = append(preds, domain.Eq(domain.FieldRiskLevel, strings.ToLower(strings.TrimSpace(sel.Risk))))
	}
	if domain.FacetActive(sel.Effort) {
		preds = append(preds, domain.Eq(domain.FieldEffortLevel, strings.ToLower(strings.TrimSpace(sel.Effort))))
	}

	// Search is title-only on purpose; descriptions are not matched.
	if needle := strings.TrimSpace(sel.Query); needle != "" {
		preds = append(preds, domain.ContainsFold(domain.FieldTitle, needle))
	}

	// Each numeric bound stays its own predicate.
	if sel.MinIncome != nil {
		preds = append(preds, domain.Gte(domain.FieldMonthlyIncomeMin, *sel.MinIncome))
	}
	if sel.MinInvestment != nil {
		preds = append(preds, domain.Gte(domain.FieldInvestmentMin, *sel.MinInvestment))
	}
	if sel.MaxInvestment != nil {
		preds = append(preds, domain.Lte(domain.FieldInvestmentMax, *sel.MaxInvestment))
	}

	limit, offset := normalizeCatalogPagination(sel.Limit, sel.Offset, c.defaultLimit)
	return domain.CompiledQuery{
		Predicates: preds,
		Sorts:      compileSorts(sel.Sort),
		Limit:      limit,
		Offset:     offset,
	}
}

// compileSorts always puts featured listings first. The caller's key only
// orders listings that share the same featured state.
func compileSorts(key domain.ListingSort) []domain.SortTerm {
	sorts := []domain.SortTerm{{Field: domain.FieldIsFeatured, Direction: domain.SortDesc}}
	switch key {
	case domain.ListingSortPopular:
		sorts = append(sorts, domain.SortTerm{Field: domain.FieldPopularity, Direction: domain.SortDesc})
	case domain.ListingSortIncome:
		sorts = append(sorts, domain.SortTerm{Field: domain.FieldMonthlyIncomeMin, Direction: domain.SortDesc})
	default:
		sorts = append(sorts, domain.SortTerm{Field: domain.FieldCreatedAt, Direction: domain.SortDesc})
	}
	return append(sorts, domain.SortTerm{Field: domain.FieldID, Direction: domain.SortAsc})
}

// ParseListingSort maps caller input onto a known sort key, falling back to
// newest first.
func ParseListingSort(raw string) domain.ListingSort {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "popular", "popularity":
		return domain.ListingSortPopular
	case "income", "min_income", "income_desc":
		return domain.ListingSortIncome
	default:
		return domain.ListingSortNewest
	}
}

func normalizeCatalogPagination(limit, offset, fallback int) (int, int) {
	if limit <= 0 {
		limit = fallback
	}
	if limit > maxCatalogLimit {
		limit = maxCatalogLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
