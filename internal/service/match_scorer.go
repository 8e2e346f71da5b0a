package service

import (
	"math"
	"strings"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

// ApplyPersonalization narrows a compiled query with the caller's profile.
// Without a profile, or when personalization was not requested, the query is
// returned unchanged.
func ApplyPersonalization(query domain.CompiledQuery, sel domain.FacetSelection, profile *domain.UserProfile) domain.CompiledQuery {
	if !sel.Personalize || profile == nil {
		return query
	}
	out := query.Clone()

	if !domain.FacetActive(sel.Risk) {
		if tolerance := strings.ToLower(strings.TrimSpace(profile.RiskTolerance)); tolerance != "" {
			out.Predicates = append(out.Predicates, domain.Eq(domain.FieldRiskLevel, tolerance))
		}
	}

	if ceiling, ok := profile.BudgetBucket.Ceiling(); ok {
		out.Predicates = append(out.Predicates, domain.Lte(domain.FieldInvestmentMin, ceiling))
	}
	return out
}

// GoalProgress is round(100 * monthly_income_min / income_goal). It is
// absent whenever either side is missing or the goal is not positive.
func GoalProgress(listing domain.Listing, profile *domain.UserProfile) (int, bool) {
	if profile == nil || !(profile.IncomeGoal > 0) || math.IsInf(profile.IncomeGoal, 0) {
		return 0, false
	}
	income := listing.MonthlyIncomeMin()
	if income == nil || math.IsNaN(*income) || math.IsInf(*income, 0) {
		return 0, false
	}
	pct := math.Round(100 * *income / profile.IncomeGoal)
	if pct > math.MaxInt32 {
		pct = math.MaxInt32
	}
	if pct < math.MinInt32 {
		pct = math.MinInt32
	}
	return int(pct), true
}

func ScoreListings(listings []domain.Listing, profile *domain.UserProfile) []domain.ScoredListing {
	out := make([]domain.ScoredListing, 0, len(listings))
	for _, listing := range listings {
		scored := domain.ScoredListing{Listing: listing}
		if pct, ok := GoalProgress(listing, profile); ok {
			scored.GoalProgress = &pct
		}
		out = append(out, scored)
	}
	return out
}
