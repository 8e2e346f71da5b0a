package service

import (
	"math"
	"testing"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

func TestBudgetBucketCeilings(t *testing.T) {
	cases := []struct {
		bucket domain.BudgetBucket
		want   float64
		ok     bool
	}{
		{"Under 5L", 500000, true},
		{"5L-10L", 1000000, true},
		{"10L-25L", 2500000, true},
		{" 25l-50l ", 5000000, true},
		{"50L+", domain.UnboundedBudget, true},
		{"1Cr+", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := tc.bucket.Ceiling()
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Ceiling(%q) = %v,%v want %v,%v", tc.bucket, got, ok, tc.want, tc.ok)
		}
	}
	if top, _ := domain.Budget50LPlus.Ceiling(); top < 1e9 {
		t.Fatalf("top bucket must be effectively unbounded, got %v", top)
	}
}

func TestApplyPersonalization(t *testing.T) {
	compiler := NewFacetCompiler(20)
	profile := &domain.UserProfile{BudgetBucket: domain.BudgetUnder5L, RiskTolerance: "Medium"}

	t.Run("no profile leaves the query alone", func(t *testing.T) {
		sel := domain.FacetSelection{Personalize: true}
		q := compiler.Compile(sel)
		out := ApplyPersonalization(q, sel, nil)
		if len(out.Predicates) != len(q.Predicates) {
			t.Fatalf("expected unchanged query")
		}
	})

	t.Run("personalize off leaves the query alone", func(t *testing.T) {
		sel := domain.FacetSelection{}
		q := compiler.Compile(sel)
		out := ApplyPersonalization(q, sel, profile)
		if len(out.Predicates) != len(q.Predicates) {
			t.Fatalf("expected unchanged query")
		}
	})

	t.Run("adds risk and budget ceiling", func(t *testing.T) {
		sel := domain.FacetSelection{Personalize: true}
		q := compiler.Compile(sel)
		out := ApplyPersonalization(q, sel, profile)
		if len(out.Predicates) != len(q.Predicates)+2 {
			t.Fatalf("expected two extra predicates, got %+v", out.Predicates)
		}
		var sawRisk, sawBudget bool
		for _, p := range out.Predicates {
			if p.Field == domain.FieldRiskLevel && p.Value == "medium" {
				sawRisk = true
			}
			if p.Field == domain.FieldInvestmentMin && p.Op == domain.OpLte && p.Value == 500000.0 {
				sawBudget = true
			}
		}
		if !sawRisk || !sawBudget {
			t.Fatalf("missing personalization predicates: %+v", out.Predicates)
		}
		if len(q.Predicates) != 2 {
			t.Fatalf("input query was mutated")
		}
	})

	t.Run("explicit risk facet wins over tolerance", func(t *testing.T) {
		sel := domain.FacetSelection{Personalize: true, Risk: "high"}
		out := ApplyPersonalization(compiler.Compile(sel), sel, profile)
		for _, p := range out.Predicates {
			if p.Field == domain.FieldRiskLevel && p.Value != "high" {
				t.Fatalf("tolerance must not override explicit risk: %+v", p)
			}
		}
	})

	t.Run("unknown bucket adds no ceiling", func(t *testing.T) {
		sel := domain.FacetSelection{Personalize: true}
		out := ApplyPersonalization(compiler.Compile(sel), sel, &domain.UserProfile{BudgetBucket: "lots"})
		if out.HasPredicateOn(domain.FieldInvestmentMin) {
			t.Fatalf("unexpected budget predicate: %+v", out.Predicates)
		}
	})
}

func TestGoalProgress(t *testing.T) {
	listing := newIdea("Dropshipping", income(25000))

	cases := []struct {
		name    string
		listing domain.Listing
		profile *domain.UserProfile
		want    int
		ok      bool
	}{
		{"quarter of goal", listing, &domain.UserProfile{IncomeGoal: 100000}, 25, true},
		{"rounds half up", newIdea("x", income(1)), &domain.UserProfile{IncomeGoal: 200}, 1, true},
		{"exceeds goal", listing, &domain.UserProfile{IncomeGoal: 10000}, 250, true},
		{"zero goal is absent", listing, &domain.UserProfile{IncomeGoal: 0}, 0, false},
		{"negative goal is absent", listing, &domain.UserProfile{IncomeGoal: -5}, 0, false},
		{"nan goal is absent", listing, &domain.UserProfile{IncomeGoal: math.NaN()}, 0, false},
		{"no profile", listing, nil, 0, false},
		{"franchise has no income", newFranchise("Burger"), &domain.UserProfile{IncomeGoal: 100000}, 0, false},
		{"missing income", newIdea("Empty"), &domain.UserProfile{IncomeGoal: 100000}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := GoalProgress(tc.listing, tc.profile)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("GoalProgress = %d,%v want %d,%v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestScoreListings(t *testing.T) {
	listings := []domain.Listing{newIdea("A", income(5000)), newFranchise("B")}
	scored := ScoreListings(listings, &domain.UserProfile{IncomeGoal: 10000})
	if len(scored) != 2 {
		t.Fatalf("expected 2 scored listings, got %d", len(scored))
	}
	if scored[0].GoalProgress == nil || *scored[0].GoalProgress != 50 {
		t.Fatalf("expected 50%% progress, got %v", scored[0].GoalProgress)
	}
	if scored[1].GoalProgress != nil {
		t.Fatalf("franchise must not carry progress")
	}
}
