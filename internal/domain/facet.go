package domain

import (
	"strings"

	"github.com/google/uuid"
)

// FacetAll is the sentinel that disables an equality facet.
const FacetAll = "all"

type ListingSort string

const (
	ListingSortNewest  ListingSort = "newest"
	ListingSortPopular ListingSort = "popular"
	ListingSortIncome  ListingSort = "income"
)

// FacetSelection is rebuilt from caller input for every query and never
// persisted.
type FacetSelection struct {
	Query         string
	Kind          ListingKind
	Category      string
	Risk          string
	Effort        string
	MinIncome     *float64
	MinInvestment *float64
	MaxInvestment *float64
	Personalize   bool
	Sort          ListingSort
	Limit         int
	Offset        int
}

// FacetActive reports whether an equality facet value narrows the result.
func FacetActive(v string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed != "" && !strings.EqualFold(trimmed, FacetAll)
}

type Field string

const (
	FieldIsApproved       Field = "is_approved"
	FieldIsFeatured       Field = "is_featured"
	FieldDeletedAt        Field = "deleted_at"
	FieldKind             Field = "kind"
	FieldTitle            Field = "title"
	FieldCategory         Field = "category_id"
	FieldRiskLevel        Field = "risk_level"
	FieldEffortLevel      Field = "effort_level"
	FieldMonthlyIncomeMin Field = "monthly_income_min"
	FieldInvestmentMin    Field = "investment_min"
	FieldInvestmentMax    Field = "investment_max"
	FieldAuthorID         Field = "author_id"
	FieldPopularity       Field = "popularity"
	FieldCreatedAt        Field = "created_at"
	FieldID               Field = "id"
)

type Operator string

const (
	OpEq           Operator = "eq"
	OpGte          Operator = "gte"
	OpLte          Operator = "lte"
	OpIsNull       Operator = "is_null"
	OpContainsFold Operator = "contains_fold"
)

// Predicate is one conjunct of a catalog read. A query matches a listing
// when every predicate does, so the order predicates are applied in never
// changes the result.
type Predicate struct {
	Field Field
	Op    Operator
	Value any
}

func Eq(field Field, value any) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

func Gte(field Field, value float64) Predicate {
	return Predicate{Field: field, Op: OpGte, Value: value}
}

func Lte(field Field, value float64) Predicate {
	return Predicate{Field: field, Op: OpLte, Value: value}
}

func IsNull(field Field) Predicate {
	return Predicate{Field: field, Op: OpIsNull}
}

func ContainsFold(field Field, v string) Predicate {
	return Predicate{Field: field, Op: OpContainsFold, Value: v}
}

// Matches evaluates the predicate against a listing in memory. Numeric
// comparisons against an absent value never match.
func (p Predicate) Matches(l Listing) bool {
	switch p.Op {
	case OpIsNull:
		switch p.Field {
		case FieldDeletedAt:
			return l.DeletedAt == nil
		case FieldInvestmentMin:
			return l.InvestmentMin == nil
		case FieldInvestmentMax:
			return l.InvestmentMax == nil
		case FieldMonthlyIncomeMin:
			return l.MonthlyIncomeMin() == nil
		}
		return false
	case OpEq:
		switch p.Field {
		case FieldIsApproved:
			v, ok := p.Value.(bool)
			return ok && l.IsApproved == v
		case FieldIsFeatured:
			v, ok := p.Value.(bool)
			return ok && l.IsFeatured == v
		case FieldAuthorID:
			v, ok := p.Value.(uuid.UUID)
			return ok && l.AuthorID == v
		case FieldID:
			v, ok := p.Value.(uuid.UUID)
			return ok && l.ID == v
		}
		want, ok := p.Value.(string)
		if !ok {
			return false
		}
		got, ok := stringField(l, p.Field)
		return ok && strings.EqualFold(got, want)
	case OpContainsFold:
		want, ok := p.Value.(string)
		if !ok {
			return false
		}
		got, ok := stringField(l, p.Field)
		return ok && strings.Contains(strings.ToLower(got), strings.ToLower(want))
	case OpGte, OpLte:
		bound, ok := p.Value.(float64)
		if !ok {
			return false
		}
		got := numericField(l, p.Field)
		if got == nil {
			return false
		}
		if p.Op == OpGte {
			return *got >= bound
		}
		return *got <= bound
	}
	return false
}

// MatchesAll reports whether every predicate matches.
func MatchesAll(preds []Predicate, l Listing) bool {
	for _, p := range preds {
		if !p.Matches(l) {
			return false
		}
	}
	return true
}

func stringField(l Listing, f Field) (string, bool) {
	switch f {
	case FieldKind:
		return string(l.Kind), true
	case FieldTitle:
		return l.Title, true
	case FieldCategory:
		return l.CategoryID, true
	case FieldRiskLevel:
		return string(l.RiskLevel), true
	case FieldEffortLevel:
		return string(l.EffortLevel()), true
	}
	return "", false
}

func numericField(l Listing, f Field) *float64 {
	switch f {
	case FieldMonthlyIncomeMin:
		return l.MonthlyIncomeMin()
	case FieldInvestmentMin:
		return l.InvestmentMin
	case FieldInvestmentMax:
		return l.InvestmentMax
	case FieldPopularity:
		v := float64(l.Popularity)
		return &v
	}
	return nil
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type SortTerm struct {
	Field     Field
	Direction SortDirection
}

// CompiledQuery is the store-facing form of a facet selection.
type CompiledQuery struct {
	Predicates []Predicate
	Sorts      []SortTerm
	Limit      int
	Offset     int
}

// HasPredicateOn reports whether any predicate targets field.
func (q CompiledQuery) HasPredicateOn(field Field) bool {
	for _, p := range q.Predicates {
		if p.Field == field {
			return true
		}
	}
	return false
}

func (q CompiledQuery) Clone() CompiledQuery {
	out := q
	out.Predicates = append([]Predicate(nil), q.Predicates...)
	out.Sorts = append([]SortTerm(nil), q.Sorts...)
	return out
}
