package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BudgetBucket string

const (
	BudgetUnder5L BudgetBucket = "Under 5L"
	Budget5To10L  BudgetBucket = "5L-10L"
	Budget10To25L BudgetBucket = "10L-25L"
	Budget25To50L BudgetBucket = "25L-50L"
	Budget50LPlus BudgetBucket = "50L+"
)

// UnboundedBudget stands in for "no ceiling" so the budget predicate keeps
// the same shape for every bucket.
const UnboundedBudget = 1e15

// BudgetCeilings is ordered from the smallest bucket to the largest. The top
// bucket is effectively unbounded.
var BudgetCeilings = []struct {
	Bucket  BudgetBucket
	Ceiling float64
}{
	{BudgetUnder5L, 500_000},
	{Budget5To10L, 1_000_000},
	{Budget10To25L, 2_500_000},
	{Budget25To50L, 5_000_000},
	{Budget50LPlus, UnboundedBudget},
}

// Ceiling returns the investment ceiling for the bucket. Matching ignores
// case and surrounding whitespace.
func (b BudgetBucket) Ceiling() (float64, bool) {
	needle := strings.TrimSpace(string(b))
	for _, entry := range BudgetCeilings {
		if strings.EqualFold(string(entry.Bucket), needle) {
			return entry.Ceiling, true
		}
	}
	return 0, false
}

type UserProfile struct {
	UserID           uuid.UUID    `db:"user_id" json:"user_id"`
	BudgetBucket     BudgetBucket `db:"budget_bucket" json:"budget_bucket"`
	RiskTolerance    string       `db:"risk_tolerance" json:"risk_tolerance"`
	PreferredSectors []string     `db:"-" json:"preferred_sectors"`
	IncomeGoal       float64      `db:"income_goal" json:"income_goal"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}
