package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileRow struct {
	UserID           uuid.UUID      `db:"user_id"`
	BudgetBucket     string         `db:"budget_bucket"`
	RiskTolerance    string         `db:"risk_tolerance"`
	PreferredSectors pq.StringArray `db:"preferred_sectors"`
	IncomeGoal       float64        `db:"income_goal"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	const query = `
		SELECT user_id,
		       COALESCE(budget_bucket, '') AS budget_bucket,
		       COALESCE(risk_tolerance, '') AS risk_tolerance,
		       COALESCE(preferred_sectors, '{}') AS preferred_sectors,
		       COALESCE(income_goal, 0)::float8 AS income_goal,
		       updated_at
		FROM user_profile
		WHERE user_id = $1
	`
	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		return nil, err
	}
	return &domain.UserProfile{
		UserID:           row.UserID,
		BudgetBucket:     domain.BudgetBucket(row.BudgetBucket),
		RiskTolerance:    row.RiskTolerance,
		PreferredSectors: []string(row.PreferredSectors),
		IncomeGoal:       row.IncomeGoal,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)
