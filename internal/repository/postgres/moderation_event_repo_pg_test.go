package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
)

var eventColumns = []string{"id", "action", "actor_id", "target_id", "detail", "created_at"}

func TestModerationEventRepository_Append(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewModerationEventRepo(db)
	actor, target := uuid.New(), uuid.New()
	at := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO moderation_event").
		WithArgs("reject", sqlmock.AnyArg(), sqlmock.AnyArg(), []byte(`{"reason":"thin"}`), at).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(uuid.NewString(), "reject", actor.String(), target.String(), []byte(`{"reason":"thin"}`), at))

	stored, err := repo.Append(context.Background(), &domain.ModerationEvent{
		Action:    domain.ModerationActionReject,
		ActorID:   actor,
		TargetID:  target,
		Detail:    domain.EventDetail{"reason": "thin"},
		CreatedAt: at,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ModerationActionReject, stored.Action)
	assert.Equal(t, target, stored.TargetID)
	assert.Equal(t, "thin", stored.Detail["reason"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestModerationEventRepository_Latest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewModerationEventRepo(db)
	target := uuid.New()

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC\s+LIMIT 1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(eventColumns))

	_, err := repo.LatestByTarget(context.Background(), target)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2")).
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow(uuid.NewString(), "approve", uuid.NewString(), target.String(), nil, time.Now()).
			AddRow(uuid.NewString(), "submit", uuid.NewString(), target.String(), []byte(`{}`), time.Now()))

	events, err := repo.ListByTarget(context.Background(), target, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ModerationActionApprove, events[0].Action)
	assert.NotNil(t, events[0].Detail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_FindByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepo(db)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_profile")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "budget_bucket", "risk_tolerance", "preferred_sectors", "income_goal", "updated_at"}).
			AddRow(userID.String(), "10L-25L", "high", []byte("{food,\"home services\"}"), 75000.0, time.Now()))

	got, err := repo.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.Budget10To25L, got.BudgetBucket)
	assert.Equal(t, []string{"food", "home services"}, got.PreferredSectors)
	assert.Equal(t, 75000.0, got.IncomeGoal)
	require.NoError(t, mock.ExpectationsWereMet())
}
