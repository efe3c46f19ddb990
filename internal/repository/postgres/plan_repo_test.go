// internal/repository/postgres/plan_repo_test.go
package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beedab-service/internal/domain/billing"
	xerrors "beedab-service/internal/pkg/errors"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func planRow(now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "code", "name", "description", "price", "billing_interval",
		"features", "active", "created_at", "updated_at",
	}).AddRow(
		int64(1), "LISTER_PRO", "Pro", sql.NullString{String: "For serious listers", Valid: true},
		int64(2500), billing.IntervalMonthly,
		[]byte(`{"max_listings": 50, "analytics": true}`), true, now, now,
	)
}

func TestPlanRepositoryFindActiveByCode(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPlanRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM plans WHERE code = \$1 AND active = TRUE`).
		WithArgs("LISTER_PRO").
		WillReturnRows(planRow(now))

	plan, err := repo.FindActiveByCode(context.Background(), "LISTER_PRO")
	require.NoError(t, err)
	assert.Equal(t, int64(1), plan.ID)
	assert.Equal(t, int64(2500), plan.Price)
	assert.Equal(t, billing.LimitFeature(50), plan.Features["max_listings"])
	assert.Equal(t, billing.BoolFeature(true), plan.Features["analytics"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryFindActiveByCodeMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPlanRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM plans WHERE code = \$1 AND active = TRUE`).
		WithArgs("GHOST").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.FindActiveByCode(context.Background(), "GHOST")
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryListActive(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPlanRepository(mock)
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "code", "name", "description", "price", "billing_interval",
		"features", "active", "created_at", "updated_at",
	}).
		AddRow(int64(1), "LISTER_FREE", "Free", sql.NullString{}, int64(0), billing.IntervalNone,
			[]byte(`{"max_listings": 3}`), true, now, now).
		AddRow(int64(2), "AGENCY", "Agency", sql.NullString{}, int64(9900), billing.IntervalMonthly,
			[]byte(`{"max_listings": "unlimited"}`), true, now, now)

	mock.ExpectQuery(`SELECT .+ FROM plans WHERE active = TRUE ORDER BY price ASC, id ASC`).
		WillReturnRows(rows)

	plans, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "LISTER_FREE", plans[0].Code)
	assert.Equal(t, billing.UnlimitedFeature(), plans[1].Features["max_listings"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositorySetActiveMissing(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPlanRepository(mock)

	mock.ExpectExec(`UPDATE plans SET active = \$1`).
		WithArgs(false, pgxmock.AnyArg(), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetActive(context.Background(), 42, false)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
