// internal/repository/postgres/subscription_repo_test.go
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

func TestSubscriptionRepositoryActivate(t *testing.T) {
	mock := newMockPool(t)
	repo := NewSubscriptionRepository(mock)
	now := time.Now()

	sub := &billing.Subscription{
		Reference: "01J8ZABCDEF",
		UserID:    7,
		PlanID:    2,
		Status:    billing.SubscriptionActive,
		StartsAt:  now,
		EndsAt:    sql.NullTime{Time: now.Add(30 * 24 * time.Hour), Valid: true},
	}
	ents := []billing.Entitlement{
		{UserID: 7, FeatureKey: "max_listings", FeatureValue: 50},
		{UserID: 7, FeatureKey: "analytics", FeatureValue: 1},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE payments SET status = \$1`).
		WithArgs(billing.PaymentSucceeded, pgxmock.AnyArg(), int64(11), billing.PaymentPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE subscriptions`).
		WithArgs(billing.SubscriptionExpired, pgxmock.AnyArg(), int64(7), billing.SubscriptionActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO subscriptions`).
		WithArgs(sub.Reference, sub.UserID, sub.PlanID, sub.Status, sub.StartsAt, sub.EndsAt, sub.NextBillingAt).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(31), now, now))
	for range ents {
		mock.ExpectQuery(`INSERT INTO entitlements`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(100), now, now))
	}
	mock.ExpectExec(`UPDATE payments SET subscription_id = \$1`).
		WithArgs(int64(31), pgxmock.AnyArg(), int64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Activate(context.Background(), 11, sub, ents)
	require.NoError(t, err)
	assert.Equal(t, int64(31), sub.ID)
	assert.Equal(t, int64(31), ents[0].SubscriptionID)
	assert.Equal(t, int64(31), ents[1].SubscriptionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepositoryActivateAlreadySettled(t *testing.T) {
	mock := newMockPool(t)
	repo := NewSubscriptionRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE payments SET status = \$1`).
		WithArgs(billing.PaymentSucceeded, pgxmock.AnyArg(), int64(11), billing.PaymentPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT status FROM payments WHERE id = \$1`).
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow(billing.PaymentSucceeded))
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), 11, &billing.Subscription{UserID: 7}, nil)
	assert.ErrorIs(t, err, xerrors.ErrInvalidState)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepositoryActivateMissingPayment(t *testing.T) {
	mock := newMockPool(t)
	repo := NewSubscriptionRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE payments SET status = \$1`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT status FROM payments WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), 404, &billing.Subscription{UserID: 7}, nil)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepositoryFindLatestActiveByUser(t *testing.T) {
	mock := newMockPool(t)
	repo := NewSubscriptionRepository(mock)
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "reference", "user_id", "plan_id", "status",
		"starts_at", "ends_at", "next_billing_at", "created_at", "updated_at",
		"p_id", "code", "name", "description", "price", "billing_interval",
		"features", "active", "p_created_at", "p_updated_at",
	}).AddRow(
		int64(31), "01J8ZABCDEF", int64(7), int64(2), billing.SubscriptionActive,
		now, sql.NullTime{Time: now.Add(720 * time.Hour), Valid: true}, sql.NullTime{}, now, now,
		int64(2), "LISTER_PRO", "Pro", sql.NullString{}, int64(2500), billing.IntervalMonthly,
		[]byte(`{"max_listings": 50}`), true, now, now,
	)

	mock.ExpectQuery(`FROM subscriptions s\s+JOIN plans p ON p.id = s.plan_id`).
		WithArgs(int64(7), billing.SubscriptionActive, pgxmock.AnyArg()).
		WillReturnRows(rows)

	sp, err := repo.FindLatestActiveByUser(context.Background(), 7, now)
	require.NoError(t, err)
	assert.Equal(t, int64(31), sp.ID)
	assert.Equal(t, "LISTER_PRO", sp.Plan.Code)
	assert.Equal(t, billing.LimitFeature(50), sp.Plan.Features["max_listings"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepositoryExpireDue(t *testing.T) {
	mock := newMockPool(t)
	repo := NewSubscriptionRepository(mock)
	now := time.Now()

	mock.ExpectExec(`UPDATE subscriptions SET status = \$1`).
		WithArgs(billing.SubscriptionExpired, now, billing.SubscriptionActive).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.ExpireDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
