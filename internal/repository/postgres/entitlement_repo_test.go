// internal/repository/postgres/entitlement_repo_test.go
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

func TestEntitlementRepositoryConsume(t *testing.T) {
	mock := newMockPool(t)
	repo := NewEntitlementRepository(mock)
	now := time.Now()

	mock.ExpectExec(`UPDATE entitlements\s+SET used_count = used_count \+ 1`).
		WithArgs(now, int64(31), "max_listings").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Consume(context.Background(), 31, "max_listings", now)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntitlementRepositoryConsumeQuotaSpent(t *testing.T) {
	mock := newMockPool(t)
	repo := NewEntitlementRepository(mock)
	now := time.Now()

	mock.ExpectExec(`UPDATE entitlements\s+SET used_count = used_count \+ 1`).
		WithArgs(now, int64(31), "hero_slots").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(31), "hero_slots").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.Consume(context.Background(), 31, "hero_slots", now)
	assert.ErrorIs(t, err, xerrors.ErrQuotaExceeded)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntitlementRepositoryConsumeUnknownFeature(t *testing.T) {
	mock := newMockPool(t)
	repo := NewEntitlementRepository(mock)
	now := time.Now()

	mock.ExpectExec(`UPDATE entitlements\s+SET used_count = used_count \+ 1`).
		WithArgs(now, int64(31), "teleportation").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(31), "teleportation").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := repo.Consume(context.Background(), 31, "teleportation", now)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntitlementRepositoryListBySubscription(t *testing.T) {
	mock := newMockPool(t)
	repo := NewEntitlementRepository(mock)
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "subscription_id", "feature_key", "feature_value",
		"used_count", "expires_at", "created_at", "updated_at",
	}).
		AddRow(int64(1), int64(7), int64(31), "analytics", int64(1), int64(0), sql.NullTime{}, now, now).
		AddRow(int64(2), int64(7), int64(31), "max_listings", int64(-1), int64(4), sql.NullTime{}, now, now)

	mock.ExpectQuery(`SELECT .+ FROM entitlements WHERE subscription_id = \$1 ORDER BY feature_key`).
		WithArgs(int64(31)).
		WillReturnRows(rows)

	ents, err := repo.ListBySubscription(context.Background(), 31)
	require.NoError(t, err)
	require.Len(t, ents, 2)
	assert.Equal(t, "analytics", ents[0].FeatureKey)
	assert.Equal(t, int64(-1), ents[1].FeatureValue)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryMarkFailedAlreadySettled(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPaymentRepository(mock)
	now := time.Now()

	mock.ExpectExec(`UPDATE payments SET status = \$1`).
		WithArgs(billing.PaymentFailed, pgxmock.AnyArg(), int64(11), billing.PaymentPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT .+ FROM payments WHERE id = \$1`).
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "plan_id", "amount", "method", "reference",
			"status", "subscription_id", "created_at", "updated_at",
		}).AddRow(
			int64(11), int64(7), int64(2), int64(2500), billing.MethodBankTransfer,
			sql.NullString{}, billing.PaymentSucceeded, sql.NullInt64{}, now, now,
		))

	err := repo.MarkFailed(context.Background(), 11)
	assert.ErrorIs(t, err, xerrors.ErrInvalidState)

	assert.NoError(t, mock.ExpectationsWereMet())
}
