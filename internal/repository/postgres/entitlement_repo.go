// internal/repository/postgres/entitlement_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"beedab-service/internal/domain/billing"
	xerrors "beedab-service/internal/pkg/errors"
)

type EntitlementRepository struct {
	db Querier
}

func NewEntitlementRepository(db Querier) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

const entitlementColumns = `id, user_id, subscription_id, feature_key, feature_value, used_count, expires_at, created_at, updated_at`

func scanEntitlement(row pgx.Row) (*billing.Entitlement, error) {
	var e billing.Entitlement
	err := row.Scan(
		&e.ID, &e.UserID, &e.SubscriptionID, &e.FeatureKey, &e.FeatureValue,
		&e.UsedCount, &e.ExpiresAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListBySubscription retrieves the entitlements of one subscription
func (r *EntitlementRepository) ListBySubscription(ctx context.Context, subscriptionID int64) ([]billing.Entitlement, error) {
	query := fmt.Sprintf(`SELECT %s FROM entitlements WHERE subscription_id = $1 ORDER BY feature_key`, entitlementColumns)

	rows, err := r.db.Query(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	defer rows.Close()

	ents := []billing.Entitlement{}
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entitlement: %w", err)
		}
		ents = append(ents, *e)
	}

	return ents, rows.Err()
}

// Consume atomically spends one unit of a feature. The quota check is
// part of the UPDATE itself, so concurrent consumers cannot overdraw:
// unlimited entitlements (-1) always pass, bounded ones only while
// used_count is below the limit and the entitlement has not expired.
func (r *EntitlementRepository) Consume(ctx context.Context, subscriptionID int64, featureKey string, now time.Time) error {
	query := `
		UPDATE entitlements
		SET used_count = used_count + 1, updated_at = $1
		WHERE subscription_id = $2
		  AND feature_key = $3
		  AND (expires_at IS NULL OR expires_at > $1)
		  AND (feature_value = -1 OR used_count < feature_value)
	`

	result, err := r.db.Exec(ctx, query, now, subscriptionID, featureKey)
	if err != nil {
		return fmt.Errorf("failed to consume entitlement: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either the feature is not part of the plan or its quota is
		// spent; distinguish for the caller.
		var exists bool
		err := r.db.QueryRow(
			ctx,
			`SELECT EXISTS(SELECT 1 FROM entitlements WHERE subscription_id = $1 AND feature_key = $2)`,
			subscriptionID, featureKey,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to inspect entitlement: %w", err)
		}
		if !exists {
			return xerrors.ErrNotFound
		}
		return xerrors.ErrQuotaExceeded
	}

	return nil
}

// Peek retrieves one entitlement of a subscription by feature key
func (r *EntitlementRepository) Peek(ctx context.Context, subscriptionID int64, featureKey string) (*billing.Entitlement, error) {
	query := fmt.Sprintf(`SELECT %s FROM entitlements WHERE subscription_id = $1 AND feature_key = $2`, entitlementColumns)

	e, err := scanEntitlement(r.db.QueryRow(ctx, query, subscriptionID, featureKey))
	if err == pgx.ErrNoRows {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find entitlement: %w", err)
	}

	return e, nil
}
