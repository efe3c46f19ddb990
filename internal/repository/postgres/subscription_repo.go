// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"beedab-service/internal/domain/billing"
	xerrors "beedab-service/internal/pkg/errors"
)

type SubscriptionRepository struct {
	db Querier
}

func NewSubscriptionRepository(db Querier) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Activate settles a pending payment and materializes the resulting
// subscription and entitlements in a single transaction:
//
//  1. conditionally flip the payment pending -> succeeded; zero rows
//     affected means the payment is absent or already settled, so
//     concurrent approvals cannot double-activate,
//  2. expire any prior active subscription of the user (at most one
//     active subscription per user),
//  3. insert the subscription and its entitlement rows,
//  4. stamp the payment with the new subscription id.
func (r *SubscriptionRepository) Activate(ctx context.Context, paymentID int64, sub *billing.Subscription, ents []billing.Entitlement) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	settle := `
		UPDATE payments SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := tx.Exec(ctx, settle, billing.PaymentSucceeded, now, paymentID, billing.PaymentPending)
	if err != nil {
		return fmt.Errorf("failed to settle payment: %w", err)
	}
	if result.RowsAffected() == 0 {
		var status billing.PaymentStatus
		err := tx.QueryRow(ctx, `SELECT status FROM payments WHERE id = $1`, paymentID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return xerrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to inspect payment: %w", err)
		}
		return xerrors.ErrInvalidState
	}

	supersede := `
		UPDATE subscriptions
		SET status = $1, ends_at = COALESCE(ends_at, $2), updated_at = $2
		WHERE user_id = $3 AND status = $4
	`
	if _, err := tx.Exec(ctx, supersede, billing.SubscriptionExpired, now, sub.UserID, billing.SubscriptionActive); err != nil {
		return fmt.Errorf("failed to supersede prior subscription: %w", err)
	}

	insertSub := `
		INSERT INTO subscriptions (reference, user_id, plan_id, status, starts_at, ends_at, next_billing_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(
		ctx, insertSub,
		sub.Reference, sub.UserID, sub.PlanID, sub.Status,
		sub.StartsAt, sub.EndsAt, sub.NextBillingAt,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	insertEnt := `
		INSERT INTO entitlements (user_id, subscription_id, feature_key, feature_value, used_count, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	for i := range ents {
		ents[i].SubscriptionID = sub.ID
		err = tx.QueryRow(
			ctx, insertEnt,
			ents[i].UserID, ents[i].SubscriptionID, ents[i].FeatureKey,
			ents[i].FeatureValue, ents[i].UsedCount, ents[i].ExpiresAt,
		).Scan(&ents[i].ID, &ents[i].CreatedAt, &ents[i].UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create entitlement %s: %w", ents[i].FeatureKey, err)
		}
	}

	stamp := `UPDATE payments SET subscription_id = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.Exec(ctx, stamp, sub.ID, now, paymentID); err != nil {
		return fmt.Errorf("failed to stamp payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}

	return nil
}

// FindLatestActiveByUser retrieves the most recently created active,
// unexpired subscription for a user, joined with its plan.
func (r *SubscriptionRepository) FindLatestActiveByUser(ctx context.Context, userID int64, now time.Time) (*billing.SubscriptionWithPlan, error) {
	query := `
		SELECT s.id, s.reference, s.user_id, s.plan_id, s.status,
		       s.starts_at, s.ends_at, s.next_billing_at, s.created_at, s.updated_at,
		       p.id, p.code, p.name, p.description, p.price, p.billing_interval,
		       p.features, p.active, p.created_at, p.updated_at
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.user_id = $1
		  AND s.status = $2
		  AND (s.ends_at IS NULL OR s.ends_at > $3)
		ORDER BY s.created_at DESC
		LIMIT 1
	`

	var sp billing.SubscriptionWithPlan
	var featuresJSON []byte

	err := r.db.QueryRow(ctx, query, userID, billing.SubscriptionActive, now).Scan(
		&sp.ID, &sp.Reference, &sp.UserID, &sp.PlanID, &sp.Status,
		&sp.StartsAt, &sp.EndsAt, &sp.NextBillingAt, &sp.CreatedAt, &sp.UpdatedAt,
		&sp.Plan.ID, &sp.Plan.Code, &sp.Plan.Name, &sp.Plan.Description, &sp.Plan.Price,
		&sp.Plan.Interval, &featuresJSON, &sp.Plan.Active, &sp.Plan.CreatedAt, &sp.Plan.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active subscription: %w", err)
	}

	if len(featuresJSON) > 0 {
		if err := json.Unmarshal(featuresJSON, &sp.Plan.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan features: %w", err)
		}
	}

	return &sp, nil
}

// ExpireDue marks active subscriptions whose window has passed as
// expired. Returns the number of rows touched; used by the expiry
// sweeper.
func (r *SubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE subscriptions SET status = $1, updated_at = $2
		WHERE status = $3 AND ends_at IS NOT NULL AND ends_at <= $2
	`

	result, err := r.db.Exec(ctx, query, billing.SubscriptionExpired, now, billing.SubscriptionActive)
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}

	return result.RowsAffected(), nil
}
