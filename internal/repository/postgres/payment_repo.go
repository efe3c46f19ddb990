// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"beedab-service/internal/domain/billing"
	xerrors "beedab-service/internal/pkg/errors"
)

type PaymentRepository struct {
	db Querier
}

func NewPaymentRepository(db Querier) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, user_id, plan_id, amount, method, reference, status, subscription_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*billing.Payment, error) {
	var p billing.Payment
	err := row.Scan(
		&p.ID, &p.UserID, &p.PlanID, &p.Amount, &p.Method,
		&p.Reference, &p.Status, &p.SubscriptionID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new payment with status pending
func (r *PaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	query := `
		INSERT INTO payments (user_id, plan_id, amount, method, reference, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		payment.UserID, payment.PlanID, payment.Amount,
		payment.Method, payment.Reference, payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// FindByID retrieves a payment by ID
func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*billing.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return payment, nil
}

// ListByStatus retrieves payments in a given status, newest first
func (r *PaymentRepository) ListByStatus(ctx context.Context, status billing.PaymentStatus) ([]billing.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE status = $1 ORDER BY created_at DESC`, paymentColumns)

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []billing.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	return payments, rows.Err()
}

// MarkFailed transitions a pending payment to failed. The status check
// lives in the UPDATE itself so concurrent transitions cannot race.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id int64) error {
	query := `
		UPDATE payments SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.db.Exec(ctx, query, billing.PaymentFailed, time.Now(), id, billing.PaymentPending)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing payment from one already settled.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return xerrors.ErrInvalidState
	}

	return nil
}
