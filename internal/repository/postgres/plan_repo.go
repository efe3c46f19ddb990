// internal/repository/postgres/plan_repo.go
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

type PlanRepository struct {
	db Querier
}

func NewPlanRepository(db Querier) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, code, name, description, price, billing_interval, features, active, created_at, updated_at`

func scanPlan(row pgx.Row) (*billing.Plan, error) {
	var plan billing.Plan
	var featuresJSON []byte

	err := row.Scan(
		&plan.ID, &plan.Code, &plan.Name, &plan.Description, &plan.Price,
		&plan.Interval, &featuresJSON, &plan.Active, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(featuresJSON) > 0 {
		if err := json.Unmarshal(featuresJSON, &plan.Features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan features: %w", err)
		}
	}

	return &plan, nil
}

// Create inserts a new plan
func (r *PlanRepository) Create(ctx context.Context, plan *billing.Plan) error {
	query := `
		INSERT INTO plans (code, name, description, price, billing_interval, features, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	featuresJSON, err := json.Marshal(plan.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	err = r.db.QueryRow(
		ctx, query,
		plan.Code, plan.Name, plan.Description, plan.Price,
		plan.Interval, featuresJSON, plan.Active,
	).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

// FindByID retrieves a plan by ID
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*billing.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE id = $1`, planColumns)

	plan, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}

	return plan, nil
}

// FindActiveByCode retrieves an active plan by its unique code
func (r *PlanRepository) FindActiveByCode(ctx context.Context, code string) (*billing.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE code = $1 AND active = TRUE`, planColumns)

	plan, err := scanPlan(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find plan by code: %w", err)
	}

	return plan, nil
}

// ListActive retrieves all active plans ordered by ascending price
func (r *PlanRepository) ListActive(ctx context.Context) ([]billing.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE active = TRUE ORDER BY price ASC, id ASC`, planColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans := []billing.Plan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}

	return plans, rows.Err()
}

// Update updates a plan's mutable fields
func (r *PlanRepository) Update(ctx context.Context, id int64, plan *billing.Plan) error {
	query := `
		UPDATE plans
		SET name = $1, description = $2, price = $3, billing_interval = $4,
		    features = $5, updated_at = $6
		WHERE id = $7
	`

	featuresJSON, err := json.Marshal(plan.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	result, err := r.db.Exec(
		ctx, query,
		plan.Name, plan.Description, plan.Price, plan.Interval,
		featuresJSON, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SetActive flips the active flag. Plans referenced by subscriptions
// are deactivated rather than deleted.
func (r *PlanRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE plans SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
