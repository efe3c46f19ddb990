// internal/service/billing/plan_service.go
package billing

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"beedab-service/internal/domain/billing"
	xerrors "beedab-service/internal/pkg/errors"
)

type PlanService struct {
	planRepo PlanStore
	logger   *zap.Logger
}

func NewPlanService(planRepo PlanStore, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		logger:   logger,
	}
}

// ListPlans returns all active plans ordered by ascending price.
func (s *PlanService) ListPlans(ctx context.Context) ([]billing.Plan, error) {
	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// GetPlan retrieves a plan by ID
func (s *PlanService) GetPlan(ctx context.Context, id int64) (*billing.Plan, error) {
	return s.planRepo.FindByID(ctx, id)
}

// CreatePlan creates a new plan (admin only)
func (s *PlanService) CreatePlan(ctx context.Context, req *billing.CreatePlanRequest) (*billing.Plan, error) {
	if err := validatePlanCode(req.Code); err != nil {
		return nil, err
	}
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("%w: plan needs at least one feature", xerrors.ErrInvalidInput)
	}

	plan := &billing.Plan{
		Code:        req.Code,
		Name:        req.Name,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		Price:       req.Price,
		Interval:    billing.BillingInterval(req.Interval),
		Features:    req.Features,
		Active:      true,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		s.logger.Error("failed to create plan", zap.Error(err))
		return nil, err
	}

	s.logger.Info("plan created",
		zap.Int64("plan_id", plan.ID),
		zap.String("code", plan.Code),
		zap.Int64("price", plan.Price),
	)

	return plan, nil
}

// UpdatePlan updates a plan's mutable fields (admin only). The code is
// immutable once assigned.
func (s *PlanService) UpdatePlan(ctx context.Context, id int64, req *billing.UpdatePlanRequest) (*billing.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Interval != nil {
		plan.Interval = billing.BillingInterval(*req.Interval)
	}
	if req.Features != nil {
		plan.Features = req.Features
	}

	if err := s.planRepo.Update(ctx, id, plan); err != nil {
		s.logger.Error("failed to update plan", zap.Error(err))
		return nil, err
	}

	s.logger.Info("plan updated", zap.Int64("plan_id", id), zap.String("code", plan.Code))
	return s.planRepo.FindByID(ctx, id)
}

// DeactivatePlan hides a plan from the catalog. Plans are never
// deleted because subscriptions and payments keep referencing them.
func (s *PlanService) DeactivatePlan(ctx context.Context, id int64) error {
	if err := s.planRepo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info("plan deactivated", zap.Int64("plan_id", id))
	return nil
}

// ActivatePlan puts a plan back into the catalog.
func (s *PlanService) ActivatePlan(ctx context.Context, id int64) error {
	if err := s.planRepo.SetActive(ctx, id, true); err != nil {
		return err
	}
	s.logger.Info("plan activated", zap.Int64("plan_id", id))
	return nil
}

// validatePlanCode validates plan code format
func validatePlanCode(code string) error {
	if len(code) < 3 || len(code) > 50 {
		return fmt.Errorf("%w: plan code must be between 3 and 50 characters", xerrors.ErrInvalidInput)
	}

	for _, char := range code {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '-' || char == '_') {
			return fmt.Errorf("%w: plan code can only contain letters, numbers, hyphens, and underscores", xerrors.ErrInvalidInput)
		}
	}

	return nil
}
