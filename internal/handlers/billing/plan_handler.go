// internal/handlers/billing/plan_handler.go
package billing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beedab-service/internal/domain/billing"
	"beedab-service/internal/pkg/response"
	billingService "beedab-service/internal/service/billing"
)

type PlanHandler struct {
	planService *billingService.PlanService
	logger      *zap.Logger
}

func NewPlanHandler(svc *billingService.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		planService: svc,
		logger:      logger,
	}
}

// ListPlans returns the public plan catalog
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to list plans")
		return
	}

	response.Success(c, http.StatusOK, "available plans", plans)
}

// GetPlan returns one plan by id (admin only; inactive plans included)
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan id", err)
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load plan")
		return
	}

	response.Success(c, http.StatusOK, "plan", plan)
}

// CreatePlan adds a plan to the catalog (admin only)
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req billing.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to create plan")
		return
	}

	response.Success(c, http.StatusCreated, "plan created", plan)
}

// UpdatePlan edits a plan (admin only)
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan id", err)
		return
	}

	var req billing.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err, "failed to update plan")
		return
	}

	response.Success(c, http.StatusOK, "plan updated", plan)
}

// DeactivatePlan removes a plan from the catalog (admin only)
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan id", err)
		return
	}

	if err := h.planService.DeactivatePlan(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to deactivate plan")
		return
	}

	response.Success(c, http.StatusOK, "plan deactivated", nil)
}

// ActivatePlan restores a plan to the catalog (admin only)
func (h *PlanHandler) ActivatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan id", err)
		return
	}

	if err := h.planService.ActivatePlan(c.Request.Context(), id); err != nil {
		response.FromError(c, err, "failed to activate plan")
		return
	}

	response.Success(c, http.StatusOK, "plan activated", nil)
}
