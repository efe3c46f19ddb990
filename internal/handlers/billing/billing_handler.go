// internal/handlers/billing/billing_handler.go
package billing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beedab-service/internal/domain/billing"
	"beedab-service/internal/middleware"
	"beedab-service/internal/pkg/response"
	billingService "beedab-service/internal/service/billing"
)

type BillingHandler struct {
	billingService *billingService.Service
	logger         *zap.Logger
}

func NewBillingHandler(svc *billingService.Service, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: svc,
		logger:         logger,
	}
}

// Subscribe starts a subscription to a plan. Free plans activate
// immediately; priced plans return payment instructions.
func (h *BillingHandler) Subscribe(c *gin.Context) {
	var req billing.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	userID := middleware.MustGetIdentityID(c)

	resp, err := h.billingService.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, err, "subscription failed")
		return
	}

	if resp.PaymentInstructions != nil {
		response.Success(c, http.StatusAccepted, "payment required to activate plan", resp)
		return
	}
	response.Success(c, http.StatusCreated, "plan activated", resp)
}

// Me returns the caller's active subscription and entitlement usage
func (h *BillingHandler) Me(c *gin.Context) {
	userID := middleware.MustGetIdentityID(c)

	resp, err := h.billingService.Me(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "failed to load billing status")
		return
	}

	response.Success(c, http.StatusOK, "billing status", resp)
}

// ApprovePayment settles a pending payment and activates the plan
// (admin only)
func (h *BillingHandler) ApprovePayment(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid payment id", err)
		return
	}

	payment, err := h.billingService.ApprovePayment(c.Request.Context(), paymentID)
	if err != nil {
		response.FromError(c, err, "payment approval failed")
		return
	}

	h.logger.Info("payment approved",
		zap.Int64("payment_id", paymentID),
		zap.Int64("admin_id", middleware.MustGetIdentityID(c)),
	)
	response.Success(c, http.StatusOK, "payment approved", payment)
}

// RejectPayment marks a pending payment as failed (admin only)
func (h *BillingHandler) RejectPayment(c *gin.Context) {
	paymentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid payment id", err)
		return
	}

	payment, err := h.billingService.RejectPayment(c.Request.Context(), paymentID)
	if err != nil {
		response.FromError(c, err, "payment rejection failed")
		return
	}

	response.Success(c, http.StatusOK, "payment rejected", payment)
}

// ListPendingPayments returns payments awaiting review (admin only)
func (h *BillingHandler) ListPendingPayments(c *gin.Context) {
	payments, err := h.billingService.ListPendingPayments(c.Request.Context())
	if err != nil {
		response.FromError(c, err, "failed to list payments")
		return
	}

	response.Success(c, http.StatusOK, "pending payments", payments)
}
