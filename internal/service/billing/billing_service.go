// internal/service/billing/billing_service.go
package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"beedab-service/internal/domain/billing"
	xerrors "beedab-service/internal/pkg/errors"
)

// monthlyPeriod is the billing window for monthly plans.
const monthlyPeriod = 30 * 24 * time.Hour

// PaymentConfig carries the out-of-band settlement details included in
// payment instructions. Loaded from the environment in app.NewServer.
type PaymentConfig struct {
	BankName      string
	AccountName   string
	AccountNumber string
	Paybill       string
}

type Service struct {
	planRepo    PlanStore
	paymentRepo PaymentStore
	subRepo     SubscriptionStore
	entRepo     EntitlementStore
	notifier    Notifier
	payCfg      PaymentConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(planRepo PlanStore, paymentRepo PaymentStore, subRepo SubscriptionStore, entRepo EntitlementStore, notifier Notifier, payCfg PaymentConfig, logger *zap.Logger) *Service {
	return &Service{
		planRepo:    planRepo,
		paymentRepo: paymentRepo,
		subRepo:     subRepo,
		entRepo:     entRepo,
		notifier:    notifier,
		payCfg:      payCfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Subscribe starts a subscription to the plan identified by code. Free
// plans activate synchronously; priced plans leave a pending payment
// behind and return instructions for settling it.
func (s *Service) Subscribe(ctx context.Context, userID int64, req *billing.SubscribeRequest) (*billing.SubscribeResponse, error) {
	plan, err := s.planRepo.FindActiveByCode(ctx, req.PlanCode)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown plan %q", xerrors.ErrNotFound, req.PlanCode)
		}
		return nil, err
	}

	method := billing.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = billing.MethodBankTransfer
	}

	payment := &billing.Payment{
		UserID:    userID,
		PlanID:    plan.ID,
		Amount:    plan.Price,
		Method:    method,
		Reference: sql.NullString{String: req.PaymentReference, Valid: req.PaymentReference != ""},
		Status:    billing.PaymentPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.logger.Error("failed to create payment",
			zap.Int64("user_id", userID),
			zap.String("plan_code", plan.Code),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("payment created",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("user_id", userID),
		zap.String("plan_code", plan.Code),
		zap.Int64("amount", payment.Amount),
	)

	resp := &billing.SubscribeResponse{Payment: payment, Plan: plan}

	if plan.Price == 0 {
		// Free plans settle their own zero-amount payment so the
		// subscription trail stays uniform across tiers.
		if err := s.activate(ctx, payment, plan); err != nil {
			return nil, err
		}
		refreshed, err := s.paymentRepo.FindByID(ctx, payment.ID)
		if err == nil {
			resp.Payment = refreshed
		}
		return resp, nil
	}

	resp.PaymentInstructions = s.buildInstructions(payment)
	return resp, nil
}

// buildInstructions assembles the settlement details for a pending
// payment. The quoted reference is what admins match incoming money
// against.
func (s *Service) buildInstructions(payment *billing.Payment) *billing.PaymentInstructions {
	instr := &billing.PaymentInstructions{
		Method:    payment.Method,
		Reference: fmt.Sprintf("%s-%d", billing.PaymentReferencePrefix, payment.ID),
		Amount:    payment.Amount,
		Note:      "Quote the reference when paying. Your plan activates once the payment is confirmed.",
	}
	switch payment.Method {
	case billing.MethodMobileMoney:
		instr.Paybill = s.payCfg.Paybill
		instr.AccountNumber = instr.Reference
	default:
		instr.BankName = s.payCfg.BankName
		instr.AccountName = s.payCfg.AccountName
		instr.AccountNumber = s.payCfg.AccountNumber
	}
	return instr
}

// ApprovePayment settles a pending payment and activates its
// subscription in one transaction. Approving an already-settled
// payment returns ErrInvalidState.
func (s *Service) ApprovePayment(ctx context.Context, paymentID int64) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByID(ctx, payment.PlanID)
	if err != nil {
		return nil, err
	}

	if err := s.activate(ctx, payment, plan); err != nil {
		return nil, err
	}

	return s.paymentRepo.FindByID(ctx, paymentID)
}

// RejectPayment marks a pending payment as failed. No subscription is
// touched.
func (s *Service) RejectPayment(ctx context.Context, paymentID int64) (*billing.Payment, error) {
	if err := s.paymentRepo.MarkFailed(ctx, paymentID); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment rejected", zap.Int64("payment_id", paymentID), zap.Int64("user_id", payment.UserID))
	if s.notifier != nil {
		s.notifier.NotifyUser(payment.UserID, "payment.failed", payment)
	}
	return payment, nil
}

// ListPendingPayments returns payments awaiting admin review.
func (s *Service) ListPendingPayments(ctx context.Context) ([]billing.Payment, error) {
	return s.paymentRepo.ListByStatus(ctx, billing.PaymentPending)
}

// activate settles the payment, supersedes any prior active
// subscription and materializes entitlements from the plan's feature
// map, all in one repository transaction.
func (s *Service) activate(ctx context.Context, payment *billing.Payment, plan *billing.Plan) error {
	now := s.now().UTC()

	sub := &billing.Subscription{
		Reference: ulid.Make().String(),
		UserID:    payment.UserID,
		PlanID:    plan.ID,
		Status:    billing.SubscriptionActive,
		StartsAt:  now,
	}
	if plan.Interval == billing.IntervalMonthly {
		end := now.Add(monthlyPeriod)
		sub.EndsAt = sql.NullTime{Time: end, Valid: true}
		sub.NextBillingAt = sql.NullTime{Time: end, Valid: true}
	}

	ents := make([]billing.Entitlement, 0, len(plan.Features))
	for key, fv := range plan.Features {
		ents = append(ents, billing.Entitlement{
			UserID:       payment.UserID,
			FeatureKey:   key,
			FeatureValue: fv.EntitlementValue(),
			ExpiresAt:    sub.EndsAt,
		})
	}

	if err := s.subRepo.Activate(ctx, payment.ID, sub, ents); err != nil {
		s.logger.Error("activation failed",
			zap.Int64("payment_id", payment.ID),
			zap.Int64("user_id", payment.UserID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("subscription activated",
		zap.Int64("subscription_id", sub.ID),
		zap.String("reference", sub.Reference),
		zap.Int64("user_id", payment.UserID),
		zap.String("plan_code", plan.Code),
		zap.Int("entitlements", len(ents)),
	)

	if s.notifier != nil {
		s.notifier.NotifyUser(payment.UserID, "subscription.activated", map[string]interface{}{
			"subscriptionId": sub.ID,
			"reference":      sub.Reference,
			"planCode":       plan.Code,
		})
	}
	return nil
}

// Me returns the caller's active subscription and entitlement usage.
// A user with no active subscription gets a nil subscription and an
// empty entitlement map, not an error.
func (s *Service) Me(ctx context.Context, userID int64) (*billing.BillingMeResponse, error) {
	resp := &billing.BillingMeResponse{
		Entitlements: map[string]billing.EntitlementStatus{},
	}

	sub, err := s.subRepo.FindLatestActiveByUser(ctx, userID, s.now().UTC())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return resp, nil
		}
		return nil, err
	}

	info := &billing.SubscriptionInfo{
		ID:        sub.ID,
		Reference: sub.Reference,
		PlanCode:  sub.Plan.Code,
		PlanName:  sub.Plan.Name,
		Status:    sub.Status,
		StartsAt:  sub.StartsAt,
	}
	if sub.EndsAt.Valid {
		end := sub.EndsAt.Time
		info.EndsAt = &end
	}
	resp.Subscription = info

	ents, err := s.entRepo.ListBySubscription(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	for _, ent := range ents {
		resp.Entitlements[ent.FeatureKey] = billing.EntitlementStatus{
			Limit:     ent.FeatureValue,
			Used:      ent.UsedCount,
			Remaining: billing.Remaining(ent.FeatureValue, ent.UsedCount),
		}
	}
	return resp, nil
}

// ConsumeFeature atomically spends one unit of the named feature for
// the caller's active subscription. Returns ErrQuotaExceeded when the
// limit is reached and ErrForbidden when no subscription is active.
func (s *Service) ConsumeFeature(ctx context.Context, userID int64, featureKey string) error {
	now := s.now().UTC()

	sub, err := s.subRepo.FindLatestActiveByUser(ctx, userID, now)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return fmt.Errorf("%w: no active subscription", xerrors.ErrForbidden)
		}
		return err
	}

	if err := s.entRepo.Consume(ctx, sub.ID, featureKey, now); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return fmt.Errorf("%w: feature %q not in plan", xerrors.ErrForbidden, featureKey)
		}
		return err
	}
	return nil
}

// CheckFeature reads the caller's current standing on one feature
// without consuming anything.
func (s *Service) CheckFeature(ctx context.Context, userID int64, featureKey string) (*billing.EntitlementStatus, error) {
	sub, err := s.subRepo.FindLatestActiveByUser(ctx, userID, s.now().UTC())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active subscription", xerrors.ErrForbidden)
		}
		return nil, err
	}

	ent, err := s.entRepo.Peek(ctx, sub.ID, featureKey)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: feature %q not in plan", xerrors.ErrForbidden, featureKey)
		}
		return nil, err
	}

	return &billing.EntitlementStatus{
		Limit:     ent.FeatureValue,
		Used:      ent.UsedCount,
		Remaining: billing.Remaining(ent.FeatureValue, ent.UsedCount),
	}, nil
}
