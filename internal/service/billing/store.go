// internal/service/billing/store.go
package billing

import (
	"context"
	"time"

	"beedab-service/internal/domain/billing"
)

// Store interfaces implemented by internal/repository/postgres. Kept
// narrow so tests can substitute in-memory fakes.

type PlanStore interface {
	Create(ctx context.Context, plan *billing.Plan) error
	FindByID(ctx context.Context, id int64) (*billing.Plan, error)
	FindActiveByCode(ctx context.Context, code string) (*billing.Plan, error)
	ListActive(ctx context.Context) ([]billing.Plan, error)
	Update(ctx context.Context, id int64, plan *billing.Plan) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type PaymentStore interface {
	Create(ctx context.Context, payment *billing.Payment) error
	FindByID(ctx context.Context, id int64) (*billing.Payment, error)
	ListByStatus(ctx context.Context, status billing.PaymentStatus) ([]billing.Payment, error)
	MarkFailed(ctx context.Context, id int64) error
}

type SubscriptionStore interface {
	Activate(ctx context.Context, paymentID int64, sub *billing.Subscription, ents []billing.Entitlement) error
	FindLatestActiveByUser(ctx context.Context, userID int64, now time.Time) (*billing.SubscriptionWithPlan, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type EntitlementStore interface {
	ListBySubscription(ctx context.Context, subscriptionID int64) ([]billing.Entitlement, error)
	Consume(ctx context.Context, subscriptionID int64, featureKey string, now time.Time) error
	Peek(ctx context.Context, subscriptionID int64, featureKey string) (*billing.Entitlement, error)
}

// Notifier pushes billing events to connected clients. The websocket
// hub implements it; a nil notifier is allowed.
type Notifier interface {
	NotifyUser(userID int64, event string, payload interface{})
}
