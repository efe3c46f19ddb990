// internal/domain/billing/entity.go
package billing

import (
	"database/sql"
	"time"
)

type BillingInterval string

const (
	// IntervalMonthly bills every 30 days; IntervalNone marks a
	// one-time (or free, non-expiring) plan.
	IntervalMonthly BillingInterval = "monthly"
	IntervalNone    BillingInterval = ""
)

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

// Plan is a subscription tier. Plans referenced by subscriptions are
// never deleted, only deactivated.
type Plan struct {
	ID          int64           `json:"id" db:"id"`
	Code        string          `json:"code" db:"code"`
	Name        string          `json:"name" db:"name"`
	Description sql.NullString  `json:"description,omitempty" db:"description"`
	Price       int64           `json:"price" db:"price"`
	Interval    BillingInterval `json:"interval" db:"billing_interval"`
	Features    FeatureMap      `json:"features" db:"features"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Payment records one attempt to pay for a plan. Amount is copied from
// the plan at creation time and never re-read.
type Payment struct {
	ID             int64          `json:"id" db:"id"`
	UserID         int64          `json:"user_id" db:"user_id"`
	PlanID         int64          `json:"plan_id" db:"plan_id"`
	Amount         int64          `json:"amount" db:"amount"`
	Method         PaymentMethod  `json:"method" db:"method"`
	Reference      sql.NullString `json:"reference,omitempty" db:"reference"`
	Status         PaymentStatus  `json:"status" db:"status"`
	SubscriptionID sql.NullInt64  `json:"subscription_id,omitempty" db:"subscription_id"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// Subscription binds a user to a plan for a time window. At most one
// subscription per user is active; activation expires any prior one.
type Subscription struct {
	ID            int64              `json:"id" db:"id"`
	Reference     string             `json:"reference" db:"reference"`
	UserID        int64              `json:"user_id" db:"user_id"`
	PlanID        int64              `json:"plan_id" db:"plan_id"`
	Status        SubscriptionStatus `json:"status" db:"status"`
	StartsAt      time.Time          `json:"starts_at" db:"starts_at"`
	EndsAt        sql.NullTime       `json:"ends_at,omitempty" db:"ends_at"`
	NextBillingAt sql.NullTime       `json:"next_billing_at,omitempty" db:"next_billing_at"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the subscription window has passed at t.
func (s *Subscription) Expired(t time.Time) bool {
	return s.EndsAt.Valid && !s.EndsAt.Time.After(t)
}

// Entitlement is a per-user usage counter for one plan feature,
// materialized from the plan's feature map at activation time.
type Entitlement struct {
	ID             int64        `json:"id" db:"id"`
	UserID         int64        `json:"user_id" db:"user_id"`
	SubscriptionID int64        `json:"subscription_id" db:"subscription_id"`
	FeatureKey     string       `json:"feature_key" db:"feature_key"`
	FeatureValue   int64        `json:"feature_value" db:"feature_value"`
	UsedCount      int64        `json:"used_count" db:"used_count"`
	ExpiresAt      sql.NullTime `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

// SubscriptionWithPlan is the joined shape /billing/me works with.
type SubscriptionWithPlan struct {
	Subscription
	Plan Plan `json:"plan"`
}
