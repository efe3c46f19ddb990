// internal/domain/billing/dto.go
package billing

import "time"

// PaymentReferencePrefix prefixes the reference a subscriber quotes
// when wiring money, e.g. BEEDAB-42 for payment id 42.
const PaymentReferencePrefix = "BEEDAB"

type SubscribeRequest struct {
	PlanCode         string `json:"planCode" binding:"required,max=50"`
	PaymentMethod    string `json:"paymentMethod" binding:"omitempty,oneof=bank_transfer mobile_money"`
	PaymentReference string `json:"paymentReference" binding:"omitempty,max=100"`
}

// PaymentInstructions tells the subscriber how to settle a pending
// payment out of band. Only built for priced plans.
type PaymentInstructions struct {
	Method        PaymentMethod `json:"method"`
	Reference     string        `json:"reference"`
	Amount        int64         `json:"amount"`
	BankName      string        `json:"bankName,omitempty"`
	AccountName   string        `json:"accountName,omitempty"`
	AccountNumber string        `json:"accountNumber,omitempty"`
	Paybill       string        `json:"paybill,omitempty"`
	Note          string        `json:"note,omitempty"`
}

type SubscribeResponse struct {
	Payment             *Payment             `json:"payment"`
	Plan                *Plan                `json:"plan"`
	PaymentInstructions *PaymentInstructions `json:"paymentInstructions,omitempty"`
}

// EntitlementStatus is the consumer-facing view of one entitlement.
// Remaining is -1 when the feature is unlimited.
type EntitlementStatus struct {
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
}

type SubscriptionInfo struct {
	ID        int64              `json:"id"`
	Reference string             `json:"reference"`
	PlanCode  string             `json:"planCode"`
	PlanName  string             `json:"planName"`
	Status    SubscriptionStatus `json:"status"`
	StartsAt  time.Time          `json:"startsAt"`
	EndsAt    *time.Time         `json:"endsAt,omitempty"`
}

type BillingMeResponse struct {
	Subscription *SubscriptionInfo            `json:"subscription"`
	Entitlements map[string]EntitlementStatus `json:"entitlements"`
}

type CreatePlanRequest struct {
	Code        string     `json:"code" binding:"required,min=3,max=50"`
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description"`
	Price       int64      `json:"price" binding:"min=0"`
	Interval    string     `json:"interval" binding:"omitempty,oneof=monthly"`
	Features    FeatureMap `json:"features" binding:"required"`
}

type UpdatePlanRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	Price       *int64     `json:"price" binding:"omitempty,min=0"`
	Interval    *string    `json:"interval" binding:"omitempty,oneof=monthly"`
	Features    FeatureMap `json:"features"`
}
