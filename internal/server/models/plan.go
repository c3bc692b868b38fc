package models

import "time"

// Billing cycles for subscription plans.
const (
	BillingNone    = "NONE"
	BillingMonthly = "MONTHLY"
	BillingYearly  = "YEARLY"
)

// SubscriptionPlan is a catalog entry; pricing fields are descriptive only,
// no billing lifecycle is implemented here.
type SubscriptionPlan struct {
	ID           string
	Code         string
	Name         string
	Description  string
	PriceCents   int64
	Currency     string
	BillingCycle string
	CreatedAt    time.Time
}
