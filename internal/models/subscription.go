package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses the service branches on. The status column itself
// is free text mirroring the provider vocabulary; "active" is the only
// value that grants premium access, "canceled" is the marker written on
// provider-side cancellation.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription is the local cache of a profile's billing entitlement.
// At most one row exists per profile; rows are written exclusively by the
// webhook reconciler, never by user-facing code paths.
type Subscription struct {
	ID                     uuid.UUID  `json:"id"`
	UserID                 uuid.UUID  `json:"user_id"`
	ProviderCustomerID     string     `json:"provider_customer_id"`
	ProviderSubscriptionID string     `json:"provider_subscription_id"`
	Status                 string     `json:"status"`
	CurrentPeriodStart     *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `json:"current_period_end,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}
