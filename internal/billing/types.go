// Package billing talks to the external payment provider: an outbound
// client that creates checkout sessions and the types of the lifecycle
// events the provider pushes back over the webhook.
package billing

import "encoding/json"

// Event kinds the reconciler understands. Anything else falls into the
// unknown arm and is ignored, so new provider kinds cannot break delivery.
const (
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
)

// MetadataUserUID is the key under which the checkout flow embeds the
// local identity uid, and under which subscription events echo it back.
// The provider knows nothing about the local profile space; this
// correlation identifier is the only way back from its records to ours.
const MetadataUserUID = "user_uid"

// Event is a provider lifecycle notification. Object is decoded lazily
// once the kind is known.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// SubscriptionObject is the payload of subscription lifecycle events.
type SubscriptionObject struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"` // unix seconds
	CurrentPeriodEnd   int64             `json:"current_period_end"`   // unix seconds
	Metadata           map[string]string `json:"metadata"`
}

// InvoiceObject is the payload of invoice events. Subscription carries the
// provider subscription reference the invoice belongs to; empty for
// one-off invoices.
type InvoiceObject struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
}

// CreateCheckoutSessionRequest asks the provider for a hosted checkout
// page for a recurring price.
type CreateCheckoutSessionRequest struct {
	PriceID    string            `json:"price_id"`
	Mode       string            `json:"mode"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession is the provider's answer: the URL to redirect the
// browser to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
