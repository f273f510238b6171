package entity

import "time"

const (
	WebhookDispositionProcessed string = "processed"
	WebhookDispositionIgnored   string = "ignored"
	WebhookDispositionRejected  string = "rejected"
)

// WebhookLog records every inbound payment notification, including the ones
// that were rejected or did not move an order.
type WebhookLog struct {
	ID uint64

	OrderID *uint64

	Provider    string
	Signature   string
	PayloadJSON string
	Disposition string
	Error       *string

	CreatedAt time.Time
}
