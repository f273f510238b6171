package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending string = "pending"
	OrderStatusPaid    string = "paid"
	OrderStatusFailed  string = "failed"
	OrderStatusExpired string = "expired"
)

// Order is a single checkout attempt. OrderID is the public UUID used as the
// correlation key with the payment gateway; ID is the internal primary key.
type Order struct {
	ID uint64

	OrderID string

	ProductID     uint64
	PricingTierID uint64

	FullName string
	Email    string

	PriceAtPurchase decimal.Decimal
	PriceCurrency   string

	PlatformChoice    string
	ProjectName       string
	CoreFunctionality string
	BrandDetails      *string

	PaymentProvider string
	InvoiceID       *string
	PaymentID       *string

	Status string

	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

// TerminalOrderStatus reports whether a status can never change again.
func TerminalOrderStatus(status string) bool {
	switch status {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusExpired:
		return true
	default:
		return false
	}
}
