package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrGateway marks any transport or non-2xx failure from a payment gateway.
// Nothing in this service retries a gateway call; resubmission is the end
// user's decision.
var ErrGateway = errors.New("payment gateway error")

type InitiateInput struct {
	OrderID     string
	Amount      decimal.Decimal
	Currency    string
	Description string

	IPNCallbackURL string
	SuccessURL     string
	CancelURL      string
}

type InitiateOutput struct {
	InvoiceID  string
	PaymentURL string
}

// Provider abstracts one hosted-payment gateway. Implementations create a
// gateway-side invoice and authenticate the gateway's asynchronous status
// notifications.
type Provider interface {
	Name() string
	SignatureHeader() string
	InitiatePayment(ctx context.Context, input *InitiateInput) (*InitiateOutput, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}
