package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	NowPaymentsName            = "nowpayments"
	nowPaymentsSignatureHeader = "x-nowpayments-sig"
)

type NowPaymentsConfig struct {
	APIKey       string
	IPNSecretKey string
	BaseURL      string
	HTTPTimeout  time.Duration
}

// NowPaymentsProvider implements the NOWPayments "Create Invoice" flow and
// IPN signature verification (HMAC-SHA512 over the canonical JSON body).
type NowPaymentsProvider struct {
	cfg    NowPaymentsConfig
	client *http.Client
}

func NewNowPaymentsProvider(cfg NowPaymentsConfig) *NowPaymentsProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.nowpayments.io/v1"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return &NowPaymentsProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *NowPaymentsProvider) Name() string {
	return NowPaymentsName
}

func (p *NowPaymentsProvider) SignatureHeader() string {
	return nowPaymentsSignatureHeader
}

func (p *NowPaymentsProvider) InitiatePayment(ctx context.Context, input *InitiateInput) (*InitiateOutput, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, errors.New("nowpayments api key is not configured")
	}
	if strings.TrimSpace(input.IPNCallbackURL) == "" {
		return nil, errors.New("ipn callback url is required")
	}

	amount, _ := input.Amount.Float64()
	requestBody := map[string]interface{}{
		"price_amount":      amount,
		"price_currency":    strings.ToLower(strings.TrimSpace(input.Currency)),
		"order_id":          input.OrderID,
		"order_description": input.Description,
		"ipn_callback_url":  input.IPNCallbackURL,
		"success_url":       input.SuccessURL,
		"cancel_url":        input.CancelURL,
	}
	encoded, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/invoice", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: nowpayments create invoice: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: nowpayments create invoice: %v", ErrGateway, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: nowpayments create invoice failed: status=%d body=%s", ErrGateway, resp.StatusCode, string(body))
	}

	var payload struct {
		ID         json.Number `json:"id"`
		InvoiceURL string      `json:"invoice_url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: nowpayments invoice response malformed: %v", ErrGateway, err)
	}

	invoiceID := strings.TrimSpace(payload.ID.String())
	paymentURL := strings.TrimSpace(payload.InvoiceURL)
	if invoiceID == "" || paymentURL == "" {
		return nil, fmt.Errorf("%w: nowpayments invoice response missing id or url", ErrGateway)
	}

	return &InitiateOutput{
		InvoiceID:  invoiceID,
		PaymentURL: paymentURL,
	}, nil
}

// VerifyWebhookSignature recomputes the HMAC-SHA512 hex digest over the
// canonical serialization of the payload and compares it to the header value
// in constant time. Malformed payloads return false, never an error, so they
// are indistinguishable from invalid signatures.
func (p *NowPaymentsProvider) VerifyWebhookSignature(payload []byte, signature string) bool {
	signature = strings.ToLower(strings.TrimSpace(signature))
	if signature == "" || strings.TrimSpace(p.cfg.IPNSecretKey) == "" {
		return false
	}

	canonical, err := canonicalJSON(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(p.cfg.IPNSecretKey))
	_, _ = mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// canonicalJSON re-serializes an IPN body with sorted keys and compact
// separators, matching the form NOWPayments signs. Numbers are decoded as
// json.Number so they round-trip byte for byte; HTML escaping is disabled
// because the gateway does not escape URL characters.
func canonicalJSON(payload []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var doc map[string]interface{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, errors.New("trailing data after json body")
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
