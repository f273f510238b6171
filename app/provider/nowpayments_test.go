package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func signPayload(t *testing.T, secret string, payload []byte) string {
	t.Helper()

	canonical, err := canonicalJSON(payload)
	if err != nil {
		t.Fatalf("canonicalJSON failed: %v", err)
	}
	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCanonicalJSONIsDeterministicAcrossKeyOrder(t *testing.T) {
	first := []byte(`{"payment_status":"finished","order_id":"abc","payment_id":5077125051}`)
	second := []byte(`{"payment_id":5077125051,"order_id":"abc","payment_status":"finished"}`)

	canonicalFirst, err := canonicalJSON(first)
	if err != nil {
		t.Fatalf("canonicalJSON failed: %v", err)
	}
	canonicalSecond, err := canonicalJSON(second)
	if err != nil {
		t.Fatalf("canonicalJSON failed: %v", err)
	}

	if string(canonicalFirst) != string(canonicalSecond) {
		t.Fatalf("canonical forms differ: %s vs %s", canonicalFirst, canonicalSecond)
	}
	if string(canonicalFirst) != `{"order_id":"abc","payment_id":5077125051,"payment_status":"finished"}` {
		t.Fatalf("unexpected canonical form: %s", canonicalFirst)
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "ipn-secret"
	p := NewNowPaymentsProvider(NowPaymentsConfig{IPNSecretKey: secret})
	payload := []byte(`{"order_id":"ord-1","payment_id":123,"payment_status":"finished"}`)

	sig := signPayload(t, secret, payload)
	if !p.VerifyWebhookSignature(payload, sig) {
		t.Fatal("expected signature to validate")
	}

	// Key order must not matter.
	reordered := []byte(`{"payment_status":"finished","order_id":"ord-1","payment_id":123}`)
	if !p.VerifyWebhookSignature(reordered, sig) {
		t.Fatal("expected reordered payload to validate")
	}

	wrongSecret := NewNowPaymentsProvider(NowPaymentsConfig{IPNSecretKey: "other-secret"})
	if wrongSecret.VerifyWebhookSignature(payload, sig) {
		t.Fatal("expected signature with wrong secret to fail")
	}
}

func TestVerifyWebhookSignatureRejectsTamperedPayload(t *testing.T) {
	secret := "ipn-secret"
	p := NewNowPaymentsProvider(NowPaymentsConfig{IPNSecretKey: secret})
	payload := []byte(`{"order_id":"ord-1","payment_status":"finished"}`)
	sig := signPayload(t, secret, payload)

	tampered := []byte(`{"order_id":"ord-2","payment_status":"finished"}`)
	if p.VerifyWebhookSignature(tampered, sig) {
		t.Fatal("expected tampered payload to fail verification")
	}
}

func TestVerifyWebhookSignatureMalformedInputs(t *testing.T) {
	p := NewNowPaymentsProvider(NowPaymentsConfig{IPNSecretKey: "ipn-secret"})

	if p.VerifyWebhookSignature([]byte(`not json`), "deadbeef") {
		t.Fatal("expected malformed payload to fail")
	}
	if p.VerifyWebhookSignature([]byte(`{"order_id":"ord-1"}`), "") {
		t.Fatal("expected empty signature to fail")
	}
	if p.VerifyWebhookSignature([]byte(`{"a":1} trailing`), "deadbeef") {
		t.Fatal("expected trailing data to fail")
	}

	unconfigured := NewNowPaymentsProvider(NowPaymentsConfig{})
	if unconfigured.VerifyWebhookSignature([]byte(`{"order_id":"ord-1"}`), "deadbeef") {
		t.Fatal("expected missing secret to fail")
	}
}

func TestInitiatePayment(t *testing.T) {
	var gotAPIKey string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":4522625843,"invoice_url":"https://nowpayments.io/payment/?iid=4522625843"}`))
	}))
	defer server.Close()

	p := NewNowPaymentsProvider(NowPaymentsConfig{
		APIKey:       "api-key",
		IPNSecretKey: "ipn-secret",
		BaseURL:      server.URL,
	})

	output, err := p.InitiatePayment(context.Background(), &InitiateInput{
		OrderID:        "9f2d7c1e-0000-0000-0000-000000000000",
		Amount:         decimal.RequireFromString("499.00"),
		Currency:       "usd",
		Description:    "Order for Trading App - Standard",
		IPNCallbackURL: "https://example.com/webhooks/nowpayments",
		SuccessURL:     "https://example.com/payments/success",
		CancelURL:      "https://example.com/payments/cancel",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotAPIKey != "api-key" {
		t.Fatalf("expected api key header, got %q", gotAPIKey)
	}
	if gotBody["order_id"] != "9f2d7c1e-0000-0000-0000-000000000000" {
		t.Fatalf("unexpected order_id in request: %v", gotBody["order_id"])
	}
	if gotBody["price_currency"] != "usd" {
		t.Fatalf("unexpected price_currency in request: %v", gotBody["price_currency"])
	}
	if gotBody["ipn_callback_url"] != "https://example.com/webhooks/nowpayments" {
		t.Fatalf("unexpected ipn_callback_url in request: %v", gotBody["ipn_callback_url"])
	}

	if output.InvoiceID != "4522625843" {
		t.Fatalf("unexpected invoice id: %q", output.InvoiceID)
	}
	if output.PaymentURL != "https://nowpayments.io/payment/?iid=4522625843" {
		t.Fatalf("unexpected payment url: %q", output.PaymentURL)
	}
}

func TestInitiatePaymentGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer server.Close()

	p := NewNowPaymentsProvider(NowPaymentsConfig{
		APIKey:  "bad-key",
		BaseURL: server.URL,
	})

	_, err := p.InitiatePayment(context.Background(), &InitiateInput{
		OrderID:        "ord-1",
		Amount:         decimal.RequireFromString("10.00"),
		Currency:       "usd",
		IPNCallbackURL: "https://example.com/webhooks/nowpayments",
	})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !errors.Is(err, ErrGateway) {
		t.Fatalf("expected ErrGateway, got %v", err)
	}
}
