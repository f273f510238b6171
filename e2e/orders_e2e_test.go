//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sigmora-labs/ms-go-orders/app/types"
)

const defaultOrdersHTTPBase = "http://localhost:48080"

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(baseURL string) *httpClient {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) doJSON(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", fmt.Sprintf("e2e-http-%d", time.Now().UnixNano()))
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}

	return resp, bodyBytes
}

func waitForHTTP(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("http service not ready at %s", baseURL)
}

func ipnSecret() string {
	return strings.TrimSpace(os.Getenv("NOWPAYMENTS_IPN_SECRET_KEY"))
}

// signIPN reproduces the gateway's signature: HMAC-SHA512 over the payload
// re-serialized with sorted keys and compact separators.
func signIPN(t *testing.T, secret string, payload map[string]any) (string, []byte) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil)), raw
}

func TestOrdersE2E(t *testing.T) {
	httpBase := os.Getenv("ORDERS_HTTP_URL")
	if httpBase == "" {
		httpBase = defaultOrdersHTTPBase
	}

	if err := waitForHTTP(httpBase, 30*time.Second); err != nil {
		t.Fatalf("http not ready: %v", err)
	}

	client := newHTTPClient(httpBase)

	t.Run("Health", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/health", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("ListProducts", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/products", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
		var payload types.ListProductsResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal products failed: %v body=%s", err, string(body))
		}
	})

	t.Run("CheckoutValidation", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/products/1/tiers/1/checkout", map[string]any{}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty form, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("CheckoutUnknownProduct", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodPost, "/products/999999/tiers/1/checkout", map[string]any{
			"full_name":          "E2E Tester",
			"email":              "e2e@example.com",
			"project_name":       "E2E Project",
			"platform_choice":    "web",
			"core_functionality": "Exercise the checkout path.",
		}, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d body=%s", resp.StatusCode, string(body))
		}
	})

	t.Run("GetOrderValidation", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodGet, "/orders/not-a-uuid", nil, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed order id, got %d", resp.StatusCode)
		}
	})

	t.Run("GetOrderNotFound", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodGet, "/orders/2b5d0000-0000-0000-0000-000000000000", nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("ListOrders", func(t *testing.T) {
		resp, body := client.doJSON(t, http.MethodGet, "/orders?limit=10", nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", resp.StatusCode, string(body))
		}
		var payload types.ListOrdersResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal orders failed: %v body=%s", err, string(body))
		}
	})

	t.Run("WebhookUnknownProvider", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodPost, "/webhooks/flutterwave", map[string]any{"order_id": "x"}, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("WebhookMalformedBody", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, httpBase+"/webhooks/nowpayments", strings.NewReader("not json"))
		if err != nil {
			t.Fatalf("new request failed: %v", err)
		}
		resp, err := client.client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("WebhookBadSignature", func(t *testing.T) {
		resp, _ := client.doJSON(t, http.MethodPost, "/webhooks/nowpayments", map[string]any{
			"order_id":       "2b5d0000-0000-0000-0000-000000000000",
			"payment_status": "finished",
			"payment_id":     1,
		}, map[string]string{"x-nowpayments-sig": "deadbeef"})
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("WebhookSignedUnknownOrder", func(t *testing.T) {
		secret := ipnSecret()
		if secret == "" {
			t.Skip("NOWPAYMENTS_IPN_SECRET_KEY not set")
		}

		sig, raw := signIPN(t, secret, map[string]any{
			"order_id":       "2b5d0000-0000-0000-0000-000000000000",
			"payment_id":     1,
			"payment_status": "finished",
		})

		req, err := http.NewRequest(http.MethodPost, httpBase+"/webhooks/nowpayments", bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("new request failed: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-nowpayments-sig", sig)

		resp, err := client.client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for signed unknown order, got %d", resp.StatusCode)
		}
	})

	t.Run("PaymentLandingPages", func(t *testing.T) {
		for _, path := range []string{"/payments/success", "/payments/cancel"} {
			resp, _ := client.doJSON(t, http.MethodGet, path, nil, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200 from %s, got %d", path, resp.StatusCode)
			}
		}
	})
}
