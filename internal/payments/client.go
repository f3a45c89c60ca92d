// Package payments wraps the external payment gateway behind the one
// call the core needs: verifying that a payment reference settled for
// the expected amount and SKU.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// StatusConfirmed is the only gateway status the ledger accepts.
const StatusConfirmed = "CONFIRMED"

// PaymentInfo is the gateway's view of one payment event.
type PaymentInfo struct {
	PaymentRef string `json:"paymentRef"`
	Amount     int64  `json:"amount"`
	SKU        string `json:"sku"`
	Status     string `json:"status"`
}

// Verifier checks a payment reference against the gateway. A failed
// verification is terminal for that attempt; callers never retry
// without a fresh payment event.
type Verifier interface {
	VerifyPayment(ctx context.Context, paymentRef string) (*PaymentInfo, error)
}

// Client is an HTTP Verifier against the gateway's lookup endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a payment gateway client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyPayment looks up a payment reference.
func (c *Client) VerifyPayment(ctx context.Context, paymentRef string) (*PaymentInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/payments/"+paymentRef, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway returned %d", resp.StatusCode)
	}
	var out PaymentInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
