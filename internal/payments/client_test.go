package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyPayment(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/payments/pay-1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"paymentRef":"pay-1","amount":50000,"sku":"ACCESS_PARTIAL","status":"CONFIRMED"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	info, err := c.VerifyPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("VerifyPayment error: %v", err)
	}
	if info.PaymentRef != "pay-1" || info.Amount != 50000 || info.SKU != "ACCESS_PARTIAL" {
		t.Fatalf("unexpected payment info: %+v", info)
	}
	if info.Status != StatusConfirmed {
		t.Fatalf("unexpected status: %s", info.Status)
	}
}

func TestVerifyPaymentGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	c := NewClient(ts.URL)
	if _, err := c.VerifyPayment(context.Background(), "pay-missing"); err == nil {
		t.Fatal("expected an error for an unknown payment ref")
	}
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	c := NewClient("  http://gateway.local/  ")
	if c.BaseURL != "http://gateway.local" {
		t.Fatalf("base url = %q", c.BaseURL)
	}
}
