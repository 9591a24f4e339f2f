package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateOrder_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/orders" {
			t.Fatalf("path = %s, want /v1/orders", r.URL.Path)
		}

		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Fatalf("basic auth = %q/%q, want key/secret", user, pass)
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 236000 {
			t.Fatalf("amount = %d, want 236000", req.Amount)
		}
		if req.Currency != "INR" {
			t.Fatalf("currency = %q, want INR", req.Currency)
		}

		resp := Order{
			ID:       "order_abc123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key", "secret")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.CreateOrder(ctx, "ORD-1-ABCDEF", 236000, "INR")
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if res.ID != "order_abc123" {
		t.Fatalf("order id = %q, want order_abc123", res.ID)
	}
	if res.Amount != 236000 {
		t.Fatalf("amount = %d, want 236000", res.Amount)
	}
}

func TestCreateOrder_GatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key", "wrong")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := client.CreateOrder(ctx, "ORD-1-ABCDEF", 100, "INR")
	if err == nil {
		t.Fatalf("expected error for gateway 401")
	}
}

func TestCreateOrder_NotConfigured(t *testing.T) {
	client := &Client{}

	_, err := client.CreateOrder(context.Background(), "ORD-1-ABCDEF", 100, "INR")
	if err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}

func signFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("gateway.test", "key", "secret")

	valid := signFor("secret", "order_abc", "pay_xyz")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			orderID:   "order_abc",
			paymentID: "pay_xyz",
			signature: valid,
			want:      true,
		},
		{
			name:      "single character mutated",
			orderID:   "order_abc",
			paymentID: "pay_xyz",
			signature: flipLast(valid),
			want:      false,
		},
		{
			name:      "different payment id",
			orderID:   "order_abc",
			paymentID: "pay_other",
			signature: valid,
			want:      false,
		},
		{
			name:      "empty signature",
			orderID:   "order_abc",
			paymentID: "pay_xyz",
			signature: "",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := client.VerifySignature(tt.orderID, tt.paymentID, tt.signature)
			if got != tt.want {
				t.Fatalf("VerifySignature = %v, want %v", got, tt.want)
			}
		})
	}
}

func flipLast(s string) string {
	last := s[len(s)-1]
	repl := byte('0')
	if last == '0' {
		repl = '1'
	}
	return s[:len(s)-1] + string(repl)
}
