package mapper

import (
	"testing"

	"github.com/SwayEquilibrium/pos-payments/app/types"
)

func TestPaymentRequestFromHTTP(t *testing.T) {
	httpReq := &types.ProcessPaymentRequest{
		TenantID:       "tenant-1",
		LocationID:     "loc-1",
		UserID:         "user-1",
		OrderID:        "order-1",
		Method:         "CASH",
		Amount:         15000,
		Currency:       "DKK",
		IdempotencyKey: "idem-1",
		Metadata:       map[string]string{"table": "12"},
		CorrelationID:  "req-1",
	}

	req := PaymentRequestFromHTTP(httpReq)
	if req.Context.TenantID != "tenant-1" || req.Context.CorrelationID != "req-1" {
		t.Fatalf("context not mapped: %+v", req.Context)
	}
	if req.Method != "CASH" || req.Amount != 15000 || req.IdempotencyKey != "idem-1" {
		t.Fatalf("body not mapped: %+v", req)
	}

	// Mutating the HTTP metadata must not bleed into the mapped request.
	httpReq.Metadata["table"] = "99"
	if req.Metadata["table"] != "12" {
		t.Fatal("expected metadata copied, not shared")
	}
}

func TestRefundRequestFromHTTP(t *testing.T) {
	req := RefundRequestFromHTTP(&types.ProcessRefundRequest{
		TenantID:              "tenant-1",
		OriginalTransactionID: "tx-1",
		Method:                "CASH",
		Amount:                5000,
		Reason:                "void",
		CorrelationID:         "req-2",
	})

	if req.OriginalTransactionID != "tx-1" || req.Reason != "void" {
		t.Fatalf("refund not mapped: %+v", req)
	}
	if req.Metadata == nil {
		t.Fatal("expected non-nil metadata map")
	}
}

func TestWebhookPayloadFromHTTP(t *testing.T) {
	payload := WebhookPayloadFromHTTP(&types.ProviderWebhookRequest{
		Provider:  "stripe",
		EventType: "payment_completed",
		Signature: "sig-1",
		Data:      []byte(`{"x":1}`),
	})

	if payload.Provider != "stripe" || payload.EventType != "payment_completed" {
		t.Fatalf("payload not mapped: %+v", payload)
	}
	if string(payload.Data) != `{"x":1}` {
		t.Fatalf("data not carried over: %s", payload.Data)
	}
}
