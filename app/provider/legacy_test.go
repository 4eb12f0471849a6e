package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/SwayEquilibrium/pos-payments/app/entity"
	"github.com/SwayEquilibrium/pos-payments/app/types"
)

type fakeRecorder struct {
	sales  map[string]*entity.LegacySale
	nextID uint64
	err    error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{sales: map[string]*entity.LegacySale{}, nextID: 1}
}

func (r *fakeRecorder) Create(_ context.Context, sale *entity.LegacySale) error {
	if r.err != nil {
		return r.err
	}
	sale.ID = r.nextID
	r.nextID++
	copyItem := *sale
	r.sales[sale.TransactionID] = &copyItem
	return nil
}

func (r *fakeRecorder) FindByTransactionID(_ context.Context, transactionID string) (*entity.LegacySale, error) {
	if r.err != nil {
		return nil, r.err
	}
	item, ok := r.sales[transactionID]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func legacyPaymentRequest(amount int64) *types.PaymentRequest {
	return &types.PaymentRequest{
		Context: types.PaymentContext{
			TenantID:      "tenant-1",
			OrderID:       "order-9",
			CorrelationID: "corr-1",
		},
		Method:         "CASH",
		Amount:         amount,
		Currency:       "DKK",
		IdempotencyKey: "idem-1",
	}
}

func TestLegacyProcessPaymentConvertsMinorToMajorUnits(t *testing.T) {
	recorder := newFakeRecorder()
	p := NewLegacyProvider(recorder)

	result := p.ProcessPayment(context.Background(), legacyPaymentRequest(15000))
	if !result.Success {
		t.Fatalf("expected success, got %+v", result.Error)
	}

	sale, err := recorder.FindByTransactionID(context.Background(), result.TransactionID)
	if err != nil || sale == nil {
		t.Fatalf("expected recorded sale, got %v / %v", sale, err)
	}
	// 15000 minor units must land as 150.00 major units, not 15000.00.
	if sale.Amount != 150.0 {
		t.Fatalf("expected legacy amount 150.00, got %v", sale.Amount)
	}
	if sale.OrderID != "order-9" {
		t.Fatalf("expected order id forwarded, got %q", sale.OrderID)
	}
}

func TestLegacyProcessPaymentSynthesizesTransactionID(t *testing.T) {
	p := NewLegacyProvider(newFakeRecorder())

	result := p.ProcessPayment(context.Background(), legacyPaymentRequest(15000))
	if result.TransactionID == "" {
		t.Fatal("expected a synthesized transaction id")
	}
	if result.ProviderResponse["legacy"] != true {
		t.Fatal("expected provider response flagged legacy")
	}
}

func TestLegacyProcessPaymentKeepsReferenceAsTransactionID(t *testing.T) {
	p := NewLegacyProvider(newFakeRecorder())

	req := legacyPaymentRequest(10000)
	req.Method = "CARD"
	req.Reference = "auth-4711"
	result := p.ProcessPayment(context.Background(), req)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result.Error)
	}
	if result.TransactionID != "auth-4711" {
		t.Fatalf("expected reference reused as transaction id, got %q", result.TransactionID)
	}
	if result.Fee != 175 {
		t.Fatalf("expected 1.75%% card fee of 175, got %d", result.Fee)
	}
}

func TestLegacyProcessPaymentRequiresReferenceForCard(t *testing.T) {
	p := NewLegacyProvider(newFakeRecorder())

	req := legacyPaymentRequest(10000)
	req.Method = "CARD"
	result := p.ProcessPayment(context.Background(), req)
	if result.Success || result.Error.Code != types.ErrCodeReferenceRequired {
		t.Fatalf("expected REFERENCE_REQUIRED, got %+v", result.Error)
	}
}

func TestLegacyProcessPaymentWrapsRecorderFailure(t *testing.T) {
	recorder := newFakeRecorder()
	recorder.err = errors.New("table locked")
	p := NewLegacyProvider(recorder)

	result := p.ProcessPayment(context.Background(), legacyPaymentRequest(15000))
	if result.Success {
		t.Fatal("expected failure when the legacy call fails")
	}
	if result.Error.Code != types.ErrCodeLegacyBridgeError {
		t.Fatalf("expected LEGACY_BRIDGE_ERROR, got %q", result.Error.Code)
	}
	if !result.Error.Retryable {
		t.Fatal("bridge failures must be retryable")
	}
}

func TestLegacyRefundRecordsTrackingOnlyRecord(t *testing.T) {
	recorder := newFakeRecorder()
	p := NewLegacyProvider(recorder)

	payment := p.ProcessPayment(context.Background(), legacyPaymentRequest(15000))
	if !payment.Success {
		t.Fatalf("payment setup failed: %+v", payment.Error)
	}

	refund := p.ProcessRefund(context.Background(), &types.RefundRequest{
		Context:               types.PaymentContext{TenantID: "tenant-1"},
		OriginalTransactionID: payment.TransactionID,
		Amount:                5000,
		Reason:                "wrong table",
	})
	if !refund.Success {
		t.Fatalf("expected refund success, got %+v", refund.Error)
	}
	if refund.Metadata["legacy"] != "true" || refund.Metadata["tracking_only"] != "true" {
		t.Fatalf("expected legacy tracking-only metadata, got %+v", refund.Metadata)
	}

	record, _ := recorder.FindByTransactionID(context.Background(), refund.RefundID)
	if record == nil {
		t.Fatal("expected a tracking record for the refund")
	}
	if record.Amount != -50.0 {
		t.Fatalf("expected negative major-unit amount -50.00, got %v", record.Amount)
	}
}

func TestLegacyRefundRejectsOverRefund(t *testing.T) {
	p := NewLegacyProvider(newFakeRecorder())

	payment := p.ProcessPayment(context.Background(), legacyPaymentRequest(15000))
	refund := p.ProcessRefund(context.Background(), &types.RefundRequest{
		Context:               types.PaymentContext{TenantID: "tenant-1"},
		OriginalTransactionID: payment.TransactionID,
		Amount:                20000,
		Reason:                "typo",
	})
	if refund.Success || refund.Error.Code != types.ErrCodeRefundExceedsOriginal {
		t.Fatalf("expected REFUND_EXCEEDS_ORIGINAL, got %+v", refund.Error)
	}
	if refund.Error.Retryable {
		t.Fatal("over-refunds must not be retryable")
	}
}

func TestLegacyRefundUnknownOriginal(t *testing.T) {
	p := NewLegacyProvider(newFakeRecorder())

	refund := p.ProcessRefund(context.Background(), &types.RefundRequest{
		Context:               types.PaymentContext{TenantID: "tenant-1"},
		OriginalTransactionID: "missing-tx",
		Amount:                1000,
		Reason:                "test",
	})
	if refund.Success || refund.Error.Code != types.ErrCodeOriginalNotFound {
		t.Fatalf("expected ORIGINAL_NOT_FOUND, got %+v", refund.Error)
	}
}

func TestLegacyBreakerOpensAfterRepeatedFailures(t *testing.T) {
	recorder := newFakeRecorder()
	recorder.err = errors.New("connection refused")
	p := NewLegacyProvider(recorder)

	// gobreaker's default trip threshold is six consecutive failures.
	for i := 0; i < 7; i++ {
		result := p.ProcessPayment(context.Background(), legacyPaymentRequest(15000))
		if result.Success {
			t.Fatal("expected failure while the recorder is down")
		}
		if result.Error.Code != types.ErrCodeLegacyBridgeError {
			t.Fatalf("expected LEGACY_BRIDGE_ERROR, got %q", result.Error.Code)
		}
	}

	health := p.HealthCheck(context.Background())
	if health.Healthy {
		t.Fatal("expected unhealthy bridge once the circuit is open")
	}
	if health.Capabilities.CanProcess {
		t.Fatal("open circuit must report CanProcess=false")
	}
}

func TestLegacyAdvisoryWarnings(t *testing.T) {
	p := NewLegacyProvider(newFakeRecorder())

	validation := p.ValidateConfiguration(&types.ProviderConfig{Enabled: true, Priority: 100})
	if !validation.Valid {
		t.Fatalf("expected valid config, got %+v", validation.Errors)
	}
	if len(validation.Warnings) == 0 {
		t.Fatal("expected advisory warnings about reduced capability")
	}

	health := p.HealthCheck(context.Background())
	if !health.Healthy {
		t.Fatal("expected healthy bridge with a closed circuit")
	}
	if health.Capabilities.CanQuery {
		t.Fatal("legacy bridge cannot query transactions")
	}

	result := p.HandleWebhook(context.Background(), &types.WebhookPayload{Provider: "legacy"}, types.PaymentContext{})
	if result.Processed || len(result.Events) != 0 {
		t.Fatalf("expected unprocessed webhook, got %+v", result)
	}
}
