package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/SwayEquilibrium/pos-payments/app/entity"
	"github.com/SwayEquilibrium/pos-payments/app/types"
)

const (
	legacyProviderName    = "legacy"
	legacyProviderVersion = "0.9.0"
)

// LegacyRecorder is the unmodified payment-recording code path the bridge
// delegates to. Implemented by repository.LegacySaleRepository in
// production and by in-memory fakes in tests.
type LegacyRecorder interface {
	Create(ctx context.Context, sale *entity.LegacySale) error
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.LegacySale, error)
}

// LegacyProvider exposes the old sale-recording path through the provider
// contract during the migration away from it. It owns the unit conversion
// between the contract's minor units and the legacy schema's major units.
// Calls into the recorder run through a circuit breaker; when the legacy
// store misbehaves the bridge fails fast with a retryable error instead of
// piling up slow calls.
type LegacyProvider struct {
	recorder   LegacyRecorder
	methods    []types.PaymentMethod
	currencies []string
	breaker    *gobreaker.CircuitBreaker
}

func NewLegacyProvider(recorder LegacyRecorder) *LegacyProvider {
	return &LegacyProvider{
		recorder: recorder,
		methods: []types.PaymentMethod{
			{
				Code:          "CASH",
				DisplayName:   "Cash (legacy)",
				AllowsPartial: true,
				MinAmount:     100,
			},
			{
				Code:              "CARD",
				DisplayName:       "Card (legacy)",
				RequiresReference: true,
				AllowsPartial:     true,
				PercentageRate:    1.75,
				MinAmount:         100,
			},
			{
				Code:              "GIFT_CARD",
				DisplayName:       "Gift card (legacy)",
				RequiresReference: true,
			},
			{
				Code:           "MOBILE_PAY",
				DisplayName:    "MobilePay (legacy)",
				AllowsPartial:  true,
				PercentageRate: 1.0,
				MinAmount:      100,
			},
		},
		currencies: []string{"DKK"},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "legacy-recorder",
			Timeout: 30 * time.Second,
		}),
	}
}

func (p *LegacyProvider) Name() string {
	return legacyProviderName
}

func (p *LegacyProvider) Version() string {
	return legacyProviderVersion
}

func (p *LegacyProvider) SupportedMethods() []types.PaymentMethod {
	return append([]types.PaymentMethod(nil), p.methods...)
}

func (p *LegacyProvider) SupportedCurrencies() []string {
	return append([]string(nil), p.currencies...)
}

func (p *LegacyProvider) ProcessPayment(ctx context.Context, req *types.PaymentRequest) *types.PaymentResult {
	method, ok := methodByCode(p.methods, req.Method)
	if !ok {
		return failedPayment(req, &types.PaymentError{
			Code:      types.ErrCodeUnsupportedMethod,
			Message:   fmt.Sprintf("legacy bridge does not support method %q", req.Method),
			Retryable: false,
		})
	}
	if !currencySupported(p.currencies, req.Currency) {
		return failedPayment(req, &types.PaymentError{
			Code:      types.ErrCodeUnsupportedCurrency,
			Message:   fmt.Sprintf("legacy bridge does not support currency %q", req.Currency),
			Retryable: false,
		})
	}
	if perr := checkAmountBounds(req.Amount, method); perr != nil {
		return failedPayment(req, perr)
	}
	if method.RequiresReference && strings.TrimSpace(req.Reference) == "" {
		return failedPayment(req, &types.PaymentError{
			Code:      types.ErrCodeReferenceRequired,
			Message:   fmt.Sprintf("method %q requires a reference", req.Method),
			Retryable: false,
		})
	}

	sale := &entity.LegacySale{
		OrderID:       req.Context.OrderID,
		Amount:        minorToMajor(req.Amount),
		PaymentMethod: req.Method,
		TransactionID: strings.TrimSpace(req.Reference),
		Metadata:      req.Metadata,
		CreatedAt:     time.Now().UTC(),
	}
	if sale.TransactionID == "" {
		sale.TransactionID = legacyTransactionID()
	}

	if _, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.recorder.Create(ctx, sale)
	}); err != nil {
		return failedPayment(req, bridgeError(err))
	}

	quote := quoteFees(req.Amount, method)
	return &types.PaymentResult{
		Success:       true,
		TransactionID: sale.TransactionID,
		ProviderTxID:  fmt.Sprintf("%d", sale.ID),
		Amount:        req.Amount,
		Fee:           quote.Fee,
		NetAmount:     quote.Net,
		Status:        types.PaymentStatusCompleted,
		ProviderResponse: map[string]interface{}{
			"legacy":         true,
			"legacy_sale_id": sale.ID,
		},
	}
}

// ProcessRefund synthesizes a tracking-only record: the legacy system has no
// refund API, so the bridge stores a negative-amount sale and flags the
// result metadata with legacy=true so downstream reconciliation knows the
// refund is not externally verified. Refunds above the recorded original are
// rejected.
func (p *LegacyProvider) ProcessRefund(ctx context.Context, req *types.RefundRequest) *types.RefundResult {
	if strings.TrimSpace(req.Reason) == "" {
		return failedRefund(req, &types.PaymentError{
			Code:      types.ErrCodeReasonRequired,
			Message:   "refund reason is required",
			Retryable: false,
		})
	}
	if req.Amount <= 0 {
		return failedRefund(req, &types.PaymentError{
			Code:      types.ErrCodeInvalidAmount,
			Message:   "refund amount must be a positive number of minor units",
			Retryable: false,
		})
	}

	originalValue, err := p.breaker.Execute(func() (interface{}, error) {
		return p.recorder.FindByTransactionID(ctx, req.OriginalTransactionID)
	})
	if err != nil {
		return failedRefund(req, bridgeError(err))
	}
	original, _ := originalValue.(*entity.LegacySale)
	if original == nil {
		return failedRefund(req, &types.PaymentError{
			Code:      types.ErrCodeOriginalNotFound,
			Message:   fmt.Sprintf("no legacy sale recorded for transaction %q", req.OriginalTransactionID),
			Retryable: false,
		})
	}
	if req.Amount > majorToMinor(original.Amount) {
		return failedRefund(req, &types.PaymentError{
			Code:      types.ErrCodeRefundExceedsOriginal,
			Message:   "refund amount exceeds the original charge",
			Retryable: false,
		})
	}

	record := &entity.LegacySale{
		OrderID:       original.OrderID,
		Amount:        -minorToMajor(req.Amount),
		PaymentMethod: original.PaymentMethod,
		TransactionID: legacyRefundID(),
		Metadata: map[string]string{
			"refund_of": req.OriginalTransactionID,
			"reason":    req.Reason,
		},
		CreatedAt: time.Now().UTC(),
	}
	if _, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.recorder.Create(ctx, record)
	}); err != nil {
		return failedRefund(req, bridgeError(err))
	}

	return &types.RefundResult{
		Success:               true,
		RefundID:              record.TransactionID,
		OriginalTransactionID: req.OriginalTransactionID,
		Amount:                req.Amount,
		Status:                types.PaymentStatusCompleted,
		Metadata: map[string]string{
			"legacy":        "true",
			"tracking_only": "true",
		},
	}
}

func (p *LegacyProvider) GetTransactionStatus(_ context.Context, transactionID string, _ types.PaymentContext) (*types.TransactionStatus, error) {
	// The legacy path records sales but tracks no lifecycle, so the answer
	// is always a completed guess. CanQuery=false captures this.
	return &types.TransactionStatus{
		TransactionID: transactionID,
		Status:        types.PaymentStatusCompleted,
		Guessed:       true,
	}, nil
}

func (p *LegacyProvider) HandleWebhook(_ context.Context, _ *types.WebhookPayload, _ types.PaymentContext) *types.WebhookResult {
	return unsupportedWebhook()
}

func (p *LegacyProvider) ValidateWebhookSignature(_ *types.WebhookPayload) bool {
	return false
}

func (p *LegacyProvider) ValidateConfiguration(config *types.ProviderConfig) *types.ValidationResult {
	if config == nil {
		return &types.ValidationResult{Valid: false, Errors: []string{"config is required"}}
	}
	if config.Priority < 0 {
		return &types.ValidationResult{Valid: false, Errors: []string{"priority must be >= 0"}}
	}
	return &types.ValidationResult{
		Valid:    true,
		Warnings: legacyCapabilityWarnings(),
	}
}

func (p *LegacyProvider) HealthCheck(_ context.Context) *types.HealthStatus {
	state := p.breaker.State()
	status := &types.HealthStatus{
		Healthy:   state != gobreaker.StateOpen,
		LatencyMS: 0,
		Details:   strings.Join(legacyCapabilityWarnings(), "; "),
		Capabilities: types.Capabilities{
			CanProcess: state != gobreaker.StateOpen,
			CanRefund:  state != gobreaker.StateOpen,
			CanQuery:   false,
		},
	}
	if state == gobreaker.StateOpen {
		status.Details = "legacy recorder circuit open; " + status.Details
	}
	return status
}

func (p *LegacyProvider) CalculateFees(amount int64, methodCode string) *types.FeeQuote {
	method, ok := methodByCode(p.methods, methodCode)
	if !ok {
		return zeroFeeQuote(amount)
	}
	return quoteFees(amount, method)
}

func legacyCapabilityWarnings() []string {
	return []string{
		"legacy bridge cannot query transaction status in real time",
		"legacy bridge does not receive provider webhooks",
	}
}

func bridgeError(err error) *types.PaymentError {
	return &types.PaymentError{
		Code:      types.ErrCodeLegacyBridgeError,
		Message:   fmt.Sprintf("legacy payment path failed: %v", err),
		Retryable: true,
	}
}

// minorToMajor converts contract minor units to the legacy schema's major
// units. The inverse pair below is the off-by-100 boundary covered
// explicitly in tests.
func minorToMajor(amount int64) float64 {
	return float64(amount) / 100
}

func majorToMinor(amount float64) int64 {
	return roundHalfUp(amount * 100)
}

func legacyTransactionID() string {
	return "legacy-" + uuid.NewString()
}

func legacyRefundID() string {
	return "legacyrf-" + uuid.NewString()
}
