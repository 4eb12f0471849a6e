package provider

import (
	"context"

	"github.com/SwayEquilibrium/pos-payments/app/types"
)

// Provider is the contract every payment backend implements. Process and
// refund calls never return a Go error: every outcome, including validation
// failures and backend faults, is a structured result the caller inspects
// via Success and Error. Implementations must be retry-safe for a repeated
// idempotency key.
type Provider interface {
	Name() string
	Version() string
	SupportedMethods() []types.PaymentMethod
	SupportedCurrencies() []string

	ProcessPayment(ctx context.Context, req *types.PaymentRequest) *types.PaymentResult
	ProcessRefund(ctx context.Context, req *types.RefundRequest) *types.RefundResult
	GetTransactionStatus(ctx context.Context, transactionID string, pctx types.PaymentContext) (*types.TransactionStatus, error)
	HandleWebhook(ctx context.Context, payload *types.WebhookPayload, pctx types.PaymentContext) *types.WebhookResult
	ValidateWebhookSignature(payload *types.WebhookPayload) bool
	ValidateConfiguration(config *types.ProviderConfig) *types.ValidationResult
	HealthCheck(ctx context.Context) *types.HealthStatus
	CalculateFees(amount int64, methodCode string) *types.FeeQuote
}

func methodByCode(methods []types.PaymentMethod, code string) (types.PaymentMethod, bool) {
	for _, m := range methods {
		if m.Code == code {
			return m, true
		}
	}
	return types.PaymentMethod{}, false
}

func currencySupported(currencies []string, currency string) bool {
	for _, c := range currencies {
		if c == currency {
			return true
		}
	}
	return false
}

// checkAmountBounds enforces the method-declared min/max. Violations are
// non-retryable: the same request will never become valid.
func checkAmountBounds(amount int64, method types.PaymentMethod) *types.PaymentError {
	if amount <= 0 {
		return &types.PaymentError{
			Code:      types.ErrCodeInvalidAmount,
			Message:   "amount must be a positive number of minor units",
			Retryable: false,
		}
	}
	if method.MinAmount > 0 && amount < method.MinAmount {
		return &types.PaymentError{
			Code:      types.ErrCodeAmountTooLow,
			Message:   "amount is below the method minimum",
			Retryable: false,
		}
	}
	if method.MaxAmount > 0 && amount > method.MaxAmount {
		return &types.PaymentError{
			Code:      types.ErrCodeAmountTooHigh,
			Message:   "amount is above the method maximum",
			Retryable: false,
		}
	}
	return nil
}

func failedPayment(req *types.PaymentRequest, perr *types.PaymentError) *types.PaymentResult {
	return &types.PaymentResult{
		Success: false,
		Amount:  req.Amount,
		Status:  types.PaymentStatusFailed,
		Error:   perr,
	}
}

func failedRefund(req *types.RefundRequest, perr *types.PaymentError) *types.RefundResult {
	return &types.RefundResult{
		Success:               false,
		OriginalTransactionID: req.OriginalTransactionID,
		Amount:                req.Amount,
		Status:                types.PaymentStatusFailed,
		Error:                 perr,
	}
}

// unsupportedWebhook is the uniform answer for providers with no webhook
// concept: not processed, no events, no error.
func unsupportedWebhook() *types.WebhookResult {
	return &types.WebhookResult{Processed: false, Events: []types.WebhookEvent{}}
}
