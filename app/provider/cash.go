package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SwayEquilibrium/pos-payments/app/types"
)

const (
	cashProviderName    = "cash"
	cashProviderVersion = "1.0.0"

	// Cash drawers do not open for less than one whole unit.
	cashMinAmount = int64(100)
)

// CashProvider handles physical cash. It is stateless and synchronous: the
// only side effect is generating a transaction id, which is how it satisfies
// the idempotency contract. There is deliberately no dedupe store, so the
// same idempotency key submitted twice yields two bookkeeping results with
// distinct transaction ids.
type CashProvider struct {
	methods    []types.PaymentMethod
	currencies []string
}

func NewCashProvider() *CashProvider {
	return &CashProvider{
		methods: []types.PaymentMethod{
			{
				Code:              "CASH",
				DisplayName:       "Cash",
				RequiresReference: false,
				AllowsPartial:     true,
				PercentageRate:    0,
				FixedFee:          0,
				MinAmount:         cashMinAmount,
			},
		},
		currencies: []string{"DKK", "EUR", "SEK", "NOK"},
	}
}

func (p *CashProvider) Name() string {
	return cashProviderName
}

func (p *CashProvider) Version() string {
	return cashProviderVersion
}

func (p *CashProvider) SupportedMethods() []types.PaymentMethod {
	return append([]types.PaymentMethod(nil), p.methods...)
}

func (p *CashProvider) SupportedCurrencies() []string {
	return append([]string(nil), p.currencies...)
}

func (p *CashProvider) ProcessPayment(_ context.Context, req *types.PaymentRequest) *types.PaymentResult {
	method, ok := methodByCode(p.methods, req.Method)
	if !ok {
		return failedPayment(req, &types.PaymentError{
			Code:      types.ErrCodeUnsupportedMethod,
			Message:   fmt.Sprintf("cash provider does not support method %q", req.Method),
			Retryable: false,
		})
	}
	if !currencySupported(p.currencies, req.Currency) {
		return failedPayment(req, &types.PaymentError{
			Code:      types.ErrCodeUnsupportedCurrency,
			Message:   fmt.Sprintf("cash provider does not support currency %q", req.Currency),
			Retryable: false,
		})
	}
	if perr := checkAmountBounds(req.Amount, method); perr != nil {
		return failedPayment(req, perr)
	}

	quote := quoteFees(req.Amount, method)
	return &types.PaymentResult{
		Success:       true,
		TransactionID: cashTransactionID(req.Context.TenantID),
		Amount:        req.Amount,
		Fee:           quote.Fee,
		NetAmount:     quote.Net,
		Status:        types.PaymentStatusCompleted,
		ProviderResponse: map[string]interface{}{
			"provider": cashProviderName,
			"drawer":   true,
		},
	}
}

// ProcessRefund is optimistically completed: handing cash back is a manual
// physical process outside this subsystem, the result only provides
// bookkeeping. No upper bound is imposed on the amount.
func (p *CashProvider) ProcessRefund(_ context.Context, req *types.RefundRequest) *types.RefundResult {
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

	return &types.RefundResult{
		Success:               true,
		RefundID:              cashRefundID(req.Context.TenantID),
		OriginalTransactionID: req.OriginalTransactionID,
		Amount:                req.Amount,
		Status:                types.PaymentStatusCompleted,
		Metadata:              map[string]string{"manual": "true"},
	}
}

func (p *CashProvider) GetTransactionStatus(_ context.Context, transactionID string, _ types.PaymentContext) (*types.TransactionStatus, error) {
	// Cash has no backend to ask; CanQuery=false in the health check flags
	// this as a guess.
	return &types.TransactionStatus{
		TransactionID: transactionID,
		Status:        types.PaymentStatusCompleted,
		Guessed:       true,
	}, nil
}

func (p *CashProvider) HandleWebhook(_ context.Context, _ *types.WebhookPayload, _ types.PaymentContext) *types.WebhookResult {
	return unsupportedWebhook()
}

func (p *CashProvider) ValidateWebhookSignature(_ *types.WebhookPayload) bool {
	return false
}

func (p *CashProvider) ValidateConfiguration(config *types.ProviderConfig) *types.ValidationResult {
	if config == nil {
		return &types.ValidationResult{Valid: false, Errors: []string{"config is required"}}
	}
	if config.Priority < 0 {
		return &types.ValidationResult{Valid: false, Errors: []string{"priority must be >= 0"}}
	}
	return &types.ValidationResult{Valid: true}
}

func (p *CashProvider) HealthCheck(_ context.Context) *types.HealthStatus {
	return &types.HealthStatus{
		Healthy:   true,
		LatencyMS: 0,
		Capabilities: types.Capabilities{
			CanProcess: true,
			CanRefund:  true,
			CanQuery:   false,
		},
	}
}

func (p *CashProvider) CalculateFees(amount int64, methodCode string) *types.FeeQuote {
	method, ok := methodByCode(p.methods, methodCode)
	if !ok {
		return zeroFeeQuote(amount)
	}
	return quoteFees(amount, method)
}

func cashTransactionID(tenantID string) string {
	return fmt.Sprintf("cash-%s-%d-%s", tenantID, time.Now().UnixNano(), shortSuffix())
}

func cashRefundID(tenantID string) string {
	return fmt.Sprintf("cashrf-%s-%d-%s", tenantID, time.Now().UnixNano(), shortSuffix())
}

func shortSuffix() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
