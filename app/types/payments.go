package types

import (
	"encoding/json"
	"time"
)

// PaymentContext identifies a single call into the payment subsystem.
// It is immutable per call and never persisted.
type PaymentContext struct {
	TenantID      string `json:"tenant_id"`
	LocationID    string `json:"location_id,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
	OrderID       string `json:"order_id,omitempty"`
}

// PaymentMethod is the static capability descriptor a provider publishes for
// each method it supports. All amounts are integer minor units.
type PaymentMethod struct {
	Code              string  `json:"code"`
	DisplayName       string  `json:"display_name"`
	RequiresReference bool    `json:"requires_reference"`
	AllowsPartial     bool    `json:"allows_partial"`
	PercentageRate    float64 `json:"percentage_rate"`
	FixedFee          int64   `json:"fixed_fee"`
	MinAmount         int64   `json:"min_amount,omitempty"`
	MaxAmount         int64   `json:"max_amount,omitempty"`
}

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Stable error codes carried in PaymentError.Code.
const (
	ErrCodeAmountTooLow          = "AMOUNT_TOO_LOW"
	ErrCodeAmountTooHigh         = "AMOUNT_TOO_HIGH"
	ErrCodeInvalidAmount         = "INVALID_AMOUNT"
	ErrCodeUnsupportedMethod     = "UNSUPPORTED_METHOD"
	ErrCodeUnsupportedCurrency   = "UNSUPPORTED_CURRENCY"
	ErrCodeReferenceRequired     = "REFERENCE_REQUIRED"
	ErrCodeReasonRequired        = "REASON_REQUIRED"
	ErrCodeLegacyBridgeError     = "LEGACY_BRIDGE_ERROR"
	ErrCodeRefundExceedsOriginal = "REFUND_EXCEEDS_ORIGINAL"
	ErrCodeOriginalNotFound      = "ORIGINAL_NOT_FOUND"
)

// PaymentError is the structured failure attached to an unsuccessful result.
// Retryable signals whether the caller may resubmit the same request with
// the same idempotency key.
type PaymentError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// PaymentRequest is a single charge attempt. IdempotencyKey is caller
// supplied; submitting the same key twice to the same provider must not
// produce two charges. That contract binds the provider implementation: a
// networked provider needs a dedupe store keyed by it, while synchronous
// providers with no external side effects (cash) satisfy it trivially.
type PaymentRequest struct {
	Context        PaymentContext    `json:"context"`
	Method         string            `json:"method"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Reference      string            `json:"reference,omitempty"`
	IdempotencyKey string            `json:"idempotency_key"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type PaymentResult struct {
	Success          bool                   `json:"success"`
	TransactionID    string                 `json:"transaction_id,omitempty"`
	ProviderTxID     string                 `json:"provider_tx_id,omitempty"`
	Amount           int64                  `json:"amount"`
	Fee              int64                  `json:"fee"`
	NetAmount        int64                  `json:"net_amount"`
	Status           PaymentStatus          `json:"status"`
	ProviderResponse map[string]interface{} `json:"provider_response,omitempty"`
	Error            *PaymentError          `json:"error,omitempty"`
}

// RefundRequest mirrors PaymentRequest but is keyed to the transaction being
// refunded. Reason is mandatory.
type RefundRequest struct {
	Context               PaymentContext    `json:"context"`
	OriginalTransactionID string            `json:"original_transaction_id"`
	Method                string            `json:"method"`
	Amount                int64             `json:"amount"`
	Currency              string            `json:"currency"`
	Reason                string            `json:"reason"`
	IdempotencyKey        string            `json:"idempotency_key"`
	Metadata              map[string]string `json:"metadata,omitempty"`
}

type RefundResult struct {
	Success               bool              `json:"success"`
	RefundID              string            `json:"refund_id,omitempty"`
	OriginalTransactionID string            `json:"original_transaction_id"`
	Amount                int64             `json:"amount"`
	Status                PaymentStatus     `json:"status"`
	Metadata              map[string]string `json:"metadata,omitempty"`
	Error                 *PaymentError     `json:"error,omitempty"`
}

// WebhookPayload is the generic envelope an HTTP endpoint hands to a
// provider for normalization. It is never persisted here.
type WebhookPayload struct {
	Provider  string          `json:"provider"`
	EventType string          `json:"event_type"`
	Signature string          `json:"signature,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type WebhookEventType string

const (
	WebhookEventPaymentCompleted WebhookEventType = "payment_completed"
	WebhookEventPaymentFailed    WebhookEventType = "payment_failed"
	WebhookEventRefundCompleted  WebhookEventType = "refund_completed"
)

type WebhookEvent struct {
	Type          WebhookEventType `json:"type"`
	TransactionID string           `json:"transaction_id,omitempty"`
	ProviderTxID  string           `json:"provider_tx_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// WebhookResult reports the normalization outcome. Providers without a
// webhook concept return Processed=false with no events, never an error.
type WebhookResult struct {
	Processed bool           `json:"processed"`
	Events    []WebhookEvent `json:"events"`
}

// ProviderConfig is the registry-owned record paired 1:1 with a registered
// provider. Empty allow-lists mean unrestricted. Lower priority wins.
type ProviderConfig struct {
	Enabled     bool              `json:"enabled"`
	TenantIDs   []string          `json:"tenant_ids,omitempty"`
	LocationIDs []string          `json:"location_ids,omitempty"`
	Priority    int               `json:"priority"`
	Options     map[string]string `json:"options,omitempty"`
}

// Clone returns a deep copy so registry-held state cannot be mutated by the
// caller after registration.
func (c *ProviderConfig) Clone() *ProviderConfig {
	if c == nil {
		return nil
	}
	clone := *c
	clone.TenantIDs = append([]string(nil), c.TenantIDs...)
	clone.LocationIDs = append([]string(nil), c.LocationIDs...)
	if c.Options != nil {
		clone.Options = make(map[string]string, len(c.Options))
		for k, v := range c.Options {
			clone.Options[k] = v
		}
	}
	return &clone
}

type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type Capabilities struct {
	CanProcess bool `json:"can_process"`
	CanRefund  bool `json:"can_refund"`
	CanQuery   bool `json:"can_query"`
}

type HealthStatus struct {
	Healthy      bool         `json:"healthy"`
	LatencyMS    int64        `json:"latency_ms"`
	Details      string       `json:"details,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

type FeeComponent struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// FeeQuote always satisfies Fee + Net == the quoted amount.
type FeeQuote struct {
	Fee       int64          `json:"fee"`
	Net       int64          `json:"net"`
	Breakdown []FeeComponent `json:"breakdown"`
}

// TransactionStatus is a best-effort answer from GetTransactionStatus.
// Guessed marks providers that cannot query their backend and answer with a
// static assumption instead.
type TransactionStatus struct {
	TransactionID string        `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`
	Guessed       bool          `json:"guessed"`
}
