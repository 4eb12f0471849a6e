package types

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PaymentResultResponse struct {
	Result *PaymentResult `json:"result"`
}

type RefundResultResponse struct {
	Result *RefundResult `json:"result"`
}

type TransactionStatusResponse struct {
	Status *TransactionStatus `json:"status"`
}

type WebhookAckResponse struct {
	Processed bool           `json:"processed"`
	Events    []WebhookEvent `json:"events"`
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Providers map[string]*HealthStatus `json:"providers,omitempty"`
}

// ProcessPaymentRequest is the HTTP body for POST /payments. The correlation
// id is taken from the X-Request-ID header, never from the body.
type ProcessPaymentRequest struct {
	TenantID       string            `json:"tenant_id"`
	LocationID     string            `json:"location_id"`
	UserID         string            `json:"user_id"`
	OrderID        string            `json:"order_id"`
	Method         string            `json:"method"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Reference      string            `json:"reference"`
	IdempotencyKey string            `json:"idempotency_key"`
	Metadata       map[string]string `json:"metadata"`

	CorrelationID string `json:"-"`
}

func NewProcessPaymentRequestFromContext(ctx echo.Context) (*ProcessPaymentRequest, error) {
	var body ProcessPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.TenantID = strings.TrimSpace(body.TenantID)
	body.LocationID = strings.TrimSpace(body.LocationID)
	body.UserID = strings.TrimSpace(body.UserID)
	body.OrderID = strings.TrimSpace(body.OrderID)
	body.Method = strings.ToUpper(strings.TrimSpace(body.Method))
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.Reference = strings.TrimSpace(body.Reference)
	body.IdempotencyKey = strings.TrimSpace(body.IdempotencyKey)
	body.CorrelationID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))

	return &body, nil
}

func (r *ProcessPaymentRequest) Validate() error {
	if r.TenantID == "" {
		return errors.New("tenant_id is required")
	}
	if r.CorrelationID == "" {
		return errors.New("x-request-id header is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if len(r.Currency) != 3 {
		return errors.New("currency must be 3 letters")
	}
	if r.IdempotencyKey == "" {
		return errors.New("idempotency_key is required")
	}
	return nil
}

// ProcessRefundRequest is the HTTP body for POST /refunds.
type ProcessRefundRequest struct {
	TenantID              string            `json:"tenant_id"`
	LocationID            string            `json:"location_id"`
	UserID                string            `json:"user_id"`
	OrderID               string            `json:"order_id"`
	OriginalTransactionID string            `json:"original_transaction_id"`
	Method                string            `json:"method"`
	Amount                int64             `json:"amount"`
	Currency              string            `json:"currency"`
	Reason                string            `json:"reason"`
	IdempotencyKey        string            `json:"idempotency_key"`
	Metadata              map[string]string `json:"metadata"`

	CorrelationID string `json:"-"`
}

func NewProcessRefundRequestFromContext(ctx echo.Context) (*ProcessRefundRequest, error) {
	var body ProcessRefundRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.TenantID = strings.TrimSpace(body.TenantID)
	body.LocationID = strings.TrimSpace(body.LocationID)
	body.UserID = strings.TrimSpace(body.UserID)
	body.OrderID = strings.TrimSpace(body.OrderID)
	body.OriginalTransactionID = strings.TrimSpace(body.OriginalTransactionID)
	body.Method = strings.ToUpper(strings.TrimSpace(body.Method))
	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.Reason = strings.TrimSpace(body.Reason)
	body.IdempotencyKey = strings.TrimSpace(body.IdempotencyKey)
	body.CorrelationID = strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))

	return &body, nil
}

func (r *ProcessRefundRequest) Validate() error {
	if r.TenantID == "" {
		return errors.New("tenant_id is required")
	}
	if r.CorrelationID == "" {
		return errors.New("x-request-id header is required")
	}
	if r.OriginalTransactionID == "" {
		return errors.New("original_transaction_id is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if r.Reason == "" {
		return errors.New("reason is required")
	}
	return nil
}

// TransactionStatusRequest is bound from GET /payments/:provider/:id/status.
type TransactionStatusRequest struct {
	Provider      string
	TransactionID string
	TenantID      string
	LocationID    string
	CorrelationID string
}

func NewTransactionStatusRequestFromContext(ctx echo.Context) (*TransactionStatusRequest, error) {
	req := &TransactionStatusRequest{
		Provider:      strings.TrimSpace(strings.ToLower(ctx.Param("provider"))),
		TransactionID: strings.TrimSpace(ctx.Param("id")),
		TenantID:      strings.TrimSpace(ctx.QueryParam("tenant_id")),
		LocationID:    strings.TrimSpace(ctx.QueryParam("location_id")),
		CorrelationID: strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID)),
	}
	return req, nil
}

func (r *TransactionStatusRequest) Validate() error {
	if r.Provider == "" {
		return errors.New("provider is required")
	}
	if r.TransactionID == "" {
		return errors.New("transaction id is required")
	}
	if r.TenantID == "" {
		return errors.New("tenant_id is required")
	}
	return nil
}

// ProviderWebhookRequest is bound from POST /webhooks/providers/:provider.
// The raw body becomes the opaque payload data.
type ProviderWebhookRequest struct {
	Provider      string
	EventType     string
	Signature     string
	Timestamp     time.Time
	Data          json.RawMessage
	CorrelationID string
}

func NewProviderWebhookRequestFromContext(ctx echo.Context) (*ProviderWebhookRequest, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, err
	}

	req := &ProviderWebhookRequest{
		Provider:      strings.TrimSpace(strings.ToLower(ctx.Param("provider"))),
		Signature:     strings.TrimSpace(ctx.Request().Header.Get("X-Provider-Signature")),
		Timestamp:     time.Now().UTC(),
		Data:          rawBody,
		CorrelationID: strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID)),
	}

	var envelope struct {
		EventType string          `json:"event_type"`
		Signature string          `json:"signature"`
		Timestamp time.Time       `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if len(rawBody) > 0 && json.Unmarshal(rawBody, &envelope) == nil {
		req.EventType = strings.TrimSpace(envelope.EventType)
		if strings.TrimSpace(envelope.Signature) != "" {
			req.Signature = strings.TrimSpace(envelope.Signature)
		}
		if !envelope.Timestamp.IsZero() {
			req.Timestamp = envelope.Timestamp
		}
		if len(envelope.Data) > 0 {
			req.Data = envelope.Data
		}
	}

	return req, nil
}

func (r *ProviderWebhookRequest) Validate() error {
	if r.Provider == "" {
		return errors.New("provider is required")
	}
	if len(r.Data) == 0 {
		return errors.New("payload is required")
	}
	return nil
}
