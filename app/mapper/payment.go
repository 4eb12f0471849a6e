package mapper

import (
	"github.com/SwayEquilibrium/pos-payments/app/types"
)

func PaymentRequestFromHTTP(req *types.ProcessPaymentRequest) *types.PaymentRequest {
	return &types.PaymentRequest{
		Context: types.PaymentContext{
			TenantID:      req.TenantID,
			LocationID:    req.LocationID,
			UserID:        req.UserID,
			CorrelationID: req.CorrelationID,
			OrderID:       req.OrderID,
		},
		Method:         req.Method,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Reference:      req.Reference,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       cloneMetadata(req.Metadata),
	}
}

func RefundRequestFromHTTP(req *types.ProcessRefundRequest) *types.RefundRequest {
	return &types.RefundRequest{
		Context: types.PaymentContext{
			TenantID:      req.TenantID,
			LocationID:    req.LocationID,
			UserID:        req.UserID,
			CorrelationID: req.CorrelationID,
			OrderID:       req.OrderID,
		},
		OriginalTransactionID: req.OriginalTransactionID,
		Method:                req.Method,
		Amount:                req.Amount,
		Currency:              req.Currency,
		Reason:                req.Reason,
		IdempotencyKey:        req.IdempotencyKey,
		Metadata:              cloneMetadata(req.Metadata),
	}
}

func WebhookPayloadFromHTTP(req *types.ProviderWebhookRequest) *types.WebhookPayload {
	return &types.WebhookPayload{
		Provider:  req.Provider,
		EventType: req.EventType,
		Signature: req.Signature,
		Timestamp: req.Timestamp,
		Data:      req.Data,
	}
}

func StatusContextFromHTTP(req *types.TransactionStatusRequest) types.PaymentContext {
	return types.PaymentContext{
		TenantID:      req.TenantID,
		LocationID:    req.LocationID,
		CorrelationID: req.CorrelationID,
	}
}

func cloneMetadata(src map[string]string) map[string]string {
	if len(src) == 0 {
		return map[string]string{}
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
