package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/SwayEquilibrium/pos-payments/app/provider"
	"github.com/SwayEquilibrium/pos-payments/app/types"
)

// PaymentService is the caller side of the provider contract: it selects a
// provider through the registry and then invokes that provider directly.
// It performs no queuing or serialization across concurrent payments — any
// double-charge protection is the caller's idempotency key, not ours.
type PaymentService struct {
	registry   *provider.Registry
	migrations []provider.MigrationConfig
	legacyName string
	logger     logrus.FieldLogger
}

// NewPaymentService wires the registry with the rollout configuration.
// legacyName identifies which registered provider is the bridge being
// migrated away from; empty disables rollout routing entirely.
func NewPaymentService(
	registry *provider.Registry,
	migrations []provider.MigrationConfig,
	legacyName string,
	logger logrus.FieldLogger,
) *PaymentService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PaymentService{
		registry:   registry,
		migrations: migrations,
		legacyName: strings.TrimSpace(legacyName),
		logger:     logger,
	}
}

func (s *PaymentService) ProcessPayment(ctx context.Context, req *types.PaymentRequest) (*types.PaymentResult, error) {
	if req == nil || strings.TrimSpace(req.Context.TenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.IdempotencyKey) == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", ErrInvalidRequest)
	}

	p, err := s.selectProvider(req.Method, &req.Context)
	if err != nil {
		return nil, err
	}

	result := p.ProcessPayment(ctx, req)
	s.logOutcome(req.Context, p.Name(), "payment", result.Success, result.Error)
	return result, nil
}

func (s *PaymentService) ProcessRefund(ctx context.Context, req *types.RefundRequest) (*types.RefundResult, error) {
	if req == nil || strings.TrimSpace(req.Context.TenantID) == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.OriginalTransactionID) == "" {
		return nil, fmt.Errorf("%w: original transaction id is required", ErrInvalidRequest)
	}

	p, err := s.selectProvider(req.Method, &req.Context)
	if err != nil {
		return nil, err
	}

	result := p.ProcessRefund(ctx, req)
	s.logOutcome(req.Context, p.Name(), "refund", result.Success, result.Error)
	return result, nil
}

func (s *PaymentService) GetTransactionStatus(ctx context.Context, providerName, transactionID string, pctx types.PaymentContext) (*types.TransactionStatus, error) {
	p, err := s.registry.Get(providerName, &pctx)
	if err != nil {
		return nil, err
	}
	return p.GetTransactionStatus(ctx, transactionID, pctx)
}

// HandleWebhook dispatches a normalized webhook envelope to the named
// provider. Signed payloads whose signature the provider rejects are
// refused before dispatch; unsigned payloads pass through and the provider
// decides whether it processes them at all.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload *types.WebhookPayload, pctx types.PaymentContext) (*types.WebhookResult, error) {
	if payload == nil || strings.TrimSpace(payload.Provider) == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrInvalidRequest)
	}

	p, err := s.registry.Get(payload.Provider, nil)
	if err != nil {
		return nil, err
	}

	if payload.Signature != "" && !p.ValidateWebhookSignature(payload) {
		s.logger.WithFields(logrus.Fields{
			"provider":       p.Name(),
			"correlation_id": pctx.CorrelationID,
		}).Warn("webhook signature rejected")
		return nil, fmt.Errorf("%w: invalid signature", ErrWebhookRejected)
	}

	return p.HandleWebhook(ctx, payload, pctx), nil
}

func (s *PaymentService) HealthCheck(ctx context.Context, pctx *types.PaymentContext) map[string]*types.HealthStatus {
	return s.registry.HealthCheck(ctx, pctx)
}

// selectProvider resolves a provider for the request. An empty method falls
// back to the registry default. For explicit methods the rollout decision
// runs first: a migrated tenant prefers the best native provider and only
// stays on the bridge when no native provider serves the method yet.
func (s *PaymentService) selectProvider(method string, pctx *types.PaymentContext) (provider.Provider, error) {
	if strings.TrimSpace(method) == "" {
		return s.registry.GetDefault(pctx)
	}

	if s.legacyName != "" && provider.ShouldMigrateMethod(method, pctx.TenantID, s.migrations) {
		if p, ok := s.bestNativeProvider(method, pctx); ok {
			return p, nil
		}
	}

	return s.registry.GetBestProvider(method, pctx)
}

func (s *PaymentService) bestNativeProvider(method string, pctx *types.PaymentContext) (provider.Provider, bool) {
	for _, p := range s.registry.GetAvailable(pctx) {
		if p.Name() == s.legacyName {
			continue
		}
		for _, m := range p.SupportedMethods() {
			if m.Code == method {
				return p, true
			}
		}
	}
	return nil, false
}

func (s *PaymentService) logOutcome(pctx types.PaymentContext, providerName, operation string, success bool, perr *types.PaymentError) {
	entry := s.logger.WithFields(logrus.Fields{
		"provider":       providerName,
		"operation":      operation,
		"tenant_id":      pctx.TenantID,
		"correlation_id": pctx.CorrelationID,
		"success":        success,
	})
	if perr != nil {
		entry = entry.WithFields(logrus.Fields{
			"error_code": perr.Code,
			"retryable":  perr.Retryable,
		})
	}
	if success {
		entry.Info("payment_operation")
		return
	}
	entry.Warn("payment_operation")
}
