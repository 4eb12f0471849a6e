package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/SwayEquilibrium/pos-payments/app/factory"
	"github.com/SwayEquilibrium/pos-payments/app/mapper"
	"github.com/SwayEquilibrium/pos-payments/app/provider"
	"github.com/SwayEquilibrium/pos-payments/app/service"
	"github.com/SwayEquilibrium/pos-payments/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	providers := c.paymentService.HealthCheck(ctx.Request().Context(), nil)

	status := "ok"
	code := http.StatusOK
	for _, health := range providers {
		if !health.Healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	return ctx.JSON(code, &types.HealthResponse{Status: status, Providers: providers})
}

func (c *PaymentController) ProcessPayment(ctx echo.Context) error {
	req, err := types.NewProcessPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.ProcessPayment(ctx.Request().Context(), mapper.PaymentRequestFromHTTP(req))
	if err != nil {
		return c.writeSelectionError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, &types.PaymentResultResponse{Result: result})
}

func (c *PaymentController) ProcessRefund(ctx echo.Context) error {
	req, err := types.NewProcessRefundRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.ProcessRefund(ctx.Request().Context(), mapper.RefundRequestFromHTTP(req))
	if err != nil {
		return c.writeSelectionError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, &types.RefundResultResponse{Result: result})
}

func (c *PaymentController) GetTransactionStatus(ctx echo.Context) error {
	req, err := types.NewTransactionStatusRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	status, err := c.paymentService.GetTransactionStatus(
		ctx.Request().Context(),
		req.Provider,
		req.TransactionID,
		mapper.StatusContextFromHTTP(req),
	)
	if err != nil {
		return c.writeSelectionError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, &types.TransactionStatusResponse{Status: status})
}

func (c *PaymentController) HandleProviderWebhook(ctx echo.Context) error {
	req, err := types.NewProviderWebhookRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.HandleWebhook(
		ctx.Request().Context(),
		mapper.WebhookPayloadFromHTTP(req),
		types.PaymentContext{CorrelationID: req.CorrelationID},
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookRejected):
			return c.writeError(ctx, http.StatusUnauthorized, err.Error())
		case errors.Is(err, provider.ErrProviderNotFound):
			return c.writeError(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			c.logger.WithError(err).Error("Handle provider webhook failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.WebhookAckResponse{Processed: result.Processed, Events: result.Events})
}

// writeSelectionError maps the registry's distinguishable lookup failures
// onto HTTP statuses so callers can branch on cause.
func (c *PaymentController) writeSelectionError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, provider.ErrProviderNotFound):
		return c.writeError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, provider.ErrProviderDisabled),
		errors.Is(err, provider.ErrTenantNotAllowed),
		errors.Is(err, provider.ErrLocationNotAllowed):
		return c.writeError(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, provider.ErrNoProviderForMethod),
		errors.Is(err, provider.ErrNoDefaultProvider):
		return c.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
	default:
		c.logger.WithError(err).Error("Payment operation failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
