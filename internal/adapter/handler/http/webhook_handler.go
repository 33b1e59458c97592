package http

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	pkgErrors "github.com/niteshmahajan-63/thewell-checkout/pkg/errors"
	"go.uber.org/zap"
)

// WebhookProcessor verifies and reconciles one raw webhook delivery.
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*entity.Outcome, error)
}

type WebhookHandler struct {
	logger  *zap.Logger
	service WebhookProcessor
}

func NewWebhookHandler(logger *zap.Logger, service WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{
		logger:  logger,
		service: service,
	}
}

// HandleStripeWebhook handles POST /api/webhook/stripe
func (h *WebhookHandler) HandleStripeWebhook(c echo.Context) error {
	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		h.logger.Warn("Missing Stripe webhook signature")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook signature")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		h.logger.Error("Could not read raw request body for Stripe signature verification", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	outcome, err := h.service.HandleWebhook(c.Request().Context(), body, signature)
	if err != nil {
		httpErr := httpError(err)
		if httpErr.Code >= http.StatusInternalServerError {
			pkgErrors.LogError(h.logger, err, "Stripe webhook processing failed")
		} else {
			h.logger.Warn("Stripe webhook rejected", zap.Error(err))
		}
		return httpErr
	}

	return c.JSON(http.StatusOK, outcome)
}
