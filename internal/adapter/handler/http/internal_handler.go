package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/repository"
	"go.uber.org/zap"
)

// PaymentReader reads mirror records by client secret.
type PaymentReader interface {
	GetPayment(ctx context.Context, clientSecret string) (*entity.MirrorRecord, error)
}

// InternalHandler serves operator endpoints behind JWT auth.
type InternalHandler struct {
	logger   *zap.Logger
	payments PaymentReader
	events   repository.WebhookEventRepository
}

func NewInternalHandler(logger *zap.Logger, payments PaymentReader, events repository.WebhookEventRepository) *InternalHandler {
	return &InternalHandler{
		logger:   logger,
		payments: payments,
		events:   events,
	}
}

// GetPayment handles GET /api/internal/payments/:clientSecret
func (h *InternalHandler) GetPayment(c echo.Context) error {
	clientSecret := c.Param("clientSecret")

	record, err := h.payments.GetPayment(c.Request().Context(), clientSecret)
	if err != nil {
		h.logger.Error("Failed to get payment", zap.Error(err))
		return httpError(err)
	}
	if record == nil {
		return echo.NewHTTPError(http.StatusNotFound, "payment not found")
	}

	return c.JSON(http.StatusOK, successResponse(record, "Payment retrieved successfully"))
}

// ListWebhookEvents handles GET /api/internal/webhook-events
func (h *InternalHandler) ListWebhookEvents(c echo.Context) error {
	var params entity.PaginationParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid pagination parameters")
	}
	params.Validate()

	events, total, err := h.events.List(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("Failed to list webhook events", zap.Error(err))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, successResponse(map[string]interface{}{
		"events":     events,
		"pagination": entity.NewPaginationMeta(params.Page, params.Limit, total),
	}, "Webhook events retrieved successfully"))
}
