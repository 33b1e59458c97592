package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"go.uber.org/zap"
)

// CheckoutService is the checkout initiation and status surface.
type CheckoutService interface {
	GetRecord(ctx context.Context, recordID string) (*entity.CheckoutSession, error)
	CheckPaymentStatus(ctx context.Context, recordID string) (entity.PaymentStatus, error)
}

// RecordQuery identifies a CRM record.
type RecordQuery struct {
	RecordID string `query:"recordId" validate:"required,max=64"`
}

type CheckoutHandler struct {
	logger  *zap.Logger
	service CheckoutService
}

func NewCheckoutHandler(logger *zap.Logger, service CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		logger:  logger,
		service: service,
	}
}

// GetRecord handles GET /api/checkout/get-record
func (h *CheckoutHandler) GetRecord(c echo.Context) error {
	query, err := bindRecordQuery(c)
	if err != nil {
		return err
	}

	session, err := h.service.GetRecord(c.Request().Context(), query.RecordID)
	if err != nil {
		h.logger.Error("Failed to fetch record",
			zap.String("record_id", query.RecordID),
			zap.Error(err))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, successResponse(session, "Record retrieved successfully"))
}

// CheckPaymentStatus handles GET /api/checkout/check-payment-status
func (h *CheckoutHandler) CheckPaymentStatus(c echo.Context) error {
	query, err := bindRecordQuery(c)
	if err != nil {
		return err
	}

	h.logger.Info("Checking payment status", zap.String("record_id", query.RecordID))

	status, err := h.service.CheckPaymentStatus(c.Request().Context(), query.RecordID)
	if err != nil {
		h.logger.Error("Failed to check payment status",
			zap.String("record_id", query.RecordID),
			zap.Error(err))
		return httpError(err)
	}

	return c.JSON(http.StatusOK, successResponse(map[string]string{
		"status": string(status),
	}, "Payment status checked successfully"))
}

func bindRecordQuery(c echo.Context) (*RecordQuery, error) {
	var query RecordQuery
	if err := c.Bind(&query); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&query); err != nil {
		return nil, err
	}
	return &query, nil
}
