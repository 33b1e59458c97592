package http

import (
	"errors"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	pkgErrors "github.com/niteshmahajan-63/thewell-checkout/pkg/errors"
)

// Response is the envelope of every successful API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// toAppError assigns a transport code to a domain error. Errors without a
// domain mapping are wrapped and keep any inner AppError code.
func toAppError(err error) error {
	var appErr *pkgErrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var recErr *domainErrors.ReconciliationError
	if errors.As(err, &recErr) {
		switch recErr.Type {
		case domainErrors.ErrTypeAuthentication, domainErrors.ErrTypeConfiguration:
			return pkgErrors.NewAppError(pkgErrors.ErrUnauthenticated, "Invalid webhook signature - verification failed", err)
		default:
			return pkgErrors.Wrap(err, "Failed to process webhook event")
		}
	}

	var checkoutErr *domainErrors.CheckoutError
	if errors.As(err, &checkoutErr) {
		switch checkoutErr.Type {
		case domainErrors.ErrTypeRecordNotFound:
			return pkgErrors.NewAppError(pkgErrors.ErrNotFound, checkoutErr.Message, err)
		case domainErrors.ErrTypeInvalidInvoiceType:
			return pkgErrors.NewAppError(pkgErrors.ErrInvalidArgument, checkoutErr.Message, err)
		default:
			return pkgErrors.NewAppError(pkgErrors.ErrUpstream, checkoutErr.Message, err)
		}
	}

	return pkgErrors.Wrap(err, "Internal server error")
}

func httpError(err error) *echo.HTTPError {
	return pkgErrors.ToHTTPError(toAppError(err))
}
