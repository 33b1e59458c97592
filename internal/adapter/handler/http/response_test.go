package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	domainErrors "github.com/niteshmahajan-63/thewell-checkout/internal/domain/errors"
	pkgErrors "github.com/niteshmahajan-63/thewell-checkout/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPError(t *testing.T) {
	dbErr := errors.New("connection refused")

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "bad signature",
			err:         domainErrors.NewAuthenticationError("webhook signature verification failed", nil),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid webhook signature - verification failed",
		},
		{
			name:        "missing signing key",
			err:         domainErrors.NewConfigurationError("STRIPE_WEBHOOK_SIGNING_KEY"),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid webhook signature - verification failed",
		},
		{
			name:        "mirror write failed",
			err:         domainErrors.NewPersistenceError("evt_1", "cs_test_1", dbErr),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to process webhook event",
		},
		{
			name:        "record not found",
			err:         domainErrors.NewRecordNotFoundError("rec_1"),
			wantStatus:  http.StatusNotFound,
		},
		{
			name:        "invalid invoice type",
			err:         domainErrors.NewInvalidInvoiceTypeError("rec_1", "Subscription"),
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "CRM unavailable",
			err:         domainErrors.NewCRMUnavailableError("rec_1", dbErr),
			wantStatus:  http.StatusBadGateway,
		},
		{
			name:        "unmapped error",
			err:         dbErr,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
		{
			name:        "inner app error keeps its code",
			err:         fmt.Errorf("lookup: %w", pkgErrors.NewAppError(pkgErrors.ErrNotFound, "payment not found", nil)),
			wantStatus:  http.StatusNotFound,
			wantMessage: "payment not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := httpError(tt.err)
			require.NotNil(t, httpErr)

			assert.Equal(t, tt.wantStatus, httpErr.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, httpErr.Message)
			}
		})
	}
}

func TestToAppError_WrapsPersistenceCause(t *testing.T) {
	dbErr := errors.New("connection refused")
	err := toAppError(domainErrors.NewPersistenceError("evt_1", "cs_test_1", dbErr))

	var appErr *pkgErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgErrors.ErrInternal, appErr.Code())
	assert.Equal(t, "Failed to process webhook event", appErr.Message())
	assert.ErrorIs(t, err, dbErr)
	assert.True(t, domainErrors.IsPersistence(err))
}
