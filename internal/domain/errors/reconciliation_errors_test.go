package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconciliationError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPersistenceError("evt_1", "pi_123_secret_abc", cause)

	assert.Contains(t, err.Error(), "PERSISTENCE_FAILED")
	assert.Contains(t, err.Error(), "evt_1")
	assert.NotContains(t, err.Error(), "secret_abc")
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("processing: %w", err)
	assert.True(t, IsPersistence(wrapped))
	assert.False(t, IsAuthentication(wrapped))
}

func TestIsAuthentication(t *testing.T) {
	assert.True(t, IsAuthentication(NewAuthenticationError("invalid signature", nil)))
	assert.True(t, IsAuthentication(NewConfigurationError("STRIPE_WEBHOOK_SIGNING_KEY")))
	assert.False(t, IsAuthentication(NewFanoutError("evt_1", "CRM", nil)))
	assert.False(t, IsAuthentication(errors.New("plain")))
}

func TestCheckoutError(t *testing.T) {
	err := NewInvalidInvoiceTypeError("rec_1", "Subscription")
	assert.Equal(t, `INVALID_INVOICE_TYPE: invalid invoice type "Subscription" (record: rec_1)`, err.Error())
}
