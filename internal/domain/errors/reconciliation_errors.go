package errors

import (
	"errors"
	"fmt"
)

// ReconciliationError represents errors raised while reconciling a payment event
type ReconciliationError struct {
	Type           string
	Message        string
	EventID        string
	CorrelationKey string
	Cause          error
}

func (e *ReconciliationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (event: %s, key: %s) - %v",
			e.Type, e.Message, e.EventID, redact(e.CorrelationKey), e.Cause)
	}
	return fmt.Sprintf("%s: %s (event: %s, key: %s)",
		e.Type, e.Message, e.EventID, redact(e.CorrelationKey))
}

func (e *ReconciliationError) Unwrap() error {
	return e.Cause
}

// Reconciliation error types
const (
	ErrTypeAuthentication = "AUTHENTICATION_FAILED"
	ErrTypeConfiguration  = "CONFIGURATION_MISSING"
	ErrTypePersistence    = "PERSISTENCE_FAILED"
	ErrTypeFanout         = "FANOUT_FAILED"
)

// NewAuthenticationError creates an error for a missing or invalid signature
func NewAuthenticationError(message string, cause error) *ReconciliationError {
	return &ReconciliationError{
		Type:    ErrTypeAuthentication,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError creates an error for a required secret that is not set
func NewConfigurationError(setting string) *ReconciliationError {
	return &ReconciliationError{
		Type:    ErrTypeConfiguration,
		Message: setting + " is not configured",
	}
}

// NewPersistenceError creates an error for a failed mirror store write
func NewPersistenceError(eventID, correlationKey string, cause error) *ReconciliationError {
	return &ReconciliationError{
		Type:           ErrTypePersistence,
		Message:        "failed to persist payment mirror",
		EventID:        eventID,
		CorrelationKey: correlationKey,
		Cause:          cause,
	}
}

// NewFanoutError creates an error for a failed downstream notification
func NewFanoutError(eventID, target string, cause error) *ReconciliationError {
	return &ReconciliationError{
		Type:    ErrTypeFanout,
		Message: target + " update failed",
		EventID: eventID,
		Cause:   cause,
	}
}

// IsType reports whether err is a ReconciliationError of the given type.
func IsType(err error, errType string) bool {
	var recErr *ReconciliationError
	return errors.As(err, &recErr) && recErr.Type == errType
}

// IsAuthentication covers both bad signatures and a missing signing secret;
// both fail closed.
func IsAuthentication(err error) bool {
	return IsType(err, ErrTypeAuthentication) || IsType(err, ErrTypeConfiguration)
}

func IsPersistence(err error) bool {
	return IsType(err, ErrTypePersistence)
}

// redact keeps client secrets out of error strings.
func redact(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8] + "..."
}
