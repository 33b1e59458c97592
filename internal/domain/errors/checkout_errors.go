package errors

import "fmt"

// CheckoutError represents errors related to checkout initiation
type CheckoutError struct {
	Type     string
	Message  string
	RecordID string
	Cause    error
}

func (e *CheckoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (record: %s) - %v", e.Type, e.Message, e.RecordID, e.Cause)
	}
	return fmt.Sprintf("%s: %s (record: %s)", e.Type, e.Message, e.RecordID)
}

func (e *CheckoutError) Unwrap() error {
	return e.Cause
}

// Checkout error types
const (
	ErrTypeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrTypeInvalidInvoiceType = "INVALID_INVOICE_TYPE"
	ErrTypeCRMUnavailable     = "CRM_UNAVAILABLE"
	ErrTypeProcessorFailed    = "PROCESSOR_FAILED"
)

func NewRecordNotFoundError(recordID string) *CheckoutError {
	return &CheckoutError{
		Type:     ErrTypeRecordNotFound,
		Message:  "CRM record not found",
		RecordID: recordID,
	}
}

func NewInvalidInvoiceTypeError(recordID, invoiceType string) *CheckoutError {
	return &CheckoutError{
		Type:     ErrTypeInvalidInvoiceType,
		Message:  fmt.Sprintf("invalid invoice type %q", invoiceType),
		RecordID: recordID,
	}
}

func NewCRMUnavailableError(recordID string, cause error) *CheckoutError {
	return &CheckoutError{
		Type:     ErrTypeCRMUnavailable,
		Message:  "failed to reach CRM",
		RecordID: recordID,
		Cause:    cause,
	}
}

func NewProcessorError(recordID string, cause error) *CheckoutError {
	return &CheckoutError{
		Type:     ErrTypeProcessorFailed,
		Message:  "failed to create checkout invoice",
		RecordID: recordID,
		Cause:    cause,
	}
}
