package provider

import (
	"context"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
)

// EventVerifier authenticates a raw webhook body and decodes it.
type EventVerifier interface {
	Verify(payload []byte, signature string) (*entity.InboundEvent, error)
}

// PaymentProcessor is the subset of the payment processor API the service uses.
type PaymentProcessor interface {
	GetInvoice(ctx context.Context, invoiceID string) (*entity.Invoice, error)
	// GetPaymentMethodType returns the raw method type, e.g. "card" or "us_bank_account".
	GetPaymentMethodType(ctx context.Context, paymentMethodID string) (string, error)
	// CreateCheckoutInvoice creates, itemises and finalises an invoice for a CRM record.
	CreateCheckoutInvoice(ctx context.Context, record *entity.CRMRecord) (*entity.CheckoutInvoice, error)
}

// CRMClient reads and updates CRM checkout records.
type CRMClient interface {
	GetRecordByID(ctx context.Context, recordID string) (*entity.CRMRecord, error)
	UpdateRecord(ctx context.Context, recordID string, fields entity.CRMFields) error
}

// Notifier pushes a realtime event to the sessions joined to room.
// Delivery is best effort; an error means the message could not be handed off.
type Notifier interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
}

// Realtime event names.
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
)

// PaymentSucceededPayload is sent with EventPaymentSucceeded.
type PaymentSucceededPayload struct {
	PaymentID string `json:"paymentId"`
}

// PaymentFailedPayload is sent with EventPaymentFailed.
type PaymentFailedPayload struct {
	PaymentID string `json:"paymentId"`
	Error     string `json:"error"`
}

// ProviderError is returned by remote collaborators.
type ProviderError struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
}

func (e *ProviderError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Details != "" {
		return msg + ": " + e.Details
	}
	return msg
}
