package entity

import "time"

// EventKind is a processor event type the reconciliation core understands.
type EventKind string

const (
	EventKindUnknown        EventKind = ""
	EventKindCreated        EventKind = "payment_intent.created"
	EventKindRequiresAction EventKind = "payment_intent.requires_action"
	EventKindProcessing     EventKind = "payment_intent.processing"
	EventKindSucceeded      EventKind = "payment_intent.succeeded"
	EventKindPaymentFailed  EventKind = "payment_intent.payment_failed"
)

// ParseEventKind maps a processor event type onto a kind; unrecognised
// types map to EventKindUnknown.
func ParseEventKind(eventType string) EventKind {
	switch kind := EventKind(eventType); kind {
	case EventKindCreated, EventKindRequiresAction, EventKindProcessing,
		EventKindSucceeded, EventKindPaymentFailed:
		return kind
	default:
		return EventKindUnknown
	}
}

// TargetStatus is the status a record moves to when the event applies.
func (k EventKind) TargetStatus() PaymentStatus {
	switch k {
	case EventKindCreated:
		return PaymentStatusCreated
	case EventKindRequiresAction:
		return PaymentStatusRequiresAction
	case EventKindProcessing:
		return PaymentStatusProcessing
	case EventKindSucceeded:
		return PaymentStatusSucceeded
	case EventKindPaymentFailed:
		return PaymentStatusFailed
	default:
		return PaymentStatusInitial
	}
}

// InboundEvent is a verified processor notification decoded at the boundary.
type InboundEvent struct {
	ID         string
	Type       string
	Kind       EventKind
	APIVersion string
	OccurredAt time.Time
	// PaymentIntent is set for every recognised kind.
	PaymentIntent *PaymentIntent
	Raw           []byte
}

// CorrelationKey returns the client secret the event refers to.
func (e *InboundEvent) CorrelationKey() string {
	if e.PaymentIntent == nil {
		return ""
	}
	return e.PaymentIntent.ClientSecret
}

// PaymentIntent carries the payment_intent fields the core reads.
type PaymentIntent struct {
	ID                 string
	ClientSecret       string
	Amount             int64
	Currency           string
	Status             string
	CustomerID         string
	PaymentMethodID    string
	PaymentMethodTypes []string
	InvoiceID          string
	Metadata           map[string]string
	LastError          *PaymentError
	MicrodepositURL    string
	CreatedAt          time.Time
}

// PaymentError is the last payment error reported by the processor.
type PaymentError struct {
	Message           string
	PaymentMethodType string
}

// RecordIDMetadataKey is the metadata key that carries the CRM record id on
// invoices and payment intents created by checkout.
const RecordIDMetadataKey = "record_id"
