package entity

import (
	"strings"
	"time"
)

// PaymentStatus is the reconciled status of one payment attempt.
type PaymentStatus string

const (
	// PaymentStatusInitial is the sentinel stored by checkout initiation
	// before any webhook has been applied.
	PaymentStatusInitial        PaymentStatus = ""
	PaymentStatusCreated        PaymentStatus = "created"
	PaymentStatusRequiresAction PaymentStatus = "requires_action"
	PaymentStatusProcessing     PaymentStatus = "processing"
	PaymentStatusSucceeded      PaymentStatus = "succeeded"
	PaymentStatusFailed         PaymentStatus = "failed"
)

// IsTerminal reports whether the status is sticky.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed
}

// PaymentSource is the payment-method label shown in the CRM.
type PaymentSource string

const (
	PaymentSourceACH          PaymentSource = "ACH"
	PaymentSourceCard         PaymentSource = "Credit Card/Debit Card"
	PaymentSourceBankTransfer PaymentSource = "Bank Transfer"
)

// KnownPaymentMethodTypes lists the processor method types that get a
// specific label; anything else is a bank transfer.
var KnownPaymentMethodTypes = []string{
	"us_bank_account",
	"ach_debit",
	"ach_credit_transfer",
	"card",
	"card_present",
	"interac_present",
	"customer_balance",
}

// ClassifyPaymentSource maps a processor payment-method type onto a label.
// Every input maps to exactly one label.
func ClassifyPaymentSource(methodType string) PaymentSource {
	switch strings.ToLower(strings.TrimSpace(methodType)) {
	case "us_bank_account", "ach_debit", "ach_credit_transfer":
		return PaymentSourceACH
	case "card", "card_present", "interac_present":
		return PaymentSourceCard
	default:
		return PaymentSourceBankTransfer
	}
}

// NotifiesOnSuccess reports whether a success for this source is pushed to
// the checkout page. Card payments complete client-side.
func (s PaymentSource) NotifiesOnSuccess() bool {
	return s == PaymentSourceACH || s == PaymentSourceBankTransfer
}

// MirrorRecord is the local snapshot of one payment attempt, keyed by the
// processor client secret.
type MirrorRecord struct {
	CorrelationKey      string        `json:"client_secret"`
	ExternalRecordID    string        `json:"record_id"`
	Status              PaymentStatus `json:"status"`
	Amount              string        `json:"amount"`
	PaymentSource       PaymentSource `json:"payment_source"`
	ProcessorPaymentID  string        `json:"stripe_payment_id"`
	ProcessorInvoiceID  string        `json:"stripe_invoice_id"`
	ProcessorCustomerID string        `json:"stripe_customer_id"`
	HostedInvoiceURL    string        `json:"hosted_invoice_url"`
	MicrodepositURL     *string       `json:"microdeposit_url,omitempty"`
	ErrorMessage        *string       `json:"error_message,omitempty"`
	PaymentDate         *time.Time    `json:"payment_date,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// CurrentStatus returns the status of r, treating a nil record as initial.
func (r *MirrorRecord) CurrentStatus() PaymentStatus {
	if r == nil {
		return PaymentStatusInitial
	}
	return r.Status
}
