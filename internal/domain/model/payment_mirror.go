package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMirror is the local reconciled view of one payment attempt.
// ClientSecret is the processor client secret and the reconciliation key.
type PaymentMirror struct {
	ID               uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientSecret     string          `gorm:"uniqueIndex;not null;size:255" json:"client_secret"`
	ExternalRecordID string          `gorm:"index;not null;size:64" json:"record_id"`
	Status           string          `gorm:"not null;size:32;default:''" json:"status"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`
	PaymentSource    string          `gorm:"size:64" json:"payment_source"`
	StripePaymentID  string          `gorm:"size:255;index" json:"stripe_payment_id"`
	StripeInvoiceID  string          `gorm:"size:255" json:"stripe_invoice_id"`
	StripeCustomerID string          `gorm:"size:255" json:"stripe_customer_id"`
	HostedInvoiceURL string          `gorm:"type:text" json:"hosted_invoice_url"`
	MicrodepositURL  *string         `gorm:"type:text" json:"microdeposit_url,omitempty"`
	ErrorMessage     *string         `gorm:"type:text" json:"error_message,omitempty"`
	PaymentDate      *time.Time      `json:"payment_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentMirror) TableName() string {
	return "payment_mirrors"
}

// MirrorSnapshotColumns are overwritten when a transition applies.
// created_at and external_record_id keep their first values.
var MirrorSnapshotColumns = []string{
	"status",
	"amount",
	"payment_source",
	"stripe_payment_id",
	"stripe_invoice_id",
	"stripe_customer_id",
	"hosted_invoice_url",
	"microdeposit_url",
	"error_message",
	"payment_date",
	"updated_at",
}
