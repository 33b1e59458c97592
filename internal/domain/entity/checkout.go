package entity

import "github.com/shopspring/decimal"

// CRMRecord is the subset of a CRM checkout record this service reads.
type CRMRecord struct {
	ID               string
	StripeCustomerID string
	InvoiceType      string
	InvoiceName      string
	Amount           decimal.Decimal
	PaymentStatus    string
	Items            []CRMInvoiceItem
	// Fields is the record as returned by the CRM, passed through to the checkout page.
	Fields map[string]interface{}
}

// CRMInvoiceItem is one invoiced line of a CRM record.
type CRMInvoiceItem struct {
	ID          string
	ProductName string
	Description string
	Amount      decimal.Decimal
	Quantity    int64
}

// CRMFields is a field-level update sent to the CRM.
type CRMFields map[string]interface{}

// CheckoutSession is what the checkout page needs to render and confirm a payment.
type CheckoutSession struct {
	Record       map[string]interface{} `json:"record"`
	ClientSecret string                 `json:"client_secret"`
}

// CheckoutInvoice is an invoice created and finalised for a CRM record.
type CheckoutInvoice struct {
	InvoiceID        string
	ClientSecret     string
	HostedInvoiceURL string
	AmountDue        int64
}

// Invoice is the processor invoice data stored on a mirror record.
type Invoice struct {
	ID               string
	HostedInvoiceURL string
	Metadata         map[string]string
}

// Invoice types accepted by checkout initiation.
const (
	InvoiceTypePlacementFee = "Only Placement Fee"
	InvoiceTypeSetupFee     = "Only Setup Fee"
)
