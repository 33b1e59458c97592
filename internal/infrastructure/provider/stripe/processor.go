package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/entity"
	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
)

const (
	providerName    = "stripe"
	defaultCurrency = "usd"
)

// checkoutPaymentMethodTypes are offered on every checkout invoice.
var checkoutPaymentMethodTypes = []string{"card", "us_bank_account", "customer_balance"}

// PaymentProcessor implements provider.PaymentProcessor on the Stripe API.
type PaymentProcessor struct {
	api    *client.API
	logger *zap.Logger
}

// NewPaymentProcessor creates a Stripe client. backends may be nil to use
// the live API endpoints.
func NewPaymentProcessor(secretKey string, backends *stripe.Backends, logger *zap.Logger) *PaymentProcessor {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &PaymentProcessor{
		api:    api,
		logger: logger,
	}
}

func (p *PaymentProcessor) GetInvoice(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	params := &stripe.InvoiceParams{}
	params.Context = ctx

	inv, err := p.api.Invoices.Get(invoiceID, params)
	if err != nil {
		p.logger.Warn("Failed to retrieve Stripe invoice",
			zap.String("invoice_id", invoiceID),
			zap.Error(err))
		return nil, toProviderError(err)
	}

	return &entity.Invoice{
		ID:               inv.ID,
		HostedInvoiceURL: inv.HostedInvoiceURL,
		Metadata:         inv.Metadata,
	}, nil
}

func (p *PaymentProcessor) GetPaymentMethodType(ctx context.Context, paymentMethodID string) (string, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := p.api.PaymentMethods.Get(paymentMethodID, params)
	if err != nil {
		p.logger.Warn("Failed to retrieve Stripe payment method",
			zap.String("payment_method_id", paymentMethodID),
			zap.Error(err))
		return "", toProviderError(err)
	}
	return string(pm.Type), nil
}

// CreateCheckoutInvoice creates a send_invoice invoice for the record's
// customer, adds one item per CRM line and finalises it so the payment
// intent and its client secret exist.
func (p *PaymentProcessor) CreateCheckoutInvoice(ctx context.Context, record *entity.CRMRecord) (*entity.CheckoutInvoice, error) {
	if record.StripeCustomerID == "" {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     "missing_customer",
			Message:  fmt.Sprintf("record %s has no Stripe customer", record.ID),
		}
	}

	invoiceParams := &stripe.InvoiceParams{
		Customer:                    stripe.String(record.StripeCustomerID),
		CollectionMethod:            stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:                stripe.Int64(0),
		AutoAdvance:                 stripe.Bool(false),
		PendingInvoiceItemsBehavior: stripe.String("exclude"),
		Description:                 stripe.String(record.InvoiceName),
		Metadata: map[string]string{
			entity.RecordIDMetadataKey: record.ID,
		},
		PaymentSettings: &stripe.InvoicePaymentSettingsParams{
			PaymentMethodTypes: stripe.StringSlice(checkoutPaymentMethodTypes),
		},
	}
	invoiceParams.Context = ctx

	inv, err := p.api.Invoices.New(invoiceParams)
	if err != nil {
		p.logger.Error("Failed to create Stripe invoice",
			zap.String("record_id", record.ID),
			zap.Error(err))
		return nil, toProviderError(err)
	}

	for _, item := range invoiceLines(record) {
		itemParams := &stripe.InvoiceItemParams{
			Customer:    stripe.String(record.StripeCustomerID),
			Invoice:     stripe.String(inv.ID),
			Amount:      stripe.Int64(item.amount),
			Currency:    stripe.String(defaultCurrency),
			Description: stripe.String(item.description),
		}
		itemParams.Context = ctx

		if _, err := p.api.InvoiceItems.New(itemParams); err != nil {
			p.logger.Error("Failed to add Stripe invoice item",
				zap.String("record_id", record.ID),
				zap.String("invoice_id", inv.ID),
				zap.Error(err))
			return nil, toProviderError(err)
		}
	}

	finalizeParams := &stripe.InvoiceFinalizeInvoiceParams{
		AutoAdvance: stripe.Bool(false),
	}
	finalizeParams.Context = ctx
	finalizeParams.AddExpand("payment_intent")

	finalized, err := p.api.Invoices.FinalizeInvoice(inv.ID, finalizeParams)
	if err != nil {
		p.logger.Error("Failed to finalize Stripe invoice",
			zap.String("record_id", record.ID),
			zap.String("invoice_id", inv.ID),
			zap.Error(err))
		return nil, toProviderError(err)
	}
	if finalized.PaymentIntent == nil || finalized.PaymentIntent.ClientSecret == "" {
		return nil, &provider.ProviderError{
			Provider: providerName,
			Code:     "missing_payment_intent",
			Message:  fmt.Sprintf("finalized invoice %s has no payment intent", finalized.ID),
		}
	}

	p.stampPaymentIntent(ctx, record.ID, finalized.PaymentIntent.ID)

	return &entity.CheckoutInvoice{
		InvoiceID:        finalized.ID,
		ClientSecret:     finalized.PaymentIntent.ClientSecret,
		HostedInvoiceURL: finalized.HostedInvoiceURL,
		AmountDue:        finalized.AmountDue,
	}, nil
}

// stampPaymentIntent copies the record id onto the invoice's payment intent.
// The invoice carries it too, so a failure only loses the first lookup path.
func (p *PaymentProcessor) stampPaymentIntent(ctx context.Context, recordID, paymentIntentID string) {
	if paymentIntentID == "" {
		return
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddMetadata(entity.RecordIDMetadataKey, recordID)

	if _, err := p.api.PaymentIntents.Update(paymentIntentID, params); err != nil {
		p.logger.Warn("Failed to set record id on Stripe payment intent",
			zap.String("record_id", recordID),
			zap.String("payment_intent_id", paymentIntentID),
			zap.Error(err))
	}
}

type invoiceLine struct {
	amount      int64
	description string
}

// invoiceLines falls back to a single line for the record total when the
// record carries no items.
func invoiceLines(record *entity.CRMRecord) []invoiceLine {
	if len(record.Items) == 0 {
		return []invoiceLine{{
			amount:      MinorUnits(record.Amount),
			description: record.InvoiceName,
		}}
	}

	lines := make([]invoiceLine, 0, len(record.Items))
	for _, item := range record.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		description := item.ProductName
		if item.Description != "" {
			description = strings.TrimSpace(item.ProductName + " - " + item.Description)
		}
		if quantity > 1 {
			description = fmt.Sprintf("%s (x%d)", description, quantity)
		}
		lines = append(lines, invoiceLine{
			amount:      MinorUnits(item.Amount.Mul(decimal.NewFromInt(quantity))),
			description: description,
		})
	}
	return lines
}

// MinorUnits converts a major-unit amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func toProviderError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     string(stripeErr.Code),
			Message:  stripeErr.Msg,
			Details:  string(stripeErr.Type),
		}
	}
	return &provider.ProviderError{
		Provider: providerName,
		Code:     "request_failed",
		Message:  err.Error(),
	}
}
